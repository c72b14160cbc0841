package models

import (
	"strings"
	"time"
)

// Comment is a note left on a recipe. It is owned by the recipe and never
// addressed on its own; ID only fixes the thread order.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	RecipeID  string    `gorm:"size:36;not null;index:idx_recipe_comments_recipe_id" json:"-"`
	UserID    string    `gorm:"size:36;not null" json:"userId"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "recipe_comments"
}

// NewComment builds a comment on recipeID with createdAt set to now.
func NewComment(recipeID, userID, username, text string, now time.Time) *Comment {
	return &Comment{
		RecipeID:  recipeID,
		UserID:    userID,
		Username:  strings.TrimSpace(username),
		Text:      strings.TrimSpace(text),
		CreatedAt: now.UTC(),
	}
}
