// Package models contains the persisted record types and application errors.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Username     string `gorm:"size:50;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	ProfileImage string `gorm:"size:512" json:"profileImage,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`
	// FavoriteRecipes holds recipe ids in the order they were favorited.
	// Backed by user_favorites and loaded by the repository.
	FavoriteRecipes []string  `gorm:"-" json:"favoriteRecipes"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// NewUser builds a User with a fresh id, an empty favorites list and createdAt set to now.
func NewUser(username, email string, now time.Time) *User {
	return &User{
		ID:              uuid.NewString(),
		Username:        strings.TrimSpace(username),
		Email:           strings.ToLower(strings.TrimSpace(email)),
		FavoriteRecipes: []string{},
		CreatedAt:       now.UTC(),
	}
}

// HasFavorite reports whether recipeID is in the user's favorites.
func (u *User) HasFavorite(recipeID string) bool {
	for _, id := range u.FavoriteRecipes {
		if id == recipeID {
			return true
		}
	}
	return false
}
