package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuthorSnapshot is the author's identity copied onto a recipe at creation time.
// Username and ProfileImage are not kept in sync with later profile edits.
type AuthorSnapshot struct {
	AuthorID     string `gorm:"column:id;size:36;not null;index:idx_recipes_author_id" json:"authorId"`
	Username     string `gorm:"column:username;size:50" json:"username"`
	ProfileImage string `gorm:"column:profile_image;size:512" json:"profileImage,omitempty"`
}

// Recipe is a user-authored recipe with its comment thread.
type Recipe struct {
	ID             string                      `gorm:"primaryKey;size:36" json:"id"`
	Title          string                      `gorm:"size:200;not null;index:idx_recipes_title" json:"title"`
	Description    string                      `gorm:"type:text" json:"description,omitempty"`
	Ingredients    datatypes.JSONSlice[string] `gorm:"not null" json:"ingredients"`
	Steps          datatypes.JSONSlice[string] `gorm:"not null" json:"steps"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	Author         AuthorSnapshot              `gorm:"embedded;embeddedPrefix:author_" json:"author"`
	Comments       []Comment                   `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"comments"`
	FavoritesCount int                         `gorm:"not null;default:0" json:"favoritesCount"`
	CreatedAt      time.Time                   `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updatedAt"`
}

// TableName specifies the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// NewRecipe builds a Recipe authored by author with zero favorites and both
// timestamps set to now. Tags are normalised with NormalizeTags.
func NewRecipe(title, description string, ingredients, steps, tags []string, author *User, now time.Time) *Recipe {
	now = now.UTC()
	r := &Recipe{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Ingredients: datatypes.JSONSlice[string](trimAll(ingredients)),
		Steps:       datatypes.JSONSlice[string](trimAll(steps)),
		Tags:        datatypes.JSONSlice[string](NormalizeTags(tags)),
		Comments:    []Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if author != nil {
		r.Author = AuthorSnapshot{
			AuthorID:     author.ID,
			Username:     author.Username,
			ProfileImage: author.ProfileImage,
		}
	}
	return r
}

// Touch refreshes UpdatedAt.
func (r *Recipe) Touch(now time.Time) {
	r.UpdatedAt = now.UTC()
}

// NormalizeTags lower-cases and trims tags, dropping blanks and repeats while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// RecipeTag is one row of the tag index kept alongside each recipe.
// RecipeTitle is denormalised so title+tag lookups stay on a single index.
type RecipeTag struct {
	RecipeID    string `gorm:"primaryKey;size:36"`
	Position    int    `gorm:"primaryKey;autoIncrement:false"`
	Tag         string `gorm:"size:64;not null;index:idx_recipe_tags_tag;index:idx_recipe_tags_title_tag,priority:2"`
	RecipeTitle string `gorm:"size:200;not null;index:idx_recipe_tags_title_tag,priority:1"`
}

// TableName specifies the table name for RecipeTag
func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// TagRows expands the recipe's tags into index rows.
func (r *Recipe) TagRows() []RecipeTag {
	rows := make([]RecipeTag, 0, len(r.Tags))
	for i, t := range r.Tags {
		rows = append(rows, RecipeTag{RecipeID: r.ID, Position: i, Tag: t, RecipeTitle: r.Title})
	}
	return rows
}
