package models

import "time"

// Favorite links a user to a recipe they favorited. It has no foreign key to
// recipes; an entry may outlive its recipe and readers skip it.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_favorites_user_recipe" json:"userId"`
	RecipeID  string    `gorm:"size:36;not null;uniqueIndex:idx_user_favorites_user_recipe;index:idx_user_favorites_recipe_id" json:"recipeId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// TableName specifies the table name for Favorite
func (Favorite) TableName() string {
	return "user_favorites"
}

// FavoriteResult reports the outcome of a favorite toggle.
type FavoriteResult struct {
	RecipeID       string `json:"recipeId"`
	Favorited      bool   `json:"favorited"`
	FavoritesCount int    `json:"favoritesCount"`
}

// ReconcileReport summarises a favorites repair run.
type ReconcileReport struct {
	// CountsCorrected is the number of recipes whose favoritesCount changed.
	CountsCorrected int64 `json:"countsCorrected"`
	// DanglingRemoved is the number of favorites pointing at missing recipes.
	DanglingRemoved int64 `json:"danglingRemoved"`
}
