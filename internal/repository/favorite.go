package repository

import (
	"context"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/observability"

	"gorm.io/gorm"
)

// FavoriteRepository maintains user favorites together with each recipe's
// favoritesCount. Every change to the membership row and the counter happens
// in the same transaction.
type FavoriteRepository interface {
	Toggle(ctx context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error)
	Add(ctx context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error)
	Remove(ctx context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error)
	ListRecipeIDs(ctx context.Context, userID string) ([]string, error)
	ListRecipes(ctx context.Context, userID string, limit, offset int) ([]*models.Recipe, error)
	ReconcileCounts(ctx context.Context, at time.Time) (*models.ReconcileReport, error)
}

type favoriteRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFavoriteRepository returns a new FavoriteRepository implementation.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db, log: observability.NewRepoLogger("user_favorites")}
}

type favoriteMode int

const (
	favoriteToggle favoriteMode = iota
	favoriteAdd
	favoriteRemove
)

func (r *favoriteRepository) Toggle(ctx context.Context, userID, recipeID string, at time.Time) (res *models.FavoriteResult, err error) {
	ctx, done := instrument(ctx, r.log, "user_favorites", "Toggle")
	defer done(&err)
	return r.apply(ctx, userID, recipeID, at, favoriteToggle)
}

func (r *favoriteRepository) Add(ctx context.Context, userID, recipeID string, at time.Time) (res *models.FavoriteResult, err error) {
	ctx, done := instrument(ctx, r.log, "user_favorites", "Add")
	defer done(&err)
	return r.apply(ctx, userID, recipeID, at, favoriteAdd)
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, recipeID string, at time.Time) (res *models.FavoriteResult, err error) {
	ctx, done := instrument(ctx, r.log, "user_favorites", "Remove")
	defer done(&err)
	return r.apply(ctx, userID, recipeID, at, favoriteRemove)
}

func (r *favoriteRepository) apply(ctx context.Context, userID, recipeID string, at time.Time, mode favoriteMode) (*models.FavoriteResult, error) {
	at = at.UTC()
	result := &models.FavoriteResult{RecipeID: recipeID}
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return models.NewInternalError(err)
		}
		if users == 0 {
			return models.NewNotFoundError("User", userID)
		}

		var recipe models.Recipe
		if err := lockForUpdate(tx).Select("id", "favorites_count").Where("id = ?", recipeID).First(&recipe).Error; err != nil {
			return translateReadError(err, "Recipe", recipeID)
		}

		removed := false
		if mode != favoriteAdd {
			res := tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
			if res.Error != nil {
				return models.NewInternalError(res.Error)
			}
			removed = res.RowsAffected > 0
		}

		switch {
		case removed:
			if err := tx.Model(&models.Recipe{}).
				Where("id = ? AND favorites_count > 0", recipeID).
				Updates(map[string]interface{}{
					"favorites_count": gorm.Expr("favorites_count - ?", 1),
					"updated_at":      at,
				}).Error; err != nil {
				return models.NewInternalError(err)
			}
			result.Favorited = false
			changed = true
		case mode == favoriteRemove:
			result.Favorited = false
		default:
			res := tx.Exec(
				"INSERT INTO user_favorites (user_id, recipe_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, recipe_id) DO NOTHING",
				userID, recipeID, at,
			)
			if res.Error != nil {
				return translateWriteError(res.Error)
			}
			if res.RowsAffected > 0 {
				if err := tx.Model(&models.Recipe{}).
					Where("id = ?", recipeID).
					Updates(map[string]interface{}{
						"favorites_count": gorm.Expr("favorites_count + ?", 1),
						"updated_at":      at,
					}).Error; err != nil {
					return models.NewInternalError(err)
				}
				changed = true
			}
			result.Favorited = true
		}

		var count int
		if err := tx.Raw("SELECT favorites_count FROM recipes WHERE id = ?", recipeID).Scan(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		result.FavoritesCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		direction := "removed"
		if result.Favorited {
			direction = "added"
		}
		observability.FavoriteToggles.WithLabelValues(direction).Inc()
		cache.InvalidateUser(ctx, userID)
		cache.InvalidateRecipe(ctx, recipeID)
		r.log.LogUpdate(ctx, map[string]interface{}{
			"user_id":         userID,
			"recipe_id":       recipeID,
			"favorited":       result.Favorited,
			"favorites_count": result.FavoritesCount,
		})
	}
	return result, nil
}

func (r *favoriteRepository) ListRecipeIDs(ctx context.Context, userID string) (ids []string, err error) {
	ctx, done := instrument(ctx, r.log, "user_favorites", "ListRecipeIDs")
	defer done(&err)
	return favoriteRecipeIDs(ctx, r.db, userID)
}

// ListRecipes resolves the user's favorites to recipes in favoriting order.
// Favorites whose recipe is gone are skipped.
func (r *favoriteRepository) ListRecipes(ctx context.Context, userID string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "user_favorites", "ListRecipes")
	defer done(&err)

	limit, offset = normalizePage(limit, offset)
	recipes = []*models.Recipe{}
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Joins("JOIN user_favorites ON user_favorites.recipe_id = recipes.id").
		Where("user_favorites.user_id = ?", userID).
		Order("user_favorites.id ASC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

const favoriteCountSubquery = "(SELECT COUNT(*) FROM user_favorites WHERE user_favorites.recipe_id = recipes.id)"

// ReconcileCounts drops favorites whose recipe no longer exists and resets
// every drifted favoritesCount to the number of favorites rows.
func (r *favoriteRepository) ReconcileCounts(ctx context.Context, at time.Time) (report *models.ReconcileReport, err error) {
	ctx, done := instrument(ctx, r.log, "user_favorites", "ReconcileCounts")
	defer done(&err)

	at = at.UTC()
	report = &models.ReconcileReport{}
	var drifted, affectedUsers []string

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dangling := tx.Model(&models.Favorite{}).Where("recipe_id NOT IN (?)", tx.Model(&models.Recipe{}).Select("id"))
		if err := dangling.Distinct().Pluck("user_id", &affectedUsers).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Where("recipe_id NOT IN (?)", tx.Model(&models.Recipe{}).Select("id")).Delete(&models.Favorite{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		report.DanglingRemoved = res.RowsAffected

		if err := tx.Model(&models.Recipe{}).
			Where("favorites_count <> " + favoriteCountSubquery).
			Pluck("id", &drifted).Error; err != nil {
			return models.NewInternalError(err)
		}
		if len(drifted) == 0 {
			return nil
		}
		res = tx.Model(&models.Recipe{}).
			Where("id IN ?", drifted).
			Updates(map[string]interface{}{
				"favorites_count": gorm.Expr(favoriteCountSubquery),
				"updated_at":      at,
			})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		report.CountsCorrected = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.FavoriteCountCorrections.Add(float64(report.CountsCorrected))
	for _, id := range drifted {
		cache.InvalidateRecipe(ctx, id)
	}
	cache.InvalidateUser(ctx, affectedUsers...)
	r.log.LogUpdate(ctx, map[string]interface{}{
		"counts_corrected": report.CountsCorrected,
		"dangling_removed": report.DanglingRemoved,
	})
	return report, nil
}
