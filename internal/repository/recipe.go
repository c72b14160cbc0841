package repository

import (
	"context"
	"time"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/observability"

	"gorm.io/gorm"
)

// RecipeRepository defines persistence operations for recipes and their
// embedded comment threads.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.Recipe, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Recipe, error)
	FindByTitle(ctx context.Context, title string, limit, offset int) ([]*models.Recipe, error)
	SearchByTitlePrefix(ctx context.Context, prefix string, limit, offset int) ([]*models.Recipe, error)
	FindByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Recipe, error)
	FindByTags(ctx context.Context, tags []string, limit, offset int) ([]*models.Recipe, error)
	SearchByTagPrefix(ctx context.Context, prefix string, limit, offset int) ([]*models.Recipe, error)
	FindByTitleAndTags(ctx context.Context, title string, tags []string, limit, offset int) ([]*models.Recipe, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, recipeID string) ([]models.Comment, error)
}

type recipeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db, log: observability.NewRepoLogger("recipes")}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) (err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "Create")
	defer done(&err)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Comments").Create(recipe).Error; err != nil {
			return translateWriteError(err)
		}
		if rows := recipe.TagRows(); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return translateWriteError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if recipe.Comments == nil {
		recipe.Comments = []models.Comment{}
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": recipe.ID, "author_id": recipe.Author.AuthorID})
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id string) (recipe *models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "GetByID")
	defer done(&err)

	var rec models.Recipe
	err = cache.Aside(ctx, cache.RecipeKey(id), &rec, cache.RecipeTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("recipe_comments.id ASC")
			}).
			Where("id = ?", id).
			First(&rec).Error; err != nil {
			return translateReadError(err, "Recipe", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rec.Comments == nil {
		rec.Comments = []models.Comment{}
	}
	return &rec, nil
}

// Update saves the editable fields, refreshes updatedAt and rewrites the tag
// index. Author, comments and favoritesCount are never written here.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe) (err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "Update")
	defer done(&err)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"title":       recipe.Title,
				"description": recipe.Description,
				"ingredients": recipe.Ingredients,
				"steps":       recipe.Steps,
				"tags":        recipe.Tags,
				"updated_at":  recipe.UpdatedAt,
			})
		if res.Error != nil {
			return translateWriteError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", recipe.ID)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeTag{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if rows := recipe.TagRows(); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return translateWriteError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateRecipe(ctx, recipe.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": recipe.ID})
	return nil
}

// Delete removes the recipe with its comments and tag rows, and pulls it out
// of every user's favorites, in one transaction.
func (r *recipeRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "Delete")
	defer done(&err)

	var favoritedBy []string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Recipe
		if err := lockForUpdate(tx).Select("id").Where("id = ?", id).First(&existing).Error; err != nil {
			return translateReadError(err, "Recipe", id)
		}

		if err := tx.Model(&models.Favorite{}).
			Where("recipe_id = ?", id).
			Pluck("user_id", &favoritedBy).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Recipe{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateRecipe(ctx, id)
	cache.InvalidateUser(ctx, favoritedBy...)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id, "favorites_pulled": len(favoritedBy)})
	return nil
}

// page applies newest-first ordering and bounds to a recipe listing query.
// Listings do not load comments.
func (r *recipeRepository) page(ctx context.Context, q *gorm.DB, limit, offset int) ([]*models.Recipe, error) {
	limit, offset = normalizePage(limit, offset)
	recipes := []*models.Recipe{}
	if err := q.WithContext(ctx).
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(limit).Offset(offset).
		Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) List(ctx context.Context, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "List")
	defer done(&err)
	return r.page(ctx, r.db.Model(&models.Recipe{}), limit, offset)
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "ListByAuthor")
	defer done(&err)
	return r.page(ctx, r.db.Model(&models.Recipe{}).Where("author_id = ?", authorID), limit, offset)
}

func (r *recipeRepository) FindByTitle(ctx context.Context, title string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "FindByTitle")
	defer done(&err)
	return r.page(ctx, r.db.Model(&models.Recipe{}).Where("title = ?", title), limit, offset)
}

func (r *recipeRepository) SearchByTitlePrefix(ctx context.Context, prefix string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "SearchByTitlePrefix")
	defer done(&err)
	q := r.db.Model(&models.Recipe{}).Where(`title LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	return r.page(ctx, q, limit, offset)
}

func (r *recipeRepository) FindByTag(ctx context.Context, tag string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "FindByTag")
	defer done(&err)
	sub := r.db.Model(&models.RecipeTag{}).Select("recipe_id").Where("tag = ?", tag)
	return r.page(ctx, r.db.Model(&models.Recipe{}).Where("id IN (?)", sub), limit, offset)
}

// FindByTags returns recipes that carry every tag in tags, whatever their
// title.
func (r *recipeRepository) FindByTags(ctx context.Context, tags []string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "FindByTags")
	defer done(&err)
	sub := r.db.Model(&models.RecipeTag{}).
		Select("recipe_id").
		Where("tag IN ?", tags).
		Group("recipe_id").
		Having("COUNT(DISTINCT tag) = ?", len(tags))
	return r.page(ctx, r.db.Model(&models.Recipe{}).Where("id IN (?)", sub), limit, offset)
}

func (r *recipeRepository) SearchByTagPrefix(ctx context.Context, prefix string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "SearchByTagPrefix")
	defer done(&err)
	sub := r.db.Model(&models.RecipeTag{}).Select("recipe_id").Where(`tag LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	return r.page(ctx, r.db.Model(&models.Recipe{}).Where("id IN (?)", sub), limit, offset)
}

// FindByTitleAndTags returns recipes with exactly this title that carry every
// tag in tags. The lookup runs on idx_recipe_tags_title_tag.
func (r *recipeRepository) FindByTitleAndTags(ctx context.Context, title string, tags []string, limit, offset int) (recipes []*models.Recipe, err error) {
	ctx, done := instrument(ctx, r.log, "recipes", "FindByTitleAndTags")
	defer done(&err)

	if len(tags) == 0 {
		return r.page(ctx, r.db.Model(&models.Recipe{}).Where("title = ?", title), limit, offset)
	}
	sub := r.db.Model(&models.RecipeTag{}).
		Select("recipe_id").
		Where("recipe_title = ? AND tag IN ?", title, tags).
		Group("recipe_id").
		Having("COUNT(DISTINCT tag) = ?", len(tags))
	q := r.db.Model(&models.Recipe{}).Where("title = ? AND id IN (?)", title, sub)
	return r.page(ctx, q, limit, offset)
}

// AddComment appends comment to its recipe's thread and refreshes the recipe's
// updatedAt to the comment time.
func (r *recipeRepository) AddComment(ctx context.Context, comment *models.Comment) (err error) {
	ctx, done := instrument(ctx, r.log, "recipe_comments", "AddComment")
	defer done(&err)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Where("id = ?", comment.RecipeID).
			Update("updated_at", commentTime(comment))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", comment.RecipeID)
		}
		if err := tx.Create(comment).Error; err != nil {
			return translateWriteError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.CommentsAdded.Inc()
	cache.InvalidateRecipe(ctx, comment.RecipeID)
	r.log.LogCreate(ctx, map[string]interface{}{"recipe_id": comment.RecipeID, "user_id": comment.UserID})
	return nil
}

func commentTime(c *models.Comment) time.Time {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return c.CreatedAt
}

func (r *recipeRepository) ListComments(ctx context.Context, recipeID string) (comments []models.Comment, err error) {
	ctx, done := instrument(ctx, r.log, "recipe_comments", "ListComments")
	defer done(&err)

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&n).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if n == 0 {
		return nil, models.NewNotFoundError("Recipe", recipeID)
	}

	comments = []models.Comment{}
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
