package repository

import (
	"context"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := instrument(ctx, r.log, "users", "Create")
	defer done(&err)

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateWriteError(err)
	}
	if user.FavoriteRecipes == nil {
		user.FavoriteRecipes = []string{}
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": user.ID, "username": user.Username})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user *models.User, err error) {
	ctx, done := instrument(ctx, r.log, "users", "GetByID")
	defer done(&err)

	var u models.User
	err = cache.Aside(ctx, cache.UserKey(id), &u, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
			return translateReadError(err, "User", id)
		}
		favs, err := favoriteRecipeIDs(ctx, r.db, id)
		if err != nil {
			return err
		}
		u.FavoriteRecipes = favs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if u.FavoriteRecipes == nil {
		u.FavoriteRecipes = []string{}
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (user *models.User, err error) {
	ctx, done := instrument(ctx, r.log, "users", "GetByUsername")
	defer done(&err)

	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translateReadError(err, "User", username)
	}
	favs, err := favoriteRecipeIDs(ctx, r.db, u.ID)
	if err != nil {
		return nil, err
	}
	u.FavoriteRecipes = favs
	return &u, nil
}

// Update saves profile fields. Id, createdAt and favorites are left untouched.
func (r *userRepository) Update(ctx context.Context, user *models.User) (err error) {
	ctx, done := instrument(ctx, r.log, "users", "Update")
	defer done(&err)

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username":      user.Username,
			"email":         user.Email,
			"profile_image": user.ProfileImage,
			"bio":           user.Bio,
		})
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}

	cache.InvalidateUser(ctx, user.ID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": user.ID})
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) (users []*models.User, err error) {
	ctx, done := instrument(ctx, r.log, "users", "List")
	defer done(&err)

	limit, offset = normalizePage(limit, offset)
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, u := range users {
		u.FavoriteRecipes = []string{}
	}
	return users, nil
}

// favoriteRecipeIDs returns the user's favorited recipe ids in favoriting
// order, skipping entries whose recipe no longer exists.
func favoriteRecipeIDs(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	ids := []string{}
	if err := db.WithContext(ctx).
		Table("user_favorites").
		Joins("JOIN recipes ON recipes.id = user_favorites.recipe_id").
		Where("user_favorites.user_id = ?", userID).
		Order("user_favorites.id ASC").
		Pluck("user_favorites.recipe_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
