package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	updateFn        func(context.Context, *models.User) error
	listFn          func(context.Context, int, int) ([]*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "user_" + id, Email: id + "@example.com", FavoriteRecipes: []string{}}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: "u-" + username, Username: username, FavoriteRecipes: []string{}}, nil
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
		listFn:   func(_ context.Context, _, _ int) ([]*models.User, error) { return nil, nil },
	}
}

// recipeRepoStub is a stub for repository.RecipeRepository.
type recipeRepoStub struct {
	createFn              func(context.Context, *models.Recipe) error
	getByIDFn             func(context.Context, string) (*models.Recipe, error)
	updateFn              func(context.Context, *models.Recipe) error
	deleteFn              func(context.Context, string) error
	listFn                func(context.Context, int, int) ([]*models.Recipe, error)
	listByAuthorFn        func(context.Context, string, int, int) ([]*models.Recipe, error)
	findByTitleFn         func(context.Context, string, int, int) ([]*models.Recipe, error)
	searchByTitlePrefixFn func(context.Context, string, int, int) ([]*models.Recipe, error)
	findByTagFn           func(context.Context, string, int, int) ([]*models.Recipe, error)
	findByTagsFn          func(context.Context, []string, int, int) ([]*models.Recipe, error)
	searchByTagPrefixFn   func(context.Context, string, int, int) ([]*models.Recipe, error)
	findByTitleAndTagsFn  func(context.Context, string, []string, int, int) ([]*models.Recipe, error)
	addCommentFn          func(context.Context, *models.Comment) error
	listCommentsFn        func(context.Context, string) ([]models.Comment, error)
}

func (s *recipeRepoStub) Create(ctx context.Context, r *models.Recipe) error { return s.createFn(ctx, r) }
func (s *recipeRepoStub) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	return s.getByIDFn(ctx, id)
}
func (s *recipeRepoStub) Update(ctx context.Context, r *models.Recipe) error { return s.updateFn(ctx, r) }
func (s *recipeRepoStub) Delete(ctx context.Context, id string) error      { return s.deleteFn(ctx, id) }
func (s *recipeRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Recipe, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *recipeRepoStub) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Recipe, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *recipeRepoStub) FindByTitle(ctx context.Context, title string, limit, offset int) ([]*models.Recipe, error) {
	return s.findByTitleFn(ctx, title, limit, offset)
}
func (s *recipeRepoStub) SearchByTitlePrefix(ctx context.Context, prefix string, limit, offset int) ([]*models.Recipe, error) {
	return s.searchByTitlePrefixFn(ctx, prefix, limit, offset)
}
func (s *recipeRepoStub) FindByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Recipe, error) {
	return s.findByTagFn(ctx, tag, limit, offset)
}
func (s *recipeRepoStub) FindByTags(ctx context.Context, tags []string, limit, offset int) ([]*models.Recipe, error) {
	return s.findByTagsFn(ctx, tags, limit, offset)
}
func (s *recipeRepoStub) SearchByTagPrefix(ctx context.Context, prefix string, limit, offset int) ([]*models.Recipe, error) {
	return s.searchByTagPrefixFn(ctx, prefix, limit, offset)
}
func (s *recipeRepoStub) FindByTitleAndTags(ctx context.Context, title string, tags []string, limit, offset int) ([]*models.Recipe, error) {
	return s.findByTitleAndTagsFn(ctx, title, tags, limit, offset)
}
func (s *recipeRepoStub) AddComment(ctx context.Context, c *models.Comment) error {
	return s.addCommentFn(ctx, c)
}
func (s *recipeRepoStub) ListComments(ctx context.Context, recipeID string) ([]models.Comment, error) {
	return s.listCommentsFn(ctx, recipeID)
}

func noopRecipeRepo() *recipeRepoStub {
	none := func(_ context.Context, _ string, _, _ int) ([]*models.Recipe, error) { return nil, nil }
	return &recipeRepoStub{
		createFn: func(_ context.Context, _ *models.Recipe) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.Recipe, error) {
			return &models.Recipe{ID: id, Title: "Soup", Ingredients: []string{"water"}, Steps: []string{"boil"},
				Author: models.AuthorSnapshot{AuthorID: "author"}}, nil
		},
		updateFn:              func(_ context.Context, _ *models.Recipe) error { return nil },
		deleteFn:              func(_ context.Context, _ string) error { return nil },
		listFn:                func(_ context.Context, _, _ int) ([]*models.Recipe, error) { return nil, nil },
		listByAuthorFn:        none,
		findByTitleFn:         none,
		searchByTitlePrefixFn: none,
		findByTagFn:           none,
		findByTagsFn:          func(_ context.Context, _ []string, _, _ int) ([]*models.Recipe, error) { return nil, nil },
		searchByTagPrefixFn:   none,
		findByTitleAndTagsFn:  func(_ context.Context, _ string, _ []string, _, _ int) ([]*models.Recipe, error) { return nil, nil },
		addCommentFn:          func(_ context.Context, _ *models.Comment) error { return nil },
		listCommentsFn:        func(_ context.Context, _ string) ([]models.Comment, error) { return []models.Comment{}, nil },
	}
}

// favoriteRepoStub is a stub for repository.FavoriteRepository.
type favoriteRepoStub struct {
	toggleFn          func(context.Context, string, string, time.Time) (*models.FavoriteResult, error)
	addFn             func(context.Context, string, string, time.Time) (*models.FavoriteResult, error)
	removeFn          func(context.Context, string, string, time.Time) (*models.FavoriteResult, error)
	listRecipeIDsFn   func(context.Context, string) ([]string, error)
	listRecipesFn     func(context.Context, string, int, int) ([]*models.Recipe, error)
	reconcileCountsFn func(context.Context, time.Time) (*models.ReconcileReport, error)
}

func (s *favoriteRepoStub) Toggle(ctx context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error) {
	return s.toggleFn(ctx, userID, recipeID, at)
}
func (s *favoriteRepoStub) Add(ctx context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error) {
	return s.addFn(ctx, userID, recipeID, at)
}
func (s *favoriteRepoStub) Remove(ctx context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error) {
	return s.removeFn(ctx, userID, recipeID, at)
}
func (s *favoriteRepoStub) ListRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	return s.listRecipeIDsFn(ctx, userID)
}
func (s *favoriteRepoStub) ListRecipes(ctx context.Context, userID string, limit, offset int) ([]*models.Recipe, error) {
	return s.listRecipesFn(ctx, userID, limit, offset)
}
func (s *favoriteRepoStub) ReconcileCounts(ctx context.Context, at time.Time) (*models.ReconcileReport, error) {
	return s.reconcileCountsFn(ctx, at)
}

func noopFavoriteRepo() *favoriteRepoStub {
	result := func(_ context.Context, _, recipeID string, _ time.Time) (*models.FavoriteResult, error) {
		return &models.FavoriteResult{RecipeID: recipeID}, nil
	}
	return &favoriteRepoStub{
		toggleFn:          result,
		addFn:             result,
		removeFn:          result,
		listRecipeIDsFn:   func(_ context.Context, _ string) ([]string, error) { return []string{}, nil },
		listRecipesFn:     func(_ context.Context, _ string, _, _ int) ([]*models.Recipe, error) { return nil, nil },
		reconcileCountsFn: func(_ context.Context, _ time.Time) (*models.ReconcileReport, error) { return &models.ReconcileReport{}, nil },
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func strPtr(s string) *string { return &s }

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
