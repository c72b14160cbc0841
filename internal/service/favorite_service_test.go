package service

import (
	"context"
	"testing"
	"time"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteService_ToggleFavorite(t *testing.T) {
	t.Parallel()

	favs := noopFavoriteRepo()
	favs.toggleFn = func(_ context.Context, userID, recipeID string, at time.Time) (*models.FavoriteResult, error) {
		assert.Equal(t, "u1", userID)
		assert.Equal(t, fixedNow, at)
		return &models.FavoriteResult{RecipeID: recipeID, Favorited: true, FavoritesCount: 3}, nil
	}
	svc := NewFavoriteService(favs, clock)

	res, err := svc.ToggleFavorite(context.Background(), "u1", "r1")
	require.NoError(t, err)
	assert.True(t, res.Favorited)
	assert.Equal(t, 3, res.FavoritesCount)
}

func TestFavoriteService_RequiresIDs(t *testing.T) {
	t.Parallel()

	svc := NewFavoriteService(noopFavoriteRepo(), clock)
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, "", "r1")
	assertValidationError(t, err)
	_, err = svc.AddFavorite(ctx, "u1", " ")
	assertValidationError(t, err)
	_, err = svc.RemoveFavorite(ctx, "", "")
	assertValidationError(t, err)
}

func TestFavoriteService_PropagatesNotFound(t *testing.T) {
	t.Parallel()

	favs := noopFavoriteRepo()
	favs.addFn = func(_ context.Context, _, recipeID string, _ time.Time) (*models.FavoriteResult, error) {
		return nil, models.NewNotFoundError("Recipe", recipeID)
	}
	svc := NewFavoriteService(favs, clock)

	_, err := svc.AddFavorite(context.Background(), "u1", "ghost")
	assertCode(t, err, models.CodeNotFound)
}

func TestFavoriteService_ReconcileCounts(t *testing.T) {
	t.Parallel()

	favs := noopFavoriteRepo()
	favs.reconcileCountsFn = func(_ context.Context, at time.Time) (*models.ReconcileReport, error) {
		assert.Equal(t, fixedNow, at)
		return &models.ReconcileReport{CountsCorrected: 2, DanglingRemoved: 1}, nil
	}
	svc := NewFavoriteService(favs, clock)

	report, err := svc.ReconcileCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.CountsCorrected)
	assert.Equal(t, int64(1), report.DanglingRemoved)
}
