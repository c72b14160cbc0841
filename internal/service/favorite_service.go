package service

import (
	"context"
	"strings"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
)

// FavoriteService changes favorites. Membership and favoritesCount are written
// in one transaction by the repository, so a failure leaves neither changed.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	now          func() time.Time
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, now func() time.Time) *FavoriteService {
	if now == nil {
		now = time.Now
	}
	return &FavoriteService{favoriteRepo: favoriteRepo, now: now}
}

func (s *FavoriteService) ToggleFavorite(ctx context.Context, userID, recipeID string) (res *models.FavoriteResult, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "FavoriteService", "ToggleFavorite",
		observability.UserAttr(userID), observability.RecipeAttr(recipeID))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireIDs(userID, recipeID); err != nil {
		return nil, err
	}
	return s.favoriteRepo.Toggle(ctx, userID, recipeID, s.now())
}

// AddFavorite favorites the recipe if the user has not already.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, recipeID string) (*models.FavoriteResult, error) {
	if err := requireIDs(userID, recipeID); err != nil {
		return nil, err
	}
	return s.favoriteRepo.Add(ctx, userID, recipeID, s.now())
}

// RemoveFavorite unfavorites the recipe if the user had favorited it.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, recipeID string) (*models.FavoriteResult, error) {
	if err := requireIDs(userID, recipeID); err != nil {
		return nil, err
	}
	return s.favoriteRepo.Remove(ctx, userID, recipeID, s.now())
}

// ReconcileCounts recomputes favoritesCount for every recipe from the stored
// favorites and drops favorites of deleted recipes.
func (s *FavoriteService) ReconcileCounts(ctx context.Context) (report *models.ReconcileReport, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "FavoriteService", "ReconcileCounts")
	defer func() { observability.EndSpan(span, err) }()

	return s.favoriteRepo.ReconcileCounts(ctx, s.now())
}

func requireIDs(userID, recipeID string) error {
	if strings.TrimSpace(userID) == "" {
		return models.NewFieldValidationError("userId", "User id is required")
	}
	if strings.TrimSpace(recipeID) == "" {
		return models.NewFieldValidationError("recipeId", "Recipe id is required")
	}
	return nil
}
