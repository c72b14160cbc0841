package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"recipebox/internal/middleware"
)

const (
	UserKeyPrefix   = "user:%s"
	RecipeKeyPrefix = "recipe:%s"
)

const (
	UserTTL   = 5 * time.Minute
	RecipeTTL = 10 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RecipeKey(recipeID string) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

// Invalidate deletes keys from the cache. Failures are logged and otherwise ignored.
func Invalidate(ctx context.Context, keys ...string) {
	c := GetClient()
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func InvalidateUser(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	Invalidate(ctx, keys...)
}

func InvalidateRecipe(ctx context.Context, recipeID string) {
	Invalidate(ctx, RecipeKey(recipeID))
}
