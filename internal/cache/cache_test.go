package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{ID: "r1", Name: "Pancakes"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, RecipeKey("r1"), &first, RecipeTTL, fetch(&first)))
	assert.Equal(t, "Pancakes", first.Name)
	assert.True(t, mr.Exists("recipe:r1"))
	assert.Equal(t, RecipeTTL, mr.TTL("recipe:r1"))

	var second cachedThing
	require.NoError(t, Aside(ctx, RecipeKey("r1"), &second, RecipeTTL, fetch(&second)))
	assert.Equal(t, "Pancakes", second.Name)
	assert.Equal(t, 1, calls)

	InvalidateRecipe(ctx, "r1")
	assert.False(t, mr.Exists("recipe:r1"))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := withMiniredis(t)
	fetchErr := errors.New("not found")

	var dest cachedThing
	err := Aside(context.Background(), UserKey("u1"), &dest, UserTTL, func() error { return fetchErr })
	assert.ErrorIs(t, err, fetchErr)
	assert.False(t, mr.Exists("user:u1"))
}

func TestAside_WithoutClientFallsThrough(t *testing.T) {
	SetClient(nil)

	calls := 0
	var dest cachedThing
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), UserKey("u1"), &dest, UserTTL, func() error {
			calls++
			dest.ID = "u1"
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
	Invalidate(context.Background(), UserKey("u1"))
}

func TestAside_RedisDownStillFetches(t *testing.T) {
	mr := withMiniredis(t)
	mr.SetError("LOADING")

	var dest cachedThing
	err := Aside(context.Background(), UserKey("u2"), &dest, time.Minute, func() error {
		dest.ID = "u2"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u2", dest.ID)
}

func TestInvalidateUser_MultipleKeys(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set("user:a", "{}"))
	require.NoError(t, mr.Set("user:b", "{}"))
	require.NoError(t, mr.Set("user:c", "{}"))

	InvalidateUser(context.Background(), "a", "b")

	assert.False(t, mr.Exists("user:a"))
	assert.False(t, mr.Exists("user:b"))
	assert.True(t, mr.Exists("user:c"))
}

func TestInitRedis_UnreachableLeavesClientNil(t *testing.T) {
	defer SetClient(nil)
	InitRedis("redis://127.0.0.1:1/0")
	assert.Nil(t, GetClient())

	InitRedis("://bad")
	assert.Nil(t, GetClient())
}
