package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Defaults(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u := NewUser(" alice ", "Alice@Example.COM", now)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, now, u.CreatedAt)
	assert.NotNil(t, u.FavoriteRecipes)
	assert.Empty(t, u.FavoriteRecipes)
	assert.NotEqual(t, u.ID, NewUser("bob", "b@x", now).ID)
}

func TestNewRecipe_Defaults(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	author := &User{ID: "u1", Username: "alice", ProfileImage: "https://img/alice.png"}

	r := NewRecipe("  Pancakes ", "fluffy", []string{" flour "}, []string{"mix"}, []string{"Breakfast", "breakfast", " ", "Sweet"}, author, now)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Pancakes", r.Title)
	assert.Equal(t, []string{"flour"}, []string(r.Ingredients))
	assert.Equal(t, []string{"breakfast", "sweet"}, []string(r.Tags))
	assert.Equal(t, 0, r.FavoritesCount)
	assert.Equal(t, now, r.CreatedAt)
	assert.Equal(t, now, r.UpdatedAt)
	assert.Empty(t, r.Comments)
	assert.Equal(t, AuthorSnapshot{AuthorID: "u1", Username: "alice", ProfileImage: "https://img/alice.png"}, r.Author)

	later := now.Add(time.Minute)
	r.Touch(later)
	assert.Equal(t, later, r.UpdatedAt)
	assert.Equal(t, now, r.CreatedAt)
}

func TestRecipe_TagRows(t *testing.T) {
	t.Parallel()
	r := &Recipe{ID: "r1", Title: "Soup", Tags: []string{"dinner", "vegan"}}

	rows := r.TagRows()
	require.Len(t, rows, 2)
	assert.Equal(t, RecipeTag{RecipeID: "r1", Position: 0, Tag: "dinner", RecipeTitle: "Soup"}, rows[0])
	assert.Equal(t, 1, rows[1].Position)
}

func TestUser_HasFavorite(t *testing.T) {
	t.Parallel()
	u := &User{FavoriteRecipes: []string{"r1", "r2"}}
	assert.True(t, u.HasFavorite("r2"))
	assert.False(t, u.HasFavorite("r3"))
}

func TestAppError_Helpers(t *testing.T) {
	t.Parallel()
	cause := errors.New("unique violation")
	dup := NewDuplicateKeyError("email", cause)
	wrapped := fmt.Errorf("create user: %w", dup)

	assert.True(t, IsDuplicateKey(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "email already taken: unique violation", dup.Error())

	assert.True(t, IsNotFound(NewNotFoundError("Recipe", "r1")))
	assert.True(t, IsValidation(NewFieldValidationError("title", "title: cannot be blank")))
	assert.True(t, IsForbidden(NewForbiddenError("nope")))
	assert.False(t, IsValidation(cause))
}
