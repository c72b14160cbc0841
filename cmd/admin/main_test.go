package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"recipebox/internal/database"
	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	var out bytes.Buffer
	return newApp(db, []string{"moddy"}, &out), &out
}

func runJSON(t *testing.T, a *app, out *bytes.Buffer, dest any, args ...string) {
	t.Helper()
	out.Reset()
	require.NoError(t, a.run(context.Background(), args))
	require.NoError(t, json.Unmarshal(out.Bytes(), dest))
}

func TestAdminCommands(t *testing.T) {
	a, out := newTestApp(t)

	var alice, bob models.User
	runJSON(t, a, out, &alice, "create-user", "-username", "alice", "-email", "a@x.com")
	runJSON(t, a, out, &bob, "create-user", "-username", "bob", "-email", "b@y.com")
	assert.Equal(t, "alice", alice.Username)

	err := a.run(context.Background(), []string{"create-user", "-username", "alice", "-email", "c@z.com"})
	assert.True(t, models.IsDuplicateKey(err))

	var soup models.Recipe
	runJSON(t, a, out, &soup, "create-recipe", "-author", alice.ID, "-title", "Tomato Soup",
		"-ingredients", "tomato,water", "-steps", "chop,boil", "-tags", "Dinner,vegetarian")
	assert.Equal(t, []string{"dinner", "vegetarian"}, []string(soup.Tags))

	var c models.Comment
	runJSON(t, a, out, &c, "comment", "-recipe", soup.ID, "-user", bob.ID, "-text", "lovely")
	assert.Equal(t, "bob", c.Username)

	var fav models.FavoriteResult
	runJSON(t, a, out, &fav, "favorite", "-user", bob.ID, "-recipe", soup.ID)
	assert.True(t, fav.Favorited)
	assert.Equal(t, 1, fav.FavoritesCount)

	var found []models.Recipe
	runJSON(t, a, out, &found, "search", "-title", "Tomato Soup", "-tags", "dinner")
	require.Len(t, found, 1)
	assert.Equal(t, soup.ID, found[0].ID)

	runJSON(t, a, out, &found, "search", "-tag-prefix", "veg")
	require.Len(t, found, 1)

	runJSON(t, a, out, &found, "by-author", "-author", alice.ID)
	require.Len(t, found, 1)

	var report models.ReconcileReport
	runJSON(t, a, out, &report, "reconcile-favorites")
	assert.Zero(t, report.CountsCorrected)

	err = a.run(context.Background(), []string{"delete-recipe", "-user", bob.ID, "-recipe", soup.ID})
	assert.True(t, models.IsForbidden(err))

	var deleted map[string]string
	runJSON(t, a, out, &deleted, "delete-recipe", "-user", alice.ID, "-recipe", soup.ID)
	assert.Equal(t, soup.ID, deleted["deleted"])
}

func TestAdminUsage(t *testing.T) {
	a, _ := newTestApp(t)
	assert.ErrorIs(t, a.run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, a.run(context.Background(), []string{"bogus"}), errUsage)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList("  "))
	assert.Equal(t, []string{"a", " b"}, splitList("a, b"))
}
