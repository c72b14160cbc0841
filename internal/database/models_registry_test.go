package database

import (
	"testing"

	modelspkg "recipebox/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPersistentModels_CoversRecipeTables(t *testing.T) {
	tables := map[string]bool{}
	for _, model := range PersistentModels() {
		if tabler, ok := model.(interface{ TableName() string }); ok {
			tables[tabler.TableName()] = true
		}
	}
	for _, name := range []string{"users", "recipes", "recipe_comments", "recipe_tags", "user_favorites"} {
		assert.True(t, tables[name], "PersistentModels should include %s", name)
	}

	_, isFavorite := PersistentModels()[4].(*modelspkg.Favorite)
	assert.True(t, isFavorite)
}
