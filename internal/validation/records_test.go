package validation

import (
	"strings"
	"testing"
	"time"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipe() *models.Recipe {
	author := &models.User{ID: "u1", Username: "alice"}
	return models.NewRecipe("Pancakes", "", []string{"flour", "milk"}, []string{"mix", "fry"}, []string{"breakfast"}, author, time.Now())
}

func TestUser(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		username  string
		email     string
		wantField string
	}{
		{"Valid", "alice", "alice@example.com", ""},
		{"Minimal Email", "alice", "a@x", ""},
		{"Missing Username", "", "alice@example.com", "username"},
		{"Too Short", "al", "alice@example.com", "username"},
		{"Too Long", strings.Repeat("a", 31), "alice@example.com", "username"},
		{"Illegal Chars", "al ice", "alice@example.com", "username"},
		{"Ends Underscore", "alice_", "alice@example.com", "username"},
		{"Missing Email", "alice", "", "email"},
		{"No At Sign", "alice", "alice.example.com", "email"},
		{"Two At Signs", "alice", "a@@x", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := User(&models.User{Username: tt.username, Email: tt.email})
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestRecipe(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		mutate    func(r *models.Recipe)
		wantField string
	}{
		{"Valid", func(*models.Recipe) {}, ""},
		{"No Tags Is Fine", func(r *models.Recipe) { r.Tags = nil }, ""},
		{"Several Tags", func(r *models.Recipe) { r.Tags = []string{"dinner", "spicy", "indian", "vegetarian"} }, ""},
		{"Max Tags", func(r *models.Recipe) {
			tags := make([]string, MaxTags)
			for i := range tags {
				tags[i] = strings.Repeat("x", i+1)
			}
			r.Tags = tags
		}, ""},
		{"Blank Title", func(r *models.Recipe) { r.Title = "   " }, "title"},
		{"Long Title", func(r *models.Recipe) { r.Title = strings.Repeat("t", MaxTitleLen+1) }, "title"},
		{"No Ingredients", func(r *models.Recipe) { r.Ingredients = nil }, "ingredients"},
		{"Blank Ingredient", func(r *models.Recipe) { r.Ingredients = []string{"flour", " "} }, "ingredients"},
		{"No Steps", func(r *models.Recipe) { r.Steps = []string{} }, "steps"},
		{"Empty Step", func(r *models.Recipe) { r.Steps = []string{""} }, "steps"},
		{"Too Many Tags", func(r *models.Recipe) {
			tags := make([]string, MaxTags+1)
			for i := range tags {
				tags[i] = strings.Repeat("x", i+1)
			}
			r.Tags = tags
		}, "tags"},
		{"Missing Author", func(r *models.Recipe) { r.Author.AuthorID = "" }, "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(r)
			err := Recipe(r)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestRecipe_EmptyListsFromConstructor(t *testing.T) {
	t.Parallel()
	author := &models.User{ID: "u1", Username: "alice"}

	noIngredients := models.NewRecipe("Toast", "", []string{}, []string{"toast"}, nil, author, time.Now())
	err := Recipe(noIngredients)
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ingredients", appErr.Field)

	noSteps := models.NewRecipe("Toast", "", []string{"bread"}, nil, nil, author, time.Now())
	err = Recipe(noSteps)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "steps", appErr.Field)
}

func TestComment(t *testing.T) {
	t.Parallel()

	ok := models.NewComment("r1", "u1", "alice", "looks great", time.Now())
	assert.NoError(t, Comment(ok))

	empty := models.NewComment("r1", "u1", "alice", "  ", time.Now())
	assert.True(t, models.IsValidation(Comment(empty)))

	long := models.NewComment("r1", "u1", "alice", strings.Repeat("x", MaxCommentLen+1), time.Now())
	assert.True(t, models.IsValidation(Comment(long)))

	anon := models.NewComment("r1", "", "alice", "hi", time.Now())
	assert.True(t, models.IsValidation(Comment(anon)))
}
