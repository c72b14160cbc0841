package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"recipebox/internal/models"
	"recipebox/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set loaded from YAML. Users and comment or
// favorite authors are referenced by username.
type Fixture struct {
	Users   []FixtureUser   `yaml:"users"`
	Recipes []FixtureRecipe `yaml:"recipes"`
}

type FixtureUser struct {
	Username     string `yaml:"username"`
	Email        string `yaml:"email"`
	ProfileImage string `yaml:"profileImage"`
	Bio          string `yaml:"bio"`
}

type FixtureRecipe struct {
	Title       string           `yaml:"title"`
	Author      string           `yaml:"author"`
	Description string           `yaml:"description"`
	Ingredients []string         `yaml:"ingredients"`
	Steps       []string         `yaml:"steps"`
	Tags        []string         `yaml:"tags"`
	Comments    []FixtureComment `yaml:"comments"`
	FavoritedBy []string         `yaml:"favoritedBy"`
}

type FixtureComment struct {
	User string `yaml:"user"`
	Text string `yaml:"text"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(raw)
}

// ParseFixture parses YAML fixture data. Unknown keys are rejected.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// ApplyFixture writes fx through the services. Users that already exist are
// reused, so a fixture can be applied on top of seeded data.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (*Summary, error) {
	sum := &Summary{}
	ids := make(map[string]string, len(fx.Users))

	for _, fu := range fx.Users {
		u, err := s.users.CreateUser(ctx, service.CreateUserInput{
			Username:     fu.Username,
			Email:        fu.Email,
			ProfileImage: fu.ProfileImage,
			Bio:          fu.Bio,
		})
		if models.IsDuplicateKey(err) {
			u, err = s.users.GetUserByUsername(ctx, fu.Username)
		} else if err == nil {
			sum.Users++
		}
		if err != nil {
			return sum, fmt.Errorf("fixture user %q: %w", fu.Username, err)
		}
		ids[u.Username] = u.ID
	}

	resolve := func(username string) (string, error) {
		if id, ok := ids[username]; ok {
			return id, nil
		}
		u, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			return "", fmt.Errorf("fixture user %q: %w", username, err)
		}
		ids[username] = u.ID
		return u.ID, nil
	}

	for _, fr := range fx.Recipes {
		authorID, err := resolve(fr.Author)
		if err != nil {
			return sum, err
		}
		recipe, err := s.recipes.CreateRecipe(ctx, service.CreateRecipeInput{
			AuthorID:    authorID,
			Title:       fr.Title,
			Description: fr.Description,
			Ingredients: fr.Ingredients,
			Steps:       fr.Steps,
			Tags:        fr.Tags,
		})
		if err != nil {
			return sum, fmt.Errorf("fixture recipe %q: %w", fr.Title, err)
		}
		sum.Recipes++

		for _, fc := range fr.Comments {
			userID, err := resolve(fc.User)
			if err != nil {
				return sum, err
			}
			if _, err := s.comments.AddComment(ctx, service.AddCommentInput{
				RecipeID: recipe.ID,
				UserID:   userID,
				Username: fc.User,
				Text:     fc.Text,
			}); err != nil {
				return sum, fmt.Errorf("fixture comment on %q: %w", fr.Title, err)
			}
			sum.Comments++
		}

		for _, username := range fr.FavoritedBy {
			userID, err := resolve(username)
			if err != nil {
				return sum, err
			}
			if _, err := s.favorites.AddFavorite(ctx, userID, recipe.ID); err != nil {
				return sum, fmt.Errorf("fixture favorite on %q: %w", fr.Title, err)
			}
			sum.Favorites++
		}
	}
	return sum, nil
}
