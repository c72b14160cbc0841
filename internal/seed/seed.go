package seed

import (
	"context"
	"fmt"
	"log/slog"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/repository"
	"recipebox/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumRecipes  int
	ShouldClean bool
	// MaxDays bounds how far back seeded timestamps start.
	MaxDays int
	// Seed fixes the fake data generator; zero means random.
	Seed int64
	// MaxCommentsPerRecipe and MaxFavoritesPerUser cap the random fan-out.
	MaxCommentsPerRecipe int
	MaxFavoritesPerUser  int
}

// Summary counts what a seeding run wrote.
type Summary struct {
	Users     int
	Recipes   int
	Comments  int
	Favorites int
}

// Seeder writes demo data through the services so that every seeded record
// passes the same validation and counter maintenance as real traffic.
type Seeder struct {
	db        *gorm.DB
	factory   *Factory
	users     *service.UserService
	recipes   *service.RecipeService
	comments  *service.CommentService
	favorites *service.FavoriteService
}

// NewSeeder wires a Seeder over db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	f := NewFactory(opts.Seed, opts.MaxDays)
	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	return &Seeder{
		db:        db,
		factory:   f,
		users:     service.NewUserService(userRepo, favoriteRepo, f.Now),
		recipes:   service.NewRecipeService(recipeRepo, userRepo, nil, f.Now),
		comments:  service.NewCommentService(recipeRepo, userRepo, f.Now),
		favorites: service.NewFavoriteService(favoriteRepo, f.Now),
	}
}

// Seed populates the database with generated data.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	return NewSeeder(db, opts).Run(ctx, opts)
}

// Run clears existing data when asked, then creates users, recipes, comments
// and favorites.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	log := middleware.Logger
	log.Info("Starting database seeding", slog.Int("users", opts.NumUsers), slog.Int("recipes", opts.NumRecipes))

	if opts.ShouldClean {
		if err := ClearData(ctx, s.db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	sum := &Summary{}
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := s.users.CreateUser(ctx, s.factory.UserInput(i))
		if models.IsDuplicateKey(err) {
			log.Warn("Skipping duplicate seed user", slog.Int("index", i))
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		if opts.NumRecipes > 0 {
			log.Warn("No users available; skipping recipes")
		}
		return sum, nil
	}

	recipes := make([]*models.Recipe, 0, opts.NumRecipes)
	for i := 0; i < opts.NumRecipes; i++ {
		author := users[s.factory.Intn(len(users))]
		r, err := s.recipes.CreateRecipe(ctx, s.factory.RecipeInput(author.ID))
		if err != nil {
			return sum, fmt.Errorf("create recipe %d: %w", i, err)
		}
		recipes = append(recipes, r)
	}
	sum.Recipes = len(recipes)

	maxComments := opts.MaxCommentsPerRecipe
	if maxComments <= 0 {
		maxComments = 5
	}
	for _, r := range recipes {
		for n := s.factory.Intn(maxComments + 1); n > 0; n-- {
			commenter := users[s.factory.Intn(len(users))]
			if _, err := s.comments.AddComment(ctx, service.AddCommentInput{
				RecipeID: r.ID,
				UserID:   commenter.ID,
				Username: commenter.Username,
				Text:     s.factory.CommentText(),
			}); err != nil {
				return sum, fmt.Errorf("comment on %s: %w", r.ID, err)
			}
			sum.Comments++
		}
	}

	maxFavs := opts.MaxFavoritesPerUser
	if maxFavs <= 0 {
		maxFavs = 5
	}
	if len(recipes) > 0 {
		for _, u := range users {
			picked := make(map[string]bool)
			for n := s.factory.Intn(maxFavs + 1); n > 0; n-- {
				r := recipes[s.factory.Intn(len(recipes))]
				if picked[r.ID] {
					continue
				}
				picked[r.ID] = true
				if _, err := s.favorites.AddFavorite(ctx, u.ID, r.ID); err != nil {
					return sum, fmt.Errorf("favorite %s by %s: %w", r.ID, u.ID, err)
				}
				sum.Favorites++
			}
		}
	}

	log.Info("Database seeding completed",
		slog.Int("users", sum.Users),
		slog.Int("recipes", sum.Recipes),
		slog.Int("comments", sum.Comments),
		slog.Int("favorites", sum.Favorites),
	)
	return sum, nil
}

// ClearData removes every recipe, comment, favorite and user.
func ClearData(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.Info("Clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.WithContext(ctx).Exec(`TRUNCATE TABLE user_favorites, recipe_comments, recipe_tags, recipes, users RESTART IDENTITY CASCADE`).Error
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{&models.Favorite{}, &models.Comment{}, &models.RecipeTag{}, &models.Recipe{}, &models.User{}} {
			if err := all.Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
