// Package main provides management utilities for the recipe store. Every
// subcommand prints its result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"recipebox/internal/bootstrap"
	"recipebox/internal/config"
	"recipebox/internal/models"
	"recipebox/internal/repository"
	"recipebox/internal/service"

	"gorm.io/gorm"
)

const usageText = `Usage:
  admin create-user -username <name> -email <addr> [-bio <text>] [-image <url>]
  admin create-recipe -author <user_id> -title <title> -ingredients a,b -steps a,b [-tags a,b] [-description <text>]
  admin comment -recipe <recipe_id> -user <user_id> -text <text>
  admin favorite -user <user_id> -recipe <recipe_id>
  admin delete-recipe -user <user_id> -recipe <recipe_id>
  admin search [-title <t>] [-tags a,b] [-title-prefix <p>] [-tag <t>] [-tag-prefix <p>] [-limit n] [-offset n]
  admin by-author -author <user_id> [-limit n] [-offset n]
  admin reconcile-favorites`

var errUsage = errors.New(usageText)

type app struct {
	users     *service.UserService
	recipes   *service.RecipeService
	comments  *service.CommentService
	favorites *service.FavoriteService
	out       io.Writer
}

func newApp(db *gorm.DB, moderators []string, out io.Writer) *app {
	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	now := func() time.Time { return time.Now().UTC() }
	return &app{
		users:     service.NewUserService(userRepo, favoriteRepo, now),
		recipes:   service.NewRecipeService(recipeRepo, userRepo, service.NewModeratorCheck(userRepo, moderators), now),
		comments:  service.NewCommentService(recipeRepo, userRepo, now),
		favorites: service.NewFavoriteService(favoriteRepo, now),
		out:       out,
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	a := newApp(db, cfg.Moderators(), os.Stdout)
	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			_ = json.NewEncoder(os.Stderr).Encode(map[string]string{"code": appErr.Code, "field": appErr.Field, "error": appErr.Message})
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch args[0] {
	case "create-user":
		username := fs.String("username", "", "")
		email := fs.String("email", "", "")
		bio := fs.String("bio", "", "")
		image := fs.String("image", "", "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.print(a.users.CreateUser(ctx, service.CreateUserInput{
			Username: *username, Email: *email, Bio: *bio, ProfileImage: *image,
		}))

	case "create-recipe":
		author := fs.String("author", "", "")
		title := fs.String("title", "", "")
		description := fs.String("description", "", "")
		ingredients := fs.String("ingredients", "", "")
		steps := fs.String("steps", "", "")
		tags := fs.String("tags", "", "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.print(a.recipes.CreateRecipe(ctx, service.CreateRecipeInput{
			AuthorID:    *author,
			Title:       *title,
			Description: *description,
			Ingredients: splitList(*ingredients),
			Steps:       splitList(*steps),
			Tags:        splitList(*tags),
		}))

	case "comment":
		recipe := fs.String("recipe", "", "")
		user := fs.String("user", "", "")
		text := fs.String("text", "", "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.print(a.comments.AddComment(ctx, service.AddCommentInput{RecipeID: *recipe, UserID: *user, Text: *text}))

	case "favorite":
		user := fs.String("user", "", "")
		recipe := fs.String("recipe", "", "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.print(a.favorites.ToggleFavorite(ctx, *user, *recipe))

	case "delete-recipe":
		user := fs.String("user", "", "")
		recipe := fs.String("recipe", "", "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.recipes.DeleteRecipe(ctx, service.DeleteRecipeInput{UserID: *user, RecipeID: *recipe}); err != nil {
			return err
		}
		return a.print(map[string]string{"deleted": *recipe}, nil)

	case "search":
		title := fs.String("title", "", "")
		tags := fs.String("tags", "", "")
		titlePrefix := fs.String("title-prefix", "", "")
		tag := fs.String("tag", "", "")
		tagPrefix := fs.String("tag-prefix", "", "")
		limit := fs.Int("limit", 20, "")
		offset := fs.Int("offset", 0, "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.print(a.recipes.Search(ctx, service.SearchRecipesInput{
			Title:       *title,
			Tags:        splitList(*tags),
			TitlePrefix: *titlePrefix,
			Tag:         *tag,
			TagPrefix:   *tagPrefix,
			Limit:       *limit,
			Offset:      *offset,
		}))

	case "by-author":
		author := fs.String("author", "", "")
		limit := fs.Int("limit", 20, "")
		offset := fs.Int("offset", 0, "")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return a.print(a.recipes.ListByAuthor(ctx, *author, *limit, *offset))

	case "reconcile-favorites":
		return a.print(a.favorites.ReconcileCounts(ctx))

	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func (a *app) print(v any, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
