package service

import (
	"context"
	"strings"
	"time"

	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/validation"
)

type RecipeService struct {
	recipeRepo  repository.RecipeRepository
	userRepo    repository.UserRepository
	isModerator func(ctx context.Context, userID string) (bool, error)
	now         func() time.Time
}

type CreateRecipeInput struct {
	AuthorID    string
	Title       string
	Description string
	Ingredients []string
	Steps       []string
	Tags        []string
}

// UpdateRecipeInput carries recipe edits. An empty Title, a nil Description
// and nil slices are left unchanged.
type UpdateRecipeInput struct {
	UserID      string
	RecipeID    string
	Title       string
	Description *string
	Ingredients []string
	Steps       []string
	Tags        []string
}

type DeleteRecipeInput struct {
	UserID   string
	RecipeID string
}

// SearchRecipesInput selects one lookup: Title with Tags uses the composite
// title+tag index, Title alone is an exact match, Tags alone matches recipes
// carrying every tag, TitlePrefix and TagPrefix are prefix scans, and Tag is
// an exact tag match.
type SearchRecipesInput struct {
	Title       string
	Tags        []string
	TitlePrefix string
	Tag         string
	TagPrefix   string
	Limit       int
	Offset      int
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	isModerator func(ctx context.Context, userID string) (bool, error),
	now func() time.Time,
) *RecipeService {
	if now == nil {
		now = time.Now
	}
	return &RecipeService{
		recipeRepo:  recipeRepo,
		userRepo:    userRepo,
		isModerator: isModerator,
		now:         now,
	}
}

// CreateRecipe validates the input, snapshots the author's display fields and
// stores the recipe with favoritesCount 0.
func (s *RecipeService) CreateRecipe(ctx context.Context, in CreateRecipeInput) (recipe *models.Recipe, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "RecipeService", "CreateRecipe", observability.UserAttr(in.AuthorID))
	defer func() { observability.EndSpan(span, err) }()

	recipe = models.NewRecipe(in.Title, in.Description, in.Ingredients, in.Steps, in.Tags,
		&models.User{ID: strings.TrimSpace(in.AuthorID)}, s.now())
	if err := validation.Recipe(recipe); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, recipe.Author.AuthorID)
	if err != nil {
		return nil, err
	}
	recipe.Author = models.AuthorSnapshot{
		AuthorID:     author.ID,
		Username:     author.Username,
		ProfileImage: author.ProfileImage,
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.NewFieldValidationError("id", "Recipe id is required")
	}
	return s.recipeRepo.GetByID(ctx, id)
}

func (s *RecipeService) ListRecipes(ctx context.Context, limit, offset int) ([]*models.Recipe, error) {
	return s.recipeRepo.List(ctx, limit, offset)
}

func (s *RecipeService) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Recipe, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return nil, models.NewFieldValidationError("authorId", "Author id is required")
	}
	return s.recipeRepo.ListByAuthor(ctx, authorID, limit, offset)
}

func (s *RecipeService) FindByTitle(ctx context.Context, title string, limit, offset int) ([]*models.Recipe, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewFieldValidationError("title", "Title is required")
	}
	return s.recipeRepo.FindByTitle(ctx, title, limit, offset)
}

func (s *RecipeService) SearchByTitlePrefix(ctx context.Context, prefix string, limit, offset int) ([]*models.Recipe, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, models.NewFieldValidationError("title", "Search prefix is required")
	}
	return s.recipeRepo.SearchByTitlePrefix(ctx, prefix, limit, offset)
}

func (s *RecipeService) FindByTag(ctx context.Context, tag string, limit, offset int) ([]*models.Recipe, error) {
	tags := models.NormalizeTags([]string{tag})
	if len(tags) == 0 {
		return nil, models.NewFieldValidationError("tag", "Tag is required")
	}
	return s.recipeRepo.FindByTag(ctx, tags[0], limit, offset)
}

// FindByTags returns recipes that carry every one of tags.
func (s *RecipeService) FindByTags(ctx context.Context, tags []string, limit, offset int) ([]*models.Recipe, error) {
	tags = models.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil, models.NewFieldValidationError("tags", "At least one tag is required")
	}
	if len(tags) > validation.MaxTags {
		return nil, models.NewFieldValidationError("tags", "Too many tags (max 20)")
	}
	return s.recipeRepo.FindByTags(ctx, tags, limit, offset)
}

func (s *RecipeService) SearchByTagPrefix(ctx context.Context, prefix string, limit, offset int) ([]*models.Recipe, error) {
	tags := models.NormalizeTags([]string{prefix})
	if len(tags) == 0 {
		return nil, models.NewFieldValidationError("tag", "Search prefix is required")
	}
	return s.recipeRepo.SearchByTagPrefix(ctx, tags[0], limit, offset)
}

// FindByTitleAndTags returns recipes titled exactly title that carry every
// one of tags.
func (s *RecipeService) FindByTitleAndTags(ctx context.Context, title string, tags []string, limit, offset int) ([]*models.Recipe, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewFieldValidationError("title", "Title is required")
	}
	tags = models.NormalizeTags(tags)
	if len(tags) > validation.MaxTags {
		return nil, models.NewFieldValidationError("tags", "Too many tags (max 20)")
	}
	return s.recipeRepo.FindByTitleAndTags(ctx, title, tags, limit, offset)
}

// Search dispatches to the lookup selected by in.
func (s *RecipeService) Search(ctx context.Context, in SearchRecipesInput) ([]*models.Recipe, error) {
	switch {
	case in.Title != "" && len(in.Tags) > 0:
		return s.FindByTitleAndTags(ctx, in.Title, in.Tags, in.Limit, in.Offset)
	case in.Title != "":
		return s.FindByTitle(ctx, in.Title, in.Limit, in.Offset)
	case len(in.Tags) > 0:
		return s.FindByTags(ctx, in.Tags, in.Limit, in.Offset)
	case in.TitlePrefix != "":
		return s.SearchByTitlePrefix(ctx, in.TitlePrefix, in.Limit, in.Offset)
	case in.Tag != "":
		return s.FindByTag(ctx, in.Tag, in.Limit, in.Offset)
	case in.TagPrefix != "":
		return s.SearchByTagPrefix(ctx, in.TagPrefix, in.Limit, in.Offset)
	default:
		return nil, models.NewValidationError("A title, tags, title prefix, tag or tag prefix is required")
	}
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, in UpdateRecipeInput) (recipe *models.Recipe, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "RecipeService", "UpdateRecipe",
		observability.UserAttr(in.UserID), observability.RecipeAttr(in.RecipeID))
	defer func() { observability.EndSpan(span, err) }()

	recipe, err = s.recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, recipe, in.UserID, "edit"); err != nil {
		return nil, err
	}

	if in.Title != "" {
		recipe.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if in.Ingredients != nil {
		recipe.Ingredients = trimEach(in.Ingredients)
	}
	if in.Steps != nil {
		recipe.Steps = trimEach(in.Steps)
	}
	if in.Tags != nil {
		recipe.Tags = models.NormalizeTags(in.Tags)
	}
	if err := validation.Recipe(recipe); err != nil {
		return nil, err
	}

	recipe.Touch(s.now())
	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipe removes a recipe on behalf of its author or a moderator.
func (s *RecipeService) DeleteRecipe(ctx context.Context, in DeleteRecipeInput) (err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "RecipeService", "DeleteRecipe",
		observability.UserAttr(in.UserID), observability.RecipeAttr(in.RecipeID))
	defer func() { observability.EndSpan(span, err) }()

	recipe, err := s.recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, recipe, in.UserID, "delete"); err != nil {
		return err
	}
	return s.recipeRepo.Delete(ctx, recipe.ID)
}

func (s *RecipeService) authorize(ctx context.Context, recipe *models.Recipe, userID, action string) error {
	if userID != "" && recipe.Author.AuthorID == userID {
		return nil
	}
	if s.isModerator != nil && userID != "" {
		ok, err := s.isModerator(ctx, userID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return models.NewForbiddenError("Only the author or a moderator can " + action + " this recipe")
}

func trimEach(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// NewModeratorCheck returns an isModerator func that grants moderation to the
// users whose username is in usernames.
func NewModeratorCheck(userRepo repository.UserRepository, usernames []string) func(ctx context.Context, userID string) (bool, error) {
	set := make(map[string]struct{}, len(usernames))
	for _, name := range usernames {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return func(ctx context.Context, userID string) (bool, error) {
		if len(set) == 0 {
			return false, nil
		}
		user, err := userRepo.GetByID(ctx, userID)
		if err != nil {
			if models.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		_, ok := set[user.Username]
		return ok, nil
	}
}
