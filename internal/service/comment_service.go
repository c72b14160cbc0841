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

type CommentService struct {
	recipeRepo repository.RecipeRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

// AddCommentInput describes a comment to append. Username is the author's
// display name at comment time; when empty it is read from the user record.
type AddCommentInput struct {
	RecipeID string
	UserID   string
	Username string
	Text     string
}

func NewCommentService(recipeRepo repository.RecipeRepository, userRepo repository.UserRepository, now func() time.Time) *CommentService {
	if now == nil {
		now = time.Now
	}
	return &CommentService{recipeRepo: recipeRepo, userRepo: userRepo, now: now}
}

func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "CommentService", "AddComment", observability.RecipeAttr(in.RecipeID))
	defer func() { observability.EndSpan(span, err) }()

	if strings.TrimSpace(in.RecipeID) == "" {
		return nil, models.NewFieldValidationError("recipeId", "Recipe id is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewFieldValidationError("text", "Comment text is required")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" && strings.TrimSpace(in.UserID) != "" {
		user, err := s.userRepo.GetByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		username = user.Username
	}

	comment = models.NewComment(in.RecipeID, in.UserID, username, in.Text, s.now())
	if err := validation.Comment(comment); err != nil {
		return nil, err
	}
	if err := s.recipeRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, recipeID string) ([]models.Comment, error) {
	if strings.TrimSpace(recipeID) == "" {
		return nil, models.NewFieldValidationError("recipeId", "Recipe id is required")
	}
	return s.recipeRepo.ListComments(ctx, recipeID)
}
