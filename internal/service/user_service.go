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

type UserService struct {
	userRepo     repository.UserRepository
	favoriteRepo repository.FavoriteRepository
	now          func() time.Time
}

type CreateUserInput struct {
	Username     string
	Email        string
	ProfileImage string
	Bio          string
}

// UpdateProfileInput carries profile edits. Empty Username and Email are
// left unchanged; nil ProfileImage and Bio are left unchanged and a pointer to
// "" clears them.
type UpdateProfileInput struct {
	UserID       string
	Username     string
	Email        string
	ProfileImage *string
	Bio          *string
}

func NewUserService(userRepo repository.UserRepository, favoriteRepo repository.FavoriteRepository, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{userRepo: userRepo, favoriteRepo: favoriteRepo, now: now}
}

const maxBioLen = 500

// CreateUser registers a new user. Uniqueness of username and email is left
// to the storage layer, which reports a collision as DUPLICATE_KEY.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (user *models.User, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "UserService", "CreateUser")
	defer func() { observability.EndSpan(span, err) }()

	user = models.NewUser(in.Username, in.Email, s.now())
	user.ProfileImage = strings.TrimSpace(in.ProfileImage)
	user.Bio = in.Bio
	if len(user.Bio) > maxBioLen {
		return nil, models.NewFieldValidationError("bio", "Bio too long (max 500 characters)")
	}
	if err := validation.User(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.NewFieldValidationError("id", "User id is required")
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewFieldValidationError("username", "Username is required")
	}
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (user *models.User, err error) {
	ctx, span := observability.GetTraceLayer().TraceServiceCall(ctx, "UserService", "UpdateProfile")
	defer func() { observability.EndSpan(span, err) }()

	user, err = s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		user.Username = strings.TrimSpace(in.Username)
	}
	if in.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	if in.ProfileImage != nil {
		user.ProfileImage = strings.TrimSpace(*in.ProfileImage)
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewFieldValidationError("bio", "Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if err := validation.User(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListFavoriteRecipes resolves the user's favorites to recipes in the order
// they were favorited. Favorites whose recipe was deleted are skipped.
func (s *UserService) ListFavoriteRecipes(ctx context.Context, userID string, limit, offset int) ([]*models.Recipe, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.favoriteRepo.ListRecipes(ctx, userID, limit, offset)
}
