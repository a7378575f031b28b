package service

import (
	"context"

	"readrover/internal/models"
	"readrover/internal/repository"
)

type UserService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// UpdateProfileInput carries optional profile edits; nil fields are left
// as-is, so an explicit empty string clears a bio or avatar.
type UpdateProfileInput struct {
	UserID   uint
	Username *string
	Bio      *string
	Avatar   *string
}

func NewUserService(userRepo repository.UserRepository, notificationRepo repository.NotificationRepository) *UserService {
	return &UserService{userRepo: userRepo, notificationRepo: notificationRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.Search(ctx, query, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxUsernameLen = 30

	if in.Username != nil {
		if *in.Username == "" {
			return nil, models.NewValidationError("Username cannot be empty")
		}
		if len(*in.Username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 30 characters)")
		}
		user.Username = *in.Username
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) ListNotifications(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *UserService) MarkNotificationRead(ctx context.Context, userID, notificationID uint) error {
	return s.notificationRepo.MarkRead(ctx, userID, notificationID)
}
