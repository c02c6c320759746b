package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reviewshelf/reviewshelf-server/internal/auth"
	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	domainerrors "github.com/reviewshelf/reviewshelf-server/internal/errors"
	"github.com/reviewshelf/reviewshelf-server/internal/media/images"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

// UserService manages user accounts and profiles.
type UserService struct {
	store    *store.Store
	avatars  *images.Processor
	sessions *SessionService
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	store *store.Store,
	avatarProcessor *images.Processor,
	sessionService *SessionService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		store:    store,
		avatars:  avatarProcessor,
		sessions: sessionService,
		logger:   logger,
	}
}

// UpdateProfileRequest contains a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ChangePasswordRequest contains a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=1024"`
}

// GetUser returns a user with the password hash stripped.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// GetProfile returns a user's public profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.AsProfile(), nil
}

// UpdateProfile applies a partial update to the user's own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.Conflict("email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user.Sanitized(), nil
}

// ChangePassword verifies the current password, sets the new one, and
// revokes every other session the user holds.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return domainerrors.InvalidCredentials("current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	revoked, err := s.sessions.RevokeAllUserSessions(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to revoke sessions after password change", "user_id", userID, "error", err)
	}

	s.logger.Info("password changed", "user_id", userID, "sessions_revoked", revoked)

	return nil
}

// SetProfileImage stores an uploaded avatar for the user.
func (s *UserService) SetProfileImage(ctx context.Context, userID string, data []byte) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	info, err := s.avatars.Process(userID, data)
	if err != nil {
		return nil, domainerrors.Validation("unsupported or corrupt image").WithCause(err)
	}

	if user.ProfileImage != nil && user.ProfileImage.Filename != info.Filename {
		_ = s.avatars.Remove(user.ProfileImage)
	}

	user.ProfileImage = info
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user.Sanitized(), nil
}

// RemoveProfileImage deletes the user's avatar, if any.
func (s *UserService) RemoveProfileImage(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ProfileImage != nil {
		if err := s.avatars.Remove(user.ProfileImage); err != nil {
			s.logger.Warn("failed to remove profile image", "user_id", userID, "error", err)
		}
		user.ProfileImage = nil
		if err := s.store.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return user.Sanitized(), nil
}
