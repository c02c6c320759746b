package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
)

// User Operations
//
// Users ride on the generic Entity with a case-insensitive email index.
// These wrappers translate the generic sentinels to user-specific ones.

// CreateUser creates a new user.
// Returns ErrEmailExists when the email is already registered.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.Users.Create(ctx, user.ID, user)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created", "id", user.ID, "email", normalizeEmail(user.Email))
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.Touch()
	err := s.Users.Update(ctx, user.ID, user)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		if errors.Is(err, ErrAlreadyExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser deletes a user by ID.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// UserExistsByEmail reports whether a user with this email exists.
func (s *Store) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
