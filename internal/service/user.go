// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"habithold/internal/model"
	"habithold/internal/repository"
)

// Common validation errors.
var (
	ErrEmptyDisplayName = errors.New("display name must not be empty")
)

// UserService handles user profile operations.
type UserService struct {
	users *repository.UserRepository
	now   func() time.Time
}

// NewUserService creates a new UserService instance.
func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{
		users: users,
		now:   time.Now,
	}
}

// Register ensures a user profile exists, creating one if necessary.
// Returns the user and whether it was newly created.
func (s *UserService) Register(ctx context.Context, id, displayName, email, avatarURL string) (*model.User, bool, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, false, ErrEmptyDisplayName
	}

	existing, err := s.users.GetByID(ctx, id)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}

	user := model.NewUser(id, displayName, email, avatarURL, s.now())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Get retrieves a user profile.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the display name and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, id, displayName, avatarURL string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return ErrEmptyDisplayName
	}
	return s.users.UpdateProfile(ctx, id, displayName, avatarURL)
}
