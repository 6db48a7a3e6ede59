// Package repository provides data access over the document store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"habithold/internal/docstore"
	"habithold/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrKingdomNotFound = errors.New("kingdom not found")
)

// UserRepository handles user document persistence.
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create stores a new user profile document.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.store.Set(ctx, docstore.Users, user.ID, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	snap, err := r.store.Get(ctx, docstore.Users, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(snap.Data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return &user, nil
}

// UpdateProfile updates the display name and avatar of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, displayName, avatarURL string) error {
	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Users,
		ID:         id,
		Fields: []docstore.Field{
			{Path: []string{"displayName"}, Value: displayName},
			{Path: []string{"avatarUrl"}, Value: avatarURL},
		},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// SetKingdom points the user at a kingdom code, or clears the pointer
// when code is empty.
func (r *UserRepository) SetKingdom(ctx context.Context, id, code string) error {
	field := docstore.Field{Path: []string{"kingdom"}, Value: code}
	if code == "" {
		field = docstore.Field{Path: []string{"kingdom"}, Remove: true}
	}

	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Users,
		ID:         id,
		Fields:     []docstore.Field{field},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set user kingdom: %w", err)
	}
	return nil
}

// SetMotivation writes the one-slot motivation inbox.
func (r *UserRepository) SetMotivation(ctx context.Context, id string, m model.Motivation) error {
	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Users,
		ID:         id,
		Fields: []docstore.Field{
			{Path: []string{"motivation"}, Value: m},
		},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set motivation: %w", err)
	}
	return nil
}

// ClearMotivation removes the motivation inbox entry. Clearing an
// already-empty inbox is not an error.
func (r *UserRepository) ClearMotivation(ctx context.Context, id string) error {
	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Users,
		ID:         id,
		Fields: []docstore.Field{
			{Path: []string{"motivation"}, Remove: true},
		},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to clear motivation: %w", err)
	}
	return nil
}

// RecordWeekOutcome writes the user's personal ledger entries for a
// closed week. The guard path keeps the write idempotent per week.
func (r *UserRepository) RecordWeekOutcome(ctx context.Context, id, weekKey, title string, completions int) error {
	err := r.store.ApplyIfAbsent(ctx,
		docstore.Guard{Collection: docstore.Users, ID: id, Path: []string{"weeklyTitles", weekKey}},
		docstore.DocUpdate{
			Collection: docstore.Users,
			ID:         id,
			Fields: []docstore.Field{
				{Path: []string{"weeklyTitles", weekKey}, Value: title},
				{Path: []string{"weeklyCompletions", weekKey}, Value: completions},
				{Path: []string{"lastWeekTitle"}, Value: title},
				{Path: []string{"lastWeekCompletions"}, Value: completions},
			},
		},
	)
	if err != nil {
		if errors.Is(err, docstore.ErrGuardExists) {
			return nil
		}
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to record week outcome for user %s: %w", id, err)
	}
	return nil
}

// Watch subscribes to changes of one user document. The callback
// receives the decoded user after every write.
func (r *UserRepository) Watch(ctx context.Context, id string, fn func(*model.User)) (func(), error) {
	cancel, err := r.store.Subscribe(ctx, docstore.Users, id, func(snap docstore.Snapshot) {
		var user model.User
		if err := json.Unmarshal(snap.Data, &user); err != nil {
			return
		}
		fn(&user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch user %s: %w", id, err)
	}
	return cancel, nil
}
