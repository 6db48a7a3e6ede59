package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"habithold/internal/docstore"
	"habithold/internal/model"
)

// ErrAlreadyRecorded is returned when a week's battle outcome has
// already been written to the kingdom ledger.
var ErrAlreadyRecorded = errors.New("week outcome already recorded")

// KingdomRepository handles kingdom document persistence.
type KingdomRepository struct {
	store docstore.Store
}

// NewKingdomRepository creates a new KingdomRepository instance.
func NewKingdomRepository(store docstore.Store) *KingdomRepository {
	return &KingdomRepository{store: store}
}

// Create stores a new kingdom document keyed by its invite code.
func (r *KingdomRepository) Create(ctx context.Context, kingdom *model.Kingdom) error {
	if err := r.store.Set(ctx, docstore.Kingdoms, kingdom.Code, kingdom); err != nil {
		return fmt.Errorf("failed to create kingdom: %w", err)
	}
	return nil
}

// GetByCode retrieves a kingdom by invite code.
// Returns ErrKingdomNotFound if no such kingdom exists.
func (r *KingdomRepository) GetByCode(ctx context.Context, code string) (*model.Kingdom, error) {
	snap, err := r.store.Get(ctx, docstore.Kingdoms, code)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrKingdomNotFound
		}
		return nil, fmt.Errorf("failed to get kingdom: %w", err)
	}

	var kingdom model.Kingdom
	if err := json.Unmarshal(snap.Data, &kingdom); err != nil {
		return nil, fmt.Errorf("failed to decode kingdom %s: %w", code, err)
	}
	return &kingdom, nil
}

// UpdateProfile updates the kingdom's name and banner image.
func (r *KingdomRepository) UpdateProfile(ctx context.Context, code, name, pfp string) error {
	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Kingdoms,
		ID:         code,
		Fields: []docstore.Field{
			{Path: []string{"name"}, Value: name},
			{Path: []string{"pfp"}, Value: pfp},
		},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrKingdomNotFound
		}
		return fmt.Errorf("failed to update kingdom profile: %w", err)
	}
	return nil
}

// AddMember appends a user to the member list and seeds the per-member
// mirror containers with the user's current habits.
func (r *KingdomRepository) AddMember(ctx context.Context, code string, members []string, userID string, habits map[string]model.Habit) error {
	if habits == nil {
		habits = map[string]model.Habit{}
	}
	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Kingdoms,
		ID:         code,
		Fields: []docstore.Field{
			{Path: []string{"members"}, Value: members},
			{Path: []string{"habits", userID}, Value: habits},
			{Path: []string{"progress", userID}, Value: model.DayTally{}},
			{Path: []string{"habitHistory", userID}, Value: map[string]model.DayTally{}},
		},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrKingdomNotFound
		}
		return fmt.Errorf("failed to add kingdom member: %w", err)
	}
	return nil
}

// RemoveMember writes the shrunken member list and drops the member's
// mirror containers.
func (r *KingdomRepository) RemoveMember(ctx context.Context, code string, members []string, userID string) error {
	err := r.store.Apply(ctx, docstore.DocUpdate{
		Collection: docstore.Kingdoms,
		ID:         code,
		Fields: []docstore.Field{
			{Path: []string{"members"}, Value: members},
			{Path: []string{"habits", userID}, Remove: true},
			{Path: []string{"progress", userID}, Remove: true},
			{Path: []string{"habitHistory", userID}, Remove: true},
		},
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrKingdomNotFound
		}
		return fmt.Errorf("failed to remove kingdom member: %w", err)
	}
	return nil
}

// RecordWeeklyOutcome writes one closed week into the kingdom ledger.
// The weeklyWinners guard makes the write run at most once per week
// key; a second attempt returns ErrAlreadyRecorded.
func (r *KingdomRepository) RecordWeeklyOutcome(ctx context.Context, code, weekKey, winner string, stats model.WeekStats, title string, medievalWins, vampireWins, winStreak int) error {
	fields := []docstore.Field{
		{Path: []string{"weeklyWinners", weekKey}, Value: winner},
		{Path: []string{"weeklyStats", weekKey}, Value: stats},
		{Path: []string{"lastWeekWinner"}, Value: winner},
		{Path: []string{"lastWeekStats"}, Value: stats},
		{Path: []string{"medievalWins"}, Value: medievalWins},
		{Path: []string{"vampireWins"}, Value: vampireWins},
		{Path: []string{"winStreak"}, Value: winStreak},
	}
	if title != "" {
		fields = append(fields, docstore.Field{Path: []string{"weeklyComputedTitles", weekKey}, Value: title})
	}

	err := r.store.ApplyIfAbsent(ctx,
		docstore.Guard{Collection: docstore.Kingdoms, ID: code, Path: []string{"weeklyWinners", weekKey}},
		docstore.DocUpdate{
			Collection: docstore.Kingdoms,
			ID:         code,
			Fields:     fields,
		},
	)
	if err != nil {
		if errors.Is(err, docstore.ErrGuardExists) {
			return ErrAlreadyRecorded
		}
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrKingdomNotFound
		}
		return fmt.Errorf("failed to record weekly outcome for kingdom %s: %w", code, err)
	}
	return nil
}

// Watch subscribes to changes of one kingdom document.
func (r *KingdomRepository) Watch(ctx context.Context, code string, fn func(*model.Kingdom)) (func(), error) {
	cancel, err := r.store.Subscribe(ctx, docstore.Kingdoms, code, func(snap docstore.Snapshot) {
		var kingdom model.Kingdom
		if err := json.Unmarshal(snap.Data, &kingdom); err != nil {
			return
		}
		fn(&kingdom)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch kingdom %s: %w", code, err)
	}
	return cancel, nil
}
