package repository

import (
	"context"
	"errors"
	"fmt"

	"habithold/internal/docstore"
	"habithold/internal/model"
)

// HabitRepository writes habit state to the user document and, when
// the user belongs to a kingdom, to the kingdom mirror in the same
// atomic batch. The mirror is what allies and the weekly battle read,
// so the two copies must never diverge.
type HabitRepository struct {
	store docstore.Store
}

// NewHabitRepository creates a new HabitRepository instance.
func NewHabitRepository(store docstore.Store) *HabitRepository {
	return &HabitRepository{store: store}
}

func mirrorUpdates(userID, code string, userFields, kingdomFields []docstore.Field) []docstore.DocUpdate {
	updates := []docstore.DocUpdate{{
		Collection: docstore.Users,
		ID:         userID,
		Fields:     userFields,
	}}
	if code != "" {
		updates = append(updates, docstore.DocUpdate{
			Collection: docstore.Kingdoms,
			ID:         code,
			Fields:     kingdomFields,
		})
	}
	return updates
}

func wrapMirrorErr(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// SaveHabit writes one habit under its name in the user document and
// the kingdom mirror.
func (r *HabitRepository) SaveHabit(ctx context.Context, userID, code, name string, h model.Habit) error {
	err := r.store.Apply(ctx, mirrorUpdates(userID, code,
		[]docstore.Field{
			{Path: []string{"habits", name}, Value: h},
		},
		[]docstore.Field{
			{Path: []string{"habits", userID, name}, Value: h},
		},
	)...)
	if err != nil {
		return wrapMirrorErr("save habit", err)
	}
	return nil
}

// DeleteHabit removes a habit from both copies.
func (r *HabitRepository) DeleteHabit(ctx context.Context, userID, code, name string) error {
	err := r.store.Apply(ctx, mirrorUpdates(userID, code,
		[]docstore.Field{
			{Path: []string{"habits", name}, Remove: true},
		},
		[]docstore.Field{
			{Path: []string{"habits", userID, name}, Remove: true},
		},
	)...)
	if err != nil {
		return wrapMirrorErr("delete habit", err)
	}
	return nil
}

// RenameHabit moves a habit to a new name in both copies.
func (r *HabitRepository) RenameHabit(ctx context.Context, userID, code, oldName, newName string, h model.Habit) error {
	err := r.store.Apply(ctx, mirrorUpdates(userID, code,
		[]docstore.Field{
			{Path: []string{"habits", oldName}, Remove: true},
			{Path: []string{"habits", newName}, Value: h},
		},
		[]docstore.Field{
			{Path: []string{"habits", userID, oldName}, Remove: true},
			{Path: []string{"habits", userID, newName}, Value: h},
		},
	)...)
	if err != nil {
		return wrapMirrorErr("rename habit", err)
	}
	return nil
}

// RecordCompletion writes an updated habit together with the day's
// history tally and the member's cumulative progress, all in one batch.
func (r *HabitRepository) RecordCompletion(ctx context.Context, userID, code, name string, h model.Habit, dateKey string, day model.DayTally, progress model.DayTally) error {
	err := r.store.Apply(ctx, mirrorUpdates(userID, code,
		[]docstore.Field{
			{Path: []string{"habits", name}, Value: h},
			{Path: []string{"habitHistory", dateKey}, Value: day},
		},
		[]docstore.Field{
			{Path: []string{"habits", userID, name}, Value: h},
			{Path: []string{"habitHistory", userID, dateKey}, Value: day},
			{Path: []string{"progress", userID}, Value: progress},
		},
	)...)
	if err != nil {
		return wrapMirrorErr("record completion", err)
	}
	return nil
}
