package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"habithold/internal/model"
	"habithold/internal/repository"
	"habithold/internal/scoring"
)

// Common errors for habit operations.
var (
	ErrEmptyHabitName    = errors.New("habit name must not be empty")
	ErrHabitExists       = errors.New("habit with that name already exists")
	ErrHabitNotFound     = errors.New("habit not found")
	ErrInvalidHabitType  = errors.New("habit type must be good or bad")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 3")
	ErrInvalidFrequency  = errors.New("good habits need a weekly frequency of at least 1")
	ErrInvalidDay        = errors.New("day index must be between 0 and 6")
)

// HabitService handles habit lifecycle and completion tracking. Every
// write goes through the mirror repository so the user document and
// the kingdom copy stay consistent.
type HabitService struct {
	users  *repository.UserRepository
	habits *repository.HabitRepository
	now    func() time.Time
}

// NewHabitService creates a new HabitService instance.
func NewHabitService(users *repository.UserRepository, habits *repository.HabitRepository) *HabitService {
	return &HabitService{
		users:  users,
		habits: habits,
		now:    time.Now,
	}
}

func validateHabit(h *model.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return ErrEmptyHabitName
	}
	if h.Type != model.HabitGood && h.Type != model.HabitBad {
		return ErrInvalidHabitType
	}
	if h.Difficulty < model.MinDifficulty || h.Difficulty > model.MaxDifficulty {
		return ErrInvalidDifficulty
	}
	if h.Type == model.HabitGood && h.Frequency < 1 {
		return ErrInvalidFrequency
	}
	if h.Type == model.HabitBad {
		// Bad habits carry no target and add nothing to the weekly
		// maximum score.
		h.Frequency = 0
	}
	return nil
}

// Add creates a new habit for the user. Completion state always starts
// at zero regardless of what the caller sent.
func (s *HabitService) Add(ctx context.Context, userID string, h model.Habit) (*model.Habit, error) {
	if err := validateHabit(&h); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, exists := user.Habits[h.Name]; exists {
		return nil, ErrHabitExists
	}

	h.Completed = 0
	h.Week = [model.DaysPerWeek]bool{}
	h.WeekOf = scoring.WeekKey(s.now())

	if err := s.habits.SaveHabit(ctx, userID, user.Kingdom, h.Name, h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Edit updates a habit's settings, moving it to a new name when the
// name changed. Completion state is preserved.
func (s *HabitService) Edit(ctx context.Context, userID, name string, updated model.Habit) (*model.Habit, error) {
	if err := validateHabit(&updated); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, ok := user.Habits[name]
	if !ok {
		return nil, ErrHabitNotFound
	}

	updated.Completed = current.Completed
	updated.Week = current.Week
	updated.WeekOf = current.WeekOf
	if updated.Type != current.Type {
		// Switching type resets the counter so good points never carry
		// over into bad ones or vice versa.
		updated.Completed = 0
		updated.Week = [model.DaysPerWeek]bool{}
	}

	if updated.Name != name {
		if _, exists := user.Habits[updated.Name]; exists {
			return nil, ErrHabitExists
		}
		if err := s.habits.RenameHabit(ctx, userID, user.Kingdom, name, updated.Name, updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	if err := s.habits.SaveHabit(ctx, userID, user.Kingdom, name, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a habit from the user and the kingdom mirror.
func (s *HabitService) Delete(ctx context.Context, userID, name string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := user.Habits[name]; !ok {
		return ErrHabitNotFound
	}
	return s.habits.DeleteHabit(ctx, userID, user.Kingdom, name)
}

// Mark adjusts a habit's completion counter by +1 or -1 and records
// the change in the day history and the member's battle progress.
func (s *HabitService) Mark(ctx context.Context, userID, name string, delta int) (*model.Habit, error) {
	if delta != 1 && delta != -1 {
		return nil, fmt.Errorf("mark delta must be +1 or -1, got %d", delta)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, ok := user.Habits[name]
	if !ok {
		return nil, ErrHabitNotFound
	}

	now := s.now()
	h.ResetIfStale(scoring.WeekKey(now))

	// An un-mark on an empty counter changes nothing.
	if delta < 0 && h.Completed == 0 {
		return &h, nil
	}
	h.Mark(delta)

	return s.record(ctx, user, name, h, now, delta)
}

// ToggleDay flips the "done today" flag for one day of the current
// week, moving the completion counter in lockstep. Day grids left over
// from an earlier week are cleared first.
func (s *HabitService) ToggleDay(ctx context.Context, userID, name string, day int, done bool) (*model.Habit, error) {
	if day < 0 || day >= model.DaysPerWeek {
		return nil, ErrInvalidDay
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, ok := user.Habits[name]
	if !ok {
		return nil, ErrHabitNotFound
	}

	now := s.now()
	reset := h.ResetIfStale(scoring.WeekKey(now))
	changed := h.SetDay(day, done)
	if !changed && !reset {
		return &h, nil
	}

	delta := 0
	if changed {
		delta = 1
		if !done {
			delta = -1
		}
	}
	return s.record(ctx, user, name, h, now, delta)
}

// record persists the updated habit plus the day tally and the
// member's cumulative progress derived from the updated habit map.
func (s *HabitService) record(ctx context.Context, user *model.User, name string, h model.Habit, now time.Time, delta int) (*model.Habit, error) {
	dateKey := scoring.DayKey(now)
	day := user.HabitHistory[dateKey]
	if delta != 0 {
		day.Bump(h.Type, delta)
	}

	user.Habits[name] = h
	progress := memberProgress(user.Habits)

	if err := s.habits.RecordCompletion(ctx, user.ID, user.Kingdom, name, h, dateKey, day, progress); err != nil {
		return nil, err
	}
	return &h, nil
}

// memberProgress sums completions by type across the habit map.
func memberProgress(habits map[string]model.Habit) model.DayTally {
	var t model.DayTally
	for _, h := range habits {
		if h.Type == model.HabitGood {
			t.Good += h.Completed
		} else {
			t.Bad += h.Completed
		}
	}
	return t
}
