package service

import (
	"context"
	"time"

	"habithold/internal/model"
	"habithold/internal/repository"
	"habithold/internal/scoring"
)

// PersonalStats is the dashboard payload for one user.
type PersonalStats struct {
	Summary  scoring.PersonalSummary           `json:"summary"`
	Points   int                               `json:"points"`
	Week     [model.DaysPerWeek]scoring.GridCell `json:"week"`
	Streak   bool                              `json:"perfectWeek"`
	LastWeek struct {
		Title       string `json:"title,omitempty"`
		Completions int    `json:"completions"`
	} `json:"lastWeek"`
}

// StatsService computes personal habit statistics and activity grids.
type StatsService struct {
	users *repository.UserRepository
	now   func() time.Time
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(users *repository.UserRepository) *StatsService {
	return &StatsService{users: users, now: time.Now}
}

// Personal returns the user's dashboard stats for the current week.
func (s *StatsService) Personal(ctx context.Context, userID string) (*PersonalStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &PersonalStats{
		Summary: scoring.Personal(user.Habits),
		Points:  scoring.Points(user.Habits),
		Week:    scoring.WeekGrid(user.HabitHistory, weekSunday(now)),
		Streak:  perfectWeek(user.Habits),
	}
	stats.LastWeek.Title = user.LastWeekTitle
	stats.LastWeek.Completions = user.LastWeekCompletions
	return stats, nil
}

// Grid returns the user's daily activity cells for the last n weeks,
// oldest day first, ending with the current display week.
func (s *StatsService) Grid(ctx context.Context, userID string, weeks int) ([]scoring.GridCell, error) {
	if weeks < 1 {
		weeks = 1
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := weekSunday(s.now()).AddDate(0, 0, -model.DaysPerWeek*(weeks-1))
	return scoring.RangeGrid(user.HabitHistory, start, weeks), nil
}

// Totals returns good and bad completion counts over the last n days,
// today included.
func (s *StatsService) Totals(ctx context.Context, userID string, days int) (good, bad int, err error) {
	if days < 1 {
		days = 1
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	start := s.now().AddDate(0, 0, -(days - 1))
	good, bad = scoring.WindowTotals(user.HabitHistory, start, days)
	return good, bad, nil
}

// weekSunday returns the Sunday that starts the display week of t.
func weekSunday(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).
		AddDate(0, 0, -int(t.Weekday()))
}

// perfectWeek reports whether the user has habits and every one of
// them hit all seven days.
func perfectWeek(habits map[string]model.Habit) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		if !h.PerfectWeek() {
			return false
		}
	}
	return true
}
