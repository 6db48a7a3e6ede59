package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"habithold/internal/model"
)

func perfect(completed, freq, diff int) model.Habit {
	h := good(completed, freq, diff)
	for i := range h.Week {
		h.Week[i] = true
	}
	return h
}

func TestWeeklyRollupWinner(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{
			"run": good(7, 7, 1),
		}},
		{UID: "b", Name: "Bob", Habits: map[string]model.Habit{
			"read": good(0, 7, 1),
		}},
	}

	r := WeeklyRollup(members, "a")
	assert.Equal(t, 50, r.Percent)
	assert.Equal(t, model.WinnerKingdom, r.Winner)
	assert.Equal(t, "Alice", r.MVP.Name)
	assert.Equal(t, 7, r.MyStats.Completed)
	assert.Equal(t, 50, r.MyPercent)
	assert.Equal(t, 50, r.MVPPercent)
}

func TestWeeklyRollupVampiresBelowHalf(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{
			"run": good(3, 7, 1),
		}},
	}
	r := WeeklyRollup(members, "a")
	assert.Equal(t, 43, r.Percent)
	assert.Equal(t, model.WinnerVampires, r.Winner)
}

func TestWeeklyRollupMVPTieKeepsFirstMember(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{"run": good(2, 7, 1)}},
		{UID: "b", Name: "Bob", Habits: map[string]model.Habit{"read": good(2, 7, 1)}},
	}
	r := WeeklyRollup(members, "b")
	assert.Equal(t, "a", r.MVP.UID)
}

func TestWeeklyRollupBadHabitsCountAgainstMVP(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{
			"run":   good(5, 7, 1),
			"smoke": bad(4, 1),
		}},
		{UID: "b", Name: "Bob", Habits: map[string]model.Habit{
			"read": good(2, 7, 1),
		}},
	}
	r := WeeklyRollup(members, "a")
	assert.Equal(t, "b", r.MVP.UID)
	assert.Equal(t, 1, r.MyStats.Net())
}

func TestWeeklyRollupStreak(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{
			"run":  perfect(7, 7, 1),
			"read": perfect(7, 7, 1),
		}},
		{UID: "b", Name: "Bob", Habits: map[string]model.Habit{
			"sleep": good(1, 7, 1),
		}},
	}

	r := WeeklyRollup(members, "a")
	assert.True(t, r.Streak)

	r = WeeklyRollup(members, "b")
	assert.False(t, r.Streak)
}

func TestWeeklyRollupNoHabitsNoStreak(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{}},
	}
	r := WeeklyRollup(members, "a")
	assert.False(t, r.Streak)
	assert.Equal(t, 0, r.Percent)
	assert.Equal(t, model.WinnerVampires, r.Winner)
}

func TestWeeklyRollupZeroDifficultyCountsAsOne(t *testing.T) {
	members := []MemberProfile{
		{UID: "a", Name: "Alice", Habits: map[string]model.Habit{
			"legacy": {Type: model.HabitGood, Frequency: 7, Completed: 7},
		}},
	}
	r := WeeklyRollup(members, "a")
	assert.Equal(t, 100, r.Percent)
}
