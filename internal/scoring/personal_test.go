package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habithold/internal/model"
)

// named keys a habit map the way documents store it, with each
// habit's Name matching its key.
func named(habits map[string]model.Habit) map[string]model.Habit {
	for name, h := range habits {
		h.Name = name
		habits[name] = h
	}
	return habits
}

func TestPersonal(t *testing.T) {
	habits := named(map[string]model.Habit{
		"run":   good(5, 7, 1),
		"read":  good(2, 7, 1),
		"smoke": bad(3, 2),
	})

	p := Personal(habits)
	assert.Equal(t, 7, p.TotalGood)
	assert.Equal(t, 3, p.TotalBad)
	assert.Equal(t, 4, p.Net())
	assert.Equal(t, "run", p.BestHabit)
	assert.Equal(t, "read", p.WorstHabit)
}

func TestPersonalEmpty(t *testing.T) {
	p := Personal(nil)
	assert.Zero(t, p.TotalGood)
	assert.Empty(t, p.BestHabit)
	assert.Empty(t, p.WorstHabit)
}

func TestPersonalTiesResolveByName(t *testing.T) {
	habits := named(map[string]model.Habit{
		"b": good(2, 7, 1),
		"a": good(2, 7, 1),
	})
	p := Personal(habits)
	assert.Equal(t, "a", p.BestHabit)
	assert.Equal(t, "a", p.WorstHabit)
}

func TestPoints(t *testing.T) {
	habits := map[string]model.Habit{
		"run":   good(4, 7, 3),
		"smoke": bad(2, 2),
	}
	assert.Equal(t, 8, Points(habits))
	assert.Equal(t, 0, Points(nil))
}

func TestTopAndNeglected(t *testing.T) {
	habits := map[string]model.Habit{
		"run":   good(5, 7, 1),
		"read":  good(5, 7, 1),
		"pray":  good(0, 7, 1),
		"smoke": bad(2, 1),
	}

	top, neglected := TopAndNeglected(habits)
	assert.Equal(t, []string{"read", "run"}, top)
	assert.Equal(t, []string{"pray"}, neglected)

	top, neglected = TopAndNeglected(nil)
	assert.Nil(t, top)
	assert.Nil(t, neglected)
}

func TestWeekGrid(t *testing.T) {
	sunday := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	history := map[string]model.DayTally{
		"2025-06-15": {Good: 3, Bad: 1},
		"2025-06-17": {Good: 0, Bad: 0},
		"2025-06-21": {Good: 0, Bad: 2},
	}

	cells := WeekGrid(history, sunday)
	assert.Equal(t, GridCell{Net: 2, Recorded: true}, cells[0])
	assert.Equal(t, GridCell{}, cells[1])
	// A recorded net-zero day is distinguishable from a missing one.
	assert.Equal(t, GridCell{Net: 0, Recorded: true}, cells[2])
	assert.Equal(t, GridCell{Net: -2, Recorded: true}, cells[6])
}

func TestRangeGrid(t *testing.T) {
	start := time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)
	history := map[string]model.DayTally{
		"2025-06-08": {Good: 1},
		"2025-06-15": {Good: 2},
	}

	cells := RangeGrid(history, start, 2)
	assert.Len(t, cells, 14)
	assert.Equal(t, 1, cells[0].Net)
	assert.Equal(t, 2, cells[7].Net)
}

func TestWindowTotals(t *testing.T) {
	start := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	history := map[string]model.DayTally{
		"2025-06-15": {Good: 3, Bad: 1},
		"2025-06-16": {Good: 2, Bad: 2},
		"2025-06-30": {Good: 9, Bad: 9},
	}

	good, bad := WindowTotals(history, start, 7)
	assert.Equal(t, 5, good)
	assert.Equal(t, 3, bad)
}

func TestWeekNets(t *testing.T) {
	sunday := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	history := map[string]model.DayTally{
		"2025-06-16": {Good: 4, Bad: 1},
	}
	assert.Equal(t, []int{0, 3, 0, 0, 0, 0, 0}, WeekNets(history, sunday))
}

func TestSummarize(t *testing.T) {
	stats := map[string]model.WeekStats{
		"2025-W1": {Percent: 80, Winner: model.WinnerKingdom, MVPName: "Alice", TopHabits: []string{"run"}, Neglected: []string{"pray"}},
		"2025-W2": {Percent: 40, Winner: model.WinnerVampires, MVPName: "Alice", TopHabits: []string{"run"}, Neglected: []string{"read"}},
		"2025-W3": {Percent: 60, Winner: model.WinnerKingdom, MVPName: "Bob", TopHabits: []string{"read"}, Neglected: []string{"read"}},
	}

	s := Summarize(stats)
	assert.Equal(t, 3, s.Weeks)
	assert.Equal(t, 60, s.AvgPercent)
	assert.Equal(t, 2, s.MedievalWins)
	assert.Equal(t, 1, s.VampireWins)
	assert.Equal(t, "Alice", s.TopMVP)
	assert.Equal(t, "run", s.TopHabit)
	assert.Equal(t, "read", s.MostNeglected)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Weeks)
	assert.Zero(t, s.AvgPercent)
	assert.Empty(t, s.TopMVP)
}
