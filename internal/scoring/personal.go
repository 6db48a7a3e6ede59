package scoring

import (
	"sort"

	"habithold/internal/model"
)

// PersonalSummary aggregates a single user's habit state.
type PersonalSummary struct {
	TotalGood  int
	TotalBad   int
	BestHabit  string
	WorstHabit string
}

// Net is total good completions minus total bad ones.
func (p PersonalSummary) Net() int { return p.TotalGood - p.TotalBad }

// Personal summarizes a user's habits: completion totals by type and
// the most/least completed habit. Habits are visited in name order so
// ties resolve deterministically.
func Personal(habits map[string]model.Habit) PersonalSummary {
	var (
		p          PersonalSummary
		bestCount  int
		worstCount int
		first      = true
	)
	for _, name := range sortedHabitNames(habits) {
		h := habits[name]
		if h.Type == model.HabitGood {
			p.TotalGood += h.Completed
		} else {
			p.TotalBad += h.Completed
		}
		if first || h.Completed > bestCount {
			p.BestHabit, bestCount = h.Name, h.Completed
		}
		if first || h.Completed < worstCount {
			p.WorstHabit, worstCount = h.Name, h.Completed
		}
		first = false
	}
	return p
}

// Points scores a user's habits for the leaderboard:
// sum(completed*difficulty) over good habits minus the same over bad.
func Points(habits map[string]model.Habit) int {
	pts := 0
	for _, h := range habits {
		d := h.Difficulty
		if d == 0 {
			d = 1
		}
		if h.Type == model.HabitGood {
			pts += h.Completed * d
		} else {
			pts -= h.Completed * d
		}
	}
	return pts
}

// TopAndNeglected returns the names of the habits with the highest and
// lowest completion counts, in name order. Both lists are empty when
// there are no habits.
func TopAndNeglected(habits map[string]model.Habit) (top, neglected []string) {
	names := sortedHabitNames(habits)
	if len(names) == 0 {
		return nil, nil
	}
	maxC, minC := habits[names[0]].Completed, habits[names[0]].Completed
	for _, n := range names[1:] {
		c := habits[n].Completed
		if c > maxC {
			maxC = c
		}
		if c < minC {
			minC = c
		}
	}
	for _, n := range names {
		if habits[n].Completed == maxC {
			top = append(top, n)
		}
		if habits[n].Completed == minC {
			neglected = append(neglected, n)
		}
	}
	return top, neglected
}

func sortedHabitNames(habits map[string]model.Habit) []string {
	names := make([]string, 0, len(habits))
	for n := range habits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
