package scoring

import (
	"sort"

	"habithold/internal/model"
)

// OverallSummary condenses a kingdom's whole weekly ledger.
type OverallSummary struct {
	Weeks         int
	AvgPercent    int
	MedievalWins  int
	VampireWins   int
	TopMVP        string
	TopHabit      string
	MostNeglected string
}

// Summarize walks every recorded week and aggregates average percent,
// win counts, and the most frequent MVP, top habit, and neglected
// habit. Frequency ties resolve alphabetically.
func Summarize(weeklyStats map[string]model.WeekStats) OverallSummary {
	var (
		s            OverallSummary
		totalPercent int
		mvps         = map[string]int{}
		tops         = map[string]int{}
		neglects     = map[string]int{}
	)
	for _, stats := range weeklyStats {
		s.Weeks++
		totalPercent += stats.Percent
		if stats.Winner == model.WinnerKingdom {
			s.MedievalWins++
		} else {
			s.VampireWins++
		}
		if stats.MVPName != "" {
			mvps[stats.MVPName]++
		}
		for _, h := range stats.TopHabits {
			tops[h]++
		}
		for _, h := range stats.Neglected {
			neglects[h]++
		}
	}
	if s.Weeks > 0 {
		s.AvgPercent = roundPercent(totalPercent, s.Weeks*100)
	}
	s.TopMVP = mostFrequent(mvps)
	s.TopHabit = mostFrequent(tops)
	s.MostNeglected = mostFrequent(neglects)
	return s
}

func mostFrequent(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
