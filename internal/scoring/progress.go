// Package scoring implements the pure calculators behind the battle:
// live progress, weekly rollups, week identifiers, and history grids.
// Everything here is deterministic and side-effect free.
package scoring

import (
	"math"

	"habithold/internal/model"
)

// BattleProgress computes the positive faction's standing from the
// full set of members' habits.
//
// Each habit contributes completed*difficulty to the score, positive
// for good habits and negative for bad ones, and frequency*difficulty
// to the maximum regardless of type. The result is
// round(100*score/max), clamped to [0,100]. Zero members or zero total
// weight yields 0.
func BattleProgress(members []string, habitsByMember map[string]map[string]model.Habit) int {
	score, maxScore := 0, 0
	for _, uid := range members {
		for _, h := range habitsByMember[uid] {
			delta := h.Completed * h.Difficulty
			if h.Type == model.HabitGood {
				score += delta
			} else {
				score -= delta
			}
			maxScore += h.Frequency * h.Difficulty
		}
	}
	return clampPercent(roundPercent(score, maxScore))
}

func roundPercent(score, maxScore int) int {
	if maxScore == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
