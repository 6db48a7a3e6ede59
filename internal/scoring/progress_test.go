package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"habithold/internal/model"
)

func good(completed, freq, diff int) model.Habit {
	return model.Habit{Type: model.HabitGood, Completed: completed, Frequency: freq, Difficulty: diff}
}

func bad(completed, diff int) model.Habit {
	return model.Habit{Type: model.HabitBad, Completed: completed, Difficulty: diff}
}

func TestBattleProgress(t *testing.T) {
	tests := []struct {
		name    string
		members map[string]map[string]model.Habit
		want    int
	}{
		{
			name:    "noMembers",
			members: map[string]map[string]model.Habit{},
			want:    0,
		},
		{
			name: "noHabits",
			members: map[string]map[string]model.Habit{
				"a": {},
			},
			want: 0,
		},
		{
			name: "singleGoodHabit",
			members: map[string]map[string]model.Habit{
				"a": {"run": good(3, 7, 2)},
			},
			// 3*2 of a 7*2 maximum.
			want: 43,
		},
		{
			name: "badHabitDragsScore",
			members: map[string]map[string]model.Habit{
				"a": {
					"run":   good(3, 7, 2),
					"smoke": bad(1, 3),
				},
			},
			// (6-3)/14.
			want: 21,
		},
		{
			name: "badOnlyClampsToZero",
			members: map[string]map[string]model.Habit{
				"a": {"smoke": bad(5, 3)},
			},
			want: 0,
		},
		{
			name: "overshootClampsToHundred",
			members: map[string]map[string]model.Habit{
				"a": {"run": good(12, 1, 1)},
			},
			want: 100,
		},
		{
			name: "acrossMembers",
			members: map[string]map[string]model.Habit{
				"a": {"run": good(7, 7, 1)},
				"b": {"read": good(0, 7, 1)},
			},
			want: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := make([]string, 0, len(tt.members))
			for uid := range tt.members {
				members = append(members, uid)
			}
			assert.Equal(t, tt.want, BattleProgress(members, tt.members))
		})
	}
}

func TestBattleProgressIgnoresNonMembers(t *testing.T) {
	habits := map[string]map[string]model.Habit{
		"a":     {"run": good(7, 7, 1)},
		"ghost": {"cheat": good(100, 1, 1)},
	}
	assert.Equal(t, 100, BattleProgress([]string{"a"}, habits))
}

// The progress percent stays inside [0,100] for any habit mix.
func TestBattleProgressRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		memberCount := rapid.IntRange(0, 5).Draw(t, "members")
		members := make([]string, memberCount)
		habits := map[string]map[string]model.Habit{}
		for i := range members {
			uid := fmt.Sprintf("u%d", i)
			members[i] = uid
			habitCount := rapid.IntRange(0, 4).Draw(t, "habits")
			hs := map[string]model.Habit{}
			for j := 0; j < habitCount; j++ {
				typ := model.HabitGood
				freq := rapid.IntRange(1, 14).Draw(t, "freq")
				if rapid.Bool().Draw(t, "isBad") {
					typ = model.HabitBad
					freq = 0
				}
				hs[fmt.Sprintf("h%d", j)] = model.Habit{
					Type:       typ,
					Frequency:  freq,
					Difficulty: rapid.IntRange(model.MinDifficulty, model.MaxDifficulty).Draw(t, "diff"),
					Completed:  rapid.IntRange(0, 30).Draw(t, "completed"),
				}
			}
			habits[uid] = hs
		}

		p := BattleProgress(members, habits)
		if p < 0 || p > 100 {
			t.Fatalf("progress %d outside [0,100]", p)
		}
	})
}
