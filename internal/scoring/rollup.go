package scoring

import "habithold/internal/model"

// MemberProfile is the input to the weekly rollup: one member's
// identity plus their habit map as mirrored in the kingdom.
type MemberProfile struct {
	UID       string
	Name      string
	AvatarURL string
	Habits    map[string]model.Habit
}

// MemberStat is one member's aggregate for a week.
type MemberStat struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	Pos        int    `json:"pos"`
	Neg        int    `json:"neg"`
	Completed  int    `json:"completed"`
	Difficulty int    `json:"diff"`
	Frequency  int    `json:"freq"`
}

// Net is the member's contribution: positive minus negative points.
func (m MemberStat) Net() int { return m.Pos - m.Neg }

// Rollup is the numeric outcome of a completed week. Narrative strings
// are layered on top by the narrative package.
type Rollup struct {
	Winner      string       `json:"winner"`
	Percent     int          `json:"percent"`
	MemberStats []MemberStat `json:"memberStats"`
	MVP         MemberStat   `json:"mvp"`
	Streak      bool         `json:"streak"`
	MyStats     MemberStat   `json:"myStats"`
	MyPercent   int          `json:"myPercent"`
	MVPPercent  int          `json:"mvpPercent"`
}

// WeeklyRollup aggregates every member's habits into the week outcome.
//
// Per member: pos = sum(completed*difficulty) over good habits, neg
// over bad ones. The kingdom score is sum(pos-neg); the maximum is
// sum(frequency*difficulty) over every habit of every member. The
// kingdom wins at percent >= 50. The MVP is the member with the
// highest net contribution; ties resolve to the first member in input
// order. The streak flag is true when every one of the current user's
// habits has a perfect week.
func WeeklyRollup(members []MemberProfile, currentUID string) Rollup {
	var (
		score, maxScore int
		stats           []MemberStat
	)
	for _, m := range members {
		s := MemberStat{UID: m.UID, Name: m.Name, AvatarURL: m.AvatarURL}
		for _, name := range sortedHabitNames(m.Habits) {
			h := m.Habits[name]
			d := h.Difficulty
			if d == 0 {
				d = 1
			}
			if h.Type == model.HabitGood {
				s.Pos += h.Completed * d
			} else {
				s.Neg += h.Completed * d
			}
			maxScore += h.Frequency * d
			s.Completed += h.Completed
			s.Difficulty += d
			s.Frequency += h.Frequency
		}
		stats = append(stats, s)
		score += s.Net()
	}

	r := Rollup{
		MemberStats: stats,
		Percent:     clampPercent(roundPercent(score, maxScore)),
	}
	r.Winner = model.WinnerVampires
	if r.Percent >= 50 {
		r.Winner = model.WinnerKingdom
	}

	for i, s := range stats {
		if i == 0 || s.Net() > r.MVP.Net() {
			r.MVP = s
		}
		if s.UID == currentUID {
			r.MyStats = s
		}
	}
	r.MyPercent = roundPercent(r.MyStats.Net(), maxScore)
	r.MVPPercent = roundPercent(r.MVP.Net(), maxScore)

	for _, m := range members {
		if m.UID != currentUID {
			continue
		}
		r.Streak = len(m.Habits) > 0
		for _, h := range m.Habits {
			if !h.PerfectWeek() {
				r.Streak = false
				break
			}
		}
	}
	return r
}
