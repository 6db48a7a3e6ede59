// Package model defines the document models for the habit kingdom system.
package model

import "time"

// HabitType distinguishes habits that help the kingdom from those that
// feed the vampires.
type HabitType string

const (
	HabitGood HabitType = "good"
	HabitBad  HabitType = "bad"
)

// Winner values recorded in the weekly ledger.
const (
	WinnerKingdom  = "kingdom"
	WinnerVampires = "vampires"
)

// DaysPerWeek is the size of the per-habit day grid (Sunday..Saturday).
const DaysPerWeek = 7

// Difficulty bounds for a habit.
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Habit is a tracked recurring action. The name acts as the key within
// its owner's habit map and within the kingdom mirror.
type Habit struct {
	Name       string    `json:"name"`
	Type       HabitType `json:"type"`
	Frequency  int       `json:"frequency,omitempty"`
	Difficulty int       `json:"difficulty"`
	Completed  int       `json:"completed"`
	// Week marks "completed today" per day-of-week, indexed 0=Sunday.
	Week [DaysPerWeek]bool `json:"week"`
	// WeekOf is the week key the Week array belongs to. An array from an
	// older week reads as all-false.
	WeekOf string `json:"weekOf,omitempty"`
}

// Mark adjusts the completion counter by delta, clamping at zero.
func (h *Habit) Mark(delta int) {
	h.Completed += delta
	if h.Completed < 0 {
		h.Completed = 0
	}
}

// ResetIfStale clears the day grid when it belongs to an earlier week.
// Returns true if the grid was cleared.
func (h *Habit) ResetIfStale(weekKey string) bool {
	if h.WeekOf == weekKey {
		return false
	}
	h.Week = [DaysPerWeek]bool{}
	h.WeekOf = weekKey
	return true
}

// SetDay sets the day flag and moves Completed in lockstep: +1 when a
// day flips to done, -1 (clamped at zero) when it flips back. Setting a
// flag to its current value is a no-op. Returns true when state changed.
func (h *Habit) SetDay(idx int, done bool) bool {
	if idx < 0 || idx >= DaysPerWeek {
		return false
	}
	if h.Week[idx] == done {
		return false
	}
	h.Week[idx] = done
	if done {
		h.Mark(1)
	} else {
		h.Mark(-1)
	}
	return true
}

// DoneOn reports whether the habit was already completed on the given
// day of the current week.
func (h *Habit) DoneOn(idx int, weekKey string) bool {
	if idx < 0 || idx >= DaysPerWeek {
		return false
	}
	if h.WeekOf != weekKey {
		return false
	}
	return h.Week[idx]
}

// PerfectWeek reports whether every day of the grid is marked done.
func (h *Habit) PerfectWeek() bool {
	for _, done := range h.Week {
		if !done {
			return false
		}
	}
	return true
}

// DayTally is a per-day (or cumulative) count of good and bad
// completions.
type DayTally struct {
	Good int `json:"good"`
	Bad  int `json:"bad"`
}

// Bump adjusts the tally for the habit type by delta, clamping at zero.
func (t *DayTally) Bump(ht HabitType, delta int) {
	if ht == HabitGood {
		t.Good += delta
		if t.Good < 0 {
			t.Good = 0
		}
		return
	}
	t.Bad += delta
	if t.Bad < 0 {
		t.Bad = 0
	}
}

// Net is good minus bad.
func (t DayTally) Net() int { return t.Good - t.Bad }

// Motivation is a one-slot inbox message sent by an ally.
type Motivation struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	From      string `json:"from"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// User is a document in the users collection.
type User struct {
	ID                  string              `json:"id"`
	DisplayName         string              `json:"displayName"`
	Email               string              `json:"email,omitempty"`
	AvatarURL           string              `json:"avatarUrl,omitempty"`
	Kingdom             string              `json:"kingdom,omitempty"`
	Habits              map[string]Habit    `json:"habits"`
	HabitHistory        map[string]DayTally `json:"habitHistory"`
	WeeklyTitles        map[string]string   `json:"weeklyTitles"`
	WeeklyCompletions   map[string]int      `json:"weeklyCompletions"`
	LastWeekTitle       string              `json:"lastWeekTitle,omitempty"`
	LastWeekCompletions int                 `json:"lastWeekCompletions,omitempty"`
	Motivation          *Motivation         `json:"motivation,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
}

// NewUser creates a user profile with all nested containers allocated.
// Field-path updates rely on parent containers existing in the stored
// document.
func NewUser(id, displayName, email, avatarURL string, now time.Time) *User {
	return &User{
		ID:                id,
		DisplayName:       displayName,
		Email:             email,
		AvatarURL:         avatarURL,
		Habits:            map[string]Habit{},
		HabitHistory:      map[string]DayTally{},
		WeeklyTitles:      map[string]string{},
		WeeklyCompletions: map[string]int{},
		CreatedAt:         now,
	}
}

// WeekStats is the persisted snapshot of a completed week's outcome.
type WeekStats struct {
	Percent   int              `json:"percent"`
	Winner    string           `json:"winner"`
	MVPName   string           `json:"mvpName"`
	MVPDesc   string           `json:"mvpDesc"`
	TopHabits []string         `json:"topHabits,omitempty"`
	Neglected []string         `json:"neglected,omitempty"`
	GridData  map[string][]int `json:"gridData,omitempty"`
}

// Kingdom is a document in the kingdoms collection, keyed by its
// 6-character invite code.
type Kingdom struct {
	Code         string                         `json:"code"`
	Name         string                         `json:"name"`
	Pfp          string                         `json:"pfp,omitempty"`
	Members      []string                       `json:"members"`
	Habits       map[string]map[string]Habit    `json:"habits"`
	Progress     map[string]DayTally            `json:"progress"`
	HabitHistory map[string]map[string]DayTally `json:"habitHistory"`

	MedievalWins int `json:"medievalWins"`
	VampireWins  int `json:"vampireWins"`
	WinStreak    int `json:"winStreak"`

	WeeklyWinners        map[string]string    `json:"weeklyWinners"`
	WeeklyStats          map[string]WeekStats `json:"weeklyStats"`
	WeeklyComputedTitles map[string]string    `json:"weeklyComputedTitles"`
	LastWeekWinner       string               `json:"lastWeekWinner,omitempty"`
	LastWeekStats        *WeekStats           `json:"lastWeekStats,omitempty"`
}

// NewKingdom creates a kingdom with the founder as sole member and all
// nested containers allocated.
func NewKingdom(code, name, pfp, founderID string) *Kingdom {
	return &Kingdom{
		Code:                 code,
		Name:                 name,
		Pfp:                  pfp,
		Members:              []string{founderID},
		Habits:               map[string]map[string]Habit{founderID: {}},
		Progress:             map[string]DayTally{founderID: {}},
		HabitHistory:         map[string]map[string]DayTally{founderID: {}},
		WeeklyWinners:        map[string]string{},
		WeeklyStats:          map[string]WeekStats{},
		WeeklyComputedTitles: map[string]string{},
	}
}

// HasMember reports whether the user id is in the member list.
func (k *Kingdom) HasMember(userID string) bool {
	for _, m := range k.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// MemberHabits returns the mirrored habit map for a member, never nil.
func (k *Kingdom) MemberHabits(userID string) map[string]Habit {
	if k.Habits == nil {
		return map[string]Habit{}
	}
	if h, ok := k.Habits[userID]; ok && h != nil {
		return h
	}
	return map[string]Habit{}
}

// Recorded reports whether the weekly ledger already holds an outcome
// for the given week key.
func (k *Kingdom) Recorded(weekKey string) bool {
	_, ok := k.WeeklyWinners[weekKey]
	return ok
}
