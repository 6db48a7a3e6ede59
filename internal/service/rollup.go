package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"habithold/internal/config"
	"habithold/internal/model"
	"habithold/internal/narrative"
	"habithold/internal/pkg/lock"
	"habithold/internal/repository"
	"habithold/internal/scoring"
)

// BattleResult is the full reveal for a closed battle week: the stored
// outcome plus the narrative dressing around it.
type BattleResult struct {
	WeekKey         string             `json:"weekKey"`
	Stats           model.WeekStats    `json:"stats"`
	Rollup          scoring.Rollup     `json:"rollup"`
	Title           string             `json:"title"`
	Hook            string             `json:"hook"`
	Intro           string             `json:"intro"`
	Personal        string             `json:"personal"`
	AlreadyRecorded bool               `json:"alreadyRecorded"`
}

// RollupService computes the live battle progress and closes out
// battle weeks. Close-out is serialized per kingdom and guarded in the
// store, so it runs at most once per week no matter how many members
// trigger it.
type RollupService struct {
	users    *repository.UserRepository
	kingdoms *repository.KingdomRepository
	locks    *lock.KeyedLock
	weekly   config.WeeklyConfig
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRollupService creates a new RollupService instance.
func NewRollupService(users *repository.UserRepository, kingdoms *repository.KingdomRepository, locks *lock.KeyedLock, weekly config.WeeklyConfig, rng *rand.Rand) *RollupService {
	return &RollupService{
		users:    users,
		kingdoms: kingdoms,
		locks:    locks,
		weekly:   weekly,
		rng:      rng,
		now:      time.Now,
	}
}

// Progress returns the kingdom's current battle completion percent.
func (s *RollupService) Progress(ctx context.Context, userID string) (int, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return 0, err
	}
	return scoring.BattleProgress(kingdom.Members, kingdom.Habits), nil
}

// Due reports which week is currently closeable for the user's kingdom
// and whether its outcome is still unrecorded.
func (s *RollupService) Due(ctx context.Context, userID string) (string, bool, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return "", false, err
	}
	weekKey := s.closingWeekKey(s.now())
	return weekKey, !kingdom.Recorded(weekKey), nil
}

// CloseWeek settles the closeable week for the user's kingdom. The
// first caller computes and records the outcome; later callers get
// the stored outcome with AlreadyRecorded set. Either way the reveal
// is personalized for the calling user.
func (s *RollupService) CloseWeek(ctx context.Context, userID string) (*BattleResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Kingdom == "" {
		return nil, ErrNotInKingdom
	}
	code := user.Kingdom

	s.locks.Lock(code)
	defer s.locks.Unlock(code)

	kingdom, err := s.kingdoms.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	weekKey := s.closingWeekKey(s.now())

	profiles, err := memberProfiles(ctx, s.users, kingdom)
	if err != nil {
		return nil, err
	}
	rollup := scoring.WeeklyRollup(profiles, userID)

	if kingdom.Recorded(weekKey) {
		return s.reveal(weekKey, kingdom.WeeklyStats[weekKey], rollup, true), nil
	}

	stats := s.buildStats(kingdom, profiles, rollup, weekKey)

	medieval, vampire, streak := kingdom.MedievalWins, kingdom.VampireWins, kingdom.WinStreak
	if rollup.Winner == model.WinnerKingdom {
		medieval++
		streak++
	} else {
		vampire++
		streak = 0
	}

	title := s.kingdomTitle(kingdom, profiles, medieval, vampire, streak)

	err = s.kingdoms.RecordWeeklyOutcome(ctx, code, weekKey, rollup.Winner, stats, title, medieval, vampire, streak)
	if errors.Is(err, repository.ErrAlreadyRecorded) {
		// Lost the race to another process; serve what it stored.
		if kingdom, err = s.kingdoms.GetByCode(ctx, code); err != nil {
			return nil, err
		}
		return s.reveal(weekKey, kingdom.WeeklyStats[weekKey], rollup, true), nil
	}
	if err != nil {
		return nil, err
	}

	s.recordMemberLedgers(ctx, profiles, weekKey)

	log.Info().
		Str("kingdom", code).
		Str("week", weekKey).
		Str("winner", rollup.Winner).
		Int("percent", rollup.Percent).
		Msg("Battle week closed")

	return s.reveal(weekKey, stats, rollup, false), nil
}

func (s *RollupService) kingdomOf(ctx context.Context, userID string) (*model.Kingdom, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Kingdom == "" {
		return nil, ErrNotInKingdom
	}
	return s.kingdoms.GetByCode(ctx, user.Kingdom)
}

// closingWeekKey picks the week a close-out settles right now. Past
// the rollover moment the current week is closeable; before it, the
// previous one.
func (s *RollupService) closingWeekKey(now time.Time) string {
	if now.Weekday() == s.weekly.RolloverDay && now.Hour() >= s.weekly.RolloverHour {
		return scoring.WeekKey(now)
	}
	return scoring.LastWeekKey(now)
}

// buildStats assembles the persisted week snapshot: numbers from the
// rollup, top and neglected habits merged across members, and the
// per-member daily net grid for the week window.
func (s *RollupService) buildStats(kingdom *model.Kingdom, profiles []scoring.MemberProfile, rollup scoring.Rollup, weekKey string) model.WeekStats {
	merged := map[string]model.Habit{}
	for _, p := range profiles {
		for name, h := range p.Habits {
			m := merged[name]
			m.Name = name
			m.Type = h.Type
			m.Completed += h.Completed
			merged[name] = m
		}
	}
	top, neglected := scoring.TopAndNeglected(merged)

	grids := map[string][]int{}
	if sunday, _, err := scoring.WeekWindow(weekKey); err == nil {
		for _, p := range profiles {
			grids[p.UID] = scoring.WeekNets(kingdom.HabitHistory[p.UID], sunday)
		}
	}

	return model.WeekStats{
		Percent:   rollup.Percent,
		Winner:    rollup.Winner,
		MVPName:   rollup.MVP.Name,
		MVPDesc:   narrative.MVPTitle(rollup.Winner),
		TopHabits: top,
		Neglected: neglected,
		GridData:  grids,
	}
}

func (s *RollupService) kingdomTitle(kingdom *model.Kingdom, profiles []scoring.MemberProfile, medieval, vampire, streak int) string {
	total := 0
	for _, p := range profiles {
		for _, h := range p.Habits {
			total += h.Completed
		}
	}
	avg := 0.0
	if len(profiles) > 0 {
		avg = float64(total) / float64(len(profiles))
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return narrative.KingdomTitle(narrative.KingdomTitleInput{
		Members:        len(profiles),
		AvgCompletions: avg,
		WinStreak:      streak,
		MedievalWins:   medieval,
		VampireWins:    vampire,
	}, s.rng)
}

// recordMemberLedgers writes each member's personal week entry. The
// entries are guarded per week, so replays are harmless; individual
// failures are logged and skipped rather than failing the close-out.
func (s *RollupService) recordMemberLedgers(ctx context.Context, profiles []scoring.MemberProfile, weekKey string) {
	for _, p := range profiles {
		completions := 0
		for _, h := range p.Habits {
			completions += h.Completed
		}

		s.rngMu.Lock()
		title := narrative.FunTitle(s.rng)
		s.rngMu.Unlock()

		if err := s.users.RecordWeekOutcome(ctx, p.UID, weekKey, title, completions); err != nil {
			log.Warn().Err(err).Str("user", p.UID).Str("week", weekKey).Msg("Failed to record member week ledger")
		}
	}
}

func (s *RollupService) reveal(weekKey string, stats model.WeekStats, rollup scoring.Rollup, recorded bool) *BattleResult {
	s.rngMu.Lock()
	title := narrative.WeekTitle(stats.Winner, s.rng)
	s.rngMu.Unlock()

	return &BattleResult{
		WeekKey:         weekKey,
		Stats:           stats,
		Rollup:          rollup,
		Title:           title,
		Hook:            narrative.Hook(stats.Winner),
		Intro:           narrative.Intro(stats.Winner),
		Personal:        narrative.PersonalMessage(rollup.Streak, rollup.MyStats.Net()),
		AlreadyRecorded: recorded,
	}
}
