package service

import (
	"context"
	"errors"
	"sort"

	"habithold/internal/model"
	"habithold/internal/narrative"
	"habithold/internal/repository"
	"habithold/internal/scoring"
)

// ErrWeekNotRecorded is returned when a chronicle is requested for a
// week the kingdom ledger does not hold.
var ErrWeekNotRecorded = errors.New("no outcome recorded for that week")

// LeaderboardEntry is one member's row in the kingdom ranking.
type LeaderboardEntry struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Points    int    `json:"points"`
	Title     string `json:"title"`
}

// defaultMemberTitle is used when a member has never closed a week.
const defaultMemberTitle = "Kingdom Member"

// RankingService ranks members and renders battle chronicles.
type RankingService struct {
	users    *repository.UserRepository
	kingdoms *repository.KingdomRepository
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(users *repository.UserRepository, kingdoms *repository.KingdomRepository) *RankingService {
	return &RankingService{users: users, kingdoms: kingdoms}
}

// Leaderboard ranks the kingdom's members by habit points, best first.
// Ties keep member-list order.
func (s *RankingService) Leaderboard(ctx context.Context, userID string) ([]LeaderboardEntry, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(kingdom.Members))
	for _, uid := range kingdom.Members {
		member, err := s.users.GetByID(ctx, uid)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, LeaderboardEntry{
			UID:       uid,
			Name:      member.DisplayName,
			AvatarURL: member.AvatarURL,
			Points:    scoring.Points(kingdom.MemberHabits(uid)),
			Title:     memberTitle(member),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	return entries, nil
}

// memberTitle picks the member's most frequently earned weekly title,
// falling back to the latest one, then to the default.
func memberTitle(u *model.User) string {
	counts := map[string]int{}
	for _, t := range u.WeeklyTitles {
		counts[t]++
	}

	best, bestCount := "", 0
	for t, c := range counts {
		if c > bestCount || (c == bestCount && t < best) {
			best, bestCount = t, c
		}
	}
	if best != "" {
		return best
	}
	if u.LastWeekTitle != "" {
		return u.LastWeekTitle
	}
	return defaultMemberTitle
}

// KingdomTitle returns the kingdom's current earned title, preferring
// the one persisted at the latest close-out.
func (s *RankingService) KingdomTitle(ctx context.Context, userID string) (string, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(kingdom.WeeklyComputedTitles))
	for k := range kingdom.WeeklyComputedTitles {
		keys = append(keys, k)
	}
	if len(keys) > 0 {
		scoring.SortWeekKeys(keys)
		return kingdom.WeeklyComputedTitles[keys[0]], nil
	}
	return defaultKingdomTitle, nil
}

const defaultKingdomTitle = "A Young Realm"

// WeekChronicle renders the battle log for one recorded week.
func (s *RankingService) WeekChronicle(ctx context.Context, userID, weekKey string) (string, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return "", err
	}
	stats, ok := kingdom.WeeklyStats[weekKey]
	if !ok {
		return "", ErrWeekNotRecorded
	}

	good, bad := 0, 0
	if sunday, _, werr := scoring.WeekWindow(weekKey); werr == nil {
		for _, uid := range kingdom.Members {
			g, b := scoring.WindowTotals(kingdom.HabitHistory[uid], sunday, model.DaysPerWeek)
			good += g
			bad += b
		}
	}

	return narrative.WeekChronicle(narrative.WeekReport{
		KingdomName: kingdom.Name,
		WeekKey:     weekKey,
		Members:     len(kingdom.Members),
		Stats:       stats,
		Good:        good,
		Bad:         bad,
	}), nil
}

// OverallChronicle renders the all-time battle saga.
func (s *RankingService) OverallChronicle(ctx context.Context, userID string) (string, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return "", err
	}

	good, bad := 0, 0
	for _, uid := range kingdom.Members {
		for _, t := range kingdom.HabitHistory[uid] {
			good += t.Good
			bad += t.Bad
		}
	}

	return narrative.OverallChronicle(narrative.OverallReport{
		KingdomName: kingdom.Name,
		Summary:     scoring.Summarize(kingdom.WeeklyStats),
		Good:        good,
		Bad:         bad,
	}), nil
}

// RecordedWeeks lists the kingdom's recorded week keys, newest first.
func (s *RankingService) RecordedWeeks(ctx context.Context, userID string) ([]string, error) {
	kingdom, err := s.kingdomOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(kingdom.WeeklyWinners))
	for k := range kingdom.WeeklyWinners {
		keys = append(keys, k)
	}
	scoring.SortWeekKeys(keys)
	return keys, nil
}

func (s *RankingService) kingdomOf(ctx context.Context, userID string) (*model.Kingdom, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Kingdom == "" {
		return nil, ErrNotInKingdom
	}
	return s.kingdoms.GetByCode(ctx, user.Kingdom)
}
