package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"habithold/internal/model"
	"habithold/internal/narrative"
	"habithold/internal/repository"
)

// ErrNotAllies is returned when sender and recipient are not in the
// same kingdom.
var ErrNotAllies = errors.New("users are not in the same kingdom")

// MotivationService sends encouragement between kingdom allies. The
// message text is picked to match the recipient's current standing in
// the week.
type MotivationService struct {
	users    *repository.UserRepository
	kingdoms *repository.KingdomRepository
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewMotivationService creates a new MotivationService instance.
func NewMotivationService(users *repository.UserRepository, kingdoms *repository.KingdomRepository, rng *rand.Rand) *MotivationService {
	return &MotivationService{
		users:    users,
		kingdoms: kingdoms,
		rng:      rng,
		now:      time.Now,
	}
}

// Send delivers a motivation message to an ally. The recipient's inbox
// holds one message; a new send replaces the old one.
func (s *MotivationService) Send(ctx context.Context, fromID, toID string) (*model.Motivation, error) {
	sender, err := s.users.GetByID(ctx, fromID)
	if err != nil {
		return nil, err
	}
	if sender.Kingdom == "" {
		return nil, ErrNotInKingdom
	}

	kingdom, err := s.kingdoms.GetByCode(ctx, sender.Kingdom)
	if err != nil {
		return nil, err
	}
	if !kingdom.HasMember(toID) || fromID == toID {
		return nil, ErrNotAllies
	}

	progress, posCount, negCount := recipientStanding(kingdom, toID)

	s.rngMu.Lock()
	text := narrative.MotivationMessage(progress, posCount, negCount, s.rng)
	s.rngMu.Unlock()

	m := model.Motivation{
		ID:        uuid.NewString(),
		Message:   text,
		From:      sender.DisplayName,
		AvatarURL: sender.AvatarURL,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.users.SetMotivation(ctx, toID, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Dismiss clears the user's motivation inbox.
func (s *MotivationService) Dismiss(ctx context.Context, userID string) error {
	return s.users.ClearMotivation(ctx, userID)
}

// recipientStanding derives the recipient's week so far from the
// kingdom mirror: their net score as a percent of the kingdom maximum,
// plus raw good and bad completion counts.
func recipientStanding(kingdom *model.Kingdom, uid string) (progress, posCount, negCount int) {
	var net, maxScore int
	for _, memberHabits := range kingdom.Habits {
		for _, h := range memberHabits {
			d := h.Difficulty
			if d == 0 {
				d = 1
			}
			maxScore += h.Frequency * d
		}
	}
	for _, h := range kingdom.MemberHabits(uid) {
		d := h.Difficulty
		if d == 0 {
			d = 1
		}
		if h.Type == model.HabitGood {
			net += h.Completed * d
			posCount += h.Completed
		} else {
			net -= h.Completed * d
			negCount += h.Completed
		}
	}
	if maxScore > 0 {
		progress = net * 100 / maxScore
	}
	if progress < 0 {
		progress = 0
	}
	return progress, posCount, negCount
}
