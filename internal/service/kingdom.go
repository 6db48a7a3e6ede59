package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"habithold/internal/model"
	"habithold/internal/repository"
	"habithold/internal/scoring"
)

// Common errors for kingdom operations.
var (
	ErrAlreadyInKingdom = errors.New("user already belongs to a kingdom")
	ErrNotInKingdom     = errors.New("user does not belong to a kingdom")
	ErrEmptyKingdomName = errors.New("kingdom name must not be empty")
)

// codeAttempts bounds invite code generation retries on collision.
const codeAttempts = 10

// KingdomService handles kingdom lifecycle and membership.
type KingdomService struct {
	users    *repository.UserRepository
	kingdoms *repository.KingdomRepository

	rngMu    sync.Mutex
	rng      *rand.Rand
	codeLen  int
	alphabet string
}

// NewKingdomService creates a new KingdomService instance. The random
// source drives invite code generation and is seedable for tests.
func NewKingdomService(users *repository.UserRepository, kingdoms *repository.KingdomRepository, rng *rand.Rand, codeLen int, alphabet string) *KingdomService {
	if codeLen <= 0 {
		codeLen = 6
	}
	if alphabet == "" {
		alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	}
	return &KingdomService{
		users:    users,
		kingdoms: kingdoms,
		rng:      rng,
		codeLen:  codeLen,
		alphabet: alphabet,
	}
}

func (s *KingdomService) newCode() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	b := make([]byte, s.codeLen)
	for i := range b {
		b[i] = s.alphabet[s.rng.Intn(len(s.alphabet))]
	}
	return string(b)
}

// Create founds a new kingdom with the user as sole member and returns
// it. The invite code is generated and checked for collisions.
func (s *KingdomService) Create(ctx context.Context, founderID, name, pfp string) (*model.Kingdom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyKingdomName
	}

	founder, err := s.users.GetByID(ctx, founderID)
	if err != nil {
		return nil, err
	}
	if founder.Kingdom != "" {
		return nil, ErrAlreadyInKingdom
	}

	var code string
	for i := 0; ; i++ {
		code = s.newCode()
		_, err := s.kingdoms.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrKingdomNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if i >= codeAttempts {
			return nil, fmt.Errorf("failed to generate a free invite code after %d attempts", codeAttempts)
		}
	}

	kingdom := model.NewKingdom(code, name, pfp, founderID)
	kingdom.Habits[founderID] = founder.Habits
	if err := s.kingdoms.Create(ctx, kingdom); err != nil {
		return nil, err
	}
	if err := s.users.SetKingdom(ctx, founderID, code); err != nil {
		return nil, err
	}
	return kingdom, nil
}

// Join adds the user to the kingdom behind the invite code. Codes are
// matched case-insensitively.
func (s *KingdomService) Join(ctx context.Context, userID, code string) (*model.Kingdom, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Kingdom != "" {
		return nil, ErrAlreadyInKingdom
	}

	kingdom, err := s.kingdoms.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !kingdom.HasMember(userID) {
		members := append(kingdom.Members, userID)
		if err := s.kingdoms.AddMember(ctx, code, members, userID, user.Habits); err != nil {
			return nil, err
		}
		kingdom.Members = members
		kingdom.Habits[userID] = user.Habits
	}

	if err := s.users.SetKingdom(ctx, userID, code); err != nil {
		return nil, err
	}
	return kingdom, nil
}

// Leave removes the user from their kingdom and clears the pointer.
func (s *KingdomService) Leave(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Kingdom == "" {
		return ErrNotInKingdom
	}

	kingdom, err := s.kingdoms.GetByCode(ctx, user.Kingdom)
	if err != nil && !errors.Is(err, repository.ErrKingdomNotFound) {
		return err
	}
	if kingdom != nil && kingdom.HasMember(userID) {
		members := make([]string, 0, len(kingdom.Members)-1)
		for _, m := range kingdom.Members {
			if m != userID {
				members = append(members, m)
			}
		}
		if err := s.kingdoms.RemoveMember(ctx, user.Kingdom, members, userID); err != nil {
			return err
		}
	}

	return s.users.SetKingdom(ctx, userID, "")
}

// Get retrieves the kingdom the user belongs to.
func (s *KingdomService) Get(ctx context.Context, userID string) (*model.Kingdom, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Kingdom == "" {
		return nil, ErrNotInKingdom
	}
	return s.kingdoms.GetByCode(ctx, user.Kingdom)
}

// GetByCode retrieves a kingdom directly by invite code.
func (s *KingdomService) GetByCode(ctx context.Context, code string) (*model.Kingdom, error) {
	return s.kingdoms.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// UpdateProfile changes the kingdom's name and banner.
func (s *KingdomService) UpdateProfile(ctx context.Context, userID, name, pfp string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyKingdomName
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Kingdom == "" {
		return ErrNotInKingdom
	}
	return s.kingdoms.UpdateProfile(ctx, user.Kingdom, name, pfp)
}

// MemberProfiles resolves each member's display identity and mirrored
// habits for scoring.
func (s *KingdomService) MemberProfiles(ctx context.Context, kingdom *model.Kingdom) ([]scoring.MemberProfile, error) {
	return memberProfiles(ctx, s.users, kingdom)
}

// memberProfiles joins the member list against user documents. Members
// whose user document is missing are skipped.
func memberProfiles(ctx context.Context, users *repository.UserRepository, kingdom *model.Kingdom) ([]scoring.MemberProfile, error) {
	profiles := make([]scoring.MemberProfile, 0, len(kingdom.Members))
	for _, uid := range kingdom.Members {
		member, err := users.GetByID(ctx, uid)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		profiles = append(profiles, scoring.MemberProfile{
			UID:       uid,
			Name:      member.DisplayName,
			AvatarURL: member.AvatarURL,
			Habits:    kingdom.MemberHabits(uid),
		})
	}
	return profiles, nil
}
