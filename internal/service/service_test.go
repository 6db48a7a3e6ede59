package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"habithold/internal/config"
	"habithold/internal/docstore"
	"habithold/internal/pkg/lock"
	"habithold/internal/repository"
)

// fixedNow is a Wednesday inside ISO week 2025-W25.
var fixedNow = time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC)

const testAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type fixture struct {
	store       *docstore.Memory
	users       *repository.UserRepository
	kingdoms    *repository.KingdomRepository
	userSvc     *UserService
	habitSvc    *HabitService
	kingdomSvc  *KingdomService
	rollupSvc   *RollupService
	rankingSvc  *RankingService
	motivateSvc *MotivationService
	watcherSvc  *WatcherService
}

// newFixture wires every service over a shared in-memory store with a
// pinned clock and a seeded random source.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := docstore.NewMemory()
	users := repository.NewUserRepository(store)
	kingdoms := repository.NewKingdomRepository(store)
	habits := repository.NewHabitRepository(store)
	rng := rand.New(rand.NewSource(1))
	weekly := config.WeeklyConfig{RolloverDay: time.Sunday, RolloverHour: 18}

	f := &fixture{
		store:       store,
		users:       users,
		kingdoms:    kingdoms,
		userSvc:     NewUserService(users),
		habitSvc:    NewHabitService(users, habits),
		kingdomSvc:  NewKingdomService(users, kingdoms, rng, 6, testAlphabet),
		rollupSvc:   NewRollupService(users, kingdoms, lock.NewKeyedLock(), weekly, rng),
		rankingSvc:  NewRankingService(users, kingdoms),
		motivateSvc: NewMotivationService(users, kingdoms, rng),
		watcherSvc:  NewWatcherService(users, kingdoms),
	}
	f.userSvc.now = func() time.Time { return fixedNow }
	f.habitSvc.now = func() time.Time { return fixedNow }
	f.rollupSvc.now = func() time.Time { return fixedNow }
	f.motivateSvc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) register(t *testing.T, ctx context.Context, id, name string) {
	t.Helper()
	_, _, err := f.userSvc.Register(ctx, id, name, "", "")
	require.NoError(t, err)
}
