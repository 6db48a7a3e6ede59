package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"habithold/internal/model"
	"habithold/internal/repository"
)

// WatcherService streams live updates for a user and whichever kingdom
// they currently belong to. When the user's kingdom pointer changes,
// the kingdom subscription follows it.
type WatcherService struct {
	users    *repository.UserRepository
	kingdoms *repository.KingdomRepository
}

// NewWatcherService creates a new WatcherService instance.
func NewWatcherService(users *repository.UserRepository, kingdoms *repository.KingdomRepository) *WatcherService {
	return &WatcherService{users: users, kingdoms: kingdoms}
}

// Watch subscribes to the user document and the user's current kingdom
// document. Callbacks fire after every change. The returned stop
// function tears both subscriptions down; after it returns no callback
// is invoked again.
func (s *WatcherService) Watch(ctx context.Context, userID string, onUser func(*model.User), onKingdom func(*model.Kingdom)) (func(), error) {
	w := &watcher{svc: s, ctx: ctx, userID: userID, onKingdom: onKingdom}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	w.follow(user.Kingdom)

	cancelUser, err := s.users.Watch(ctx, userID, func(u *model.User) {
		w.follow(u.Kingdom)
		onUser(u)
	})
	if err != nil {
		w.stop()
		return nil, err
	}

	return func() {
		cancelUser()
		w.stop()
	}, nil
}

// watcher tracks the kingdom subscription that follows a user's
// kingdom pointer.
type watcher struct {
	svc       *WatcherService
	ctx       context.Context
	userID    string
	onKingdom func(*model.Kingdom)

	mu            sync.Mutex
	code          string
	cancelKingdom func()
	stopped       bool
}

// follow points the kingdom subscription at the given code, cancelling
// the previous one if the code changed.
func (w *watcher) follow(code string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || code == w.code {
		return
	}

	if w.cancelKingdom != nil {
		w.cancelKingdom()
		w.cancelKingdom = nil
	}
	w.code = code
	if code == "" {
		return
	}

	cancel, err := w.svc.kingdoms.Watch(w.ctx, code, w.onKingdom)
	if err != nil {
		log.Warn().Err(err).Str("user", w.userID).Str("kingdom", code).Msg("Failed to follow kingdom")
		w.code = ""
		return
	}
	w.cancelKingdom = cancel
}

func (w *watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.cancelKingdom != nil {
		w.cancelKingdom()
		w.cancelKingdom = nil
	}
}
