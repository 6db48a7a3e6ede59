package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habithold/internal/model"
)

// The memory store notifies synchronously, so callbacks have fired by
// the time each write returns.
func TestWatcherFollowsKingdomPointer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, ctx, "u1", "Alice")
	f.register(t, ctx, "u2", "Bob")

	kingdom, err := f.kingdomSvc.Create(ctx, "u1", "Camelot", "")
	require.NoError(t, err)

	var users []*model.User
	var kingdoms []*model.Kingdom
	stop, err := f.watcherSvc.Watch(ctx, "u2",
		func(u *model.User) { users = append(users, u) },
		func(k *model.Kingdom) { kingdoms = append(kingdoms, k) },
	)
	require.NoError(t, err)
	defer stop()

	// Profile edits stream through the user callback.
	require.NoError(t, f.userSvc.UpdateProfile(ctx, "u2", "Bobby", ""))
	require.NotEmpty(t, users)
	assert.Equal(t, "Bobby", users[len(users)-1].DisplayName)

	// Joining starts the kingdom stream.
	_, err = f.kingdomSvc.Join(ctx, "u2", kingdom.Code)
	require.NoError(t, err)

	require.NoError(t, f.kingdomSvc.UpdateProfile(ctx, "u1", "New Camelot", ""))
	require.NotEmpty(t, kingdoms)
	assert.Equal(t, "New Camelot", kingdoms[len(kingdoms)-1].Name)
}

func TestWatcherDropsKingdomOnLeave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, ctx, "u1", "Alice")
	f.register(t, ctx, "u2", "Bob")

	kingdom, err := f.kingdomSvc.Create(ctx, "u1", "Camelot", "")
	require.NoError(t, err)
	_, err = f.kingdomSvc.Join(ctx, "u2", kingdom.Code)
	require.NoError(t, err)

	var kingdomEvents int
	stop, err := f.watcherSvc.Watch(ctx, "u2",
		func(*model.User) {},
		func(*model.Kingdom) { kingdomEvents++ },
	)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, f.kingdomSvc.Leave(ctx, "u2"))
	after := kingdomEvents

	// Kingdom changes no longer reach the departed member.
	require.NoError(t, f.kingdomSvc.UpdateProfile(ctx, "u1", "Still Camelot", ""))
	assert.Equal(t, after, kingdomEvents)
}

func TestWatcherStop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, ctx, "u1", "Alice")

	var userEvents int
	stop, err := f.watcherSvc.Watch(ctx, "u1",
		func(*model.User) { userEvents++ },
		func(*model.Kingdom) {},
	)
	require.NoError(t, err)

	stop()

	require.NoError(t, f.userSvc.UpdateProfile(ctx, "u1", "Alicia", ""))
	assert.Zero(t, userEvents)
}
