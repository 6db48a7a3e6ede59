package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	setupBattle(t, ctx, f)

	entries, err := f.rankingSvc.Leaderboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Alice has 7 points to Bob's 0.
	assert.Equal(t, "u1", entries[0].UID)
	assert.Equal(t, 7, entries[0].Points)
	assert.Equal(t, "u2", entries[1].UID)
	assert.Zero(t, entries[1].Points)

	// Nobody has closed a week yet.
	assert.Equal(t, "Kingdom Member", entries[0].Title)
}

func TestLeaderboardTitlesAfterClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	setupBattle(t, ctx, f)

	_, err := f.rollupSvc.CloseWeek(ctx, "u1")
	require.NoError(t, err)

	entries, err := f.rankingSvc.Leaderboard(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, "Kingdom Member", entries[0].Title)
}

func TestKingdomTitleService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	setupBattle(t, ctx, f)

	title, err := f.rankingSvc.KingdomTitle(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "A Young Realm", title)

	_, err = f.rollupSvc.CloseWeek(ctx, "u1")
	require.NoError(t, err)

	title, err = f.rankingSvc.KingdomTitle(ctx, "u1")
	require.NoError(t, err)
	// Two members averaging 3.5 completions rank as a consistent keep.
	assert.Equal(t, "Consistent Keep", title)
}

func TestChronicles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	setupBattle(t, ctx, f)

	result, err := f.rollupSvc.CloseWeek(ctx, "u1")
	require.NoError(t, err)

	weeks, err := f.rankingSvc.RecordedWeeks(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{result.WeekKey}, weeks)

	text, err := f.rankingSvc.WeekChronicle(ctx, "u2", result.WeekKey)
	require.NoError(t, err)
	assert.Contains(t, text, "Camelot")
	assert.Contains(t, text, "Alice")

	_, err = f.rankingSvc.WeekChronicle(ctx, "u2", "1999-W1")
	assert.ErrorIs(t, err, ErrWeekNotRecorded)

	overall, err := f.rankingSvc.OverallChronicle(ctx, "u2")
	require.NoError(t, err)
	assert.Contains(t, overall, "Camelot")
	assert.Contains(t, overall, "1 Medieval victories")
}
