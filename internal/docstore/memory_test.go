package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, snap Snapshot) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(snap.Data, &doc))
	return doc
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, Users, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{"displayName": "Alice"}))

	snap, err := m.Get(ctx, Users, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", snap.ID)
	assert.Equal(t, "Alice", decode(t, snap)["displayName"])
}

func TestMemoryApplyFieldPaths(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{
		"habits": map[string]any{},
	}))

	err := m.Apply(ctx, DocUpdate{
		Collection: Users,
		ID:         "u1",
		Fields: []Field{
			{Path: []string{"habits", "morning.run"}, Value: map[string]any{"completed": 3}},
			{Path: []string{"kingdom"}, Value: "ABC123"},
		},
	})
	require.NoError(t, err)

	snap, err := m.Get(ctx, Users, "u1")
	require.NoError(t, err)
	doc := decode(t, snap)
	assert.Equal(t, "ABC123", doc["kingdom"])
	// Dotted map keys stay single segments, not nested paths.
	habits := doc["habits"].(map[string]any)
	assert.Contains(t, habits, "morning.run")
}

func TestMemoryApplyRemove(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{
		"habits": map[string]any{"run": map[string]any{"completed": 1}},
	}))

	err := m.Apply(ctx, DocUpdate{
		Collection: Users,
		ID:         "u1",
		Fields:     []Field{{Path: []string{"habits", "run"}, Remove: true}},
	})
	require.NoError(t, err)

	snap, _ := m.Get(ctx, Users, "u1")
	assert.Empty(t, decode(t, snap)["habits"])
}

func TestMemoryApplyMissingTarget(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{"x": 1}))

	// One missing target fails the whole batch and leaves the
	// existing document untouched.
	err := m.Apply(ctx,
		DocUpdate{Collection: Users, ID: "u1", Fields: []Field{{Path: []string{"x"}, Value: 2}}},
		DocUpdate{Collection: Kingdoms, ID: "missing", Fields: []Field{{Path: []string{"y"}, Value: 3}}},
	)
	assert.ErrorIs(t, err, ErrNotFound)

	snap, _ := m.Get(ctx, Users, "u1")
	assert.Equal(t, float64(1), decode(t, snap)["x"])
}

func TestMemoryApplyIfAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, Kingdoms, "K", map[string]any{
		"weeklyWinners": map[string]any{},
	}))

	guard := Guard{Collection: Kingdoms, ID: "K", Path: []string{"weeklyWinners", "2025-W1"}}
	update := DocUpdate{
		Collection: Kingdoms,
		ID:         "K",
		Fields:     []Field{{Path: []string{"weeklyWinners", "2025-W1"}, Value: "kingdom"}},
	}

	require.NoError(t, m.ApplyIfAbsent(ctx, guard, update))
	assert.ErrorIs(t, m.ApplyIfAbsent(ctx, guard, update), ErrGuardExists)

	missing := Guard{Collection: Kingdoms, ID: "nope", Path: []string{"weeklyWinners", "2025-W1"}}
	assert.ErrorIs(t, m.ApplyIfAbsent(ctx, missing, update), ErrNotFound)
}

func TestMemorySubscribe(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{"n": 0}))

	var seen []Snapshot
	cancel, err := m.Subscribe(ctx, Users, "u1", func(snap Snapshot) {
		seen = append(seen, snap)
	})
	require.NoError(t, err)

	require.NoError(t, m.Apply(ctx, DocUpdate{
		Collection: Users, ID: "u1",
		Fields: []Field{{Path: []string{"n"}, Value: 1}},
	}))
	require.Len(t, seen, 1)
	assert.Equal(t, float64(1), decode(t, seen[0])["n"])

	cancel()
	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{"n": 2}))
	assert.Len(t, seen, 1)
}

func TestMemorySubscribeOtherDocUnaffected(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, Users, "u1", map[string]any{}))
	require.NoError(t, m.Set(ctx, Users, "u2", map[string]any{}))

	calls := 0
	cancel, err := m.Subscribe(ctx, Users, "u1", func(Snapshot) { calls++ })
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, m.Set(ctx, Users, "u2", map[string]any{"x": 1}))
	assert.Zero(t, calls)
}
