package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

var _ Store = (*SQLite)(nil)
var _ Store = (*Postgres)(nil)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "lms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func colosseum() arena.Arena {
	return arena.Arena{
		ID:   "c0ffee",
		Name: "Colosseum",
		Region: geom.Region{
			World: "world",
			Min:   geom.Vec3{X: -10, Y: 0, Z: -10},
			Max:   geom.Vec3{X: 10, Y: 80, Z: 10},
		},
		Spawns: []geom.Location{
			{World: "world", X: 1.5, Y: 64, Z: 1.5, Yaw: 90},
			{World: "world", X: -3.5, Y: 64, Z: 2.5, Pitch: -10},
		},
	}
}

func TestSQLite_Arenas(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	got, err := s.LoadArenas(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	a := colosseum()
	require.NoError(t, s.SaveArena(ctx, a))
	other := arena.Arena{ID: "b", Name: "Arena", Region: a.Region}
	require.NoError(t, s.SaveArena(ctx, other))

	got, err = s.LoadArenas(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Arena", got[0].Name, "ordered by name")
	assert.Empty(t, got[0].Spawns)
	assert.Equal(t, a, got[1])

	a.Name = "Pit"
	a.Spawns = a.Spawns[1:]
	require.NoError(t, s.SaveArena(ctx, a))
	got, err = s.LoadArenas(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[1])

	require.NoError(t, s.DeleteArena(ctx, a.ID))
	got, err = s.LoadArenas(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestSQLite_NextLobby(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, ok, err := s.LoadNextLobby(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 7, 4, 18, 30, 0, 0, time.FixedZone("x", 3600))
	require.NoError(t, s.SaveNextLobby(ctx, at))
	require.NoError(t, s.SaveNextLobby(ctx, at.Add(time.Hour)))

	got, ok, err := s.LoadNextLobby(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(at.Add(time.Hour)), "got %s", got)
}

func TestSQLite_Snapshots(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	snap := snapshot.Snapshot{
		Player:   "steve",
		Location: geom.Location{World: "world", X: 3, Y: 70, Z: -2},
		Inventory: host.Inventory{
			Contents: []host.Item{{Material: "dirt", Amount: 12}, {}, {Material: "bow", Amount: 1, Enchantments: map[string]int{"power": 3}}},
		},
		Effects: []host.Effect{{Type: "speed", Amplifier: 1, Duration: 30 * time.Second}},
		Mode:    host.ModeCreative,
	}
	require.NoError(t, s.SaveSnapshot(ctx, snap))
	require.NoError(t, s.SaveSnapshot(ctx, snapshot.Snapshot{Player: "alex", Mode: host.ModeSurvival}))

	got, err := s.LoadSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, host.PlayerID("alex"), got[0].Player)
	assert.Equal(t, snap, got[1])

	require.NoError(t, s.DeleteSnapshot(ctx, "steve"))
	require.NoError(t, s.DeleteSnapshot(ctx, "steve"), "deleting twice is fine")
	got, err = s.LoadSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
