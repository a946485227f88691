// Package store keeps arenas, the lobby schedule and in-flight snapshots
// across restarts.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Store interface {
	LoadArenas(ctx context.Context) ([]arena.Arena, error)
	SaveArena(ctx context.Context, a arena.Arena) error
	DeleteArena(ctx context.Context, id string) error

	// LoadNextLobby reports false when no time was ever saved.
	LoadNextLobby(ctx context.Context) (time.Time, bool, error)
	SaveNextLobby(ctx context.Context, at time.Time) error

	LoadSnapshots(ctx context.Context) ([]snapshot.Snapshot, error)
	SaveSnapshot(ctx context.Context, s snapshot.Snapshot) error
	DeleteSnapshot(ctx context.Context, player host.PlayerID) error

	Close() error
}

// Open connects to the named backend. target is a file path for sqlite and a
// DSN for postgres.
func Open(ctx context.Context, driver, target string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, target)
	case DriverPostgres:
		return OpenPostgres(ctx, target)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// State is everything a server needs at startup.
type State struct {
	Arenas      []arena.Arena
	NextLobbyAt time.Time
	HasSchedule bool
	Snapshots   []snapshot.Snapshot
}

func LoadState(ctx context.Context, s Store) (State, error) {
	var st State
	var err error
	if st.Arenas, err = s.LoadArenas(ctx); err != nil {
		return st, fmt.Errorf("load arenas: %w", err)
	}
	if st.NextLobbyAt, st.HasSchedule, err = s.LoadNextLobby(ctx); err != nil {
		return st, fmt.Errorf("load schedule: %w", err)
	}
	if st.Snapshots, err = s.LoadSnapshots(ctx); err != nil {
		return st, fmt.Errorf("load snapshots: %w", err)
	}
	return st, nil
}
