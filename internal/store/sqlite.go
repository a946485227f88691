package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS arenas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			world TEXT NOT NULL,
			min_x INTEGER NOT NULL,
			min_y INTEGER NOT NULL,
			min_z INTEGER NOT NULL,
			max_x INTEGER NOT NULL,
			max_y INTEGER NOT NULL,
			max_z INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_arenas_name ON arenas(name);`,
		`CREATE TABLE IF NOT EXISTS spawns (
			arena_id TEXT NOT NULL REFERENCES arenas(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			world TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			yaw REAL NOT NULL,
			pitch REAL NOT NULL,
			PRIMARY KEY (arena_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS schedule (
			key TEXT PRIMARY KEY,
			at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			player TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) LoadArenas(ctx context.Context) ([]arena.Arena, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, world, min_x, min_y, min_z, max_x, max_y, max_z FROM arenas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var models []ArenaModel
	for rows.Next() {
		var m ArenaModel
		if err := rows.Scan(&m.ID, &m.Name, &m.World, &m.MinX, &m.MinY, &m.MinZ, &m.MaxX, &m.MaxY, &m.MaxZ); err != nil {
			_ = rows.Close()
			return nil, err
		}
		models = append(models, m)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	spawns, err := s.loadSpawns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]arena.Arena, 0, len(models))
	for _, m := range models {
		m.Spawns = spawns[m.ID]
		out = append(out, m.Arena())
	}
	return out, nil
}

func (s *SQLite) loadSpawns(ctx context.Context) (map[string][]SpawnModel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT arena_id, idx, world, x, y, z, yaw, pitch FROM spawns ORDER BY arena_id, idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]SpawnModel)
	for rows.Next() {
		var sp SpawnModel
		if err := rows.Scan(&sp.ArenaID, &sp.Idx, &sp.World, &sp.X, &sp.Y, &sp.Z, &sp.Yaw, &sp.Pitch); err != nil {
			return nil, err
		}
		out[sp.ArenaID] = append(out[sp.ArenaID], sp)
	}
	return out, rows.Err()
}

// SaveArena replaces the arena row and all of its spawns.
func (s *SQLite) SaveArena(ctx context.Context, a arena.Arena) error {
	m := arenaModel(a)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO arenas(id, name, world, min_x, min_y, min_z, max_x, max_y, max_z, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, world=excluded.world,
			min_x=excluded.min_x, min_y=excluded.min_y, min_z=excluded.min_z,
			max_x=excluded.max_x, max_y=excluded.max_y, max_z=excluded.max_z,
			updated_at=excluded.updated_at`,
		m.ID, m.Name, m.World, m.MinX, m.MinY, m.MinZ, m.MaxX, m.MaxY, m.MaxZ, now())
	if err != nil {
		return fmt.Errorf("save arena %s: %w", a.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spawns WHERE arena_id = ?`, m.ID); err != nil {
		return err
	}
	for _, sp := range m.Spawns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO spawns(arena_id, idx, world, x, y, z, yaw, pitch) VALUES(?,?,?,?,?,?,?,?)`,
			sp.ArenaID, sp.Idx, sp.World, sp.X, sp.Y, sp.Z, sp.Yaw, sp.Pitch)
		if err != nil {
			return fmt.Errorf("save spawn %d of %s: %w", sp.Idx, a.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) DeleteArena(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM arenas WHERE id = ?`, id)
	return err
}

func (s *SQLite) LoadNextLobby(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT at FROM schedule WHERE key = ?`, nextLobbyKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad %s %q: %w", nextLobbyKey, raw, err)
	}
	return at, true, nil
}

func (s *SQLite) SaveNextLobby(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule(key, at) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET at=excluded.at`,
		nextLobbyKey, at.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLite) LoadSnapshots(ctx context.Context) ([]snapshot.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player, data FROM snapshots ORDER BY player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []snapshot.Snapshot
	for rows.Next() {
		var m SnapshotModel
		if err := rows.Scan(&m.Player, &m.Data); err != nil {
			return nil, err
		}
		snap, err := m.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot for %s: %w", m.Player, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveSnapshot(ctx context.Context, snap snapshot.Snapshot) error {
	m, err := snapshotModel(snap)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots(player, data, updated_at) VALUES(?,?,?)
		ON CONFLICT(player) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		m.Player, m.Data, m.UpdatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *SQLite) DeleteSnapshot(ctx context.Context, player host.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE player = ?`, string(player))
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }
