package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&ArenaModel{}, &SpawnModel{}, &ScheduleModel{}, &SnapshotModel{}); err != nil {
		_ = closeGorm(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error { return closeGorm(p.db) }

func closeGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *Postgres) LoadArenas(ctx context.Context) ([]arena.Arena, error) {
	var models []ArenaModel
	err := p.db.WithContext(ctx).
		Preload("Spawns", func(db *gorm.DB) *gorm.DB { return db.Order("idx") }).
		Order("name").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]arena.Arena, 0, len(models))
	for _, m := range models {
		out = append(out, m.Arena())
	}
	return out, nil
}

// SaveArena replaces the arena row and all of its spawns.
func (p *Postgres) SaveArena(ctx context.Context, a arena.Arena) error {
	m := arenaModel(a)
	spawns := m.Spawns
	m.Spawns = nil
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&m).Error
		if err != nil {
			return fmt.Errorf("save arena %s: %w", a.Name, err)
		}
		if err := tx.Where("arena_id = ?", m.ID).Delete(&SpawnModel{}).Error; err != nil {
			return err
		}
		if len(spawns) == 0 {
			return nil
		}
		return tx.Create(&spawns).Error
	})
}

func (p *Postgres) DeleteArena(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("arena_id = ?", id).Delete(&SpawnModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ArenaModel{ID: id}).Error
	})
}

func (p *Postgres) LoadNextLobby(ctx context.Context) (time.Time, bool, error) {
	var m ScheduleModel
	err := p.db.WithContext(ctx).Where("key = ?", nextLobbyKey).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return m.At, true, nil
}

func (p *Postgres) SaveNextLobby(ctx context.Context, at time.Time) error {
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"at"}),
	}).Create(&ScheduleModel{Key: nextLobbyKey, At: at.UTC()}).Error
}

func (p *Postgres) LoadSnapshots(ctx context.Context) ([]snapshot.Snapshot, error) {
	var models []SnapshotModel
	if err := p.db.WithContext(ctx).Order("player").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]snapshot.Snapshot, 0, len(models))
	for _, m := range models {
		s, err := m.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot for %s: %w", m.Player, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Postgres) SaveSnapshot(ctx context.Context, s snapshot.Snapshot) error {
	m, err := snapshotModel(s)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&m).Error
}

func (p *Postgres) DeleteSnapshot(ctx context.Context, player host.PlayerID) error {
	return p.db.WithContext(ctx).Delete(&SnapshotModel{Player: string(player)}).Error
}
