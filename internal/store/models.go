package store

import (
	"encoding/json"
	"time"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

const nextLobbyKey = "next_lobby_at"

// Row types shared by both backends. The gorm tags drive the postgres schema;
// the sqlite schema in sqlite.go mirrors them.

type ArenaModel struct {
	ID        string `gorm:"primaryKey;type:text"`
	Name      string `gorm:"not null;index"`
	World     string `gorm:"not null"`
	MinX      int
	MinY      int
	MinZ      int
	MaxX      int
	MaxY      int
	MaxZ      int
	Spawns    []SpawnModel `gorm:"foreignKey:ArenaID;constraint:OnDelete:CASCADE"`
	UpdatedAt time.Time
}

func (ArenaModel) TableName() string { return "arenas" }

type SpawnModel struct {
	ArenaID string `gorm:"primaryKey;type:text"`
	Idx     int    `gorm:"primaryKey"`
	World   string `gorm:"not null"`
	X       float64
	Y       float64
	Z       float64
	Yaw     float32
	Pitch   float32
}

func (SpawnModel) TableName() string { return "spawns" }

type ScheduleModel struct {
	Key string    `gorm:"primaryKey;type:text"`
	At  time.Time `gorm:"not null"`
}

func (ScheduleModel) TableName() string { return "schedule" }

type SnapshotModel struct {
	Player    string `gorm:"primaryKey;type:text"`
	Data      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SnapshotModel) TableName() string { return "snapshots" }

func arenaModel(a arena.Arena) ArenaModel {
	m := ArenaModel{
		ID:    a.ID,
		Name:  a.Name,
		World: a.Region.World,
		MinX:  a.Region.Min.X,
		MinY:  a.Region.Min.Y,
		MinZ:  a.Region.Min.Z,
		MaxX:  a.Region.Max.X,
		MaxY:  a.Region.Max.Y,
		MaxZ:  a.Region.Max.Z,
	}
	for i, sp := range a.Spawns {
		m.Spawns = append(m.Spawns, SpawnModel{
			ArenaID: a.ID,
			Idx:     i,
			World:   sp.World,
			X:       sp.X,
			Y:       sp.Y,
			Z:       sp.Z,
			Yaw:     sp.Yaw,
			Pitch:   sp.Pitch,
		})
	}
	return m
}

// Arena converts back; Spawns must be ordered by Idx.
func (m ArenaModel) Arena() arena.Arena {
	a := arena.Arena{
		ID:   m.ID,
		Name: m.Name,
		Region: geom.Region{
			World: m.World,
			Min:   geom.Vec3{X: m.MinX, Y: m.MinY, Z: m.MinZ},
			Max:   geom.Vec3{X: m.MaxX, Y: m.MaxY, Z: m.MaxZ},
		},
	}
	for _, sp := range m.Spawns {
		a.Spawns = append(a.Spawns, geom.Location{
			World: sp.World,
			X:     sp.X,
			Y:     sp.Y,
			Z:     sp.Z,
			Yaw:   sp.Yaw,
			Pitch: sp.Pitch,
		})
	}
	return a
}

func snapshotModel(s snapshot.Snapshot) (SnapshotModel, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return SnapshotModel{}, err
	}
	return SnapshotModel{Player: string(s.Player), Data: string(raw), UpdatedAt: time.Now().UTC()}, nil
}

func (m SnapshotModel) Snapshot() (snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	err := json.Unmarshal([]byte(m.Data), &s)
	return s, err
}
