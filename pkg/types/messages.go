package types

import "time"

// Client -> Server (HTTP bodies)
// Vote:            { arena: string }
// Schedule:        { at?: RFC3339, in_sec?: number }
// CreateArena:     { name: string, pos1: BlockPos, pos2: BlockPos }
// SetRegion:       { pos1: BlockPos, pos2: BlockPos }
// Rename:          { name: string }
// AddSpawn:        Location
// PutPlayer:       Location (connects the player, or moves them when online)
//
// Server -> Client (HTTP replies)
// Reply:
//   message: string // rendered template, may be empty
//   error: string   // set on failure
//   spawn_id: number // AddSpawn only
//
// Server -> Client (websocket frames, see internal/types)
// Broadcast:
//   message: string
// Status:
//   status: Status

type BlockPos struct {
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw,omitempty"`
	Pitch float32 `json:"pitch,omitempty"`
}

type VoteRequest struct {
	Arena string `json:"arena"`
}

// ScheduleRequest sets the next lobby time. At wins over InSeconds.
type ScheduleRequest struct {
	At        *time.Time `json:"at,omitempty"`
	InSeconds int        `json:"in_sec,omitempty"`
}

type CreateArenaRequest struct {
	Name string   `json:"name"`
	Pos1 BlockPos `json:"pos1"`
	Pos2 BlockPos `json:"pos2"`
}

type RegionRequest struct {
	Pos1 BlockPos `json:"pos1"`
	Pos2 BlockPos `json:"pos2"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type Reply struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	SpawnID int    `json:"spawn_id,omitempty"`
}
