package types

import "time"

// Status is the read model served by GET /status and pushed on the feed.
type Status struct {
	Phase           string       `json:"phase"` // "idle" | "lobby" | "game"
	NextLobbyAt     *time.Time   `json:"next_lobby_at,omitempty"`
	Lobby           *LobbyStatus `json:"lobby,omitempty"`
	Game            *GameStatus  `json:"game,omitempty"`
	PendingRestores int          `json:"pending_restores"`
}

type LobbyStatus struct {
	StartedAt        time.Time      `json:"started_at"`
	EndsAt           time.Time      `json:"ends_at"`
	RemainingSeconds int            `json:"remaining_sec"`
	Queued           []string       `json:"queued"`
	Votes            map[string]int `json:"votes"` // arena name -> count
}

type GameStatus struct {
	Arena        string   `json:"arena"`
	Participants []string `json:"participants"`
	Spectators   []string `json:"spectators"`
}

type Arena struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	World  string     `json:"world"`
	Min    [3]int     `json:"min"`
	Max    [3]int     `json:"max"`
	Spawns []Location `json:"spawns"`
}
