package session

import (
	"time"

	"github.com/DoyleJ11/lastmanstanding/internal/game"
	"github.com/DoyleJ11/lastmanstanding/internal/lobby"
)

// State is exactly one of Idle, *InLobby or *InGame.
type State interface{ isState() }

type Idle struct{}

type InLobby struct {
	Lobby     *lobby.Lobby
	StartedAt time.Time
	// LastAnnounced is the smallest countdown threshold, in seconds, already
	// broadcast for this lobby. It only shrinks.
	LastAnnounced int
}

type InGame struct {
	Game *game.Game
}

func (Idle) isState()     {}
func (*InLobby) isState() {}
func (*InGame) isState()  {}

type Phase string

const (
	PhaseIdle  Phase = "idle"
	PhaseLobby Phase = "lobby"
	PhaseGame  Phase = "game"
)

func PhaseOf(s State) Phase {
	switch s.(type) {
	case *InLobby:
		return PhaseLobby
	case *InGame:
		return PhaseGame
	default:
		return PhaseIdle
	}
}
