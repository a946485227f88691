package game

import (
	"slices"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

func (g *Game) Arena() *arena.Arena { return g.arena }

func (g *Game) Outcome() Outcome { return g.outcome }

func (g *Game) Done() bool { return g.outcome != Running }

// Winner is set once the outcome is Won.
func (g *Game) Winner() (host.PlayerID, bool) {
	return g.winner, g.outcome == Won
}

func (g *Game) Role(id host.PlayerID) Role {
	if _, ok := g.participants[id]; ok {
		return RoleParticipant
	}
	if _, ok := g.spectators[id]; ok {
		return RoleSpectator
	}
	return RoleNone
}

// Participants returns the remaining participants, sorted.
func (g *Game) Participants() []host.PlayerID { return sortedIDs(g.participants) }

// Spectators returns the spectators, sorted.
func (g *Game) Spectators() []host.PlayerID { return sortedIDs(g.spectators) }

// HasSnapshot reports whether the game still holds a snapshot for id.
func (g *Game) HasSnapshot(id host.PlayerID) bool { return g.snapshots.Has(id) }

func sortedIDs(set map[host.PlayerID]struct{}) []host.PlayerID {
	ids := make([]host.PlayerID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
