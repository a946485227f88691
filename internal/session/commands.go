package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/game"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

// Join queues a player for the open lobby. It reports false when the player
// was already queued.
func (o *Orchestrator) Join(id host.PlayerID) (bool, error) {
	st, ok := o.state.(*InLobby)
	if !ok {
		return false, ErrNoLobby
	}
	return st.Lobby.Enqueue(id), nil
}

// Vote records the player's ballot for the named arena. The ballot holds the
// arena's identity, so a rename during the lobby keeps the vote.
func (o *Orchestrator) Vote(id host.PlayerID, arenaName string) (*arena.Arena, error) {
	st, ok := o.state.(*InLobby)
	if !ok {
		return nil, ErrNoLobby
	}
	a, ok := o.deps.Arenas.Lookup(arenaName)
	if !ok {
		return nil, arena.ErrNotFound
	}
	if err := st.Lobby.Vote(id, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// Quit takes the player out of the game or the lobby. False when they were in
// neither.
func (o *Orchestrator) Quit(id host.PlayerID) bool {
	switch st := o.state.(type) {
	case *InGame:
		return st.Game.Exit(id)
	case *InLobby:
		return st.Lobby.Leave(id)
	}
	return false
}

// Spectate toggles spectating. A spectator stops spectating; a participant
// gives up their place and starts spectating. It reports whether the player
// is now a spectator.
func (o *Orchestrator) Spectate(id host.PlayerID) (bool, error) {
	st, ok := o.state.(*InGame)
	if !ok {
		return false, ErrNoGame
	}
	g := st.Game
	switch g.Role(id) {
	case game.RoleSpectator:
		g.Exit(id)
		return false, nil
	case game.RoleParticipant:
		g.Exit(id)
	}
	if err := g.AddSpectator(id); err != nil {
		return false, err
	}
	return true, nil
}

// PlayerDeath forwards a death event from the host. False when the player
// was not in the game.
func (o *Orchestrator) PlayerDeath(id host.PlayerID) bool {
	st, ok := o.state.(*InGame)
	if !ok {
		return false
	}
	return st.Game.PlayerDeath(id)
}

// Disconnect handles a player leaving the server. Their snapshot stays
// pending until they come back.
func (o *Orchestrator) Disconnect(id host.PlayerID) {
	switch st := o.state.(type) {
	case *InGame:
		if st.Game.Exit(id) {
			o.log.Info("player left mid-game", zap.String("player", string(id)))
		}
	case *InLobby:
		st.Lobby.Leave(id)
	}
}

// RequestStart makes the next tick open a lobby, ignoring the schedule.
func (o *Orchestrator) RequestStart() error {
	if _, ok := o.state.(Idle); !ok {
		return ErrAlreadyRunning
	}
	o.startRequested = true
	return nil
}

// RequestStop makes the next tick stop the game or close the lobby.
func (o *Orchestrator) RequestStop() error {
	if _, ok := o.state.(Idle); ok {
		return ErrNoGame
	}
	o.stopRequested = true
	return nil
}

// Schedule moves the next lobby opening.
func (o *Orchestrator) Schedule(at time.Time) {
	o.nextLobbyAt = at
	o.persistSchedule()
	o.log.Info("next lobby scheduled", zap.Time("at", at))
}

// Shutdown stops everything immediately, restoring every player. The schedule
// is left as it was.
func (o *Orchestrator) Shutdown() {
	switch st := o.state.(type) {
	case *InGame:
		st.Game.Stop()
	case *InLobby:
		o.log.Info("lobby discarded on shutdown", zap.Int("queued", st.Lobby.Size()))
	}
	o.state = Idle{}
	o.startRequested = false
	o.stopRequested = false
}
