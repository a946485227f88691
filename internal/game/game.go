// Package game runs one last-player-standing match in an arena.
package game

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/reward"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

var ErrAlreadyInGame = errors.New("player already has a role in the game")
var ErrNotRunning = errors.New("game is not running")

// ErrRestorePending means the player still has an earlier snapshot that could
// not be applied. No new snapshot is taken until it is.
var ErrRestorePending = errors.New("player has a pending restore")

type Outcome string

const (
	Running   Outcome = "running"
	Won       Outcome = "won"
	Cancelled Outcome = "cancelled"
)

type Role string

const (
	RoleNone        Role = ""
	RoleParticipant Role = "participant"
	RoleSpectator   Role = "spectator"
)

// Deps are the collaborators a game talks to.
type Deps struct {
	Players   host.Players
	Broadcast host.Broadcaster
	Restorer  *snapshot.Restorer
	Rewards   reward.Issuer
	Log       *zap.Logger
}

// Game is a running match. Every participant and spectator holds exactly one
// snapshot in the game's book. Like the rest of the session state it belongs
// to the tick goroutine.
type Game struct {
	arena    *arena.Arena
	kit      settings.ArenaSettings
	messages settings.Messages

	participants map[host.PlayerID]struct{}
	spectators   map[host.PlayerID]struct{}
	snapshots    *snapshot.Book

	outcome Outcome
	winner  host.PlayerID

	deps Deps
	log  *zap.Logger
}

// New prepares a game; Start moves the players in. The arena must have at
// least one spawn.
func New(a *arena.Arena, players []host.PlayerID, kit settings.ArenaSettings, msgs settings.Messages, deps Deps) (*Game, error) {
	if !a.Playable() {
		return nil, arena.ErrNoSpawns
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	g := &Game{
		arena:        a,
		kit:          kit,
		messages:     msgs,
		participants: make(map[host.PlayerID]struct{}, len(players)),
		spectators:   make(map[host.PlayerID]struct{}),
		snapshots:    snapshot.NewBook(),
		outcome:      Running,
		deps:         deps,
		log:          deps.Log.Named("game").With(zap.String("arena", a.Name)),
	}
	for _, id := range players {
		g.participants[id] = struct{}{}
	}
	return g, nil
}

// Start snapshots every participant, then teleports and equips them. All
// snapshots are taken before anyone is touched. Players who cannot be
// snapshotted are left out of the game. When that leaves nobody, or leaves a
// single player out of several, the game is cancelled before anyone moves.
func (g *Game) Start() {
	invited := len(g.participants)
	for _, id := range g.Participants() {
		snap, err := g.capture(id)
		if err != nil {
			g.log.Warn("participant skipped", zap.String("player", string(id)), zap.Error(err))
			delete(g.participants, id)
			continue
		}
		g.keep(snap)
	}

	if n := len(g.participants); n == 0 || (n == 1 && invited > 1) {
		g.log.Warn("game cancelled: too few participants", zap.Int("invited", invited), zap.Int("captured", n))
		for _, id := range g.Participants() {
			delete(g.participants, id)
			g.restore(id)
		}
		g.finish(Cancelled)
		return
	}

	for _, id := range g.Participants() {
		inv := host.Inventory{Contents: slices.Clone(g.kit.Inventory), Armour: g.kit.Armour}
		if err := g.outfit(id, inv, host.ModeAdventure); err != nil {
			g.log.Warn("participant not fully equipped", zap.String("player", string(id)), zap.Error(err))
		}
	}
	g.log.Info("game started", zap.Int("participants", len(g.participants)))
}

// AddSpectator snapshots the player afresh and drops them into the arena in
// spectator mode. A player already in the game must exit first.
func (g *Game) AddSpectator(id host.PlayerID) error {
	if g.outcome != Running {
		return ErrNotRunning
	}
	if g.Role(id) != RoleNone {
		return ErrAlreadyInGame
	}
	snap, err := g.capture(id)
	if err != nil {
		return err
	}
	g.keep(snap)
	g.spectators[id] = struct{}{}
	if err := g.outfit(id, host.Inventory{}, host.ModeSpectator); err != nil {
		g.log.Warn("spectator not fully set up", zap.String("player", string(id)), zap.Error(err))
	}
	return nil
}

// Pulse removes everyone who has left the arena region. Leaving the region
// counts as quitting. Players whose location cannot be read are skipped until
// the next pulse.
func (g *Game) Pulse() {
	for _, id := range g.Participants() {
		if g.outcome != Running {
			return
		}
		if g.outside(id) {
			g.log.Info("participant left the arena", zap.String("player", string(id)))
			g.leave(id, RoleParticipant)
		}
	}
	for _, id := range g.Spectators() {
		if g.outcome != Running {
			return
		}
		if g.outside(id) {
			g.leave(id, RoleSpectator)
		}
	}
}

// PlayerDeath respawns and restores a player who died in the game. False when
// the player held no role.
func (g *Game) PlayerDeath(id host.PlayerID) bool {
	role := g.Role(id)
	if role == RoleNone {
		return false
	}
	if err := g.deps.Players.Respawn(id); err != nil {
		g.log.Debug("respawn failed", zap.String("player", string(id)), zap.Error(err))
	}
	g.log.Info("player died", zap.String("player", string(id)), zap.String("role", string(role)))
	g.leave(id, role)
	return true
}

// Exit lets a player quit. False when the player held no role, so a second
// call for the same player is a no-op.
func (g *Game) Exit(id host.PlayerID) bool {
	role := g.Role(id)
	if role == RoleNone {
		return false
	}
	g.leave(id, role)
	return true
}

// Stop cancels a running game, restoring everyone. False if the game had
// already finished.
func (g *Game) Stop() bool {
	if g.outcome != Running {
		return false
	}
	for _, id := range g.Participants() {
		delete(g.participants, id)
		g.restore(id)
	}
	g.finish(Cancelled)
	host.Announce(g.deps.Broadcast, g.messages.GameCancelled)
	return true
}

func (g *Game) leave(id host.PlayerID, role Role) {
	switch role {
	case RoleParticipant:
		delete(g.participants, id)
	case RoleSpectator:
		delete(g.spectators, id)
	}
	g.restore(id)
	if role == RoleParticipant {
		g.searchWinner()
	}
}

// searchWinner ends the game once a single participant is left. Nobody wins
// when the count drops to zero, which only a one-player game can reach.
func (g *Game) searchWinner() {
	if g.outcome != Running {
		return
	}
	switch len(g.participants) {
	case 0:
		g.log.Info("game ended without a winner")
		g.finish(Cancelled)

	case 1:
		winner := g.Participants()[0]
		delete(g.participants, winner)
		g.restore(winner)
		g.winner = winner
		host.Announce(g.deps.Broadcast, settings.Format(g.messages.GameComplete, "player", string(winner)))
		if err := g.deps.Rewards.Grant(winner, g.arena.Name); err != nil {
			g.log.Error("reward failed", zap.String("player", string(winner)), zap.Error(err))
		}
		g.log.Info("game won", zap.String("winner", string(winner)))
		g.finish(Won)
	}
}

// finish restores any remaining spectators and fixes the outcome.
func (g *Game) finish(o Outcome) {
	for _, id := range g.Spectators() {
		delete(g.spectators, id)
		g.restore(id)
	}
	g.outcome = o
}

// capture settles any parked restore first, so a player never holds two
// snapshots and the journaled one is always their state from before the event.
func (g *Game) capture(id host.PlayerID) (snapshot.Snapshot, error) {
	if !g.deps.Restorer.Settle(id) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrRestorePending, id)
	}
	return snapshot.Capture(g.deps.Players, id)
}

func (g *Game) keep(s snapshot.Snapshot) {
	g.snapshots.Put(s)
	g.deps.Restorer.Record(s)
}

// restore consumes the player's snapshot. A missing snapshot is fine: the
// player was already restored.
func (g *Game) restore(id host.PlayerID) {
	snap, ok := g.snapshots.Take(id)
	if !ok {
		return
	}
	g.deps.Restorer.Restore(snap)
}

func (g *Game) outfit(id host.PlayerID, inv host.Inventory, mode host.GameMode) error {
	p := g.deps.Players
	spawn, err := g.arena.RandomSpawn()
	if err != nil {
		return err
	}
	err = multierr.Append(err, p.Teleport(id, spawn))
	err = multierr.Append(err, p.SetEffects(id, nil))
	err = multierr.Append(err, p.SetInventory(id, inv))
	err = multierr.Append(err, p.SetGameMode(id, mode))
	return err
}

func (g *Game) outside(id host.PlayerID) bool {
	loc, err := g.deps.Players.Location(id)
	if err != nil {
		g.log.Debug("location unavailable", zap.String("player", string(id)), zap.Error(err))
		return false
	}
	return !g.arena.Region.ContainsLocation(loc)
}
