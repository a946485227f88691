// Package session drives the Idle -> lobby -> game -> Idle cycle. The
// Orchestrator is not safe for concurrent use; the hub owns it and calls it from
// a single goroutine.
package session

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/game"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/lobby"
	"github.com/DoyleJ11/lastmanstanding/internal/reward"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

var ErrNoLobby = errors.New("no lobby is open")
var ErrNoGame = errors.New("no game is running")
var ErrAlreadyRunning = errors.New("a lobby or game is already running")

// Arenas is the read side of the arena registry.
type Arenas interface {
	Lookup(name string) (*arena.Arena, bool)
	LookupID(id string) (*arena.Arena, bool)
	Random() (*arena.Arena, bool)
	Len() int
}

// ScheduleSink persists the next lobby time. It must not block.
type ScheduleSink interface {
	SaveNextLobby(at time.Time)
}

type Deps struct {
	Arenas    Arenas
	Settings  *settings.Provider
	Players   host.Players
	Broadcast host.Broadcaster
	Restorer  *snapshot.Restorer
	Rewards   reward.Issuer
	Schedule  ScheduleSink
	Log       *zap.Logger
}

type Orchestrator struct {
	deps        Deps
	state       State
	nextLobbyAt time.Time

	startRequested bool
	stopRequested  bool

	log *zap.Logger
}

// New starts Idle with the persisted next lobby time. A zero time opens a
// lobby on the first tick.
func New(deps Deps, nextLobbyAt time.Time) *Orchestrator {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Orchestrator{
		deps:        deps,
		state:       Idle{},
		nextLobbyAt: nextLobbyAt,
		log:         deps.Log.Named("session"),
	}
}

func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) NextLobbyAt() time.Time { return o.nextLobbyAt }

// Tick advances the machine once. The first matching step wins.
func (o *Orchestrator) Tick(now time.Time) {
	o.deps.Restorer.Retry()
	s := o.deps.Settings.Get()

	if o.stopRequested {
		o.stopRequested = false
		o.stop(now, s)
		return
	}

	switch st := o.state.(type) {
	case *InGame:
		st.Game.Pulse()
		if st.Game.Done() {
			o.log.Info("game finished", zap.String("outcome", string(st.Game.Outcome())))
			o.toIdle(now, s)
		}
		return
	}

	if o.deps.Arenas.Len() == 0 {
		if _, ok := o.state.(*InLobby); ok {
			o.log.Warn("lobby closed: no arenas registered")
			o.broadcast(s.Messages.LobbyCancelled)
			o.toIdle(now, s)
		}
		o.startRequested = false
		return
	}

	switch st := o.state.(type) {
	case Idle:
		if o.startRequested || !now.Before(o.nextLobbyAt) {
			o.openLobby(now, s)
		}

	case *InLobby:
		if now.Sub(st.StartedAt) >= s.Lobby.CountdownDuration() {
			o.startGame(now, st, s)
			return
		}
		o.announce(now, st, s)
	}
}

func (o *Orchestrator) openLobby(now time.Time, s *settings.Settings) {
	o.startRequested = false
	o.state = &InLobby{
		Lobby:         lobby.New(),
		StartedAt:     now,
		LastAnnounced: math.MaxInt,
	}
	o.log.Info("lobby opened")
	o.broadcast(s.Messages.LobbyStart)
}

// announce broadcasts at most one countdown threshold per tick: the smallest
// threshold not yet announced that the remaining time has reached.
func (o *Orchestrator) announce(now time.Time, st *InLobby, s *settings.Settings) {
	remaining := s.Lobby.CountdownDuration() - now.Sub(st.StartedAt)
	for _, secs := range s.Lobby.AnnouncementTimes {
		if secs >= st.LastAnnounced {
			return
		}
		threshold := time.Duration(secs) * time.Second
		if remaining <= threshold {
			st.LastAnnounced = secs
			o.broadcast(settings.Format(s.Messages.LobbyCountdown, "time", settings.FormatDuration(threshold)))
			return
		}
	}
}

func (o *Orchestrator) startGame(now time.Time, st *InLobby, s *settings.Settings) {
	a := o.resolveArena(st.Lobby)
	if a == nil {
		o.log.Warn("lobby closed: no arena has spawns")
		o.broadcast(s.Messages.LobbyCancelled)
		o.toIdle(now, s)
		return
	}

	kit := s.Arena(a.Name)
	if st.Lobby.Size() < kit.MinPlayers {
		o.log.Info("lobby failed",
			zap.String("arena", a.Name),
			zap.Int("queued", st.Lobby.Size()),
			zap.Int("min_players", kit.MinPlayers))
		o.broadcast(s.Messages.LobbyFailedPlayers)
		o.toIdle(now, s)
		return
	}

	g, err := game.New(a, st.Lobby.Players(), kit, s.Messages, game.Deps{
		Players:   o.deps.Players,
		Broadcast: o.deps.Broadcast,
		Restorer:  o.deps.Restorer,
		Rewards:   o.deps.Rewards,
		Log:       o.deps.Log,
	})
	if err != nil {
		o.log.Warn("game not started", zap.String("arena", a.Name), zap.Error(err))
		o.toIdle(now, s)
		return
	}
	g.Start()
	if g.Done() {
		o.log.Warn("game cancelled at start", zap.String("arena", a.Name))
		o.broadcast(s.Messages.LobbyFailedPlayers)
		o.toIdle(now, s)
		return
	}
	o.state = &InGame{Game: g}
	o.broadcast(s.Messages.GameTeleported)
}

// resolveArena prefers the most voted arena, falling back to a random one when
// nobody voted or the winner of the vote is gone or has no spawns.
func (o *Orchestrator) resolveArena(l *lobby.Lobby) *arena.Arena {
	if id, ok := l.HighestVoted(); ok {
		if a, ok := o.deps.Arenas.LookupID(id); ok && a.Playable() {
			return a
		}
		o.log.Info("voted arena unavailable", zap.String("arena_id", id))
	}
	a, ok := o.deps.Arenas.Random()
	if !ok {
		return nil
	}
	return a
}

func (o *Orchestrator) stop(now time.Time, s *settings.Settings) {
	switch st := o.state.(type) {
	case *InGame:
		st.Game.Stop()
		o.log.Info("game stopped by admin")
		o.toIdle(now, s)
	case *InLobby:
		o.log.Info("lobby stopped by admin")
		o.broadcast(s.Messages.LobbyCancelled)
		o.toIdle(now, s)
	}
}

func (o *Orchestrator) toIdle(now time.Time, s *settings.Settings) {
	o.state = Idle{}
	o.nextLobbyAt = now.Add(s.Lobby.IntervalDuration())
	o.persistSchedule()
}

func (o *Orchestrator) persistSchedule() {
	if o.deps.Schedule != nil {
		o.deps.Schedule.SaveNextLobby(o.nextLobbyAt)
	}
}

func (o *Orchestrator) broadcast(msg string) {
	if host.Announce(o.deps.Broadcast, msg) {
		o.log.Info("broadcast", zap.String("message", msg))
	}
}
