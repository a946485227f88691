// Package hub owns the session orchestrator. One goroutine drives the tick and
// applies commands from the inbox, so the game state is never shared.
package hub

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/session"
	pub "github.com/DoyleJ11/lastmanstanding/pkg/types"
)

var ErrClosed = errors.New("hub is shut down")

type HubMsg interface{ isHubMsg() }

// Result is the reply to a command. OK carries the command's boolean answer
// (newly joined, was in the game, now spectating).
type Result struct {
	OK    bool
	Arena *arena.Arena
	Err   error
}

type Join struct {
	Player host.PlayerID
	Reply  chan Result
}

type Quit struct {
	Player host.PlayerID
	Reply  chan Result
}

type Vote struct {
	Player host.PlayerID
	Arena  string
	Reply  chan Result
}

type Spectate struct {
	Player host.PlayerID
	Reply  chan Result
}

type PlayerDeath struct {
	Player host.PlayerID
	Reply  chan Result
}

type Disconnect struct {
	Player host.PlayerID
	Reply  chan Result
}

type StartLobby struct {
	Reply chan Result
}

type StopSession struct {
	Reply chan Result
}

type Schedule struct {
	At    time.Time
	Reply chan Result
}

type GetStatus struct {
	Reply chan pub.Status
}

// Tick advances the orchestrator by hand; tests use it with the ticker off.
type Tick struct {
	Now   time.Time
	Reply chan Result
}

type ShutdownHub struct{}

func (Join) isHubMsg()        {}
func (Quit) isHubMsg()        {}
func (Vote) isHubMsg()        {}
func (Spectate) isHubMsg()    {}
func (PlayerDeath) isHubMsg() {}
func (Disconnect) isHubMsg()  {}
func (StartLobby) isHubMsg()  {}
func (StopSession) isHubMsg() {}
func (Schedule) isHubMsg()    {}
func (GetStatus) isHubMsg()   {}
func (Tick) isHubMsg()        {}
func (ShutdownHub) isHubMsg() {}

// StatusPublisher receives the status after every tick and command.
type StatusPublisher interface {
	PublishStatus(s pub.Status)
}

type Config struct {
	// Interval between ticks. Zero disables the ticker.
	Interval time.Duration
	Clock    func() time.Time
}

type Hub struct {
	inbox  chan HubMsg
	orch   *session.Orchestrator
	status StatusPublisher
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    *zap.Logger
}

func NewHub(parent context.Context, orch *session.Orchestrator, status StatusPublisher, cfg Config, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		orch:   orch,
		status: status,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		log:    log.Named("hub"),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the loop has exited and every player was restored.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)

	var ticks <-chan time.Time
	if h.cfg.Interval > 0 {
		t := time.NewTicker(h.cfg.Interval)
		defer t.Stop()
		ticks = t.C
	}

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case <-ticks:
			h.tick(h.cfg.Clock())

		case m := <-h.inbox:
			now := h.cfg.Clock()
			switch msg := m.(type) {
			case Join:
				ok, err := h.orch.Join(msg.Player)
				msg.Reply <- Result{OK: ok, Err: err}

			case Quit:
				msg.Reply <- Result{OK: h.orch.Quit(msg.Player)}

			case Vote:
				a, err := h.orch.Vote(msg.Player, msg.Arena)
				msg.Reply <- Result{OK: err == nil, Arena: a, Err: err}

			case Spectate:
				ok, err := h.orch.Spectate(msg.Player)
				msg.Reply <- Result{OK: ok, Err: err}

			case PlayerDeath:
				msg.Reply <- Result{OK: h.orch.PlayerDeath(msg.Player)}

			case Disconnect:
				h.orch.Disconnect(msg.Player)
				msg.Reply <- Result{OK: true}

			case StartLobby:
				err := h.orch.RequestStart()
				msg.Reply <- Result{OK: err == nil, Err: err}

			case StopSession:
				err := h.orch.RequestStop()
				msg.Reply <- Result{OK: err == nil, Err: err}

			case Schedule:
				h.orch.Schedule(msg.At)
				msg.Reply <- Result{OK: true}

			case GetStatus:
				msg.Reply <- h.orch.View(now)
				continue

			case Tick:
				h.tick(msg.Now)
				msg.Reply <- Result{OK: true}
				continue

			case ShutdownHub:
				h.shutdown()
				return
			}
			h.publish(now)
		}
	}
}

func (h *Hub) tick(now time.Time) {
	h.orch.Tick(now)
	h.publish(now)
}

func (h *Hub) publish(now time.Time) {
	if h.status != nil {
		h.status.PublishStatus(h.orch.View(now))
	}
}

func (h *Hub) shutdown() {
	h.log.Info("hub shutting down")
	h.orch.Shutdown()
	h.publish(h.cfg.Clock())
	h.cancel()
}
