package hub

import (
	"context"
	"time"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
	pub "github.com/DoyleJ11/lastmanstanding/pkg/types"
)

// Helpers for callers outside the hub goroutine. Each sends one message and
// waits for the reply, giving up when ctx ends or the hub stops.

func (h *Hub) Join(ctx context.Context, id host.PlayerID) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Join{Player: id, Reply: reply}, reply)
}

func (h *Hub) Quit(ctx context.Context, id host.PlayerID) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Quit{Player: id, Reply: reply}, reply)
}

func (h *Hub) Vote(ctx context.Context, id host.PlayerID, arenaName string) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Vote{Player: id, Arena: arenaName, Reply: reply}, reply)
}

func (h *Hub) Spectate(ctx context.Context, id host.PlayerID) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Spectate{Player: id, Reply: reply}, reply)
}

func (h *Hub) PlayerDeath(ctx context.Context, id host.PlayerID) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, PlayerDeath{Player: id, Reply: reply}, reply)
}

func (h *Hub) Disconnect(ctx context.Context, id host.PlayerID) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Disconnect{Player: id, Reply: reply}, reply)
}

func (h *Hub) Start(ctx context.Context) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, StartLobby{Reply: reply}, reply)
}

func (h *Hub) Stop(ctx context.Context) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, StopSession{Reply: reply}, reply)
}

func (h *Hub) Schedule(ctx context.Context, at time.Time) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Schedule{At: at, Reply: reply}, reply)
}

func (h *Hub) Tick(ctx context.Context, now time.Time) Result {
	reply := make(chan Result, 1)
	return ask(ctx, h, Tick{Now: now, Reply: reply}, reply)
}

func (h *Hub) Status(ctx context.Context) (pub.Status, error) {
	reply := make(chan pub.Status, 1)
	if err := h.send(ctx, GetStatus{Reply: reply}); err != nil {
		return pub.Status{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return pub.Status{}, ctx.Err()
	case <-h.done:
		return pub.Status{}, ErrClosed
	}
}

// Shutdown stops the hub, restoring every player, and waits for it to finish.
func (h *Hub) Shutdown(ctx context.Context) error {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrClosed
	}
}

func ask(ctx context.Context, h *Hub, m HubMsg, reply <-chan Result) Result {
	if err := h.send(ctx, m); err != nil {
		return Result{Err: err}
	}
	select {
	case r := <-reply:
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case <-h.done:
		return Result{Err: ErrClosed}
	}
}
