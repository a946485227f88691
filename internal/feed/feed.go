// Package feed fans broadcasts and status updates out to websocket clients.
package feed

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/types"
	pub "github.com/DoyleJ11/lastmanstanding/pkg/types"
)

type Msg interface{ isFeedMsg() }

type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

func (Join) isFeedMsg() {}

type Leave struct{ ClientID string }

func (Leave) isFeedMsg() {}

type Publish struct{ Message string }

func (Publish) isFeedMsg() {}

type PublishStatus struct{ Status pub.Status }

func (PublishStatus) isFeedMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isFeedMsg() {}

type Shutdown struct{}

func (Shutdown) isFeedMsg() {}

type View struct {
	Version    int
	NumClients int
}

// Feed is an actor; all state lives on its goroutine.
type Feed struct {
	inbox   chan Msg
	version int
	status  *pub.Status
	clients map[string]chan types.ServerMessage
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func New(parent context.Context, log *zap.Logger) *Feed {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	f := &Feed{
		inbox:   make(chan Msg, 256),
		clients: make(map[string]chan types.ServerMessage),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.Named("feed"),
	}
	go f.loop()
	return f
}

func (f *Feed) Inbox() chan<- Msg { return f.inbox }

// Broadcast queues a chat broadcast without blocking. It satisfies
// host.Broadcaster.
func (f *Feed) Broadcast(msg string) {
	f.log.Info("broadcast", zap.String("message", msg))
	f.send(Publish{Message: msg})
}

// PublishStatus queues a status frame without blocking. Unchanged statuses
// are not re-sent.
func (f *Feed) PublishStatus(s pub.Status) {
	f.send(PublishStatus{Status: s})
}

// Join registers a client outbox. It waits for room in the inbox unless the
// feed is shutting down.
func (f *Feed) Join(clientID string, out chan types.ServerMessage) {
	f.deliver(Join{ClientID: clientID, Outbox: out})
}

func (f *Feed) Leave(clientID string) {
	f.deliver(Leave{ClientID: clientID})
}

func (f *Feed) deliver(m Msg) {
	select {
	case f.inbox <- m:
	case <-f.ctx.Done():
	}
}

func (f *Feed) send(m Msg) {
	select {
	case f.inbox <- m:
	case <-f.ctx.Done():
	default:
		f.log.Warn("feed inbox full, frame dropped")
	}
}

func (f *Feed) loop() {
	for {
		select {
		case <-f.ctx.Done():
			f.shutdown()
			return

		case m := <-f.inbox:
			switch msg := m.(type) {
			case Join:
				f.clients[msg.ClientID] = msg.Outbox
				if f.status != nil {
					select {
					case msg.Outbox <- f.statusFrame():
					default:
					}
				}

			case Leave:
				if ch, ok := f.clients[msg.ClientID]; ok {
					close(ch)
					delete(f.clients, msg.ClientID)
				}

			case Publish:
				f.version++
				f.broadcast(types.ServerMessage{Type: types.FrameBroadcast, Version: f.version, Message: msg.Message})

			case PublishStatus:
				if f.status != nil && reflect.DeepEqual(*f.status, msg.Status) {
					break
				}
				s := msg.Status
				f.status = &s
				f.version++
				f.broadcast(f.statusFrame())

			case GetView:
				msg.Reply <- View{Version: f.version, NumClients: len(f.clients)}

			case Shutdown:
				f.shutdown()
				return
			}
		}
	}
}

func (f *Feed) statusFrame() types.ServerMessage {
	return types.ServerMessage{Type: types.FrameStatus, Version: f.version, Status: f.status}
}

func (f *Feed) shutdown() {
	for id, ch := range f.clients {
		close(ch)
		delete(f.clients, id)
	}
	f.cancel()
}

func (f *Feed) broadcast(frame types.ServerMessage) {
	for id, ch := range f.clients {
		select {
		case ch <- frame:
		default:
			// slow client
			f.log.Info("dropping slow client", zap.String("client", id))
			close(ch)
			delete(f.clients, id)
		}
	}
}
