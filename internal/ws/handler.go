// Package ws streams the broadcast feed to websocket clients and accepts
// player commands from them.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/feed"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/hub"
	"github.com/DoyleJ11/lastmanstanding/internal/types"
)

// Commands is the part of the hub a socket can drive.
type Commands interface {
	Join(ctx context.Context, id host.PlayerID) hub.Result
	Quit(ctx context.Context, id host.PlayerID) hub.Result
	Vote(ctx context.Context, id host.PlayerID, arenaName string) hub.Result
	Spectate(ctx context.Context, id host.PlayerID) hub.Result
}

// Replier renders a command result as the player-facing message.
type Replier func(kind string, r hub.Result) string

func Handler(f *feed.Feed, cmds Commands, reply Replier, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 16)
		clientID := uuid.NewString()
		f.Join(clientID, out)
		defer f.Leave(clientID)

		// Writer goroutine: the only one writing frames.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		direct := make(chan types.ServerMessage, 4)
		go func() {
			defer writeCancel()
			for {
				var frame types.ServerMessage
				var ok bool
				select {
				case frame, ok = <-out:
					if !ok {
						// dropped as slow, or the feed shut down
						conn.Close(websocket.StatusPolicyViolation, "too slow")
						return
					}
				case frame = <-direct:
				case <-writeCtx.Done():
					return
				}
				payload, _ := json.Marshal(frame)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				err := conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}()

		send := func(m types.ServerMessage) {
			select {
			case direct <- m:
			case <-writeCtx.Done():
			}
		}

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.String("client", clientID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				send(types.ServerMessage{Type: types.FrameError, Error: "bad json"})
				continue
			}
			res, ok := apply(r.Context(), cmds, cm)
			if !ok {
				send(types.ServerMessage{Type: types.FrameError, Error: "unknown type"})
				continue
			}
			frame := types.ServerMessage{Type: types.FrameReply, Message: reply(cm.Type, res)}
			if res.Err != nil {
				frame.Error = res.Err.Error()
			}
			send(frame)
		}
	}
}

func apply(ctx context.Context, cmds Commands, m types.ClientMessage) (hub.Result, bool) {
	id := host.PlayerID(m.Player)
	if id == "" {
		return hub.Result{}, false
	}
	switch m.Type {
	case "Join":
		return cmds.Join(ctx, id), true
	case "Quit":
		return cmds.Quit(ctx, id), true
	case "Vote":
		return cmds.Vote(ctx, id, m.Arena), true
	case "Spectate":
		return cmds.Spectate(ctx, id), true
	default:
		return hub.Result{}, false
	}
}
