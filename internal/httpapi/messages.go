package httpapi

import (
	"errors"
	"net/http"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/game"
	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/hub"
	"github.com/DoyleJ11/lastmanstanding/internal/lobby"
	"github.com/DoyleJ11/lastmanstanding/internal/session"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
)

const (
	KindJoin     = "Join"
	KindQuit     = "Quit"
	KindVote     = "Vote"
	KindSpectate = "Spectate"
)

// Replier returns the player-facing message for a command result, rendered
// from the current message templates.
func Replier(p *settings.Provider) func(kind string, r hub.Result) string {
	return func(kind string, r hub.Result) string {
		return reply(p.Get().Messages, kind, r)
	}
}

func reply(m settings.Messages, kind string, r hub.Result) string {
	switch {
	case errors.Is(r.Err, session.ErrNoLobby):
		return m.LobbyNonExistent
	case errors.Is(r.Err, session.ErrNoGame):
		return m.GameNonExistent
	case errors.Is(r.Err, lobby.ErrNotQueued):
		return m.LobbyNotJoined
	case r.Err != nil:
		return ""
	}

	switch kind {
	case KindJoin:
		if r.OK {
			return m.LobbyJoined
		}
		return m.LobbyAlreadyJoined
	case KindQuit:
		if r.OK {
			return m.GameExit
		}
		return m.GameExitFailed
	case KindVote:
		if r.Arena != nil {
			return settings.Format(m.LobbyVoted, "name", r.Arena.Name)
		}
	case KindSpectate:
		if r.OK {
			return m.GameSpectate
		}
		return m.GameExit
	}
	return ""
}

// statusFor maps command and admin failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, arena.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoLobby),
		errors.Is(err, session.ErrNoGame),
		errors.Is(err, session.ErrAlreadyRunning),
		errors.Is(err, lobby.ErrNotQueued),
		errors.Is(err, game.ErrAlreadyInGame),
		errors.Is(err, game.ErrNotRunning),
		errors.Is(err, game.ErrRestorePending),
		errors.Is(err, host.ErrOffline),
		errors.Is(err, arena.ErrNameTaken):
		return http.StatusConflict
	case errors.Is(err, arena.ErrNameEmpty),
		errors.Is(err, arena.ErrNameTooLong),
		errors.Is(err, arena.ErrOutsideRegion),
		errors.Is(err, arena.ErrSpawnOutOfRange),
		errors.Is(err, geom.ErrInvalidRegion),
		errors.Is(err, host.ErrUnknownWorld):
		return http.StatusBadRequest
	case errors.Is(err, hub.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
