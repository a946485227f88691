package session

import (
	"time"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/pkg/types"
)

// View renders the current state for clients.
func (o *Orchestrator) View(now time.Time) types.Status {
	out := types.Status{
		Phase:           string(PhaseOf(o.state)),
		PendingRestores: o.deps.Restorer.PendingCount(),
	}
	switch st := o.state.(type) {
	case Idle:
		at := o.nextLobbyAt
		if o.startRequested {
			at = now
		}
		out.NextLobbyAt = &at

	case *InLobby:
		ends := st.StartedAt.Add(o.deps.Settings.Get().Lobby.CountdownDuration())
		votes := make(map[string]int)
		for id, n := range st.Lobby.Tally() {
			name := id
			if a, ok := o.deps.Arenas.LookupID(id); ok {
				name = a.Name
			}
			votes[name] += n
		}
		out.Lobby = &types.LobbyStatus{
			StartedAt:        st.StartedAt,
			EndsAt:           ends,
			RemainingSeconds: max(0, int(ends.Sub(now).Round(time.Second)/time.Second)),
			Queued:           names(st.Lobby.Players()),
			Votes:            votes,
		}

	case *InGame:
		out.Game = &types.GameStatus{
			Arena:        st.Game.Arena().Name,
			Participants: names(st.Game.Participants()),
			Spectators:   names(st.Game.Spectators()),
		}
	}
	return out
}

func names(ids []host.PlayerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
