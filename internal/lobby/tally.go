package lobby

import (
	"cmp"
	"slices"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

// Players returns the queue in join order.
func (l *Lobby) Players() []host.PlayerID {
	ids := make([]host.PlayerID, 0, len(l.queue))
	for id := range l.queue {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b host.PlayerID) int { return cmp.Compare(l.queue[a], l.queue[b]) })
	return ids
}

// Tally counts votes per arena id. It is derived on every call.
func (l *Lobby) Tally() map[string]int {
	out := make(map[string]int)
	for _, v := range l.votes {
		out[v.arena]++
	}
	return out
}

// HighestVoted returns the arena with the most votes. On a tie the arena that
// reached the top count first, replaying votes in the order they were cast,
// wins. False when nobody voted.
func (l *Lobby) HighestVoted() (string, bool) {
	ordered := make([]vote, 0, len(l.votes))
	for _, v := range l.votes {
		ordered = append(ordered, v)
	}
	slices.SortFunc(ordered, func(a, b vote) int { return cmp.Compare(a.seq, b.seq) })

	counts := make(map[string]int)
	best, leader := 0, ""
	for _, v := range ordered {
		counts[v.arena]++
		if counts[v.arena] > best {
			best, leader = counts[v.arena], v.arena
		}
	}
	return leader, best > 0
}
