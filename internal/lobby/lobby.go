package lobby

import (
	"errors"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

var ErrNotQueued = errors.New("player is not queued")

type vote struct {
	arena string
	seq   uint64
}

// Lobby is the waiting room before a game: a queue of players and one arena
// vote per queued player. It is owned by the tick goroutine and not safe for
// concurrent use.
type Lobby struct {
	queue map[host.PlayerID]uint64
	votes map[host.PlayerID]vote
	seq   uint64
}

func New() *Lobby {
	return &Lobby{
		queue: make(map[host.PlayerID]uint64),
		votes: make(map[host.PlayerID]vote),
	}
}

// Enqueue adds the player; false if they were already queued.
func (l *Lobby) Enqueue(id host.PlayerID) bool {
	if _, ok := l.queue[id]; ok {
		return false
	}
	l.seq++
	l.queue[id] = l.seq
	return true
}

// Leave removes the player and their vote; false if they were not queued.
func (l *Lobby) Leave(id host.PlayerID) bool {
	_, ok := l.queue[id]
	delete(l.queue, id)
	delete(l.votes, id)
	return ok
}

func (l *Lobby) Queued(id host.PlayerID) bool {
	_, ok := l.queue[id]
	return ok
}

func (l *Lobby) Size() int { return len(l.queue) }

// Vote records the player's arena choice, replacing an earlier one. A changed
// vote counts as cast now for tie-breaking.
func (l *Lobby) Vote(id host.PlayerID, arenaID string) error {
	if !l.Queued(id) {
		return ErrNotQueued
	}
	l.seq++
	l.votes[id] = vote{arena: arenaID, seq: l.seq}
	return nil
}

// VoteOf returns the arena the player voted for.
func (l *Lobby) VoteOf(id host.PlayerID) (string, bool) {
	v, ok := l.votes[id]
	return v.arena, ok
}
