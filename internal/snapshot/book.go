package snapshot

import (
	"slices"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

// Book maps players to their single live snapshot.
type Book struct {
	entries map[host.PlayerID]Snapshot
}

func NewBook() *Book {
	return &Book{entries: make(map[host.PlayerID]Snapshot)}
}

// Put stores s, replacing any snapshot the player already had.
func (b *Book) Put(s Snapshot) {
	b.entries[s.Player] = s
}

// Take removes and returns the player's snapshot.
func (b *Book) Take(id host.PlayerID) (Snapshot, bool) {
	s, ok := b.entries[id]
	if ok {
		delete(b.entries, id)
	}
	return s, ok
}

func (b *Book) Has(id host.PlayerID) bool {
	_, ok := b.entries[id]
	return ok
}

func (b *Book) Len() int { return len(b.entries) }

// Players returns the ids with a snapshot, sorted.
func (b *Book) Players() []host.PlayerID {
	ids := make([]host.PlayerID, 0, len(b.entries))
	for id := range b.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
