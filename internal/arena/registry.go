package arena

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
)

// Sink receives every published arena change. Implementations must not block;
// the store writer queues the change for a background goroutine.
type Sink interface {
	SaveArena(a Arena)
	DeleteArena(id string)
}

// Registry owns all arenas. Admin handlers mutate it from request goroutines
// while the tick goroutine reads it, so access goes through a RWMutex and every
// mutation swaps in a fresh *Arena instead of editing the published one.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]*Arena
	byID  map[string]*Arena
	sink  Sink
}

func NewRegistry(sink Sink) *Registry {
	return &Registry{
		byKey: make(map[string]*Arena),
		byID:  make(map[string]*Arena),
		sink:  sink,
	}
}

// Load replaces the registry contents with arenas read from storage. Nothing
// is sent to the sink.
func (r *Registry) Load(arenas []Arena) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.byKey)
	clear(r.byID)
	for i := range arenas {
		a := arenas[i].clone()
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		r.byKey[Key(a.Name)] = a
		r.byID[a.ID] = a
	}
}

func (r *Registry) Lookup(name string) (*Arena, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byKey[Key(name)]
	return a, ok
}

func (r *Registry) LookupID(id string) (*Arena, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// All returns every arena ordered by name.
func (r *Registry) All() []*Arena {
	r.mu.RLock()
	out := make([]*Arena, 0, len(r.byKey))
	for _, a := range r.byKey {
		out = append(out, a)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Arena) int { return strings.Compare(Key(a.Name), Key(b.Name)) })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

// Random picks an arena uniformly among those with at least one spawn.
func (r *Registry) Random() (*Arena, bool) {
	var playable []*Arena
	for _, a := range r.All() {
		if a.Playable() {
			playable = append(playable, a)
		}
	}
	if len(playable) == 0 {
		return nil, false
	}
	return playable[rand.IntN(len(playable))], true
}

func (r *Registry) Create(name string, region geom.Region) (*Arena, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	if _, exists := r.byKey[Key(name)]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	a := &Arena{ID: uuid.NewString(), Name: strings.TrimSpace(name), Region: region}
	r.byKey[Key(a.Name)] = a
	r.byID[a.ID] = a
	r.mu.Unlock()

	r.save(a)
	return a, nil
}

// Rename changes the lookup key; the arena keeps its id. Renaming to a case
// variant of the current name is allowed.
func (r *Registry) Rename(name, newName string) (*Arena, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	r.mu.Lock()
	cur, ok := r.byKey[Key(name)]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if other, taken := r.byKey[Key(newName)]; taken && other.ID != cur.ID {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNameTaken, newName)
	}
	next := cur.clone()
	next.Name = strings.TrimSpace(newName)
	delete(r.byKey, Key(cur.Name))
	r.publish(next)
	r.mu.Unlock()

	r.save(next)
	return next, nil
}

func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	cur, ok := r.byKey[Key(name)]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.byKey, Key(cur.Name))
	delete(r.byID, cur.ID)
	r.mu.Unlock()

	if r.sink != nil {
		r.sink.DeleteArena(cur.ID)
	}
	return nil
}

func (r *Registry) SetRegion(name string, region geom.Region) (*Arena, error) {
	return r.update(name, func(a *Arena) error {
		a.Region = region
		return nil
	})
}

// AddSpawn appends a spawn, which must lie inside the arena region, and
// returns its 1-based id.
func (r *Registry) AddSpawn(name string, at geom.Location) (*Arena, int, error) {
	a, err := r.update(name, func(a *Arena) error {
		if !a.Region.ContainsLocation(at) {
			return ErrOutsideRegion
		}
		a.Spawns = append(a.Spawns, at)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return a, len(a.Spawns), nil
}

// DeleteSpawn removes the spawn with the given 1-based id.
func (r *Registry) DeleteSpawn(name string, id int) (*Arena, error) {
	return r.update(name, func(a *Arena) error {
		if id < 1 || id > len(a.Spawns) {
			return fmt.Errorf("%w: %d", ErrSpawnOutOfRange, id)
		}
		a.Spawns = slices.Delete(a.Spawns, id-1, id)
		return nil
	})
}

func (r *Registry) update(name string, mutate func(*Arena) error) (*Arena, error) {
	r.mu.Lock()
	cur, ok := r.byKey[Key(name)]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	next := cur.clone()
	if err := mutate(next); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.publish(next)
	r.mu.Unlock()

	r.save(next)
	return next, nil
}

// publish must be called with mu held.
func (r *Registry) publish(a *Arena) {
	r.byKey[Key(a.Name)] = a
	r.byID[a.ID] = a
}

func (r *Registry) save(a *Arena) {
	if r.sink != nil {
		r.sink.SaveArena(*a.clone())
	}
}
