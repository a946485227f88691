package arena

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
)

const MaxNameLength = 30

var ErrNoSpawns = errors.New("arena has no spawns")
var ErrNameEmpty = errors.New("arena name is empty")
var ErrNameTooLong = errors.New("arena name is too long")
var ErrNameTaken = errors.New("arena name already exists")
var ErrNotFound = errors.New("arena not found")
var ErrSpawnOutOfRange = errors.New("spawn id out of range")
var ErrOutsideRegion = errors.New("location is outside the arena")

// Arena is a named region with spawn points. Values handed out by the
// Registry are never modified; mutations publish a new copy.
type Arena struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Region geom.Region     `json:"region"`
	Spawns []geom.Location `json:"spawns"`
}

// Key is the case-insensitive lookup key for an arena name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateName checks the name as it will be stored: trimmed, and counted in
// characters rather than bytes.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ErrNameEmpty
	case utf8.RuneCountInString(name) > MaxNameLength:
		return ErrNameTooLong
	}
	return nil
}

// RandomSpawn picks a spawn uniformly.
func (a *Arena) RandomSpawn() (geom.Location, error) {
	if len(a.Spawns) == 0 {
		return geom.Location{}, ErrNoSpawns
	}
	return a.Spawns[rand.IntN(len(a.Spawns))], nil
}

func (a *Arena) Playable() bool { return len(a.Spawns) > 0 }

func (a *Arena) clone() *Arena {
	c := *a
	c.Spawns = slices.Clone(a.Spawns)
	return &c
}
