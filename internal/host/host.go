// Package host declares what the event core needs from the game server it runs
// inside. Every call is fallible: a player may be offline or a world unloaded.
package host

import (
	"errors"
	"time"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
)

var ErrOffline = errors.New("player is offline")
var ErrUnknownWorld = errors.New("world is not loaded")

type PlayerID string

// Console is the sender id used for commands run by the server itself.
const Console PlayerID = ""

type GameMode string

const (
	ModeSurvival  GameMode = "survival"
	ModeAdventure GameMode = "adventure"
	ModeSpectator GameMode = "spectator"
	ModeCreative  GameMode = "creative"
)

// DefaultMode is the mode players return to after the event.
const DefaultMode = ModeSurvival

// Item is one inventory stack. The zero value is an empty slot.
type Item struct {
	Material     string         `json:"material,omitempty" yaml:"material"`
	Amount       int            `json:"amount,omitempty" yaml:"amount,omitempty"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
	Lore         []string       `json:"lore,omitempty" yaml:"lore,omitempty"`
	Enchantments map[string]int `json:"enchantments,omitempty" yaml:"enchantments,omitempty"`
}

func (i Item) Empty() bool { return i.Material == "" || i.Amount <= 0 }

type Armour struct {
	Head  Item `json:"head" yaml:"head"`
	Body  Item `json:"body" yaml:"body"`
	Legs  Item `json:"legs" yaml:"legs"`
	Boots Item `json:"boots" yaml:"boots"`
}

// IsZero reports whether no armour piece is set.
func (a Armour) IsZero() bool {
	return a.Head.Material == "" && a.Body.Material == "" && a.Legs.Material == "" && a.Boots.Material == ""
}

// Inventory is a player's full inventory: ordered slots plus worn armour.
type Inventory struct {
	Contents []Item `json:"contents"`
	Armour   Armour `json:"armour"`
}

type Effect struct {
	Type      string        `json:"type"`
	Amplifier int           `json:"amplifier"`
	Duration  time.Duration `json:"duration"`
}

// Locator resolves and moves players.
type Locator interface {
	Online(id PlayerID) bool
	Location(id PlayerID) (geom.Location, error)
	Teleport(id PlayerID, to geom.Location) error
	Respawn(id PlayerID) error
}

// Outfitter reads and writes the state a snapshot carries.
type Outfitter interface {
	Inventory(id PlayerID) (Inventory, error)
	SetInventory(id PlayerID, inv Inventory) error
	Effects(id PlayerID) ([]Effect, error)
	SetEffects(id PlayerID, effects []Effect) error
	GameMode(id PlayerID) (GameMode, error)
	SetGameMode(id PlayerID, mode GameMode) error
}

// Players is everything the core does to a player.
type Players interface {
	Locator
	Outfitter
}

// Broadcaster sends a message to everyone on the server.
type Broadcaster interface {
	Broadcast(msg string)
}

// Dispatcher runs server commands and hands out items, used by rewards.
type Dispatcher interface {
	Dispatch(sender PlayerID, command string) error
	Give(id PlayerID, item Item) error
}

// Announce broadcasts msg unless it is empty. Empty templates mean "stay quiet".
func Announce(b Broadcaster, msg string) bool {
	if msg == "" || b == nil {
		return false
	}
	b.Broadcast(msg)
	return true
}
