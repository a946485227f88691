// Package memhost is an in-memory game server. The demo binary drives it over
// HTTP and tests use it as the host collaborator.
package memhost

import (
	"fmt"
	"slices"
	"sync"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

type PlayerState struct {
	Online    bool
	Location  geom.Location
	Inventory host.Inventory
	Effects   []host.Effect
	Mode      host.GameMode
	Respawns  int
}

type Command struct {
	Sender  host.PlayerID
	Command string
}

type Host struct {
	mu         sync.Mutex
	spawn      geom.Location
	worlds     map[string]bool
	players    map[host.PlayerID]*PlayerState
	commands   []Command
	broadcasts []string
}

// New returns a host whose worlds are the given names. With no names any world
// is accepted. spawn is where Respawn puts players.
func New(spawn geom.Location, worlds ...string) *Host {
	h := &Host{
		spawn:   spawn,
		worlds:  make(map[string]bool),
		players: make(map[host.PlayerID]*PlayerState),
	}
	for _, w := range worlds {
		h.worlds[w] = true
	}
	return h
}

// Connect brings a player online at loc, creating them on first login.
func (h *Host) Connect(id host.PlayerID, loc geom.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[id]
	if !ok {
		p = &PlayerState{Mode: host.DefaultMode}
		h.players[id] = p
	}
	p.Online = true
	p.Location = loc
}

func (h *Host) Disconnect(id host.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if p, ok := h.players[id]; ok {
		p.Online = false
	}
}

// Move walks an online player to loc.
func (h *Host) Move(id host.PlayerID, loc geom.Location) error {
	return h.Teleport(id, loc)
}

// State returns a copy of everything known about a player.
func (h *Host) State(id host.PlayerID) (PlayerState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[id]
	if !ok {
		return PlayerState{}, false
	}
	out := *p
	out.Inventory = cloneInventory(p.Inventory)
	out.Effects = slices.Clone(p.Effects)
	return out, true
}

func (h *Host) Online(id host.PlayerID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.players[id]
	return ok && p.Online
}

func (h *Host) Location(id host.PlayerID) (geom.Location, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return geom.Location{}, err
	}
	return p.Location, nil
}

func (h *Host) Teleport(id host.PlayerID, to geom.Location) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return err
	}
	if len(h.worlds) > 0 && !h.worlds[to.World] {
		return fmt.Errorf("%w: %s", host.ErrUnknownWorld, to.World)
	}
	p.Location = to
	return nil
}

func (h *Host) Respawn(id host.PlayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return err
	}
	p.Location = h.spawn
	p.Respawns++
	return nil
}

func (h *Host) Inventory(id host.PlayerID) (host.Inventory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return host.Inventory{}, err
	}
	return cloneInventory(p.Inventory), nil
}

func (h *Host) SetInventory(id host.PlayerID, inv host.Inventory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return err
	}
	p.Inventory = cloneInventory(inv)
	return nil
}

func (h *Host) Effects(id host.PlayerID) ([]host.Effect, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.Effects), nil
}

func (h *Host) SetEffects(id host.PlayerID, effects []host.Effect) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return err
	}
	p.Effects = slices.Clone(effects)
	return nil
}

func (h *Host) GameMode(id host.PlayerID) (host.GameMode, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return "", err
	}
	return p.Mode, nil
}

func (h *Host) SetGameMode(id host.PlayerID, mode host.GameMode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return err
	}
	p.Mode = mode
	return nil
}

// Dispatch records the command. The console can always run commands.
func (h *Host) Dispatch(sender host.PlayerID, command string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sender != host.Console {
		if _, err := h.online(sender); err != nil {
			return err
		}
	}
	h.commands = append(h.commands, Command{Sender: sender, Command: command})
	return nil
}

// Give puts the item in the first empty slot, or appends a new slot.
func (h *Host) Give(id host.PlayerID, item host.Item) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, err := h.online(id)
	if err != nil {
		return err
	}
	for i, slot := range p.Inventory.Contents {
		if slot.Empty() {
			p.Inventory.Contents[i] = item
			return nil
		}
	}
	p.Inventory.Contents = append(p.Inventory.Contents, item)
	return nil
}

func (h *Host) Broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, msg)
}

func (h *Host) Broadcasts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.broadcasts)
}

func (h *Host) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.commands)
}

func (h *Host) online(id host.PlayerID) (*PlayerState, error) {
	p, ok := h.players[id]
	if !ok || !p.Online {
		return nil, fmt.Errorf("%w: %s", host.ErrOffline, id)
	}
	return p, nil
}

func cloneInventory(inv host.Inventory) host.Inventory {
	return host.Inventory{
		Contents: slices.Clone(inv.Contents),
		Armour:   inv.Armour,
	}
}
