// Package snapshot captures what a player looked like before the event and puts
// it back afterwards.
package snapshot

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

// Snapshot is the restorable state of one player.
type Snapshot struct {
	Player    host.PlayerID  `json:"player"`
	Location  geom.Location  `json:"location"`
	Inventory host.Inventory `json:"inventory"`
	Effects   []host.Effect  `json:"effects"`
	Mode      host.GameMode  `json:"mode"`
}

// Capture reads the player's current state. It changes nothing.
func Capture(p host.Players, id host.PlayerID) (Snapshot, error) {
	loc, err := p.Location(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture %s: %w", id, err)
	}
	inv, err := p.Inventory(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture %s: %w", id, err)
	}
	effects, err := p.Effects(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture %s: %w", id, err)
	}
	mode, err := p.GameMode(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture %s: %w", id, err)
	}
	return Snapshot{
		Player:    id,
		Location:  loc,
		Inventory: inv,
		Effects:   slices.Clone(effects),
		Mode:      mode,
	}, nil
}

// Apply writes the snapshot back onto its player. Each step is attempted even
// if an earlier one failed; the errors are combined. Calling it again after a
// partial failure is safe.
func (s Snapshot) Apply(p host.Players) error {
	var err error
	err = multierr.Append(err, p.SetEffects(s.Player, nil))
	err = multierr.Append(err, p.SetEffects(s.Player, s.Effects))
	err = multierr.Append(err, p.SetInventory(s.Player, host.Inventory{}))
	err = multierr.Append(err, p.SetInventory(s.Player, s.Inventory))
	err = multierr.Append(err, p.Teleport(s.Player, s.Location))
	err = multierr.Append(err, p.SetGameMode(s.Player, s.restoreMode()))
	if err != nil {
		return fmt.Errorf("restore %s: %w", s.Player, err)
	}
	return nil
}

// restoreMode never hands back a mode the event itself puts players in.
func (s Snapshot) restoreMode() host.GameMode {
	switch s.Mode {
	case "", host.ModeAdventure, host.ModeSpectator:
		return host.DefaultMode
	default:
		return s.Mode
	}
}
