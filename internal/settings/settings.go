// Package settings loads the event's config.yml: timings, message templates
// and per-arena kits and rewards.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

const LatestVersion = 1

// DefaultArena is the arena-settings key every arena falls back to.
const DefaultArena = "default"

var ErrInvalid = errors.New("invalid settings")

type Settings struct {
	ConfigVersion int                      `yaml:"config-version"`
	Lobby         Lobby                    `yaml:"settings"`
	Messages      Messages                 `yaml:"messages"`
	Arenas        map[string]ArenaSettings `yaml:"arena-settings"`
}

type Lobby struct {
	// Interval is the number of seconds between the end of one event and the
	// next lobby opening.
	Interval          int   `yaml:"lobby-start"`
	Countdown         int   `yaml:"lobby-countdown"`
	AnnouncementTimes []int `yaml:"announcement-times"`
}

func (l Lobby) IntervalDuration() time.Duration  { return time.Duration(l.Interval) * time.Second }
func (l Lobby) CountdownDuration() time.Duration { return time.Duration(l.Countdown) * time.Second }

type ArenaSettings struct {
	MinPlayers int         `yaml:"min-players,omitempty"`
	Inventory  []host.Item `yaml:"inventory,omitempty"`
	Armour     host.Armour `yaml:"armour,omitempty"`
	Rewards    []Reward    `yaml:"rewards,omitempty"`
}

type RewardType string

const (
	RewardItem    RewardType = "item"
	RewardCommand RewardType = "command"
)

type Reward struct {
	Type RewardType `yaml:"type"`

	// command rewards
	Command string `yaml:"command,omitempty"`
	Sender  string `yaml:"sender,omitempty"`

	// item rewards
	Item   host.Item `yaml:"item,omitempty"`
	Chance float64   `yaml:"chance,omitempty"`
	Min    int       `yaml:"min,omitempty"`
	Max    int       `yaml:"max,omitempty"`
}

// Arena returns the settings for the named arena. Anything the arena does not
// set is taken from the default section.
func (s *Settings) Arena(name string) ArenaSettings {
	def := s.Arenas[DefaultArena]
	got, ok := s.Arenas[strings.ToLower(name)]
	if !ok {
		return def
	}
	return fill(got, def)
}

func fill(got, def ArenaSettings) ArenaSettings {
	if got.MinPlayers <= 0 {
		got.MinPlayers = def.MinPlayers
	}
	if got.Inventory == nil {
		got.Inventory = def.Inventory
	}
	if got.Armour.IsZero() {
		got.Armour = def.Armour
	}
	if got.Rewards == nil {
		got.Rewards = def.Rewards
	}
	return got
}

// Load reads the settings file over the defaults. A missing file is created
// holding the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, write(path, s)
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	lowered := make(map[string]ArenaSettings, len(s.Arenas))
	for name, a := range s.Arenas {
		lowered[strings.ToLower(name)] = a
	}
	lowered[DefaultArena] = fill(lowered[DefaultArena], defaultArena())
	s.Arenas = lowered
	slices.Sort(s.Lobby.AnnouncementTimes)
	s.Lobby.AnnouncementTimes = slices.Compact(s.Lobby.AnnouncementTimes)
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch {
	case s.Lobby.Countdown <= 0:
		return fmt.Errorf("%w: lobby-countdown must be positive", ErrInvalid)
	case s.Lobby.Interval < 0:
		return fmt.Errorf("%w: lobby-start must not be negative", ErrInvalid)
	case len(s.Lobby.AnnouncementTimes) > 0 && s.Lobby.AnnouncementTimes[0] <= 0:
		return fmt.Errorf("%w: announcement-times must be positive", ErrInvalid)
	}
	if s.Arena(DefaultArena).MinPlayers <= 0 {
		return fmt.Errorf("%w: default min-players must be positive", ErrInvalid)
	}
	return nil
}

func write(path string, s *Settings) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Provider hands out the current settings and lets a reload swap them while
// other goroutines read.
type Provider struct {
	cur atomic.Pointer[Settings]
}

func NewProvider(s *Settings) *Provider {
	p := &Provider{}
	p.cur.Store(s)
	return p
}

func (p *Provider) Get() *Settings  { return p.cur.Load() }
func (p *Provider) Set(s *Settings) { p.cur.Store(s) }
