// Package reward pays out the prizes configured for an arena.
package reward

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
)

// Issuer grants the winner of a game in the named arena their prize.
type Issuer interface {
	Grant(player host.PlayerID, arena string) error
}

// Granter applies the reward list from the arena's settings.
type Granter struct {
	settings *settings.Provider
	host     host.Dispatcher
	log      *zap.Logger

	// roll returns a value in [0, 1); swapped in tests.
	roll func() float64
	// between returns a value in [lo, hi].
	between func(lo, hi int) int
}

func NewGranter(p *settings.Provider, d host.Dispatcher, log *zap.Logger) *Granter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Granter{
		settings: p,
		host:     d,
		log:      log.Named("reward"),
		roll:     rand.Float64,
		between:  func(lo, hi int) int { return lo + rand.IntN(hi-lo+1) },
	}
}

// Grant applies every reward, carrying on past failures.
func (g *Granter) Grant(player host.PlayerID, arena string) error {
	var err error
	for _, r := range g.settings.Get().Arena(arena).Rewards {
		err = multierr.Append(err, g.apply(player, r))
	}
	if err != nil {
		g.log.Error("reward incomplete", zap.String("player", string(player)), zap.String("arena", arena), zap.Error(err))
		return err
	}
	g.log.Info("reward granted", zap.String("player", string(player)), zap.String("arena", arena))
	return nil
}

func (g *Granter) apply(player host.PlayerID, r settings.Reward) error {
	switch r.Type {
	case settings.RewardCommand:
		cmd := settings.Format(r.Command, "player", string(player))
		sender := host.Console
		if strings.EqualFold(r.Sender, "player") {
			sender = player
		}
		return g.host.Dispatch(sender, cmd)

	case settings.RewardItem:
		chance := r.Chance
		if chance <= 0 {
			chance = 1
		}
		if chance < 1 && g.roll() >= chance {
			return nil
		}
		item := r.Item
		item.Amount = g.amount(r)
		if item.Amount <= 0 {
			return nil
		}
		return g.host.Give(player, item)

	default:
		return fmt.Errorf("unknown reward type %q", r.Type)
	}
}

func (g *Granter) amount(r settings.Reward) int {
	lo, hi := r.Min, r.Max
	if lo <= 0 && hi <= 0 {
		if r.Item.Amount > 0 {
			return r.Item.Amount
		}
		return 1
	}
	if lo <= 0 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return g.between(lo, hi)
}
