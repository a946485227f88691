package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/host/memhost"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
)

var _ Issuer = (*Granter)(nil)

func granterWith(t *testing.T, rewards []settings.Reward) (*Granter, *memhost.Host) {
	t.Helper()
	s := settings.Default()
	s.Arenas["pit"] = settings.ArenaSettings{Rewards: rewards}
	h := memhost.New(geom.Location{World: "world"})
	h.Connect("winner", geom.Location{World: "world"})
	return NewGranter(settings.NewProvider(s), h, nil), h
}

func TestGranter_CommandRewards(t *testing.T) {
	g, h := granterWith(t, []settings.Reward{
		{Type: settings.RewardCommand, Command: "eco give {player} 100", Sender: "console"},
		{Type: settings.RewardCommand, Command: "me won", Sender: "player"},
	})

	require.NoError(t, g.Grant("winner", "pit"))
	assert.Equal(t, []memhost.Command{
		{Sender: host.Console, Command: "eco give winner 100"},
		{Sender: "winner", Command: "me won"},
	}, h.Commands())
}

func TestGranter_ItemRewardsHonourChanceAndAmount(t *testing.T) {
	g, h := granterWith(t, []settings.Reward{
		{Type: settings.RewardItem, Item: host.Item{Material: "diamond_block"}, Min: 64, Max: 512},
		{Type: settings.RewardItem, Item: host.Item{Material: "lucky_sword"}, Chance: 0.25},
		{Type: settings.RewardItem, Item: host.Item{Material: "apple", Amount: 3}},
	})
	g.roll = func() float64 { return 0.5 }
	g.between = func(lo, hi int) int {
		assert.Equal(t, 64, lo)
		assert.Equal(t, 512, hi)
		return 100
	}

	require.NoError(t, g.Grant("winner", "PIT"))

	inv, err := h.Inventory("winner")
	require.NoError(t, err)
	require.Len(t, inv.Contents, 2, "the quarter-chance sword missed its roll")
	assert.Equal(t, host.Item{Material: "diamond_block", Amount: 100}, inv.Contents[0])
	assert.Equal(t, host.Item{Material: "apple", Amount: 3}, inv.Contents[1])
}

func TestGranter_KeepsGoingPastFailures(t *testing.T) {
	g, h := granterWith(t, []settings.Reward{
		{Type: "mystery"},
		{Type: settings.RewardCommand, Command: "say gg"},
	})

	err := g.Grant("winner", "pit")
	assert.Error(t, err)
	assert.Len(t, h.Commands(), 1)
}

func TestGranter_DefaultRewardsForUnknownArena(t *testing.T) {
	s := settings.Default()
	h := memhost.New(geom.Location{World: "world"})
	h.Connect("winner", geom.Location{World: "world"})
	g := NewGranter(settings.NewProvider(s), h, nil)
	g.roll = func() float64 { return 0 }

	require.NoError(t, g.Grant("winner", "nowhere"))
	inv, err := h.Inventory("winner")
	require.NoError(t, err)
	assert.Len(t, inv.Contents, 2)
	require.Len(t, h.Commands(), 1)
	assert.Equal(t, "tell winner Congratulations!", h.Commands()[0].Command)
}
