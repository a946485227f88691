package memhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

var (
	_ host.Players     = (*Host)(nil)
	_ host.Broadcaster = (*Host)(nil)
	_ host.Dispatcher  = (*Host)(nil)
)

func TestHost_OfflinePlayersFail(t *testing.T) {
	h := New(geom.Location{World: "world"})
	h.Connect("steve", geom.Location{World: "world", X: 1})
	h.Disconnect("steve")

	_, err := h.Location("steve")
	assert.True(t, errors.Is(err, host.ErrOffline))
	assert.ErrorIs(t, h.Teleport("steve", geom.Location{World: "world"}), host.ErrOffline)
	assert.ErrorIs(t, h.SetGameMode("ghost", host.ModeCreative), host.ErrOffline)
}

func TestHost_TeleportRejectsUnknownWorld(t *testing.T) {
	h := New(geom.Location{World: "world"}, "world")
	h.Connect("alex", geom.Location{World: "world"})

	err := h.Teleport("alex", geom.Location{World: "nether"})
	assert.ErrorIs(t, err, host.ErrUnknownWorld)
}

func TestHost_GiveFillsEmptySlotFirst(t *testing.T) {
	h := New(geom.Location{})
	h.Connect("alex", geom.Location{})
	require.NoError(t, h.SetInventory("alex", host.Inventory{Contents: []host.Item{
		{Material: "stone", Amount: 1},
		{},
	}}))

	require.NoError(t, h.Give("alex", host.Item{Material: "diamond", Amount: 3}))
	require.NoError(t, h.Give("alex", host.Item{Material: "apple", Amount: 1}))

	inv, err := h.Inventory("alex")
	require.NoError(t, err)
	require.Len(t, inv.Contents, 3)
	assert.Equal(t, "diamond", inv.Contents[1].Material)
	assert.Equal(t, "apple", inv.Contents[2].Material)
}

func TestHost_DispatchAsConsoleWhileNobodyOnline(t *testing.T) {
	h := New(geom.Location{})
	require.NoError(t, h.Dispatch(host.Console, "say hi"))
	assert.ErrorIs(t, h.Dispatch("notch", "say hi"), host.ErrOffline)
	assert.Equal(t, []Command{{Sender: host.Console, Command: "say hi"}}, h.Commands())
}
