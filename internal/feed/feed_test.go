package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/types"
	pub "github.com/DoyleJ11/lastmanstanding/pkg/types"
)

var _ host.Broadcaster = (*Feed)(nil)

// helper: receive one frame with a timeout so tests never hang
func recvFrame(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case f, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return f
	case <-time.After(within):
		t.Fatalf("timed out waiting for frame")
		return types.ServerMessage{}
	}
}

func recvNoFrame(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) {
	t.Helper()
	select {
	case f, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no frame within %v, but got: %+v", within, f)
	case <-time.After(within):
	}
}

func recvView(t *testing.T, f *Feed) View {
	t.Helper()
	reply := make(chan View, 1)
	f.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{}
	}
}

func TestFeed_BroadcastReachesEveryClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := New(ctx, nil)

	a := make(chan types.ServerMessage, 4)
	b := make(chan types.ServerMessage, 4)
	f.Inbox() <- Join{ClientID: "a", Outbox: a}
	f.Inbox() <- Join{ClientID: "b", Outbox: b}

	f.Broadcast("LMS has been cancelled")
	for _, ch := range []chan types.ServerMessage{a, b} {
		got := recvFrame(t, ch, time.Second)
		assert.Equal(t, types.FrameBroadcast, got.Type)
		assert.Equal(t, "LMS has been cancelled", got.Message)
		assert.Equal(t, 1, got.Version)
	}
}

func TestFeed_StatusIsDedupedAndSentOnJoin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := New(ctx, nil)

	a := make(chan types.ServerMessage, 4)
	f.Inbox() <- Join{ClientID: "a", Outbox: a}
	f.PublishStatus(pub.Status{Phase: "idle"})
	got := recvFrame(t, a, time.Second)
	assert.Equal(t, types.FrameStatus, got.Type)
	require.NotNil(t, got.Status)
	assert.Equal(t, "idle", got.Status.Phase)

	f.PublishStatus(pub.Status{Phase: "idle"})
	recvNoFrame(t, a, 50*time.Millisecond)

	late := make(chan types.ServerMessage, 4)
	f.Inbox() <- Join{ClientID: "late", Outbox: late}
	got = recvFrame(t, late, time.Second)
	assert.Equal(t, "idle", got.Status.Phase, "joiners get the latest status")
}

func TestFeed_DropsSlowClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := New(ctx, nil)

	slow := make(chan types.ServerMessage) // never read
	f.Inbox() <- Join{ClientID: "slow", Outbox: slow}
	f.Broadcast("one")

	assert.Equal(t, 0, recvView(t, f).NumClients)
	_, ok := <-slow
	assert.False(t, ok, "dropped client outbox is closed")
}

func TestFeed_LeaveAndShutdownCloseOutboxes(t *testing.T) {
	f := New(context.Background(), nil)
	a := make(chan types.ServerMessage, 1)
	b := make(chan types.ServerMessage, 1)
	f.Inbox() <- Join{ClientID: "a", Outbox: a}
	f.Inbox() <- Join{ClientID: "b", Outbox: b}

	f.Inbox() <- Leave{ClientID: "a"}
	f.Inbox() <- Leave{ClientID: "a"}
	assert.Equal(t, 1, recvView(t, f).NumClients)
	_, ok := <-a
	assert.False(t, ok)

	f.Inbox() <- Shutdown{}
	select {
	case _, ok := <-b:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("shutdown did not close outbox")
	}
}
