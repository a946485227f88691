package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

var (
	_ arena.Sink       = (*Writer)(nil)
	_ snapshot.Journal = (*Writer)(nil)
)

// fakeStore records calls. block, when set, holds every write until closed.
type fakeStore struct {
	mu     sync.Mutex
	calls  []string
	fail   bool
	block  chan struct{}
	closed bool
}

func (f *fakeStore) record(call string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail {
		return errors.New("disk on fire")
	}
	return nil
}

func (f *fakeStore) LoadArenas(context.Context) ([]arena.Arena, error) { return nil, nil }
func (f *fakeStore) SaveArena(_ context.Context, a arena.Arena) error  { return f.record("save " + a.Name) }
func (f *fakeStore) DeleteArena(_ context.Context, id string) error    { return f.record("delete " + id) }
func (f *fakeStore) LoadNextLobby(context.Context) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
func (f *fakeStore) SaveNextLobby(context.Context, time.Time) error { return f.record("schedule") }
func (f *fakeStore) LoadSnapshots(context.Context) ([]snapshot.Snapshot, error) {
	return nil, nil
}
func (f *fakeStore) SaveSnapshot(_ context.Context, s snapshot.Snapshot) error {
	return f.record("snapshot " + string(s.Player))
}
func (f *fakeStore) DeleteSnapshot(_ context.Context, id host.PlayerID) error {
	return f.record("unsnapshot " + string(id))
}
func (f *fakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestWriter_AppliesInOrderAndDrainsOnClose(t *testing.T) {
	fs := &fakeStore{}
	w := NewWriter(fs, 16, nil)

	w.SaveArena(arena.Arena{Name: "pit"})
	w.SaveSnapshot(snapshot.Snapshot{Player: "steve"})
	w.SaveNextLobby(time.Now())
	w.DeleteSnapshot("steve")
	w.DeleteArena("pit-id")
	require.NoError(t, w.Close())

	assert.Equal(t, []string{"save pit", "snapshot steve", "schedule", "unsnapshot steve", "delete pit-id"}, fs.Calls())
	assert.True(t, fs.closed)

	w.SaveArena(arena.Arena{Name: "late"})
	require.NoError(t, w.Close(), "close is idempotent")
	assert.Len(t, fs.Calls(), 5)
}

func TestWriter_FailuresAreSwallowed(t *testing.T) {
	fs := &fakeStore{fail: true}
	w := NewWriter(fs, 4, nil)
	w.SaveArena(arena.Arena{Name: "pit"})
	w.SaveArena(arena.Arena{Name: "pit"})
	require.NoError(t, w.Close())
	assert.Len(t, fs.Calls(), 2)
}

func TestWriter_NeverBlocksWhenFull(t *testing.T) {
	fs := &fakeStore{block: make(chan struct{})}
	w := NewWriter(fs, 1, nil)

	done := make(chan struct{})
	go func() {
		for range 10 {
			w.SaveNextLobby(time.Now())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	close(fs.block)
	require.NoError(t, w.Close())
	calls := fs.Calls()
	assert.GreaterOrEqual(t, len(calls), 1)
	assert.Less(t, len(calls), 10, "overflow is dropped")
}

func TestWriter_WithSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lms.db")
	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	w := NewWriter(s, 0, nil)
	w.SaveArena(colosseum())
	w.SaveSnapshot(snapshot.Snapshot{Player: "alex"})
	require.NoError(t, w.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	st, err := LoadState(ctx, reopened)
	require.NoError(t, err)
	require.Len(t, st.Arenas, 1)
	assert.Equal(t, "Colosseum", st.Arenas[0].Name)
	require.Len(t, st.Snapshots, 1)
	assert.False(t, st.HasSchedule)
}
