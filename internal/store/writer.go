package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
)

const DefaultBuffer = 1024

// Writer applies store writes on one background goroutine so callers never
// block on I/O. Writes run in submission order. Failures are logged and
// otherwise ignored: memory stays the source of truth until restart.
type Writer struct {
	store   Store
	jobs    chan job
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

type job struct {
	op     string
	fields []zap.Field
	run    func(ctx context.Context, s Store) error
}

func NewWriter(s Store, buffer int, log *zap.Logger) *Writer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{
		store:   s,
		jobs:    make(chan job, buffer),
		timeout: 10 * time.Second,
		log:     log.Named("store"),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
	return w
}

func (w *Writer) SaveArena(a arena.Arena) {
	w.enqueue(job{
		op:     "save arena",
		fields: []zap.Field{zap.String("arena", a.Name), zap.String("arena_id", a.ID)},
		run:    func(ctx context.Context, s Store) error { return s.SaveArena(ctx, a) },
	})
}

func (w *Writer) DeleteArena(id string) {
	w.enqueue(job{
		op:     "delete arena",
		fields: []zap.Field{zap.String("arena_id", id)},
		run:    func(ctx context.Context, s Store) error { return s.DeleteArena(ctx, id) },
	})
}

func (w *Writer) SaveNextLobby(at time.Time) {
	w.enqueue(job{
		op:     "save next lobby",
		fields: []zap.Field{zap.Time("at", at)},
		run:    func(ctx context.Context, s Store) error { return s.SaveNextLobby(ctx, at) },
	})
}

func (w *Writer) SaveSnapshot(snap snapshot.Snapshot) {
	w.enqueue(job{
		op:     "save snapshot",
		fields: []zap.Field{zap.String("player", string(snap.Player))},
		run:    func(ctx context.Context, s Store) error { return s.SaveSnapshot(ctx, snap) },
	})
}

func (w *Writer) DeleteSnapshot(id host.PlayerID) {
	w.enqueue(job{
		op:     "delete snapshot",
		fields: []zap.Field{zap.String("player", string(id))},
		run:    func(ctx context.Context, s Store) error { return s.DeleteSnapshot(ctx, id) },
	})
}

func (w *Writer) enqueue(j job) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.log.Warn("write after close dropped", append(j.fields, zap.String("op", j.op))...)
		return
	}
	select {
	case w.jobs <- j:
	default:
		w.log.Error("write queue full, dropped", append(j.fields, zap.String("op", j.op))...)
	}
}

func (w *Writer) loop() {
	for j := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := j.run(ctx, w.store)
		cancel()
		if err != nil {
			w.log.Error(j.op+" failed", append(j.fields, zap.Error(err))...)
		}
	}
}

// Close drains queued writes, then closes the store.
func (w *Writer) Close() error {
	var err error
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.jobs)
		w.mu.Unlock()
		w.wg.Wait()
		err = w.store.Close()
	})
	return err
}
