package snapshot

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/host"
)

// Journal mirrors live snapshots to durable storage so they survive a crash.
// Implementations must not block.
type Journal interface {
	SaveSnapshot(s Snapshot)
	DeleteSnapshot(id host.PlayerID)
}

// Restorer applies snapshots. A snapshot that cannot be applied, usually
// because its player went offline, is parked and retried on later ticks.
type Restorer struct {
	players host.Players
	journal Journal
	pending *Book
	log     *zap.Logger
}

func NewRestorer(players host.Players, journal Journal, log *zap.Logger) *Restorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Restorer{
		players: players,
		journal: journal,
		pending: NewBook(),
		log:     log.Named("restorer"),
	}
}

// Record journals a freshly captured snapshot.
func (r *Restorer) Record(s Snapshot) {
	if r.journal != nil {
		r.journal.SaveSnapshot(s)
	}
}

// Restore applies s. It reports false when the snapshot was parked instead.
func (r *Restorer) Restore(s Snapshot) bool {
	if err := s.Apply(r.players); err != nil {
		r.log.Debug("restore deferred", zap.String("player", string(s.Player)), zap.Error(err))
		r.pending.Put(s)
		return false
	}
	r.done(s.Player)
	return true
}

// Park queues snapshots found in storage at startup.
func (r *Restorer) Park(snaps ...Snapshot) {
	for _, s := range snaps {
		r.pending.Put(s)
	}
}

// Retry applies parked snapshots of players now online and returns how many
// were restored.
func (r *Restorer) Retry() int {
	restored := 0
	for _, id := range r.pending.Players() {
		if !r.players.Online(id) {
			continue
		}
		s, _ := r.pending.Take(id)
		if r.Restore(s) {
			restored++
			r.log.Info("deferred restore applied", zap.String("player", string(id)))
		}
	}
	return restored
}

// Settle applies the player's parked snapshot, if any, so a new one can be
// taken. False when a parked snapshot still could not be applied.
func (r *Restorer) Settle(id host.PlayerID) bool {
	s, ok := r.pending.Take(id)
	if !ok {
		return true
	}
	if !r.Restore(s) {
		return false
	}
	r.log.Info("deferred restore applied", zap.String("player", string(id)))
	return true
}

// Pending reports whether id still has a parked snapshot.
func (r *Restorer) Pending(id host.PlayerID) bool { return r.pending.Has(id) }

func (r *Restorer) PendingCount() int { return r.pending.Len() }

func (r *Restorer) done(id host.PlayerID) {
	if r.journal != nil {
		r.journal.DeleteSnapshot(id)
	}
}
