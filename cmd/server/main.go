package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/config"
	"github.com/DoyleJ11/lastmanstanding/internal/feed"
	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/host/memhost"
	"github.com/DoyleJ11/lastmanstanding/internal/httpapi"
	"github.com/DoyleJ11/lastmanstanding/internal/hub"
	"github.com/DoyleJ11/lastmanstanding/internal/logging"
	"github.com/DoyleJ11/lastmanstanding/internal/reward"
	"github.com/DoyleJ11/lastmanstanding/internal/session"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
	"github.com/DoyleJ11/lastmanstanding/internal/store"
)

var worldSpawn = geom.Location{World: "world", Y: 64}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		zap.NewExample().Fatal("logger", zap.Error(err))
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreTarget())
	if err != nil {
		return err
	}
	state, err := store.LoadState(ctx, db)
	if err != nil {
		db.Close()
		return err
	}
	writer := store.NewWriter(db, store.DefaultBuffer, log)
	defer writer.Close()

	s, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return err
	}
	provider := settings.NewProvider(s)

	arenas := arena.NewRegistry(writer)
	arenas.Load(state.Arenas)

	mc := memhost.New(worldSpawn)
	restorer := snapshot.NewRestorer(mc, writer, log)
	restorer.Park(state.Snapshots...)

	// The hub outlives the signal context so shutdown can still restore players.
	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := feed.New(base, log)

	now := time.Now()
	next := now.Add(s.Lobby.IntervalDuration())
	if state.HasSchedule {
		next = state.NextLobbyAt
	}
	orch := session.New(session.Deps{
		Arenas:    arenas,
		Settings:  provider,
		Players:   mc,
		Broadcast: multiBroadcast{mc, f},
		Restorer:  restorer,
		Rewards:   reward.NewGranter(provider, mc, log),
		Schedule:  writer,
		Log:       log,
	}, next)
	h := hub.NewHub(base, orch, f, hub.Config{Interval: cfg.TickInterval}, log)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:          h,
			Arenas:       arenas,
			Settings:     provider,
			SettingsPath: cfg.SettingsPath,
			Feed:         f,
			Host:         mc,
			AdminToken:   cfg.AdminToken,
			Log:          log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("server starting",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.StoreDriver),
		zap.Int("arenas", arenas.Len()),
		zap.Int("pending_restores", restorer.PendingCount()),
		zap.Time("next_lobby_at", next))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		if err := h.Shutdown(sctx); err != nil {
			log.Warn("hub shutdown", zap.Error(err))
		}
		cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// multiBroadcast sends chat to the host and to feed subscribers.
type multiBroadcast []host.Broadcaster

func (m multiBroadcast) Broadcast(msg string) {
	for _, b := range m {
		b.Broadcast(msg)
	}
}
