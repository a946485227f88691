package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/feed"
	"github.com/DoyleJ11/lastmanstanding/internal/host/memhost"
	"github.com/DoyleJ11/lastmanstanding/internal/hub"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
	"github.com/DoyleJ11/lastmanstanding/internal/ws"
)

type Deps struct {
	Hub          *hub.Hub
	Arenas       *arena.Registry
	Settings     *settings.Provider
	SettingsPath string
	Feed         *feed.Feed
	// Host, when set, exposes the simulated host under /host.
	Host       *memhost.Host
	AdminToken string
	Clock      func() time.Time
	Log        *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	a := &api{Deps: d, log: d.Log.Named("http")}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/status", a.status)
	r.Get("/arenas", a.listArenas)
	r.Get("/arenas/{name}", a.getArena)
	if d.Feed != nil {
		r.Get("/ws", ws.Handler(d.Feed, d.Hub, Replier(d.Settings), d.Log))
	}

	r.Route("/players/{id}", func(r chi.Router) {
		r.Post("/join", a.join)
		r.Post("/quit", a.quit)
		r.Post("/vote", a.vote)
		r.Post("/spectate", a.spectate)
		r.Post("/death", a.death)
		r.Post("/disconnect", a.disconnect)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.requireAdmin)
		r.Post("/start", a.start)
		r.Post("/stop", a.stop)
		r.Post("/reload", a.reload)
		r.Post("/schedule", a.schedule)
		r.Post("/arenas", a.createArena)
		r.Delete("/arenas/{name}", a.deleteArena)
		r.Post("/arenas/{name}/rename", a.renameArena)
		r.Put("/arenas/{name}/region", a.setRegion)
		r.Post("/arenas/{name}/spawns", a.addSpawn)
		r.Delete("/arenas/{name}/spawns/{spawn}", a.deleteSpawn)
	})

	if d.Host != nil {
		r.Put("/host/players/{id}", a.putPlayer)
		r.Delete("/host/players/{id}", a.removePlayer)
	}
	return r
}

type api struct {
	Deps
	log *zap.Logger
}

// requireAdmin checks the bearer token. With no token configured the admin
// routes are open.
func (a *api) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.AdminToken != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(a.AdminToken)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}
