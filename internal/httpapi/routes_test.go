package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/host/memhost"
	"github.com/DoyleJ11/lastmanstanding/internal/hub"
	"github.com/DoyleJ11/lastmanstanding/internal/session"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
	"github.com/DoyleJ11/lastmanstanding/internal/snapshot"
	"github.com/DoyleJ11/lastmanstanding/pkg/types"
)

const token = "s3cret"

var (
	t0   = time.Date(2026, 7, 4, 18, 0, 0, 0, time.UTC)
	home = geom.Location{World: "world", X: 300, Y: 64, Z: 300}
)

type noRewards struct{}

func (noRewards) Grant(host.PlayerID, string) error { return nil }

type server struct {
	srv    *httptest.Server
	hub    *hub.Hub
	host   *memhost.Host
	arenas *arena.Registry
	path   string
}

func newServer(t *testing.T) *server {
	t.Helper()
	h := memhost.New(home)
	reg := arena.NewRegistry(nil)
	region, err := geom.NewRegion(geom.BlockPos{World: "world"}, geom.BlockPos{World: "world", X: 20, Y: 100, Z: 20})
	require.NoError(t, err)
	_, err = reg.Create("pit", region)
	require.NoError(t, err)
	_, _, err = reg.AddSpawn("pit", geom.Location{World: "world", X: 10, Y: 64, Z: 10})
	require.NoError(t, err)

	p := settings.NewProvider(settings.Default())
	orch := session.New(session.Deps{
		Arenas:    reg,
		Settings:  p,
		Players:   h,
		Broadcast: h,
		Restorer:  snapshot.NewRestorer(h, nil, nil),
		Rewards:   noRewards{},
	}, t0.Add(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hb := hub.NewHub(ctx, orch, nil, hub.Config{Clock: func() time.Time { return t0 }}, nil)

	path := filepath.Join(t.TempDir(), "lms.yml")
	srv := httptest.NewServer(SetupRoutes(Deps{
		Hub:          hb,
		Arenas:       reg,
		Settings:     p,
		SettingsPath: path,
		Host:         h,
		AdminToken:   token,
		Clock:        func() time.Time { return t0 },
	}))
	t.Cleanup(srv.Close)
	return &server{srv: srv, hub: hb, host: h, arenas: reg, path: path}
}

func (s *server) do(t *testing.T, method, path string, body any, admin bool) (int, types.Reply) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(t, err)
	if admin {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var r types.Reply
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	}
	return resp.StatusCode, r
}

func TestRoutes_LobbyFlow(t *testing.T) {
	s := newServer(t)
	m := settings.Default().Messages

	code, _ := s.do(t, http.MethodPut, "/host/players/steve", types.Location{World: "world", X: 300, Y: 64, Z: 300}, false)
	require.Equal(t, http.StatusNoContent, code)
	assert.True(t, s.host.Online("steve"))

	code, r := s.do(t, http.MethodPost, "/players/steve/join", nil, false)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, m.LobbyNonExistent, r.Message)

	code, _ = s.do(t, http.MethodPost, "/admin/start", nil, false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodPost, "/admin/start", nil, true)
	require.Equal(t, http.StatusAccepted, code)
	require.True(t, s.hub.Tick(context.Background(), t0).OK)

	code, r = s.do(t, http.MethodPost, "/admin/start", nil, true)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, m.GameRunning, r.Message)

	code, r = s.do(t, http.MethodPost, "/players/steve/join", nil, false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, m.LobbyJoined, r.Message)

	_, r = s.do(t, http.MethodPost, "/players/steve/join", nil, false)
	assert.Equal(t, m.LobbyAlreadyJoined, r.Message)

	code, r = s.do(t, http.MethodPost, "/players/steve/vote", types.VoteRequest{Arena: "PIT"}, false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "You voted for pit", r.Message)

	code, _ = s.do(t, http.MethodPost, "/players/steve/vote", types.VoteRequest{Arena: "nowhere"}, false)
	assert.Equal(t, http.StatusNotFound, code)

	code, r = s.do(t, http.MethodPost, "/players/alex/vote", types.VoteRequest{Arena: "pit"}, false)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, m.LobbyNotJoined, r.Message)

	resp, err := http.Get(s.srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var st types.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "lobby", st.Phase)
	require.NotNil(t, st.Lobby)
	assert.Equal(t, []string{"steve"}, st.Lobby.Queued)
	assert.Equal(t, map[string]int{"pit": 1}, st.Lobby.Votes)

	code, r = s.do(t, http.MethodPost, "/admin/stop", nil, true)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, m.GameStopped, r.Message)
}

func TestRoutes_ArenaAdmin(t *testing.T) {
	s := newServer(t)
	pos1 := types.BlockPos{World: "world", X: 100, Y: 0, Z: 100}
	pos2 := types.BlockPos{World: "world", X: 90, Y: 50, Z: 90}

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		code    int
		message string
	}{
		{"create", http.MethodPost, "/admin/arenas", types.CreateArenaRequest{Name: "dome", Pos1: pos1, Pos2: pos2}, http.StatusCreated, "Arena dome has been created"},
		{"duplicate name", http.MethodPost, "/admin/arenas", types.CreateArenaRequest{Name: "DOME", Pos1: pos1, Pos2: pos2}, http.StatusConflict, ""},
		{"worlds differ", http.MethodPost, "/admin/arenas", types.CreateArenaRequest{Name: "split", Pos1: pos1, Pos2: types.BlockPos{World: "nether"}}, http.StatusBadRequest, ""},
		{"spawn outside", http.MethodPost, "/admin/arenas/dome/spawns", types.Location{World: "world", X: 0, Y: 10, Z: 0}, http.StatusBadRequest, ""},
		{"spawn inside", http.MethodPost, "/admin/arenas/dome/spawns", types.Location{World: "world", X: 95.5, Y: 10, Z: 95.5}, http.StatusCreated, "Spawn 1 has been added to dome"},
		{"rename", http.MethodPost, "/admin/arenas/dome/rename", types.RenameRequest{Name: "bowl"}, http.StatusOK, "Arena has been renamed to bowl"},
		{"old name gone", http.MethodPut, "/admin/arenas/dome/region", types.RegionRequest{Pos1: pos1, Pos2: pos2}, http.StatusNotFound, ""},
		{"region", http.MethodPut, "/admin/arenas/bowl/region", types.RegionRequest{Pos1: pos1, Pos2: types.BlockPos{World: "world", X: 80, Y: 60, Z: 80}}, http.StatusOK, "Arena bowl region has been updated"},
		{"spawn id not a number", http.MethodDelete, "/admin/arenas/bowl/spawns/first", nil, http.StatusBadRequest, ""},
		{"spawn id out of range", http.MethodDelete, "/admin/arenas/bowl/spawns/2", nil, http.StatusBadRequest, ""},
		{"delete spawn", http.MethodDelete, "/admin/arenas/bowl/spawns/1", nil, http.StatusOK, "Spawn has been removed from bowl"},
		{"delete", http.MethodDelete, "/admin/arenas/bowl", nil, http.StatusOK, "Arena bowl has been deleted"},
		{"delete again", http.MethodDelete, "/admin/arenas/bowl", nil, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, r := s.do(t, tt.method, tt.path, tt.body, true)
			assert.Equal(t, tt.code, code, r.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, r.Message)
			}
		})
	}

	_, ok := s.arenas.Lookup("bowl")
	assert.False(t, ok)
	assert.Equal(t, 1, s.arenas.Len())
}

func TestRoutes_ListAndGetArena(t *testing.T) {
	s := newServer(t)

	resp, err := http.Get(s.srv.URL + "/arenas/Pit")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var a types.Arena
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	assert.Equal(t, "pit", a.Name)
	assert.Equal(t, [3]int{20, 100, 20}, a.Max)
	assert.Len(t, a.Spawns, 1)

	resp2, err := http.Get(s.srv.URL + "/arenas")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var all []types.Arena
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&all))
	assert.Len(t, all, 1)

	resp3, err := http.Get(s.srv.URL + "/arenas/missing")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestRoutes_ScheduleAndReload(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(t, http.MethodPost, "/admin/schedule", types.ScheduleRequest{}, true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, r := s.do(t, http.MethodPost, "/admin/schedule", types.ScheduleRequest{InSeconds: 600}, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "The next LMS lobby opens in 10 minutes", r.Message)

	st, err := s.hub.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.NextLobbyAt)
	assert.True(t, st.NextLobbyAt.Equal(t0.Add(10*time.Minute)))

	require.NoError(t, os.WriteFile(s.path, []byte("messages:\n  reload: \"reloaded!\"\n"), 0o644))
	code, r = s.do(t, http.MethodPost, "/admin/reload", nil, true)
	require.Equal(t, http.StatusOK, code, r.Error)
	assert.Equal(t, "reloaded!", r.Message)

	require.NoError(t, os.WriteFile(s.path, []byte("settings:\n  lobby-countdown: -1\n"), 0o644))
	code, _ = s.do(t, http.MethodPost, "/admin/reload", nil, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRoutes_HostDisconnect(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(t, http.MethodPut, "/host/players/steve", types.Location{World: "world", X: 1, Y: 2, Z: 3}, false)
	require.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(t, http.MethodPut, "/host/players/steve", types.Location{World: "world", X: 4, Y: 5, Z: 6}, false)
	require.Equal(t, http.StatusNoContent, code)
	loc, err := s.host.Location("steve")
	require.NoError(t, err)
	assert.Equal(t, 4.0, loc.X)

	code, _ = s.do(t, http.MethodDelete, "/host/players/steve", nil, false)
	assert.Equal(t, http.StatusNoContent, code)
	assert.False(t, s.host.Online("steve"))

	resp, err := http.Get(s.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
