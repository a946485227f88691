package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lastmanstanding/internal/arena"
	"github.com/DoyleJ11/lastmanstanding/internal/geom"
	"github.com/DoyleJ11/lastmanstanding/internal/host"
	"github.com/DoyleJ11/lastmanstanding/internal/hub"
	"github.com/DoyleJ11/lastmanstanding/internal/settings"
	"github.com/DoyleJ11/lastmanstanding/pkg/types"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	st, err := a.Hub.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *api) listArenas(w http.ResponseWriter, r *http.Request) {
	all := a.Arenas.All()
	out := make([]types.Arena, 0, len(all))
	for _, ar := range all {
		out = append(out, arenaView(ar))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) getArena(w http.ResponseWriter, r *http.Request) {
	ar, ok := a.Arenas.Lookup(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, arena.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, arenaView(ar))
}

// Player commands

func player(r *http.Request) host.PlayerID {
	return host.PlayerID(chi.URLParam(r, "id"))
}

func (a *api) join(w http.ResponseWriter, r *http.Request) {
	a.respond(w, KindJoin, a.Hub.Join(r.Context(), player(r)))
}

func (a *api) quit(w http.ResponseWriter, r *http.Request) {
	a.respond(w, KindQuit, a.Hub.Quit(r.Context(), player(r)))
}

func (a *api) vote(w http.ResponseWriter, r *http.Request) {
	var body types.VoteRequest
	if !decode(w, r, &body) {
		return
	}
	a.respond(w, KindVote, a.Hub.Vote(r.Context(), player(r), body.Arena))
}

func (a *api) spectate(w http.ResponseWriter, r *http.Request) {
	a.respond(w, KindSpectate, a.Hub.Spectate(r.Context(), player(r)))
}

func (a *api) death(w http.ResponseWriter, r *http.Request) {
	a.respond(w, "", a.Hub.PlayerDeath(r.Context(), player(r)))
}

func (a *api) disconnect(w http.ResponseWriter, r *http.Request) {
	a.respond(w, "", a.Hub.Disconnect(r.Context(), player(r)))
}

func (a *api) respond(w http.ResponseWriter, kind string, res hub.Result) {
	msg := reply(a.Settings.Get().Messages, kind, res)
	if res.Err != nil {
		writeJSON(w, statusFor(res.Err), types.Reply{Message: msg, Error: res.Err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.Reply{Message: msg})
}

// Admin commands

func (a *api) start(w http.ResponseWriter, r *http.Request) {
	res := a.Hub.Start(r.Context())
	m := a.Settings.Get().Messages
	if res.Err != nil {
		writeJSON(w, statusFor(res.Err), types.Reply{Message: m.GameRunning, Error: res.Err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, types.Reply{})
}

func (a *api) stop(w http.ResponseWriter, r *http.Request) {
	res := a.Hub.Stop(r.Context())
	m := a.Settings.Get().Messages
	if res.Err != nil {
		writeJSON(w, statusFor(res.Err), types.Reply{Message: m.GameNonExistent, Error: res.Err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, types.Reply{Message: m.GameStopped})
}

func (a *api) reload(w http.ResponseWriter, r *http.Request) {
	s, err := settings.Load(a.SettingsPath)
	if err != nil {
		a.log.Warn("reload failed", zap.String("path", a.SettingsPath), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, types.Reply{Error: err.Error()})
		return
	}
	a.Settings.Set(s)
	a.log.Info("settings reloaded", zap.String("path", a.SettingsPath))
	writeJSON(w, http.StatusOK, types.Reply{Message: s.Messages.Reload})
}

func (a *api) schedule(w http.ResponseWriter, r *http.Request) {
	var body types.ScheduleRequest
	if !decode(w, r, &body) {
		return
	}
	now := a.Clock()
	at := now.Add(time.Duration(body.InSeconds) * time.Second)
	if body.At != nil {
		at = *body.At
	} else if body.InSeconds <= 0 {
		writeJSON(w, http.StatusBadRequest, types.Reply{Error: "at or in_sec is required"})
		return
	}
	if res := a.Hub.Schedule(r.Context(), at); res.Err != nil {
		writeError(w, res.Err)
		return
	}
	msg := settings.Format(a.Settings.Get().Messages.LobbyScheduled, "time", settings.FormatDuration(at.Sub(now)))
	writeJSON(w, http.StatusOK, types.Reply{Message: msg})
}

func (a *api) createArena(w http.ResponseWriter, r *http.Request) {
	var body types.CreateArenaRequest
	if !decode(w, r, &body) {
		return
	}
	region, err := geom.NewRegion(blockPos(body.Pos1), blockPos(body.Pos2))
	if err != nil {
		writeError(w, err)
		return
	}
	ar, err := a.Arenas.Create(body.Name, region)
	if err != nil {
		writeError(w, err)
		return
	}
	a.log.Info("arena created", zap.String("arena", ar.Name), zap.String("region", region.String()))
	a.arenaReply(w, http.StatusCreated, a.Settings.Get().Messages.ArenaCreated, ar, 0)
}

func (a *api) deleteArena(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ar, ok := a.Arenas.Lookup(name)
	if !ok {
		writeError(w, arena.ErrNotFound)
		return
	}
	if err := a.Arenas.Delete(name); err != nil {
		writeError(w, err)
		return
	}
	a.log.Info("arena deleted", zap.String("arena", ar.Name))
	a.arenaReply(w, http.StatusOK, a.Settings.Get().Messages.ArenaDeleted, ar, 0)
}

func (a *api) renameArena(w http.ResponseWriter, r *http.Request) {
	var body types.RenameRequest
	if !decode(w, r, &body) {
		return
	}
	ar, err := a.Arenas.Rename(chi.URLParam(r, "name"), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	a.arenaReply(w, http.StatusOK, a.Settings.Get().Messages.ArenaRenamed, ar, 0)
}

func (a *api) setRegion(w http.ResponseWriter, r *http.Request) {
	var body types.RegionRequest
	if !decode(w, r, &body) {
		return
	}
	region, err := geom.NewRegion(blockPos(body.Pos1), blockPos(body.Pos2))
	if err != nil {
		writeError(w, err)
		return
	}
	ar, err := a.Arenas.SetRegion(chi.URLParam(r, "name"), region)
	if err != nil {
		writeError(w, err)
		return
	}
	a.arenaReply(w, http.StatusOK, a.Settings.Get().Messages.ArenaRegionUpdated, ar, 0)
}

func (a *api) addSpawn(w http.ResponseWriter, r *http.Request) {
	var body types.Location
	if !decode(w, r, &body) {
		return
	}
	ar, id, err := a.Arenas.AddSpawn(chi.URLParam(r, "name"), location(body))
	if err != nil {
		writeError(w, err)
		return
	}
	a.arenaReply(w, http.StatusCreated, a.Settings.Get().Messages.ArenaSpawnCreated, ar, id)
}

func (a *api) deleteSpawn(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "spawn"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.Reply{Error: "spawn id must be a number"})
		return
	}
	ar, err := a.Arenas.DeleteSpawn(chi.URLParam(r, "name"), id)
	if err != nil {
		writeError(w, err)
		return
	}
	a.arenaReply(w, http.StatusOK, a.Settings.Get().Messages.ArenaSpawnDeleted, ar, 0)
}

func (a *api) arenaReply(w http.ResponseWriter, status int, template string, ar *arena.Arena, spawnID int) {
	msg := settings.Format(template, "name", ar.Name, "id", strconv.Itoa(spawnID))
	writeJSON(w, status, types.Reply{Message: msg, SpawnID: spawnID})
}

// Simulated host

func (a *api) putPlayer(w http.ResponseWriter, r *http.Request) {
	var body types.Location
	if !decode(w, r, &body) {
		return
	}
	id := player(r)
	loc := location(body)
	if a.Host.Online(id) {
		if err := a.Host.Move(id, loc); err != nil {
			writeError(w, err)
			return
		}
	} else {
		a.Host.Connect(id, loc)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) removePlayer(w http.ResponseWriter, r *http.Request) {
	id := player(r)
	a.Host.Disconnect(id)
	if res := a.Hub.Disconnect(r.Context(), id); res.Err != nil {
		writeError(w, res.Err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// helpers

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, types.Reply{Error: "bad json"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), types.Reply{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func blockPos(p types.BlockPos) geom.BlockPos {
	return geom.BlockPos{World: p.World, X: p.X, Y: p.Y, Z: p.Z}
}

func location(l types.Location) geom.Location {
	return geom.Location{World: l.World, X: l.X, Y: l.Y, Z: l.Z, Yaw: l.Yaw, Pitch: l.Pitch}
}

func arenaView(a *arena.Arena) types.Arena {
	out := types.Arena{
		ID:     a.ID,
		Name:   a.Name,
		World:  a.Region.World,
		Min:    [3]int{a.Region.Min.X, a.Region.Min.Y, a.Region.Min.Z},
		Max:    [3]int{a.Region.Max.X, a.Region.Max.Y, a.Region.Max.Z},
		Spawns: make([]types.Location, 0, len(a.Spawns)),
	}
	for _, s := range a.Spawns {
		out.Spawns = append(out.Spawns, types.Location{World: s.World, X: s.X, Y: s.Y, Z: s.Z, Yaw: s.Yaw, Pitch: s.Pitch})
	}
	return out
}
