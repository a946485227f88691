package settings

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Messages are user-facing templates. Placeholders look like {player}; an empty
// template means the message is not sent.
type Messages struct {
	LobbyStart         string `yaml:"lobby-start"`
	LobbyCountdown     string `yaml:"lobby-countdown"`
	LobbyCancelled     string `yaml:"lobby-cancelled"`
	LobbyFailedPlayers string `yaml:"lobby-failed-players"`
	LobbyJoined        string `yaml:"lobby-joined"`
	LobbyAlreadyJoined string `yaml:"lobby-already-joined"`
	LobbyNotJoined     string `yaml:"lobby-not-joined"`
	LobbyNonExistent   string `yaml:"lobby-non-existent"`
	LobbyScheduled     string `yaml:"lobby-scheduled"`
	LobbyVoted         string `yaml:"lobby-voted"`

	GameTeleported  string `yaml:"game-teleported"`
	GameComplete    string `yaml:"game-complete"`
	GameCancelled   string `yaml:"game-cancelled"`
	GameExit        string `yaml:"game-exit"`
	GameExitFailed  string `yaml:"game-exit-failed"`
	GameSpectate    string `yaml:"game-spectate"`
	GameNonExistent string `yaml:"game-non-existent"`
	GameRunning     string `yaml:"game-running"`
	GameStopped     string `yaml:"game-stopped"`

	ArenaCreated       string `yaml:"arena-created"`
	ArenaDeleted       string `yaml:"arena-deleted"`
	ArenaRenamed       string `yaml:"arena-renamed"`
	ArenaRegionUpdated string `yaml:"arena-region-updated"`
	ArenaSpawnCreated  string `yaml:"arena-spawn-created"`
	ArenaSpawnDeleted  string `yaml:"arena-spawn-deleted"`

	Reload string `yaml:"reload"`
}

func defaultMessages() Messages {
	return Messages{
		LobbyStart:         "LMS lobby is now available to join! /lms join",
		LobbyCountdown:     "LMS will start in {time}. Join with: /lms join",
		LobbyCancelled:     "The LMS lobby has been cancelled",
		LobbyFailedPlayers: "LMS failed to start: not enough players joined",
		LobbyJoined:        "You have joined the LMS lobby",
		LobbyAlreadyJoined: "You are already in the LMS lobby",
		LobbyNotJoined:     "You must join the LMS lobby first",
		LobbyNonExistent:   "There is no LMS lobby to join",
		LobbyScheduled:     "The next LMS lobby opens in {time}",
		LobbyVoted:         "You voted for {name}",

		GameTeleported:  "You have been teleported into LMS",
		GameComplete:    "{player} has won LMS!",
		GameCancelled:   "LMS has been cancelled",
		GameExit:        "You have left LMS",
		GameExitFailed:  "You are not in LMS",
		GameSpectate:    "You are now spectating LMS",
		GameNonExistent: "There is no LMS game running",
		GameRunning:     "LMS is already running",
		GameStopped:     "LMS will stop on the next tick",

		ArenaCreated:       "Arena {name} has been created",
		ArenaDeleted:       "Arena {name} has been deleted",
		ArenaRenamed:       "Arena has been renamed to {name}",
		ArenaRegionUpdated: "Arena {name} region has been updated",
		ArenaSpawnCreated:  "Spawn {id} has been added to {name}",
		ArenaSpawnDeleted:  "Spawn has been removed from {name}",

		Reload: "LMS configuration has been reloaded",
	}
}

// Format substitutes {key} placeholders given as key, value pairs. An empty
// template stays empty.
func Format(template string, kv ...string) string {
	if template == "" || len(kv) == 0 {
		return template
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// FormatDuration renders d as "5 minutes", "1 hour", "10 seconds".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Second {
		return "0 seconds"
	}
	now := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(now, now.Add(d), "", ""))
}
