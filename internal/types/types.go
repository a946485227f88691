package types

import pub "github.com/DoyleJ11/lastmanstanding/pkg/types"

const (
	FrameBroadcast = "Broadcast"
	FrameStatus    = "Status"
	FrameReply     = "Reply"
	FrameError     = "Error"
)

// ClientMessage is a player command sent over the websocket.
type ClientMessage struct {
	Type   string `json:"type"` // "Join" | "Quit" | "Vote" | "Spectate"
	Player string `json:"player"`
	Arena  string `json:"arena,omitempty"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	Version int         `json:"version,omitempty"`
	Message string      `json:"message,omitempty"`
	Status  *pub.Status `json:"status,omitempty"`
	Error   string      `json:"error,omitempty"`
}
