package hub

import (
	"encoding/json"

	"github.com/wardline/notify-hub/internal/notifications"
)

// Frame types on the session channel.
const (
	FrameAuth           = "auth"
	FrameAuthOK         = "auth-ok"
	FramePing           = "ping"
	FramePong           = "pong"
	FrameNotification   = "notification"
	FrameError          = "error"
	FrameClaimSubmitted = "claim-submitted"
)

// ClientFrame is what a connected session sends. Token is only meaningful on
// the auth frame; Data is an opaque business payload on domain triggers.
type ClientFrame struct {
	Type  string          `json:"type"`
	Token string          `json:"token,omitempty"`
	Title string          `json:"title,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerFrame is what the hub sends. Notification frames name the event and
// carry the payload verbatim.
type ServerFrame struct {
	Type    string                      `json:"type"`
	Event   string                      `json:"event,omitempty"`
	Payload *notifications.Notification `json:"payload,omitempty"`
	Error   string                      `json:"error,omitempty"`
}
