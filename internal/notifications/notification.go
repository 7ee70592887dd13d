package notifications

import (
	"encoding/json"
	"time"
)

// Event names carried on the wire. Each server frame names one of these and
// carries a Notification payload.
const (
	TypeClaimSubmission    = "claim-submission"
	TypeClaimResponse      = "claim-response"
	TypeResponseReceived   = "response-received"
	TypeSelectionMade      = "selection-made"
	TypeSelectionConfirmed = "selection-confirmed"
	TypeSelectionError     = "selection-error"
)

// Notification is a single pushed event record. ID is the dedupe key and is
// stable across redeliveries of the same logical event.
type Notification struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Read      bool            `json:"read"`
}

// KnownTypes returns the closed set of event names clients subscribe to.
func KnownTypes() []string {
	return []string{
		TypeClaimSubmission,
		TypeClaimResponse,
		TypeResponseReceived,
		TypeSelectionMade,
		TypeSelectionConfirmed,
		TypeSelectionError,
	}
}

// ValidType reports whether name is one of the known event names.
func ValidType(name string) bool {
	switch name {
	case TypeClaimSubmission, TypeClaimResponse, TypeResponseReceived,
		TypeSelectionMade, TypeSelectionConfirmed, TypeSelectionError:
		return true
	}
	return false
}
