package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wardline/notify-hub/internal/notifications"
)

// Audience says who a built event is for.
type Audience int

const (
	// AudienceBroadcast delivers to every connected session.
	AudienceBroadcast Audience = iota
	// AudienceDirected delivers to one target session.
	AudienceDirected
)

// Envelope is a built wire event: the notification payload plus routing.
type Envelope struct {
	Event        string
	Audience     Audience
	TargetStaff  string
	Notification notifications.Notification
}

// EmitRequest is the shape accepted by the internal emit endpoint. The
// business layer owns the payload; we validate routing and stamp identity.
type EmitRequest struct {
	Event     string          `json:"event"`
	EventID   string          `json:"event_id,omitempty"`
	StaffID   string          `json:"staff_id,omitempty"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Build validates an emit request and turns it into a routable envelope.
// EventID is minted when absent and reused verbatim when present, so a
// retried emit keeps a stable id for store-level dedupe downstream.
func Build(req EmitRequest) (Envelope, error) {
	if !notifications.ValidType(req.Event) {
		return Envelope{}, fmt.Errorf("events: unknown event name %q", req.Event)
	}
	if req.Title == "" {
		return Envelope{}, fmt.Errorf("events: title is required")
	}

	audience := AudienceDirected
	if req.Event == notifications.TypeClaimSubmission {
		audience = AudienceBroadcast
	}
	if audience == AudienceDirected && req.StaffID == "" {
		return Envelope{}, fmt.Errorf("events: %s requires a target staff_id", req.Event)
	}

	id := req.EventID
	if id == "" {
		id = uuid.NewString()
	}
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return Envelope{
		Event:       req.Event,
		Audience:    audience,
		TargetStaff: req.StaffID,
		Notification: notifications.Notification{
			ID:        id,
			Type:      req.Event,
			Title:     req.Title,
			Message:   req.Message,
			Data:      req.Data,
			Timestamp: ts,
		},
	}, nil
}
