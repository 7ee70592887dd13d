package hub

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wardline/notify-hub/internal/events"
	"github.com/wardline/notify-hub/internal/observability/metrics"
	"github.com/wardline/notify-hub/pkg/logging"
)

var tracer = otel.Tracer("notifyhub.internal.hub")

// sender is one live delivery channel for a session, either a websocket
// connection or a long-poll buffer.
type sender interface {
	send(frame ServerFrame) error
	close()
}

// Deduper suppresses repeat emissions of the same event id.
type Deduper interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// Config tunes the hub.
type Config struct {
	// SessionSecret verifies handshake credentials.
	SessionSecret string
	// AuthTimeout bounds how long a socket may sit unauthenticated.
	AuthTimeout time.Duration
	// PollWait bounds a long-poll request.
	PollWait time.Duration
	// SessionBuffer is the per-poll-session frame buffer.
	SessionBuffer int
	// AllowedOrigins restricts browser websocket handshakes. Empty means any
	// origin; requests without an Origin header (non-browser clients) always
	// pass.
	AllowedOrigins []string
}

// Hub authenticates incoming connections and emits typed events to specific
// connected sessions or to everyone. The registry of live connections is the
// only shared mutable state; directed events for sessions that are not
// connected are dropped.
type Hub struct {
	cfg     Config
	logger  *logging.Logger
	metrics *metrics.HubMetrics
	dedupe  Deduper // optional

	mu       sync.RWMutex
	sessions map[string]sender
}

// New creates a hub. metrics and dedupe may be nil.
func New(cfg Config, dedupe Deduper, m *metrics.HubMetrics, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 10 * time.Second
	}
	if cfg.PollWait <= 0 {
		cfg.PollWait = 25 * time.Second
	}
	if cfg.SessionBuffer <= 0 {
		cfg.SessionBuffer = 32
	}
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		dedupe:   dedupe,
		sessions: make(map[string]sender),
	}
}

// register installs s as the one live channel for staffID, closing any
// connection it supersedes.
func (h *Hub) register(staffID string, s sender) {
	h.mu.Lock()
	old, had := h.sessions[staffID]
	h.sessions[staffID] = s
	n := len(h.sessions)
	h.mu.Unlock()

	if had && old != s {
		old.close()
	}
	h.metrics.SetConnections(n)
	h.logger.Info("hub: session registered", "staff_id", staffID, "replaced", had)
}

// unregister removes s if it is still the current channel for staffID. A
// connection that was already superseded must not evict its replacement.
func (h *Hub) unregister(staffID string, s sender) {
	h.mu.Lock()
	if cur, ok := h.sessions[staffID]; ok && cur == s {
		delete(h.sessions, staffID)
	}
	n := len(h.sessions)
	h.mu.Unlock()

	h.metrics.SetConnections(n)
	h.logger.Debug("hub: session unregistered", "staff_id", staffID)
}

// ConnectedSessions returns the number of registered sessions.
func (h *Hub) ConnectedSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Connected reports whether the staff session currently has a live channel.
func (h *Hub) Connected(staffID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[staffID]
	return ok
}

// Emit routes a built envelope: broadcast to all sessions or directed to the
// target. Returns the number of sessions the event was handed to. Repeat
// emissions of an already-processed event id are suppressed.
func (h *Hub) Emit(ctx context.Context, env events.Envelope) int {
	ctx, span := tracer.Start(ctx, "hub.Emit", trace.WithAttributes(
		attribute.String("event", env.Event),
		attribute.Bool("broadcast", env.Audience == events.AudienceBroadcast),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		h.metrics.ObserveEmitLatency(env.Event, time.Since(start).Seconds())
	}()

	if h.dedupe != nil {
		fresh, err := h.dedupe.MarkProcessed(ctx, "hub", env.Notification.ID)
		if err != nil {
			// Dedupe is an optimization; clients dedupe by id anyway,
			// so fail open and deliver.
			h.logger.Warn("hub: dedupe check failed", "error", err, "event_id", env.Notification.ID)
		} else if !fresh {
			h.logger.Debug("hub: duplicate emit suppressed", "event_id", env.Notification.ID)
			h.metrics.ObserveEmit(env.Event, "duplicate")
			return 0
		}
	}

	frame := ServerFrame{
		Type:    FrameNotification,
		Event:   env.Event,
		Payload: &env.Notification,
	}

	if env.Audience == events.AudienceBroadcast {
		n := h.broadcast(frame)
		h.metrics.ObserveEmit(env.Event, "broadcast")
		return n
	}

	h.mu.RLock()
	s, ok := h.sessions[env.TargetStaff]
	h.mu.RUnlock()
	if !ok {
		// Fire-and-forget: no queueing for offline sessions.
		h.logger.Debug("hub: target not connected, dropping event",
			"staff_id", env.TargetStaff, "event", env.Event)
		h.metrics.ObserveEmit(env.Event, "dropped")
		h.metrics.ObserveDropped()
		return 0
	}
	if err := s.send(frame); err != nil {
		h.logger.Warn("hub: send failed", "staff_id", env.TargetStaff, "error", err)
		h.metrics.ObserveEmit(env.Event, "error")
		return 0
	}
	h.metrics.ObserveEmit(env.Event, "delivered")
	return 1
}

func (h *Hub) broadcast(frame ServerFrame) int {
	h.mu.RLock()
	targets := make([]sender, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	n := 0
	for _, s := range targets {
		if err := s.send(frame); err == nil {
			n++
		}
	}
	return n
}

// Shutdown closes every registered channel.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]sender)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	h.metrics.SetConnections(0)
}
