package hub

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/wardline/notify-hub/internal/auth"
	"github.com/wardline/notify-hub/internal/events"
	"github.com/wardline/notify-hub/internal/notifications"
)

// wsSender serializes writes to one websocket connection.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func newWSSender(conn *websocket.Conn) *wsSender {
	return &wsSender{conn: conn, done: make(chan struct{})}
}

func (s *wsSender) send(frame ServerFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return websocket.JSON.Send(s.conn, frame)
}

func (s *wsSender) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// HandleWebSocket upgrades to WebSocket and serves the session channel.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	srv := websocket.Server{
		Handshake: h.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			h.serveWS(conn)
		},
	}
	srv.ServeHTTP(w, r)
}

// checkOrigin enforces the configured origin allowlist during the upgrade.
// Requests without an Origin header come from non-browser clients and pass.
func (h *Hub) checkOrigin(config *websocket.Config, req *http.Request) error {
	if len(h.cfg.AllowedOrigins) == 0 {
		return nil
	}
	origin := req.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return nil
		}
	}
	h.metrics.ObserveHandshake("rejected")
	return fmt.Errorf("hub: origin %q not allowed", origin)
}

// serveWS runs the handshake and read loop for one connection. The first
// frame must be an auth frame carrying a valid credential; nothing is
// relayed before it is accepted. The credential rides in the frame body, not
// the URL, so it never lands in access logs.
func (h *Hub) serveWS(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.AuthTimeout))

	var hello ClientFrame
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		h.metrics.ObserveHandshake("malformed")
		return
	}
	if hello.Type != FrameAuth {
		h.metrics.ObserveHandshake("rejected")
		_ = websocket.JSON.Send(conn, ServerFrame{Type: FrameError, Error: "expected auth frame"})
		return
	}
	claims, err := auth.Verify(h.cfg.SessionSecret, hello.Token)
	if err != nil {
		h.metrics.ObserveHandshake("rejected")
		h.logger.Info("hub: handshake rejected", "error", err)
		_ = websocket.JSON.Send(conn, ServerFrame{Type: FrameError, Error: "invalid credential"})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	staffID := claims.StaffID()
	s := newWSSender(conn)
	if err := s.send(ServerFrame{Type: FrameAuthOK}); err != nil {
		return
	}

	h.metrics.ObserveHandshake("ok")
	h.register(staffID, s)
	defer func() {
		h.unregister(staffID, s)
		s.close()
	}()

	h.logger.Info("hub: connection opened", "staff_id", staffID, "role", claims.Role)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		var frame ClientFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			h.logger.Debug("hub: connection closed", "staff_id", staffID, "error", err)
			return
		}
		h.handleClientFrame(staffID, s, frame)
	}
}

func (h *Hub) handleClientFrame(staffID string, s *wsSender, frame ClientFrame) {
	switch frame.Type {
	case FramePing:
		_ = s.send(ServerFrame{Type: FramePong})
	case FrameClaimSubmitted:
		// Domain trigger: relay to everyone as a claim-submission event.
		// The payload is owned by the business layer and passed through.
		title := frame.Title
		if title == "" {
			title = "Insurance claim submitted"
		}
		env, err := events.Build(events.EmitRequest{
			Event:   notifications.TypeClaimSubmission,
			Title:   title,
			Message: "A claim was submitted by " + staffID,
			Data:    frame.Data,
		})
		if err != nil {
			_ = s.send(ServerFrame{Type: FrameError, Error: "invalid claim submission"})
			return
		}
		h.Emit(context.Background(), env)
	default:
		// Unknown frames are ignored rather than fatal.
		h.logger.Debug("hub: ignoring frame", "type", frame.Type, "staff_id", staffID)
	}
}
