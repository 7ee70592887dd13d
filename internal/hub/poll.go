package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/wardline/notify-hub/internal/http/middleware"
)

// pollSender buffers frames for a session on the degraded long-poll
// transport. The buffer is bounded; overflow drops the oldest frame, which
// matches the fire-and-forget contract.
type pollSender struct {
	mu     sync.Mutex
	frames chan ServerFrame
	closed bool
	idle   *time.Timer
}

func newPollSender(buffer int) *pollSender {
	return &pollSender{frames: make(chan ServerFrame, buffer)}
}

func (p *pollSender) send(frame ServerFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errPollClosed
	}
	for {
		select {
		case p.frames <- frame:
			return nil
		default:
			select {
			case <-p.frames: // drop oldest
			default:
			}
		}
	}
}

func (p *pollSender) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		if p.idle != nil {
			p.idle.Stop()
		}
		close(p.frames)
	}
}

// touch pushes the idle deadline out. Called on every poll request so only
// sessions that stopped polling expire.
func (p *pollSender) touch(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed && p.idle != nil {
		p.idle.Reset(d)
	}
}

var errPollClosed = &pollClosedError{}

type pollClosedError struct{}

func (*pollClosedError) Error() string { return "hub: poll session closed" }

// HandlePoll is the degraded transport: an authenticated GET that parks
// until a frame arrives or the wait elapses, then returns buffered frames.
// The session credential is verified by the SessionAuth middleware; a poll
// session occupies the same registry slot as a socket session.
func (h *Hub) HandlePoll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		h.metrics.ObserveHandshake("rejected")
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	staffID := claims.StaffID()

	p := h.pollSession(staffID)
	if p == nil {
		http.Error(w, "session occupied by another transport", http.StatusConflict)
		return
	}
	p.touch(h.pollIdleTTL())

	frames := p.drain()
	if len(frames) == 0 {
		wait := time.NewTimer(h.cfg.PollWait)
		defer wait.Stop()
		select {
		case frame, ok := <-p.frames:
			if ok {
				frames = append([]ServerFrame{frame}, p.drain()...)
			}
		case <-wait.C:
		case <-r.Context().Done():
		}
	}
	p.touch(h.pollIdleTTL())

	if frames == nil {
		frames = []ServerFrame{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"events": frames})
}

// pollSession returns the staff session's poll buffer, creating and
// registering one when the session is new or currently holds a poll sender.
// A new buffer expires and unregisters itself if the client stops polling.
func (h *Hub) pollSession(staffID string) *pollSender {
	h.mu.RLock()
	cur, ok := h.sessions[staffID]
	h.mu.RUnlock()

	if ok {
		if p, isPoll := cur.(*pollSender); isPoll {
			return p
		}
		// A live socket owns the session; don't evict it from underneath.
		return nil
	}

	p := newPollSender(h.cfg.SessionBuffer)
	p.idle = time.AfterFunc(h.pollIdleTTL(), func() {
		h.logger.Debug("hub: poll session expired", "staff_id", staffID)
		h.unregister(staffID, p)
		p.close()
	})
	h.metrics.ObserveHandshake("ok")
	h.register(staffID, p)
	return p
}

// pollIdleTTL is how long a poll session survives without a request. Clients
// re-poll immediately after each response, so two wait windows is generous.
func (h *Hub) pollIdleTTL() time.Duration {
	return 2 * h.cfg.PollWait
}

func (p *pollSender) drain() []ServerFrame {
	var out []ServerFrame
	for {
		select {
		case frame, ok := <-p.frames:
			if !ok {
				return out
			}
			out = append(out, frame)
		default:
			return out
		}
	}
}
