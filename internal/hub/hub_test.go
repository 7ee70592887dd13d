package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline/notify-hub/internal/events"
	"github.com/wardline/notify-hub/internal/notifications"
	"github.com/wardline/notify-hub/pkg/logging"
)

// fakeSender records delivered frames.
type fakeSender struct {
	frames []ServerFrame
	closed bool
	err    error
}

func (f *fakeSender) send(frame ServerFrame) error {
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeSender) close() { f.closed = true }

// fakeDeduper marks ids in memory.
type fakeDeduper struct {
	seen map[string]bool
	err  error
}

func (f *fakeDeduper) MarkProcessed(_ context.Context, _, eventID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func newTestHub(dedupe Deduper) *Hub {
	return New(Config{SessionSecret: "test-secret"}, dedupe, nil, logging.New("error"))
}

func directed(id, staffID string) events.Envelope {
	return events.Envelope{
		Event:       notifications.TypeSelectionConfirmed,
		Audience:    events.AudienceDirected,
		TargetStaff: staffID,
		Notification: notifications.Notification{
			ID:        id,
			Type:      notifications.TypeSelectionConfirmed,
			Title:     "Confirmed",
			Timestamp: time.Now().UTC(),
		},
	}
}

func TestHub_EmitDirected(t *testing.T) {
	h := newTestHub(nil)
	a := &fakeSender{}
	b := &fakeSender{}
	h.register("staff-a", a)
	h.register("staff-b", b)

	n := h.Emit(context.Background(), directed("n1", "staff-a"))
	assert.Equal(t, 1, n)
	require.Len(t, a.frames, 1)
	assert.Empty(t, b.frames)
	assert.Equal(t, FrameNotification, a.frames[0].Type)
	assert.Equal(t, notifications.TypeSelectionConfirmed, a.frames[0].Event)
	assert.Equal(t, "n1", a.frames[0].Payload.ID)
}

func TestHub_EmitBroadcast(t *testing.T) {
	h := newTestHub(nil)
	a := &fakeSender{}
	b := &fakeSender{}
	h.register("staff-a", a)
	h.register("staff-b", b)

	env := directed("n1", "")
	env.Audience = events.AudienceBroadcast
	env.Event = notifications.TypeClaimSubmission
	env.Notification.Type = notifications.TypeClaimSubmission

	n := h.Emit(context.Background(), env)
	assert.Equal(t, 2, n)
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
}

func TestHub_DirectedDropWhenOffline(t *testing.T) {
	h := newTestHub(nil)
	n := h.Emit(context.Background(), directed("n1", "nobody"))
	assert.Zero(t, n)
}

func TestHub_ReplacementClosesOldConnection(t *testing.T) {
	h := newTestHub(nil)
	old := &fakeSender{}
	h.register("staff-a", old)

	repl := &fakeSender{}
	h.register("staff-a", repl)

	assert.True(t, old.closed)
	assert.Equal(t, 1, h.ConnectedSessions())

	// The superseded connection's teardown must not evict the new one.
	h.unregister("staff-a", old)
	assert.True(t, h.Connected("staff-a"))

	h.unregister("staff-a", repl)
	assert.False(t, h.Connected("staff-a"))
}

func TestHub_DuplicateEmitSuppressed(t *testing.T) {
	h := newTestHub(&fakeDeduper{})
	a := &fakeSender{}
	h.register("staff-a", a)

	assert.Equal(t, 1, h.Emit(context.Background(), directed("n1", "staff-a")))
	assert.Equal(t, 0, h.Emit(context.Background(), directed("n1", "staff-a")))
	assert.Len(t, a.frames, 1)
}

func TestHub_DedupeFailureFailsOpen(t *testing.T) {
	h := newTestHub(&fakeDeduper{err: errors.New("redis down")})
	a := &fakeSender{}
	h.register("staff-a", a)

	assert.Equal(t, 1, h.Emit(context.Background(), directed("n1", "staff-a")))
	assert.Len(t, a.frames, 1)
}

func TestHub_Shutdown(t *testing.T) {
	h := newTestHub(nil)
	a := &fakeSender{}
	b := &fakeSender{}
	h.register("staff-a", a)
	h.register("staff-b", b)

	h.Shutdown()
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Zero(t, h.ConnectedSessions())
}
