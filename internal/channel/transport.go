package channel

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of a websocket connection the client needs. Tests
// substitute scripted implementations.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a Conn to the hub.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

// wsDialer dials with gorilla/websocket. The handshake timeout bounds each
// connection attempt.
type wsDialer struct {
	timeout time.Duration
}

func (d wsDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.timeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	return conn, nil
}
