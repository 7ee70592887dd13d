package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/wardline/notify-hub/internal/hub"
	"github.com/wardline/notify-hub/internal/notifications"
	"github.com/wardline/notify-hub/pkg/logging"
)

// ErrNoCredential is returned when Start is called without a credential; the
// client never attempts an anonymous connection.
var ErrNoCredential = errors.New("channel: no session credential")

// errAuthRejected stops the retry loop: a rejected credential is not retried
// until the caller starts again with a new one.
var errAuthRejected = errors.New("channel: credential rejected")

// Alerter raises a native OS notification for high-priority events. Failures
// are ignored; it is best-effort by contract.
type Alerter interface {
	Alert(title, message string) error
}

// Config tunes the channel client.
type Config struct {
	// URL is the websocket endpoint.
	URL string
	// PollURL, when set, is the degraded long-poll transport used once
	// websocket attempts are exhausted.
	PollURL string
	// Credential is the bearer token presented in the auth frame.
	Credential string

	MaxRetries  int           // connection attempts per recovery sequence
	RetryDelay  time.Duration // fixed delay between attempts
	DialTimeout time.Duration // per-attempt bound
}

func (c *Config) applyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
}

// Client maintains exactly one live connection per session, authenticates
// it, and forwards every received event into the store unchanged apart from
// shape validation. All store mutations happen on the client's own
// goroutine, which Close waits out, so nothing can land after teardown.
type Client struct {
	cfg     Config
	store   *notifications.Store
	logger  *logging.Logger
	dialer  Dialer
	alerter Alerter
	httpc   *http.Client

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option customizes a Client.
type Option func(*Client)

// WithDialer substitutes the websocket dialer. Tests use this.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithAlerter installs the native-notification hook.
func WithAlerter(a Alerter) Option {
	return func(c *Client) { c.alerter = a }
}

// WithHTTPClient substitutes the HTTP client used by the poll fallback.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// New creates a channel client feeding the given store.
func New(cfg Config, store *notifications.Store, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.applyDefaults()
	c := &Client{
		cfg:    cfg,
		store:  store,
		logger: logger,
		httpc:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = wsDialer{timeout: cfg.DialTimeout}
	}
	return c
}

// Start begins connecting in the background. Calling Start while the client
// is already running is a no-op, so re-invocation cannot create a duplicate
// connection.
func (c *Client) Start(ctx context.Context) error {
	if c.cfg.Credential == "" {
		return ErrNoCredential
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.run(runCtx)
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()
	return nil
}

// Close tears the connection down deterministically. Pending reconnect
// timers are cancelled and no store mutation occurs after Close returns.
// Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run drives connect/reconnect until the context is cancelled, retries are
// exhausted, or the credential is rejected.
func (c *Client) run(ctx context.Context) {
	defer c.store.SetConnected(false)

	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := c.dial(ctx)
		if err != nil {
			attempts++
			c.logger.Warn("channel: connect failed", "attempt", attempts, "error", err)
			if attempts >= c.cfg.MaxRetries {
				if c.cfg.PollURL != "" {
					c.logger.Info("channel: falling back to long-poll transport")
					c.pollLoop(ctx)
				}
				return
			}
			if !sleepCtx(ctx, c.cfg.RetryDelay) {
				return
			}
			continue
		}

		err = c.session(ctx, conn)
		if ctx.Err() != nil || errors.Is(err, errAuthRejected) {
			return
		}
		// Unexpected disconnect: a fresh recovery sequence gets the
		// full retry budget.
		attempts = 0
		c.store.SetConnected(false)
		c.logger.Info("channel: disconnected, reconnecting", "error", err)
		if !sleepCtx(ctx, c.cfg.RetryDelay) {
			return
		}
	}
}

func (c *Client) dial(ctx context.Context) (Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()
	return c.dialer.DialContext(dialCtx, c.cfg.URL)
}

// session authenticates the connection and pumps frames into the store
// until the transport fails or the context ends.
func (c *Client) session(ctx context.Context, conn Conn) error {
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(hub.ClientFrame{Type: hub.FrameAuth, Token: c.cfg.Credential}); err != nil {
		return fmt.Errorf("channel: send auth: %w", err)
	}

	var reply hub.ServerFrame
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("channel: read auth reply: %w", err)
	}
	switch reply.Type {
	case hub.FrameAuthOK:
	case hub.FrameError:
		c.logger.Error("channel: handshake rejected", "error", reply.Error)
		return errAuthRejected
	default:
		return fmt.Errorf("channel: unexpected handshake frame %q", reply.Type)
	}

	c.store.SetConnected(true)
	c.logger.Info("channel: connected")

	for {
		var frame hub.ServerFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("channel: read: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.handleFrame(frame)
	}
}

// handleFrame dispatches one server frame. The event-name table is fixed;
// unknown events and payloads that cannot be deduped are dropped, never
// fatal.
func (c *Client) handleFrame(frame hub.ServerFrame) {
	switch frame.Type {
	case hub.FramePong:
		return
	case hub.FrameNotification:
	default:
		c.logger.Debug("channel: ignoring frame", "type", frame.Type)
		return
	}

	if frame.Payload == nil || frame.Payload.ID == "" {
		c.logger.Warn("channel: dropping malformed event", "event", frame.Event)
		return
	}
	if !notifications.ValidType(frame.Event) {
		c.logger.Debug("channel: dropping unknown event", "event", frame.Event)
		return
	}

	added := c.store.Add(*frame.Payload)

	if added && frame.Event == notifications.TypeResponseReceived && c.alerter != nil {
		if err := c.alerter.Alert(frame.Payload.Title, frame.Payload.Message); err != nil {
			c.logger.Debug("channel: native alert failed", "error", err)
		}
	}
}

// pollLoop is the degraded transport: repeated authenticated long-poll
// requests. Consecutive failures share the same bounded retry budget as the
// socket; exhausting it leaves the client persistently disconnected.
func (c *Client) pollLoop(ctx context.Context) {
	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}
		frames, err := c.pollOnce(ctx)
		if err != nil {
			if errors.Is(err, errAuthRejected) {
				return
			}
			failures++
			c.store.SetConnected(false)
			c.logger.Warn("channel: poll failed", "attempt", failures, "error", err)
			if failures >= c.cfg.MaxRetries {
				c.logger.Warn("channel: poll retries exhausted")
				return
			}
			if !sleepCtx(ctx, c.cfg.RetryDelay) {
				return
			}
			continue
		}
		failures = 0
		c.store.SetConnected(true)
		for _, frame := range frames {
			c.handleFrame(frame)
		}
	}
}

func (c *Client) pollOnce(ctx context.Context) ([]hub.ServerFrame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.PollURL, nil)
	if err != nil {
		return nil, fmt.Errorf("channel: build poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Credential)

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("channel: poll: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return nil, errAuthRejected
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("channel: poll status %d", res.StatusCode)
	}

	var body struct {
		Events []hub.ServerFrame `json:"events"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("channel: decode poll body: %w", err)
	}
	return body.Events, nil
}

// sleepCtx waits d, returning false if the context ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
