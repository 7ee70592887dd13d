// Command console is a terminal notification client. It opens a channel to a
// notify-hub server, keeps a local notification store in sync and re-renders
// the list whenever it changes. Useful for smoke-testing a deployment without
// a browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wardline/notify-hub/internal/auth"
	"github.com/wardline/notify-hub/internal/channel"
	"github.com/wardline/notify-hub/internal/notifications"
	"github.com/wardline/notify-hub/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		server   = flag.String("server", "http://localhost:8080", "notify-hub base URL")
		token    = flag.String("token", "", "session token (mutually exclusive with -secret)")
		secret   = flag.String("secret", os.Getenv("SESSION_JWT_SECRET"), "mint a token locally from this secret")
		staffID  = flag.String("staff", "", "staff id to mint a token for")
		role     = flag.String("role", "staff", "role claim for a minted token")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	logger := logging.New(*logLevel)

	credential := *token
	if credential == "" {
		if *secret == "" || *staffID == "" {
			fmt.Fprintln(os.Stderr, "either -token, or -secret and -staff, must be set")
			os.Exit(2)
		}
		minted, err := auth.Mint(*secret, *staffID, *role, 12*time.Hour)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mint token:", err)
			os.Exit(1)
		}
		credential = minted
	}

	wsURL, pollURL, err := endpointURLs(*server)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad server URL:", err)
		os.Exit(2)
	}

	store := notifications.NewStore()
	unsubscribe := store.Subscribe(func() { render(store) })
	defer unsubscribe()

	client := channel.New(channel.Config{
		URL:        wsURL,
		PollURL:    pollURL,
		Credential: credential,
	}, store, logger, channel.WithAlerter(consoleAlerter{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "start channel:", err)
		os.Exit(1)
	}
	defer client.Close()

	render(store)
	<-ctx.Done()
	fmt.Println("\nbye")
}

// endpointURLs derives the socket and poll endpoints from the server base URL.
func endpointURLs(base string) (wsURL, pollURL string, err error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	poll := *u
	poll.Path = "/events/poll"

	ws := *u
	ws.Path = "/ws"
	if u.Scheme == "https" {
		ws.Scheme = "wss"
	} else {
		ws.Scheme = "ws"
	}
	return ws.String(), poll.String(), nil
}

func render(store *notifications.Store) {
	var b strings.Builder
	b.WriteString("\033[2J\033[H") // clear screen

	status := "offline"
	if store.Connected() {
		status = "live"
	}
	fmt.Fprintf(&b, "notify-hub console  [%s]  unread: %s\n\n",
		status, notifications.BadgeLabel(store.UnreadCount()))

	items := store.Snapshot()
	if len(items) == 0 {
		b.WriteString("  no notifications\n")
	}
	now := time.Now()
	for _, n := range items {
		marker := "*"
		if n.Read {
			marker = " "
		}
		fmt.Fprintf(&b, " %s %-22s %s\n", marker, notifications.RelativeTime(n.Timestamp, now), n.Title)
		if n.Message != "" {
			fmt.Fprintf(&b, "     %s\n", n.Message)
		}
		fmt.Fprintf(&b, "     -> %s\n", notifications.ActionFor(n.Type))
	}
	os.Stdout.WriteString(b.String())
}

// consoleAlerter rings the terminal bell for high-priority events.
type consoleAlerter struct{}

func (consoleAlerter) Alert(title, message string) error {
	_, err := fmt.Fprintf(os.Stdout, "\a[alert] %s: %s\n", title, message)
	return err
}
