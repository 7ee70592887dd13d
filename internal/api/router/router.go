package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wardline/notify-hub/internal/auth"
	"github.com/wardline/notify-hub/internal/events"
	httpmiddleware "github.com/wardline/notify-hub/internal/http/middleware"
	"github.com/wardline/notify-hub/internal/hub"
	"github.com/wardline/notify-hub/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Hub                *hub.Hub
	MetricsHandler     http.Handler
	SessionSecret      string
	EmitSecret         string
	TokenTTL           time.Duration
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		// The socket authenticates via its first frame; the poll fallback
		// authenticates its bearer header up front.
		public.Get("/ws", cfg.Hub.HandleWebSocket)
		public.With(httpmiddleware.SessionAuth(cfg.SessionSecret)).Get("/events/poll", cfg.Hub.HandlePoll)
	})

	// Internal endpoints, callable only by the web tier.
	r.Group(func(internal chi.Router) {
		internal.Use(httpmiddleware.SharedSecret(cfg.EmitSecret))
		internal.With(httpmiddleware.RateLimit(5, 10)).Post("/session/token", handleMintToken(cfg))
		internal.Post("/internal/events", handleEmit(cfg))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type mintTokenRequest struct {
	StaffID string `json:"staff_id"`
	Role    string `json:"role"`
}

// handleMintToken issues a short-lived session credential for one staff
// member. The web tier calls this after its own login and hands the token to
// the browser, which presents it on /ws or /events/poll.
func handleMintToken(cfg *Config) http.HandlerFunc {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req mintTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.StaffID == "" {
			writeError(w, http.StatusBadRequest, "staff_id is required")
			return
		}
		token, err := auth.Mint(cfg.SessionSecret, req.StaffID, req.Role, ttl)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("token mint failed", "error", err, "staff_id", req.StaffID)
			}
			writeError(w, http.StatusInternalServerError, "could not mint token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":      token,
			"expires_in": int(ttl.Seconds()),
		})
	}
}

// handleEmit accepts a domain event from the web tier, shapes it into a
// notification and fans it out to connected sessions.
func handleEmit(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req events.EmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		env, err := events.Build(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		delivered := cfg.Hub.Emit(r.Context(), env)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"event_id":  env.Notification.ID,
			"delivered": delivered,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
