package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline/notify-hub/internal/auth"
)

func okHandler(sawClaims *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sawClaims != nil {
			_, *sawClaims = SessionClaimsFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_ValidToken(t *testing.T) {
	token, err := auth.Mint("secret", "staff-1", "triage", time.Minute)
	require.NoError(t, err)

	var sawClaims bool
	h := SessionAuth("secret")(okHandler(&sawClaims))

	req := httptest.NewRequest(http.MethodGet, "/events/poll", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sawClaims)
}

func TestSessionAuth_Rejections(t *testing.T) {
	h := SessionAuth("secret")(okHandler(nil))

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"bad token":      "Bearer nope",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/events/poll", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestSessionAuth_DisabledWithoutSecret(t *testing.T) {
	h := SessionAuth("")(okHandler(nil))
	req := httptest.NewRequest(http.MethodGet, "/events/poll", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSharedSecret(t *testing.T) {
	h := SharedSecret("svc-secret")(okHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/internal/events", nil)
	req.Header.Set("Authorization", "Bearer svc-secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal/events", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
