package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORS(t *testing.T) {
	t.Run("echoes origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sdks", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		CORS(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("wildcard without origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sdks", nil)
		w := httptest.NewRecorder()

		CORS(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/sdks", nil)
		w := httptest.NewRecorder()

		CORS(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("generates one", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestObserveLogsRouteAndStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mux := http.NewServeMux()
	mux.Handle("GET /api/apps/{from}/{to}", okHandler())

	h := RequestID(Observe(zap.New(core), mux))
	req := httptest.NewRequest(http.MethodGet, "/api/apps/1/2", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/api/apps/1/2", fields["path"])
	assert.Equal(t, "req-1", fields["request_id"])
}
