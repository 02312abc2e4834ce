package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymdesk/internal/auth"
	"gymdesk/pkg/config"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/ping", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestApp(t *testing.T, ready *ReadyCheck) *Application {
	t.Helper()
	cfg := &config.Config{
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
	a := NewApplication(cfg)
	a.SetApp(pingHandler{}, auth.NewIssuer("secret", time.Hour), ready)
	t.Cleanup(a.stopWorkers)
	return a
}

func get(a *Application, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t, nil)

	w := get(a, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(a, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyReportsDependency(t *testing.T) {
	healthy := true
	a := newTestApp(t, &ReadyCheck{
		Name: "mongo",
		Check: func(ctx context.Context) (string, error) {
			if !healthy {
				return "", errors.New("no primary")
			}
			return "ok", nil
		},
	})

	w := get(a, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","dependency":"mongo","detail":"ok"}`, w.Body.String())

	healthy = false
	w = get(a, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAppRoutesGoThroughMiddleware(t *testing.T) {
	a := newTestApp(t, nil)

	w := get(a, "/api/v1/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServeStopsOnContext(t *testing.T) {
	a := newTestApp(t, nil)
	hookRan := false
	a.OnShutdown(func(ctx context.Context) { hookRan = true })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.True(t, hookRan)
}
