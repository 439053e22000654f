package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
}

func TestAuthDisabledWhenNoKeyConfigured(t *testing.T) {
	h := Auth("")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	h := Auth("sekrit")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRejectsWrongKey(t *testing.T) {
	h := Auth("sekrit")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	req.Header.Set("X-API-Key", "guess")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestAuthRejectsMissingKey(t *testing.T) {
	h := Auth("sekrit")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthLeavesHealthProbeOpen(t *testing.T) {
	h := Auth("sekrit")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health probe status = %d, want 200 without credentials", rec.Code)
	}
}

func TestAuthAcceptsQueryKeyOnWebSocketRouteOnly(t *testing.T) {
	h := Auth("sekrit")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?api_key=sekrit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ws query key status = %d, want 200", rec.Code)
	}

	// The same query key on a REST route must not work.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status?api_key=sekrit", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("rest query key status = %d, want 401", rec.Code)
	}
}

// capturingHandler collects slog records for inspection.
type capturingHandler struct {
	records []slog.Record
}

func (c *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (c *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	c.records = append(c.records, r)
	return nil
}
func (c *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *capturingHandler) WithGroup(string) slog.Handler      { return c }

func recordAttrs(r slog.Record) map[string]slog.Value {
	attrs := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return attrs
}

func TestLoggingCapturesStatusBytesAndClient(t *testing.T) {
	captured := &capturingHandler{}
	h := Logging(slog.New(captured))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"unknown token"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/depth/xxETH", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(captured.records) != 1 {
		t.Fatalf("got %d log records, want 1", len(captured.records))
	}
	attrs := recordAttrs(captured.records[0])
	if got := attrs["status"].Int64(); got != http.StatusNotFound {
		t.Errorf("status attr = %d, want 404", got)
	}
	if got := attrs["bytes"].Int64(); got != int64(len(`{"error":"unknown token"}`)) {
		t.Errorf("bytes attr = %d", got)
	}
	if got := attrs["client"].String(); got != "203.0.113.9" {
		t.Errorf("client attr = %q, want first forwarded hop", got)
	}
	if captured.records[0].Level != slog.LevelInfo {
		t.Errorf("level = %v, want info", captured.records[0].Level)
	}
}

func TestLoggingDemotesHealthProbes(t *testing.T) {
	captured := &capturingHandler{}
	h := Logging(slog.New(captured))(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if len(captured.records) != 1 {
		t.Fatalf("got %d log records, want 1", len(captured.records))
	}
	if captured.records[0].Level != slog.LevelDebug {
		t.Errorf("health probe logged at %v, want debug", captured.records[0].Level)
	}
}

// scriptedLimiter drives the RateLimit middleware without Redis.
type scriptedLimiter struct {
	allow bool
	err   error
}

func (s *scriptedLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return s.allow, s.err
}

func TestRateLimitBlocksWhenWindowFull(t *testing.T) {
	h := RateLimit(&scriptedLimiter{allow: false}, 10, time.Second)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	h := RateLimit(&scriptedLimiter{err: errors.New("redis down")}, 10, time.Second)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when the limiter backend is down", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("body = %q", body)
	}
}
