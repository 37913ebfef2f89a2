package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/platform/auth"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	rec := httptest.NewRecorder()
	err := handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}

	retry, parseErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if parseErr != nil || retry < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rec.Header().Get("Retry-After"))
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", got)
	}
}

func withUser(req *http.Request, uid string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, uid))
}

func TestRateLimit_PerUserIsolation(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	req := func(uid string) echo.Context {
		return e.NewContext(withUser(httptest.NewRequest(http.MethodGet, "/", nil), uid), httptest.NewRecorder())
	}

	if err := handler(req("alice")); err != nil {
		t.Fatalf("alice first request: %v", err)
	}
	if err := handler(req("alice")); err == nil {
		t.Fatal("alice second request: expected rate limit error")
	}
	if err := handler(req("bob")); err != nil {
		t.Fatalf("bob first request: expected separate bucket, got %v", err)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, CleanupInterval: time.Minute})
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("ip:10.0.0.1")
	now = now.Add(90 * time.Second)
	rl.limiter("ip:10.0.0.2")
	if rl.Len() != 2 {
		t.Fatalf("expected 2 tracked callers, got %d", rl.Len())
	}

	now = now.Add(60 * time.Second)
	rl.cleanup()
	if rl.Len() != 1 {
		t.Errorf("expected the idle caller to be dropped, got %d left", rl.Len())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimitConfig())
	rl.Start()
	rl.Stop()
	rl.Stop()
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 100 {
		t.Errorf("expected RequestsPerSecond 100, got %f", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 200 {
		t.Errorf("expected BurstSize 200, got %d", cfg.BurstSize)
	}
}
