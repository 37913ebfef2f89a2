package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hospital/hospital/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// Idle limiters older than twice CleanupInterval are dropped.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
		CleanupInterval:   5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per caller. Authenticated callers are
// keyed by user id, anonymous ones by remote address.
type RateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
	stopCh  chan struct{}
	stop    sync.Once
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig().CleanupInterval
	}
	return &RateLimiter{
		cfg:     cfg,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
}

// Start runs the idle-entry sweeper until Stop is called.
func (rl *RateLimiter) Start() {
	go func() {
		ticker := time.NewTicker(rl.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()
}

func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.stopCh) })
}

// Len reports how many callers are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.BurstSize)}
		rl.clients[key] = cl
	}
	cl.lastAccess = rl.now()
	return cl.limiter
}

func (rl *RateLimiter) cleanup() {
	ttl := rl.cfg.CleanupInterval * 2
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) retryAfter() int {
	if rl.cfg.RequestsPerSecond <= 0 {
		return 1
	}
	sec := int(math.Ceil(1 / rl.cfg.RequestsPerSecond))
	if sec < 1 {
		sec = 1
	}
	return sec
}

// Middleware rejects callers over their budget with 429 and a Retry-After
// header.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	limit := strconv.FormatFloat(rl.cfg.RequestsPerSecond, 'f', -1, 64)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
				key = "user:" + uid
			}

			c.Response().Header().Set("X-RateLimit-Limit", limit)
			if !rl.limiter(key).Allow() {
				c.Response().Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

// RateLimit returns a rate limiting middleware with its own limiter.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return NewRateLimiter(cfg).Middleware()
}
