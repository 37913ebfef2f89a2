package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout bounds how long a request may wait on the store, including
// time spent blocked on another booking's or roster edit's locks. Both store
// backends report the expired deadline as model.ErrStoreUnavailable (503).
// A limit of zero or less leaves requests unbounded.
func RequestTimeout(limit time.Duration) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, cancel := context.WithTimeout(req.Context(), limit)
			defer cancel()
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
