package auth

import (
	"github.com/labstack/echo/v4"
)

// AuthSkipper lets the ops endpoints through without a token. It matches on
// the registered route, so /api/v1/... never qualifies.
func AuthSkipper(c echo.Context) bool {
	return IsPublicPath(c.Path())
}

// IsPublicPath reports whether path is one of the liveness, database
// readiness or metrics endpoints.
func IsPublicPath(path string) bool {
	switch path {
	case "/health", "/health/db", "/metrics":
		return true
	}
	return false
}
