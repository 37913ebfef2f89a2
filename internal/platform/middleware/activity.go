package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/auth"
)

// ActivityRecorder persists activity log entries.
type ActivityRecorder interface {
	Record(ctx context.Context, e *model.ActivityEntry) error
}

// ActivityRecorderFunc is a function adapter for ActivityRecorder.
type ActivityRecorderFunc func(ctx context.Context, e *model.ActivityEntry) error

func (f ActivityRecorderFunc) Record(ctx context.Context, e *model.ActivityEntry) error {
	return f(ctx, e)
}

// ActivityLog records every mutating request under prefix once the handler
// has run. Reads are not logged. A failure to record is logged and never
// fails the request.
func ActivityLog(logger zerolog.Logger, prefix string, rec ActivityRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := methodToAction(req.Method)
			if action == "" || !strings.HasPrefix(req.URL.Path, prefix) {
				return next(c)
			}

			err := next(c)

			// An error that has not been written yet reaches the client through
			// the HTTP error handler, so the response status is still the default.
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}
			entry := &model.ActivityEntry{
				UserID:       auth.UserIDFromContext(req.Context()),
				Action:       action,
				ResourceType: resourceType(strings.TrimPrefix(req.URL.Path, prefix)),
				ResourceID:   resourceID(c),
				Method:       req.Method,
				Path:         req.URL.Path,
				Status:       status,
			}
			entry.RequestID, _ = c.Get("request_id").(string)

			// The request context may already be cancelled once the client
			// has its response.
			if recErr := rec.Record(context.WithoutCancel(req.Context()), entry); recErr != nil {
				logger.Error().Err(recErr).
					Str("request_id", entry.RequestID).
					Str("path", entry.Path).
					Msg("failed to record activity")
			}
			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// resourceType takes the first path segment after the API prefix:
// "/shift/7/doctors" is a shift.
func resourceType(rest string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(rest, "/"), "/")
	if seg == "" {
		return "unknown"
	}
	return seg
}

// resourceID prefers the id a create handler stored under "resource_id",
// then the :id path parameter.
func resourceID(c echo.Context) string {
	if v := c.Get("resource_id"); v != nil {
		return fmt.Sprint(v)
	}
	return c.Param("id")
}
