// Package httperr maps model errors onto HTTP responses. Not-found ids get an
// empty 404; caller mistakes get a plain-text 400 naming the problem.
package httperr

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/model"
)

// Write renders err. Errors without a model meaning are returned as a 500
// echo.HTTPError so the central error handler logs them.
func Write(c echo.Context, err error) error {
	var ref *model.UnknownReferenceError
	var invalid *model.ValidationError

	switch {
	case errors.Is(err, model.ErrNotFound):
		return c.NoContent(http.StatusNotFound)
	case errors.As(err, &ref):
		return c.String(http.StatusBadRequest, ref.Error())
	case errors.As(err, &invalid):
		return c.String(http.StatusBadRequest, invalid.Error())
	case errors.Is(err, model.ErrOutsideShift):
		return c.String(http.StatusBadRequest, model.ErrOutsideShift.Error())
	case errors.Is(err, model.ErrConflict):
		return c.String(http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		c.Set("error", err.Error())
		return c.String(http.StatusServiceUnavailable, model.ErrStoreUnavailable.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

// BadRequest renders a binding or parsing failure as a plain-text 400.
func BadRequest(c echo.Context, msg string) error {
	return c.String(http.StatusBadRequest, msg)
}

// Bind renders a request binding failure as a plain-text 400.
func Bind(c echo.Context, err error) error {
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		if he.Internal != nil {
			msg = he.Internal.Error()
		} else if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	return c.String(http.StatusBadRequest, msg)
}

// ParamID parses the named path parameter as a positive int64 id.
func ParamID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

// QueryID parses an optional query parameter as an int64 id. Absent
// parameters report ok=false.
func QueryID(c echo.Context, name string) (id int64, ok bool, err error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, model.Invalid(name, "must be a positive integer")
	}
	return id, true, nil
}
