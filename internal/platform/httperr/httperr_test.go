package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/model"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", fmt.Errorf("get shift: %w", model.ErrNotFound), http.StatusNotFound, ""},
		{"unknown reference", model.UnknownReference(model.KindDoctor, 7), http.StatusBadRequest, "Doctor with id 7 not found"},
		{"validation", model.Invalid("date", "is required"), http.StatusBadRequest, "date: is required"},
		{"outside shift", model.ErrOutsideShift, http.StatusBadRequest, model.ErrOutsideShift.Error()},
		{"conflict", fmt.Errorf("delete doctor: %w", model.ErrConflict), http.StatusConflict, "delete doctor: conflict"},
		{"unavailable", model.Unavailable("list", errors.New("dial tcp")), http.StatusServiceUnavailable, "store unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			if err := Write(c, tt.err); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestWrite_UnknownErrorIs500(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Write(c, errors.New("boom"))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPError, got %v", err)
	}
}

func TestParamID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("12")
	if id, err := ParamID(c, "id"); err != nil || id != 12 {
		t.Errorf("expected 12, got %d (%v)", id, err)
	}
	for _, bad := range []string{"abc", "0", "-3", ""} {
		c.SetParamValues(bad)
		if _, err := ParamID(c, "id"); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestQueryID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?doctorId=4&patientId=x", nil), httptest.NewRecorder())

	if id, ok, err := QueryID(c, "doctorId"); err != nil || !ok || id != 4 {
		t.Errorf("expected doctorId=4, got %d %v %v", id, ok, err)
	}
	if _, ok, err := QueryID(c, "roomId"); err != nil || ok {
		t.Errorf("expected absent roomId, got ok=%v err=%v", ok, err)
	}
	if _, _, err := QueryID(c, "patientId"); err == nil {
		t.Error("expected error for non-numeric patientId")
	}
}
