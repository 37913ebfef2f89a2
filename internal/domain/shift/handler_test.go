package shift

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/platform/auth"
	"github.com/hospital/hospital/internal/store"
)

func newTestHandler() (*Handler, *echo.Echo, *store.Store) {
	svc, s := newTestService()
	return NewHandler(svc), echo.New(), s
}

func jsonRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandler_CreateShift(t *testing.T) {
	h, e, s := newTestHandler()
	docs := seedDoctors(t, s, 2)

	body := `{"date":"2024-06-10","startTime":"08:00","endTime":"16:00","doctorIds":[` +
		strconv.FormatInt(docs[0], 10) + `,` + strconv.FormatInt(docs[1], 10) + `]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, body), rec)

	if err := h.CreateShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["date"] != "2024-06-10" || got["startTime"] != "08:00" {
		t.Errorf("unexpected body %v", got)
	}
	if ids, _ := got["doctorIds"].([]interface{}); len(ids) != 2 {
		t.Errorf("expected 2 doctor ids, got %v", got["doctorIds"])
	}
	if c.Get("resource_id") == nil {
		t.Error("expected resource_id to be set for the activity log")
	}
}

func TestHandler_CreateShift_UnknownDoctor(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"date":"2024-06-10","startTime":"08:00","endTime":"16:00","doctorIds":[999]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, body), rec)

	if err := h.CreateShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Doctor") || !strings.Contains(rec.Body.String(), "999") {
		t.Errorf("expected message naming Doctor 999, got %q", rec.Body.String())
	}
}

func TestHandler_CreateShift_MissingFields(t *testing.T) {
	h, e, _ := newTestHandler()
	for _, body := range []string{
		`{"startTime":"08:00","endTime":"16:00"}`,
		`{"date":"2024-06-10","endTime":"16:00"}`,
		`{"date":"2024-06-10","startTime":"08:00"}`,
		`{"date":"10/06/2024","startTime":"08:00","endTime":"16:00"}`,
	} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, body), rec)
		if err := h.CreateShift(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestHandler_UpdateShift(t *testing.T) {
	h, e, s := newTestHandler()
	docs := seedDoctors(t, s, 1)
	shiftID := seedShift(t, s)

	body := `{"date":"2024-06-11","startTime":"20:00","endTime":"04:00","doctorIds":[` + strconv.FormatInt(docs[0], 10) + `]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, body), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(shiftID, 10))

	if err := h.UpdateShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestHandler_UpdateShift_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"date":"2024-06-11","startTime":"08:00","endTime":"16:00","doctorIds":[]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, body), rec)
	c.SetParamNames("id")
	c.SetParamValues("12")

	if err := h.UpdateShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty 404 body, got %q", rec.Body.String())
	}
}

func TestHandler_GetShift_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := h.GetShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetShift_BadID(t *testing.T) {
	h, e, _ := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.GetShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_DeleteShift(t *testing.T) {
	h, e, s := newTestHandler()
	shiftID := seedShift(t, s)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(shiftID, 10))

	if err := h.DeleteShift(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_ReplaceRoster(t *testing.T) {
	h, e, s := newTestHandler()
	docs := seedDoctors(t, s, 2)
	shiftID := seedShift(t, s)

	body := `{"doctorIds":[` + strconv.FormatInt(docs[1], 10) + `]}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, body), rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(shiftID, 10))

	if err := h.ReplaceRoster(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got rosterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Added) != 1 || got.Added[0] != docs[1] {
		t.Errorf("unexpected roster response %+v", got)
	}
}

func TestHandler_ListShifts_ByDate(t *testing.T) {
	h, e, s := newTestHandler()
	seedShift(t, s)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?date=2024-06-10", nil), rec)
	if err := h.ListShifts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []WithRoster
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 shift, got %d", len(items))
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?date=tomorrow", nil), rec)
	if err := h.ListShifts(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestHandler_RoutesEnforceRoles(t *testing.T) {
	h, e, _ := newTestHandler()
	api := e.Group("/api/v1", auth.DevAuthMiddleware())
	h.RegisterRoutes(api)

	tests := []struct {
		name   string
		method string
		roles  string
		want   int
	}{
		{"physician cannot create", http.MethodPost, auth.RolePhysician, http.StatusForbidden},
		{"scheduler can create", http.MethodPost, auth.RoleScheduler, http.StatusCreated},
		{"physician can read", http.MethodGet, auth.RolePhysician, http.StatusOK},
		{"unknown role cannot read", http.MethodGet, "janitor", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"date":"2024-06-10","startTime":"08:00","endTime":"16:00","doctorIds":[]}`
			req := jsonRequest(tt.method, body)
			if tt.method == http.MethodGet {
				req = httptest.NewRequest(tt.method, "/", nil)
			}
			req.URL.Path = "/api/v1/shift"
			req.Header.Set(auth.DevRolesHeader, tt.roles)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_ShiftsForDoctor_Paginates(t *testing.T) {
	h, e, s := newTestHandler()
	docs := seedDoctors(t, s, 1)
	for i := 0; i < 3; i++ {
		if _, err := h.svc.CreateShift(context.Background(), dayShift(docs[0])); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=2&offset=0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(docs[0], 10))

	if err := h.ShiftsForDoctor(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page struct {
		Data    []map[string]interface{} `json:"data"`
		Total   int                      `json:"total"`
		HasMore bool                     `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || len(page.Data) != 2 || !page.HasMore {
		t.Errorf("unexpected page: total=%d len=%d hasMore=%v", page.Total, len(page.Data), page.HasMore)
	}
}
