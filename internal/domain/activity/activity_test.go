package activity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/auth"
	"github.com/hospital/hospital/internal/store/memory"
	"github.com/hospital/hospital/pkg/pagination"
)

func newTestService() *Service {
	tick := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return NewService(memory.New(memory.WithClock(clock)).Activity, zerolog.Nop())
}

func TestRecord_RequiresAction(t *testing.T) {
	svc := newTestService()
	err := svc.Record(context.Background(), &model.ActivityEntry{Path: "/api/v1/shift"})
	var invalid *model.ValidationError
	if !errors.As(err, &invalid) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc := newTestService()
	for _, action := range []string{"create", "update", "delete"} {
		if err := svc.Record(context.Background(), &model.ActivityEntry{Action: action, ResourceType: "shift"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	items, total, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || items[0].Action != "delete" || items[2].Action != "create" {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestHandler_ListEntries(t *testing.T) {
	svc := newTestService()
	if err := svc.Record(context.Background(), &model.ActivityEntry{Action: "create", ResourceType: "appointment", Status: 201}); err != nil {
		t.Fatalf("record: %v", err)
	}

	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1", auth.DevAuthMiddleware()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/log", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp pagination.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 entry, got %d", resp.Total)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/log", nil)
	req.Header.Set(auth.DevRolesHeader, auth.RoleScheduler)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for scheduler, got %d", rec.Code)
	}
}
