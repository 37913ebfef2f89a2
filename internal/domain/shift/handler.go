package shift

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/platform/auth"
	"github.com/hospital/hospital/internal/platform/httperr"
	"github.com/hospital/hospital/pkg/civil"
	"github.com/hospital/hospital/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.ReadRoles...))
	readGroup.GET("/shift", h.ListShifts)
	readGroup.GET("/shift/:id", h.GetShift)
	readGroup.GET("/shift/:id/doctors", h.GetRoster)
	readGroup.GET("/doctor/:id/shifts", h.ShiftsForDoctor)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleScheduler))
	writeGroup.POST("/shift", h.CreateShift)
	writeGroup.PUT("/shift/:id", h.UpdateShift)
	writeGroup.DELETE("/shift/:id", h.DeleteShift)
	writeGroup.PUT("/shift/:id/doctors", h.ReplaceRoster)
}

type shiftRequest struct {
	Date      *civil.Date  `json:"date"`
	StartTime *civil.Clock `json:"startTime"`
	EndTime   *civil.Clock `json:"endTime"`
	DoctorIDs []int64      `json:"doctorIds"`
}

func (r *shiftRequest) input() (Input, error) {
	switch {
	case r.Date == nil || r.Date.IsZero():
		return Input{}, model.Invalid("date", "is required")
	case r.StartTime == nil:
		return Input{}, model.Invalid("startTime", "is required")
	case r.EndTime == nil:
		return Input{}, model.Invalid("endTime", "is required")
	}
	return Input{Date: *r.Date, StartTime: *r.StartTime, EndTime: *r.EndTime, DoctorIDs: r.DoctorIDs}, nil
}

type rosterRequest struct {
	DoctorIDs []int64 `json:"doctorIds"`
}

type rosterResponse struct {
	ShiftID   int64   `json:"shiftId"`
	DoctorIDs []int64 `json:"doctorIds"`
	Added     []int64 `json:"added,omitempty"`
	Removed   []int64 `json:"removed,omitempty"`
}

func (h *Handler) CreateShift(c echo.Context) error {
	var req shiftRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Bind(c, err)
	}
	in, err := req.input()
	if err != nil {
		return httperr.Write(c, err)
	}
	sh, err := h.svc.CreateShift(c.Request().Context(), in)
	if err != nil {
		return httperr.Write(c, err)
	}
	c.Set("resource_id", sh.ID)
	return c.JSON(http.StatusCreated, sh)
}

func (h *Handler) GetShift(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	sh, err := h.svc.GetShift(c.Request().Context(), id)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

// ListShifts pages through every shift, or with ?date= lists the shifts
// covering that day.
func (h *Handler) ListShifts(c echo.Context) error {
	if raw := c.QueryParam("date"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			return httperr.BadRequest(c, err.Error())
		}
		items, err := h.svc.ShiftsOn(c.Request().Context(), d)
		if err != nil {
			return httperr.Write(c, err)
		}
		return c.JSON(http.StatusOK, items)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListShifts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateShift(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	var req shiftRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Bind(c, err)
	}
	in, err := req.input()
	if err != nil {
		return httperr.Write(c, err)
	}
	if _, err := h.svc.UpdateShift(c.Request().Context(), id, in); err != nil {
		return httperr.Write(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteShift(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	if err := h.svc.DeleteShift(c.Request().Context(), id); err != nil {
		return httperr.Write(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetRoster(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	ids, err := h.svc.Roster(c.Request().Context(), id)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, rosterResponse{ShiftID: id, DoctorIDs: ids})
}

func (h *Handler) ReplaceRoster(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	var req rosterRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Bind(c, err)
	}
	change, err := h.svc.ApplyRoster(c.Request().Context(), id, req.DoctorIDs)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, rosterResponse{
		ShiftID:   change.ShiftID,
		DoctorIDs: change.DoctorIDs,
		Added:     change.Added,
		Removed:   change.Removed,
	})
}

func (h *Handler) ShiftsForDoctor(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	pg := pagination.FromContext(c)
	shifts, total, err := h.svc.ShiftsForDoctor(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(shifts, total, pg.Limit, pg.Offset))
}
