package appointment

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
	readGroup.GET("/appointment", h.ListAppointments)
	readGroup.GET("/appointment/:id", h.GetAppointment)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleRegistrar, auth.RoleScheduler))
	writeGroup.POST("/appointment", h.CreateAppointment)
	writeGroup.PUT("/appointment/:id", h.UpdateAppointment)
	writeGroup.DELETE("/appointment/:id", h.DeleteAppointment)
}

type appointmentRequest struct {
	PatientID   *int64          `json:"patientId"`
	DoctorID    *int64          `json:"doctorId"`
	ProcedureID *int64          `json:"procedureId"`
	RoomID      *int64          `json:"roomId"`
	DateTime    *civil.DateTime `json:"dateTime"`
}

func (r *appointmentRequest) input() (Input, error) {
	switch {
	case r.PatientID == nil:
		return Input{}, model.Invalid("patientId", "is required")
	case r.DoctorID == nil:
		return Input{}, model.Invalid("doctorId", "is required")
	case r.ProcedureID == nil:
		return Input{}, model.Invalid("procedureId", "is required")
	case r.RoomID == nil:
		return Input{}, model.Invalid("roomId", "is required")
	case r.DateTime == nil || r.DateTime.IsZero():
		return Input{}, model.Invalid("dateTime", "is required")
	}
	return Input{
		PatientID:   *r.PatientID,
		DoctorID:    *r.DoctorID,
		ProcedureID: *r.ProcedureID,
		RoomID:      *r.RoomID,
		DateTime:    *r.DateTime,
	}, nil
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Bind(c, err)
	}
	in, err := req.input()
	if err != nil {
		return httperr.Write(c, err)
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), in)
	if err != nil {
		return httperr.Write(c, err)
	}
	c.Set("resource_id", a.ID)
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// ListAppointments pages through appointments, optionally narrowed with
// ?doctorId= or ?patientId=.
func (h *Handler) ListAppointments(c echo.Context) error {
	var f Filter
	var err error
	if f.DoctorID, _, err = httperr.QueryID(c, "doctorId"); err != nil {
		return httperr.Write(c, err)
	}
	if f.PatientID, _, err = httperr.QueryID(c, "patientId"); err != nil {
		return httperr.Write(c, err)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return httperr.Bind(c, err)
	}
	in, err := req.input()
	if err != nil {
		return httperr.Write(c, err)
	}
	if _, err := h.svc.UpdateAppointment(c.Request().Context(), id, in); err != nil {
		return httperr.Write(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return httperr.Write(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
