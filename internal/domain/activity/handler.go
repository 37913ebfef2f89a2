package activity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/platform/auth"
	"github.com/hospital/hospital/internal/platform/httperr"
	"github.com/hospital/hospital/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the log reader. Only admins may browse it.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/log", h.ListEntries, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) ListEntries(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
