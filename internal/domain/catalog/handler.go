package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hospital/internal/platform/auth"
	"github.com/hospital/hospital/internal/platform/httperr"
	"github.com/hospital/hospital/pkg/pagination"
)

// Handler serves CRUD routes for one catalog kind under path.
type Handler[T any] struct {
	svc        *Service[T]
	path       string
	writeRoles []string
}

// NewHandler mounts svc at path. Writes require one of writeRoles; reads are
// open to every staff role.
func NewHandler[T any](svc *Service[T], path string, writeRoles ...string) *Handler[T] {
	return &Handler[T]{svc: svc, path: path, writeRoles: writeRoles}
}

func (h *Handler[T]) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.ReadRoles...))
	readGroup.GET(h.path, h.List)
	readGroup.GET(h.path+"/:id", h.Get)

	writeGroup := api.Group("", auth.RequireRole(h.writeRoles...))
	writeGroup.POST(h.path, h.Create)
	writeGroup.PUT(h.path+"/:id", h.Update)
	writeGroup.DELETE(h.path+"/:id", h.Delete)
}

func (h *Handler[T]) Create(c echo.Context) error {
	v := new(T)
	if err := c.Bind(v); err != nil {
		return httperr.Bind(c, err)
	}
	if err := h.svc.Create(c.Request().Context(), v); err != nil {
		return httperr.Write(c, err)
	}
	c.Set("resource_id", h.svc.ID(v))
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler[T]) Get(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler[T]) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httperr.Write(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler[T]) Update(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	v := new(T)
	if err := c.Bind(v); err != nil {
		return httperr.Bind(c, err)
	}
	if err := h.svc.Update(c.Request().Context(), id, v); err != nil {
		return httperr.Write(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler[T]) Delete(c echo.Context) error {
	id, err := httperr.ParamID(c, "id")
	if err != nil {
		return httperr.Write(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httperr.Write(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
