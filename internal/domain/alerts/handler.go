package alerts

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/360nurse/api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/alerts", h.List)
	api.POST("/alerts", h.Create)
	api.GET("/alerts/:id", h.Get)
	api.PATCH("/alerts/:id", h.Update)
}

// httpError maps service errors onto the HTTP taxonomy. Anything outside
// the known sentinels is an internal failure: the client gets a generic
// 500 and the underlying error stays server-side for the request log.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	alerts, err := h.svc.List(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx),
		c.QueryParam("status"), c.QueryParam("patientId"))
	if err != nil {
		return httpError(err)
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	alert, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, alert)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	detail, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	alert, err := h.svc.UpdateStatus(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, alert)
}
