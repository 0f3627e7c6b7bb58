package vitals

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/360nurse/api/internal/platform/auth"
	"github.com/360nurse/api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/vitals", h.Latest)
	api.GET("/vitals/history", h.History)
	api.POST("/vitals", h.Record)
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

func (h *Handler) Latest(c echo.Context) error {
	ctx := c.Request().Context()
	readings, err := h.svc.Latest(ctx,
		auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), c.QueryParam("patientId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, readings)
}

func (h *Handler) History(c echo.Context) error {
	ctx := c.Request().Context()
	p := pagination.FromContext(c)
	readings, total, err := h.svc.History(ctx,
		auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), c.QueryParam("patientId"), p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(readings, total, p.Limit, p.Offset))
}

func (h *Handler) Record(c echo.Context) error {
	var req RecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	reading, err := h.svc.Record(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, reading)
}
