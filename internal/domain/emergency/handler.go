package emergency

import (
	"errors"
	"net/http"
	"strconv"

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
	api.GET("/emergency-services", h.List)
	api.POST("/emergency-services", h.Create, auth.RequireRole(auth.RoleAdmin, auth.RoleFacilityAdmin))
}

// httpError maps service errors onto the HTTP taxonomy. Anything outside
// the known sentinels is an internal failure: the client gets a generic
// 500 and the underlying error stays server-side for the request log.
func httpError(err error) error {
	if errors.Is(err, ErrInvalid) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func (h *Handler) List(c echo.Context) error {
	serviceType := c.QueryParam("type")
	latStr := c.QueryParam("latitude")
	lngStr := c.QueryParam("longitude")

	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid latitude")
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid longitude")
		}
		ranked, err := h.svc.Nearest(c.Request().Context(), serviceType, lat, lng)
		if err != nil {
			return httpError(err)
		}
		if ranked == nil {
			ranked = []*RankedService{}
		}
		return c.JSON(http.StatusOK, ranked)
	}

	services, err := h.svc.List(c.Request().Context(), serviceType)
	if err != nil {
		return httpError(err)
	}
	if services == nil {
		services = []*EmergencyService{}
	}
	return c.JSON(http.StatusOK, services)
}

func (h *Handler) Create(c echo.Context) error {
	var svc EmergencyService
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &svc); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, svc)
}
