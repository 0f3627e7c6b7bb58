package billing

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
	api.GET("/subscription/plans", h.Plans)
	api.GET("/subscription/user", h.UserSubscription)
	api.POST("/subscription/create", h.CreateSubscription)
	api.POST("/subscription/:id/cancel", h.CancelSubscription)
	api.POST("/payment/initialize", h.InitializePayment)
	api.POST("/payment/verify", h.VerifyPayment)
	api.GET("/payment/history", h.History)
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

func (h *Handler) Plans(c echo.Context) error {
	plans, err := h.svc.Plans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if plans == nil {
		plans = []*SubscriptionPlan{}
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *Handler) UserSubscription(c echo.Context) error {
	ctx := c.Request().Context()
	sub, err := h.svc.UserSubscription(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subscription": sub})
}

func (h *Handler) CreateSubscription(c echo.Context) error {
	var req CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	sub, err := h.svc.CreateSubscription(ctx, auth.UserIDFromContext(ctx), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"subscription": sub})
}

func (h *Handler) CancelSubscription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	sub, err := h.svc.CancelSubscription(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *Handler) InitializePayment(c echo.Context) error {
	var req InitializeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	result, err := h.svc.InitializePayment(ctx, auth.UserIDFromContext(ctx), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) VerifyPayment(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	sub, err := h.svc.VerifyPayment(ctx, auth.UserIDFromContext(ctx), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Payment verified successfully",
		"subscription": sub,
	})
}

func (h *Handler) History(c echo.Context) error {
	ctx := c.Request().Context()
	entries, err := h.svc.History(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return httpError(err)
	}
	if entries == nil {
		entries = []*HistoryEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": entries})
}
