package directory

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
	api.GET("/patients", h.GetPatient)
	api.PATCH("/patients", h.UpdatePatient, auth.RequireRole(auth.RolePatient))
	api.GET("/patients/:id/nurses", h.ListPatientNurses)

	nurses := api.Group("/nurses")
	nurses.POST("/:id/patients", h.AssignPatient, auth.RequireRole(auth.RoleFacilityAdmin, auth.RoleAdmin))
	nurses.GET("/:id/patients", h.ListNursePatients, auth.RequireRole(auth.RoleNurse, auth.RoleFacilityAdmin, auth.RoleAdmin))
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

func (h *Handler) GetPatient(c echo.Context) error {
	ctx := c.Request().Context()
	profile, err := h.svc.PatientProfile(ctx,
		auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), c.QueryParam("patientId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	profile, err := h.svc.UpdatePatientProfile(ctx, auth.UserIDFromContext(ctx), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) ListPatientNurses(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	ctx := c.Request().Context()
	nurses, err := h.svc.PatientNurses(ctx,
		auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx), patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, nurses)
}

type assignRequest struct {
	PatientID string `json:"patient_id"`
}

func (h *Handler) AssignPatient(c echo.Context) error {
	nurseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid nurse id")
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	assignment, err := h.svc.AssignPatient(c.Request().Context(), nurseID, patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

func (h *Handler) ListNursePatients(c echo.Context) error {
	nurseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid nurse id")
	}
	ctx := c.Request().Context()

	// Nurses may only list their own patients.
	if auth.RoleFromContext(ctx) == auth.RoleNurse {
		nurse, err := h.svc.NurseByUserID(ctx, auth.UserIDFromContext(ctx))
		if err != nil {
			return httpError(err)
		}
		if nurse.ID != nurseID {
			return echo.NewHTTPError(http.StatusForbidden, "not your patient list")
		}
	}

	patients, err := h.svc.NursePatients(ctx, nurseID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, patients)
}
