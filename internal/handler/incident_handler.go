package handler

import (
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"safewatch/internal/auth"
	"safewatch/internal/errors"
	"safewatch/internal/service"
)

// IncidentHandler handles incident lifecycle endpoints.
type IncidentHandler struct {
	svc service.IncidentService
}

// NewIncidentHandler creates a new incident handler.
func NewIncidentHandler(svc service.IncidentService) *IncidentHandler {
	return &IncidentHandler{svc: svc}
}

// ReportIncidentRequest represents a public incident report.
// Lat and Lng are pointers so a missing coordinate fails validation
// rather than defaulting to zero.
type ReportIncidentRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Lat         *float64 `json:"lat" validate:"required"`
	Lng         *float64 `json:"lng" validate:"required"`
}

// AssignIncidentRequest carries the target assignee; null unassigns.
type AssignIncidentRequest struct {
	Username *string `json:"username"`
}

// currentClaims extracts the verified identity placed in context by the
// JWT middleware. Nil means the caller is anonymous.
func currentClaims(c echo.Context) *auth.Claims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func incidentID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func mapped(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// Report godoc
// @Summary Report a new incident
// @Tags incidents
// @Accept json
// @Produce json
// @Param request body ReportIncidentRequest true "Incident report"
// @Success 201 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /incidents [post]
func (h *IncidentHandler) Report(c echo.Context) error {
	var req ReportIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	incident, err := h.svc.Report(c.Request().Context(), service.ReportIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
	})
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusCreated, incident)
}

// ListOpen godoc
// @Summary List unresolved incidents
// @Tags incidents
// @Produce json
// @Success 200 {array} model.Incident
// @Failure 500 {object} errors.ErrorResponse
// @Router /incidents [get]
func (h *IncidentHandler) ListOpen(c echo.Context) error {
	incidents, err := h.svc.ListOpen(c.Request().Context())
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, incidents)
}

// ListResolved godoc
// @Summary List resolved incidents
// @Tags incidents
// @Produce json
// @Success 200 {array} model.Incident
// @Failure 500 {object} errors.ErrorResponse
// @Router /resolved-incidents [get]
func (h *IncidentHandler) ListResolved(c echo.Context) error {
	incidents, err := h.svc.ListResolved(c.Request().Context())
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, incidents)
}

// Get godoc
// @Summary Get incident by id
// @Tags incidents
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /incidents/{id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	id, err := incidentID(c)
	if err != nil {
		return err
	}
	incident, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, incident)
}

// Assign godoc
// @Summary Assign or unassign an incident
// @Tags incidents
// @Accept json
// @Produce json
// @Param id path int true "Incident ID"
// @Param request body AssignIncidentRequest true "Assignee username, or null to unassign"
// @Success 200 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /incidents/{id}/assign [patch]
func (h *IncidentHandler) Assign(c echo.Context) error {
	id, err := incidentID(c)
	if err != nil {
		return err
	}
	var req AssignIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	incident, err := h.svc.Assign(c.Request().Context(), currentClaims(c), id, req.Username)
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, incident)
}

// Resolve godoc
// @Summary Resolve an incident
// @Tags incidents
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} model.Incident
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /incidents/{id}/resolve [patch]
func (h *IncidentHandler) Resolve(c echo.Context) error {
	id, err := incidentID(c)
	if err != nil {
		return err
	}
	incident, err := h.svc.Resolve(c.Request().Context(), currentClaims(c), id)
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, incident)
}

// ListMyAssigned godoc
// @Summary List incidents assigned to the caller
// @Tags incidents
// @Produce json
// @Success 200 {array} model.Incident
// @Failure 403 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /my-assigned-incidents [get]
func (h *IncidentHandler) ListMyAssigned(c echo.Context) error {
	incidents, err := h.svc.ListAssignedTo(c.Request().Context(), currentClaims(c))
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, incidents)
}
