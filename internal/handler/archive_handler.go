package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"safewatch/internal/service"
)

// ArchiveHandler serves the cumulative incident archive.
type ArchiveHandler struct {
	svc service.ArchiveService
}

// NewArchiveHandler creates a new archive handler.
func NewArchiveHandler(svc service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{svc: svc}
}

// ArchiveResponse wraps the cumulative CSV text.
type ArchiveResponse struct {
	CSV string `json:"csv"`
}

// Fetch godoc
// @Summary Fetch the cumulative CSV archive of resolved incidents
// @Tags archive
// @Produce json
// @Success 200 {object} ArchiveResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /incident-archive [get]
func (h *ArchiveHandler) Fetch(c echo.Context) error {
	archive, err := h.svc.Fetch(c.Request().Context())
	if err != nil {
		return mapped(err)
	}
	return c.JSON(http.StatusOK, ArchiveResponse{CSV: archive.CSVContent})
}
