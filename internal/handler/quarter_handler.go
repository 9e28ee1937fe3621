package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/service"
)

// QuarterHandler handles quarter settings HTTP requests
type QuarterHandler struct {
	quarterService *service.QuarterService
}

// NewQuarterHandler creates a new QuarterHandler
func NewQuarterHandler(quarterService *service.QuarterService) *QuarterHandler {
	return &QuarterHandler{quarterService: quarterService}
}

// UpdateQuarterRequest represents the request body for updating a quarter
type UpdateQuarterRequest struct {
	StartMonth int `json:"startMonth"`
	EndMonth   int `json:"endMonth"`
}

// GetSettings handles GET /api/v1/quarters
func (h *QuarterHandler) GetSettings(c echo.Context) error {
	settings, err := h.quarterService.GetSettings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list quarter settings")
		return NewInternalError(c, "Failed to list quarter settings")
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSetting handles PUT /api/v1/quarters/:quarter
func (h *QuarterHandler) UpdateSetting(c echo.Context) error {
	var req UpdateQuarterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	setting, err := h.quarterService.UpdateSetting(&domain.QuarterSetting{
		Quarter:    c.Param("quarter"),
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, err.Error(), nil)
		}
		switch err {
		case domain.ErrQuarterNotFound:
			return NewNotFoundError(c, "Quarter not found")
		case domain.ErrQuarterNameInvalid:
			return NewValidationError(c, "Quarter must be one of Q1, Q2, Q3, Q4", nil)
		case domain.ErrQuarterMonthInvalid:
			return NewValidationError(c, "Months must be between 1 and 12", nil)
		}
		log.Error().Err(err).Msg("Failed to update quarter setting")
		return NewInternalError(c, "Failed to update quarter setting")
	}
	return c.JSON(http.StatusOK, setting)
}
