package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/service"
	"github.com/sanchaya/society-backend/internal/util"
)

// InterestHandler handles monthly interest posting requests
type InterestHandler struct {
	interestService *service.InterestService
}

// NewInterestHandler creates a new InterestHandler
func NewInterestHandler(interestService *service.InterestService) *InterestHandler {
	return &InterestHandler{interestService: interestService}
}

// PostInterestRequest represents the request body for posting interest
type PostInterestRequest struct {
	Month string `json:"month"`
	Force bool   `json:"force"`
}

func monthParam(c echo.Context, raw string) (util.MonthKey, error) {
	month, err := util.ParseMonthKey(raw)
	if err != nil {
		return "", NewValidationError(c, "Invalid month",
			[]ValidationError{{Field: "month", Message: "Must be YYYY-MM"}})
	}
	return month, nil
}

// Preview handles GET /api/v1/interest/preview?month=YYYY-MM
func (h *InterestHandler) Preview(c echo.Context) error {
	month, err := monthParam(c, c.QueryParam("month"))
	if err != nil {
		return err
	}

	preview, err := h.interestService.PreviewMonthlyInterest(month)
	if err != nil {
		log.Error().Err(err).Str("month", month.String()).Msg("Failed to preview interest")
		return NewInternalError(c, "Failed to preview interest")
	}
	return c.JSON(http.StatusOK, preview)
}

// Post handles POST /api/v1/interest/post
func (h *InterestHandler) Post(c echo.Context) error {
	var req PostInterestRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	month, err := monthParam(c, req.Month)
	if err != nil {
		return err
	}

	result, err := h.interestService.PostMonthlyInterest(month, req.Force)
	if err != nil {
		var posted *domain.AccrualsPostedError
		if errors.As(err, &posted) {
			return NewConflictError(c, posted.Error())
		}
		log.Error().Err(err).Str("month", month.String()).Msg("Failed to post interest")
		return NewInternalError(c, "Failed to post interest")
	}
	return c.JSON(http.StatusOK, result)
}

// MissingMonths handles GET /api/v1/interest/missing-months
func (h *InterestHandler) MissingMonths(c echo.Context) error {
	missing, err := h.interestService.MissingAccrualMonths()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute missing accrual months")
		return NewInternalError(c, "Failed to compute missing accrual months")
	}
	if missing == nil {
		missing = []util.MonthKey{}
	}
	return c.JSON(http.StatusOK, map[string]any{"missingMonths": missing})
}
