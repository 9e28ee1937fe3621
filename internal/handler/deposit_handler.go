package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/service"
)

// DepositHandler handles fixed deposit HTTP requests
type DepositHandler struct {
	depositService *service.DepositService
}

// NewDepositHandler creates a new DepositHandler
func NewDepositHandler(depositService *service.DepositService) *DepositHandler {
	return &DepositHandler{depositService: depositService}
}

// CreateDepositRequest represents the request body for opening a deposit
type CreateDepositRequest struct {
	MemberID     int32  `json:"memberId"`
	Amount       string `json:"amount"`
	TenureMonths int32  `json:"tenureMonths"`
	DepositDate  string `json:"depositDate"`
}

// PostQuarterRequest represents the request body for posting a quarter. The
// client sends back the calculation it previewed; nothing is held server-side
// between the two calls.
type PostQuarterRequest struct {
	Calculation *service.QuarterCalculation `json:"calculation"`
	Force       bool                        `json:"force"`
}

func mapDepositError(c echo.Context, err error) error {
	var posted *domain.QuarterPostedError
	if errors.As(err, &posted) {
		return NewConflictError(c, posted.Error())
	}

	switch err {
	case domain.ErrDepositNotFound:
		return NewNotFoundError(c, "Fixed deposit not found")
	case domain.ErrMemberNotFound:
		return NewNotFoundError(c, "Member not found")
	case domain.ErrQuarterNotFound:
		return NewNotFoundError(c, "Quarter not found in settings")
	case domain.ErrDepositAmountInvalid:
		return NewValidationError(c, "Deposit amount must be positive", []ValidationError{{Field: "amount", Message: "Must be positive"}})
	case domain.ErrDepositTenureInvalid:
		return NewValidationError(c, "Tenure must be between 1 and 12 months", []ValidationError{{Field: "tenureMonths", Message: "Must be between 1 and 12"}})
	case domain.ErrMemberSuspended:
		return NewValidationError(c, "Member is suspended", nil)
	case domain.ErrNoActiveDeposits:
		return NewValidationError(c, "No active fixed deposits found for the period", nil)
	case domain.ErrNothingToDistribute:
		return NewValidationError(c, "No subscription or deposit balance to distribute against", nil)
	case domain.ErrInvalidInput:
		return NewValidationError(c, "Invalid input", nil)
	}
	log.Error().Err(err).Msg("Deposit operation failed")
	return NewInternalError(c, "Deposit operation failed")
}

// CreateDeposit handles POST /api/v1/deposits
func (h *DepositHandler) CreateDeposit(c echo.Context) error {
	var req CreateDepositRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseAmount(c, "amount", req.Amount)
	if err != nil {
		return err
	}
	depositDate, err := parseDateOrToday(c, "depositDate", req.DepositDate)
	if err != nil {
		return err
	}

	deposit, err := h.depositService.CreateDeposit(service.CreateDepositInput{
		MemberID:     req.MemberID,
		Amount:       amount,
		TenureMonths: req.TenureMonths,
		DepositDate:  depositDate,
	})
	if err != nil {
		return mapDepositError(c, err)
	}
	return c.JSON(http.StatusCreated, deposit)
}

// GetDeposits handles GET /api/v1/deposits
func (h *DepositHandler) GetDeposits(c echo.Context) error {
	deposits, err := h.depositService.GetDeposits()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list deposits")
		return NewInternalError(c, "Failed to list deposits")
	}
	if deposits == nil {
		deposits = []*domain.DepositWithMember{}
	}
	return c.JSON(http.StatusOK, deposits)
}

// CalculateQuarter handles GET /api/v1/deposits/interest/:year/:quarter
func (h *DepositHandler) CalculateQuarter(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{{Field: "year", Message: "Must be a valid integer"}})
	}

	calc, err := h.depositService.CalculateQuarterlyInterest(year, c.Param("quarter"))
	if err != nil {
		return mapDepositError(c, err)
	}
	return c.JSON(http.StatusOK, calc)
}

// PostQuarter handles POST /api/v1/deposits/interest
func (h *DepositHandler) PostQuarter(c echo.Context) error {
	var req PostQuarterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Calculation == nil {
		return NewValidationError(c, "Calculation is required", []ValidationError{{Field: "calculation", Message: "Required"}})
	}

	if err := h.depositService.PostQuarterlyInterest(req.Calculation, req.Force); err != nil {
		return mapDepositError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"year":    req.Calculation.Year,
		"quarter": req.Calculation.Quarter,
		"posted":  len(req.Calculation.Results),
	})
}

// GetInterestHistory handles GET /api/v1/deposits/interest/history
func (h *DepositHandler) GetInterestHistory(c echo.Context) error {
	history, err := h.depositService.GetInterestHistory()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list interest history")
		return NewInternalError(c, "Failed to list interest history")
	}
	if history == nil {
		history = []*domain.QuarterSummary{}
	}
	return c.JSON(http.StatusOK, history)
}
