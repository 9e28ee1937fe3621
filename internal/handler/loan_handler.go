package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/service"
	"github.com/sanchaya/society-backend/internal/util"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService   *service.LoanService
	reportService *service.ReportService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService, reportService *service.ReportService) *LoanHandler {
	return &LoanHandler{
		loanService:   loanService,
		reportService: reportService,
	}
}

// IssueLoanRequest represents the request body for issuing a loan
type IssueLoanRequest struct {
	MemberID   int32   `json:"memberId"`
	Amount     string  `json:"amount"`
	LoanDate   string  `json:"loanDate"`
	Scheme     string  `json:"scheme"`
	ManualRate *string `json:"manualRate"`
}

// TopUpRequest represents the request body for topping up a loan
type TopUpRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

// RepayRequest represents the request body for a repayment
type RepayRequest struct {
	PrincipalAmount string `json:"principalAmount"`
	InterestAmount  string `json:"interestAmount"`
	PaymentDate     string `json:"paymentDate"`
}

func loanIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

func parseAmount(c echo.Context, field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, NewValidationError(c, "Invalid "+field,
			[]ValidationError{{Field: field, Message: "Must be a valid number"}})
	}
	return amount, nil
}

func parseDateOrToday(c echo.Context, field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	d, err := util.ParseDate(raw)
	if err != nil {
		return time.Time{}, NewValidationError(c, "Invalid "+field,
			[]ValidationError{{Field: field, Message: "Must be YYYY-MM-DD"}})
	}
	return d, nil
}

func mapLoanError(c echo.Context, err error) error {
	var dup *domain.DuplicateLoanError
	if errors.As(err, &dup) {
		return NewConflictError(c, dup.Error())
	}
	var over *domain.OverpaymentError
	if errors.As(err, &over) {
		return NewValidationError(c, over.Error(), nil)
	}

	switch err {
	case domain.ErrLoanNotFound:
		return NewNotFoundError(c, "Loan not found")
	case domain.ErrMemberNotFound:
		return NewNotFoundError(c, "Member not found")
	case domain.ErrLoanNotActive:
		return NewValidationError(c, "Loan is not active", nil)
	case domain.ErrLoanAmountInvalid:
		return NewValidationError(c, "Amount must be positive", []ValidationError{{Field: "amount", Message: "Must be positive"}})
	case domain.ErrLoanRateRequired:
		return NewValidationError(c, "Flat scheme requires an interest rate", []ValidationError{{Field: "manualRate", Message: "Required for flat scheme"}})
	case domain.ErrLoanSchemeInvalid:
		return NewValidationError(c, "Invalid interest scheme", []ValidationError{{Field: "scheme", Message: "Must be progressive, flat or zero"}})
	case domain.ErrMemberSuspended:
		return NewValidationError(c, "Member is suspended", nil)
	case domain.ErrRepaymentAmountNegative:
		return NewValidationError(c, "Repayment amounts cannot be negative", nil)
	case domain.ErrRepaymentEmpty:
		return NewValidationError(c, "Repayment must include a principal or interest amount", nil)
	case domain.ErrLoanConcurrentEdit:
		return NewConflictError(c, "Loan was modified concurrently, retry the operation")
	}
	log.Error().Err(err).Msg("Loan operation failed")
	return NewInternalError(c, "Loan operation failed")
}

// IssueLoan handles POST /api/v1/loans
func (h *LoanHandler) IssueLoan(c echo.Context) error {
	var req IssueLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseAmount(c, "amount", req.Amount)
	if err != nil {
		return err
	}
	loanDate, err := parseDateOrToday(c, "loanDate", req.LoanDate)
	if err != nil {
		return err
	}

	input := service.IssueLoanInput{
		MemberID: req.MemberID,
		Amount:   amount,
		LoanDate: loanDate,
		Scheme:   domain.InterestScheme(req.Scheme),
	}
	if req.ManualRate != nil {
		rate, err := parseAmount(c, "manualRate", *req.ManualRate)
		if err != nil {
			return err
		}
		input.ManualRate = &rate
	}

	result, err := h.loanService.IssueLoan(input)
	if err != nil {
		return mapLoanError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// GetLoans handles GET /api/v1/loans?status=active
func (h *LoanHandler) GetLoans(c echo.Context) error {
	var loans []*domain.LoanWithMember
	var err error
	if c.QueryParam("status") == "active" {
		loans, err = h.loanService.GetActiveLoans()
	} else {
		loans, err = h.loanService.GetLoans()
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list loans")
		return NewInternalError(c, "Failed to list loans")
	}
	if loans == nil {
		loans = []*domain.LoanWithMember{}
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan id", nil)
	}
	loan, err := h.loanService.GetLoanByID(id)
	if err != nil {
		return mapLoanError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// TopUp handles POST /api/v1/loans/:id/top-up
func (h *LoanHandler) TopUp(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan id", nil)
	}

	var req TopUpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := parseAmount(c, "amount", req.Amount)
	if err != nil {
		return err
	}
	date, err := parseDateOrToday(c, "date", req.Date)
	if err != nil {
		return err
	}

	loan, err := h.loanService.TopUp(id, amount, date)
	if err != nil {
		return mapLoanError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

// Repay handles POST /api/v1/loans/:id/repayments
func (h *LoanHandler) Repay(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan id", nil)
	}

	var req RepayRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	principal, err := parseAmount(c, "principalAmount", req.PrincipalAmount)
	if err != nil {
		return err
	}
	interest, err := parseAmount(c, "interestAmount", req.InterestAmount)
	if err != nil {
		return err
	}
	paymentDate, err := parseDateOrToday(c, "paymentDate", req.PaymentDate)
	if err != nil {
		return err
	}

	result, err := h.loanService.Repay(id, principal, interest, paymentDate)
	if err != nil {
		return mapLoanError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetStatement handles GET /api/v1/loans/:id/statement
func (h *LoanHandler) GetStatement(c echo.Context) error {
	id, err := loanIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan id", nil)
	}
	statement, err := h.reportService.GetLoanStatement(id)
	if err != nil {
		return mapLoanError(c, err)
	}
	return c.JSON(http.StatusOK, statement)
}
