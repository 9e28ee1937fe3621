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

// SubscriptionHandler handles subscription payment HTTP requests
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// RecordSubscriptionRequest represents the request body for recording a
// subscription payment
type RecordSubscriptionRequest struct {
	MemberID    int32  `json:"memberId"`
	Month       string `json:"month"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"paymentDate"`
}

// RecordPayment handles POST /api/v1/subscriptions
func (h *SubscriptionHandler) RecordPayment(c echo.Context) error {
	var req RecordSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	month, err := monthParam(c, req.Month)
	if err != nil {
		return err
	}
	amount, err := parseAmount(c, "amount", req.Amount)
	if err != nil {
		return err
	}
	paymentDate, err := parseDateOrToday(c, "paymentDate", req.PaymentDate)
	if err != nil {
		return err
	}

	sub, err := h.subscriptionService.RecordPayment(req.MemberID, month, amount, paymentDate)
	if err != nil {
		var dup *domain.DuplicateSubscriptionError
		if errors.As(err, &dup) {
			return NewConflictError(c, dup.Error())
		}
		switch err {
		case domain.ErrMemberNotFound:
			return NewNotFoundError(c, "Member not found")
		case domain.ErrSubscriptionAmountInvalid:
			return NewValidationError(c, "Amount must be positive", []ValidationError{{Field: "amount", Message: "Must be positive"}})
		}
		log.Error().Err(err).Msg("Failed to record subscription")
		return NewInternalError(c, "Failed to record subscription")
	}
	return c.JSON(http.StatusCreated, sub)
}

// GetByMonth handles GET /api/v1/subscriptions?month=YYYY-MM
func (h *SubscriptionHandler) GetByMonth(c echo.Context) error {
	month, err := monthParam(c, c.QueryParam("month"))
	if err != nil {
		return err
	}

	subs, err := h.subscriptionService.GetByMonth(month)
	if err != nil {
		log.Error().Err(err).Str("month", month.String()).Msg("Failed to list subscriptions")
		return NewInternalError(c, "Failed to list subscriptions")
	}
	if subs == nil {
		subs = []*domain.SubscriptionWithMember{}
	}
	return c.JSON(http.StatusOK, subs)
}

// Delete handles DELETE /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return NewValidationError(c, "Invalid subscription id", nil)
	}

	if err := h.subscriptionService.Delete(int32(id)); err != nil {
		if err == domain.ErrSubscriptionNotFound {
			return NewNotFoundError(c, "Subscription not found")
		}
		log.Error().Err(err).Msg("Failed to delete subscription")
		return NewInternalError(c, "Failed to delete subscription")
	}
	return c.NoContent(http.StatusNoContent)
}
