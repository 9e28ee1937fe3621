package handler

import (
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

// MemberHandler handles member-related HTTP requests
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// CreateMemberRequest represents the request body for creating a member
type CreateMemberRequest struct {
	Name               string  `json:"name"`
	Phone              *string `json:"phone"`
	SubscriptionAmount string  `json:"subscriptionAmount"`
	JoinDate           string  `json:"joinDate"`
}

// UpdateMemberRequest represents the request body for editing a member
type UpdateMemberRequest struct {
	Name               string  `json:"name"`
	Phone              *string `json:"phone"`
	SubscriptionAmount string  `json:"subscriptionAmount"`
}

func memberIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

func mapMemberError(c echo.Context, err error) error {
	switch err {
	case domain.ErrMemberNotFound:
		return NewNotFoundError(c, "Member not found")
	case domain.ErrMemberNameEmpty:
		return NewValidationError(c, "Member name is required", []ValidationError{{Field: "name", Message: "Required"}})
	case domain.ErrMemberNameTooLong:
		return NewValidationError(c, "Member name is too long", []ValidationError{{Field: "name", Message: "Must be 200 characters or less"}})
	}
	log.Error().Err(err).Msg("Member operation failed")
	return NewInternalError(c, "Member operation failed")
}

// CreateMember handles POST /api/v1/members
func (h *MemberHandler) CreateMember(c echo.Context) error {
	var req CreateMemberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.SubscriptionAmount)
	if err != nil {
		return NewValidationError(c, "Invalid subscription amount", []ValidationError{{Field: "subscriptionAmount", Message: "Must be a valid number"}})
	}

	joinDate := time.Now().UTC()
	if req.JoinDate != "" {
		joinDate, err = util.ParseDate(req.JoinDate)
		if err != nil {
			return NewValidationError(c, "Invalid join date", []ValidationError{{Field: "joinDate", Message: "Must be YYYY-MM-DD"}})
		}
	}

	member, err := h.memberService.CreateMember(service.CreateMemberInput{
		Name:               req.Name,
		Phone:              req.Phone,
		SubscriptionAmount: amount,
		JoinDate:           joinDate,
	})
	if err != nil {
		return mapMemberError(c, err)
	}
	return c.JSON(http.StatusCreated, member)
}

// GetMembers handles GET /api/v1/members?status=active
func (h *MemberHandler) GetMembers(c echo.Context) error {
	var status *domain.MemberStatus
	if s := c.QueryParam("status"); s != "" {
		ms := domain.MemberStatus(s)
		if ms != domain.MemberStatusActive && ms != domain.MemberStatusSuspended {
			return NewValidationError(c, "Invalid status filter", []ValidationError{{Field: "status", Message: "Must be active or suspended"}})
		}
		status = &ms
	}

	members, err := h.memberService.GetMembers(status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list members")
		return NewInternalError(c, "Failed to list members")
	}
	if members == nil {
		members = []*domain.Member{}
	}
	return c.JSON(http.StatusOK, members)
}

// GetMember handles GET /api/v1/members/:id
func (h *MemberHandler) GetMember(c echo.Context) error {
	id, err := memberIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid member id", nil)
	}
	member, err := h.memberService.GetMemberByID(id)
	if err != nil {
		return mapMemberError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}

// UpdateMember handles PUT /api/v1/members/:id
func (h *MemberHandler) UpdateMember(c echo.Context) error {
	id, err := memberIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid member id", nil)
	}

	var req UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := decimal.NewFromString(req.SubscriptionAmount)
	if err != nil {
		return NewValidationError(c, "Invalid subscription amount", []ValidationError{{Field: "subscriptionAmount", Message: "Must be a valid number"}})
	}

	member, err := h.memberService.UpdateMember(id, req.Name, req.Phone, amount)
	if err != nil {
		return mapMemberError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}

// SuspendMember handles PATCH /api/v1/members/:id/suspend
func (h *MemberHandler) SuspendMember(c echo.Context) error {
	id, err := memberIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid member id", nil)
	}
	member, err := h.memberService.Suspend(id)
	if err != nil {
		return mapMemberError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}

// ActivateMember handles PATCH /api/v1/members/:id/activate
func (h *MemberHandler) ActivateMember(c echo.Context) error {
	id, err := memberIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid member id", nil)
	}
	member, err := h.memberService.Activate(id)
	if err != nil {
		return mapMemberError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}
