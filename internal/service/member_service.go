package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
)

// MemberService handles member administration.
type MemberService struct {
	memberRepo domain.MemberRepository
}

// NewMemberService creates a new MemberService
func NewMemberService(memberRepo domain.MemberRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

// CreateMemberInput contains input for registering a member
type CreateMemberInput struct {
	Name               string
	Phone              *string
	SubscriptionAmount decimal.Decimal
	JoinDate           time.Time
}

// CreateMember registers a new active member.
func (s *MemberService) CreateMember(input CreateMemberInput) (*domain.Member, error) {
	member := &domain.Member{
		Name:               strings.TrimSpace(input.Name),
		Phone:              input.Phone,
		SubscriptionAmount: input.SubscriptionAmount,
		Status:             domain.MemberStatusActive,
		JoinDate:           input.JoinDate,
	}
	if err := member.Validate(); err != nil {
		return nil, err
	}
	return s.memberRepo.Create(member)
}

// GetMembers lists members, optionally filtered by status.
func (s *MemberService) GetMembers(status *domain.MemberStatus) ([]*domain.Member, error) {
	return s.memberRepo.List(status)
}

// GetMemberByID retrieves a single member.
func (s *MemberService) GetMemberByID(id int32) (*domain.Member, error) {
	return s.memberRepo.GetByID(id)
}

// UpdateMember edits a member's details. Status changes go through Suspend
// and Activate.
func (s *MemberService) UpdateMember(id int32, name string, phone *string, subscriptionAmount decimal.Decimal) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	member.Name = strings.TrimSpace(name)
	member.Phone = phone
	member.SubscriptionAmount = subscriptionAmount
	if err := member.Validate(); err != nil {
		return nil, err
	}
	return s.memberRepo.Update(member)
}

// Suspend marks a member suspended; suspended members cannot receive new
// loans or deposits but keep their history.
func (s *MemberService) Suspend(id int32) (*domain.Member, error) {
	return s.memberRepo.UpdateStatus(id, domain.MemberStatusSuspended)
}

// Activate returns a suspended member to active status.
func (s *MemberService) Activate(id int32) (*domain.Member, error) {
	return s.memberRepo.UpdateStatus(id, domain.MemberStatusActive)
}
