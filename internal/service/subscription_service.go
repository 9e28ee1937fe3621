package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// SubscriptionService records monthly member contributions.
type SubscriptionService struct {
	subRepo    domain.SubscriptionRepository
	memberRepo domain.MemberRepository
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(subRepo domain.SubscriptionRepository, memberRepo domain.MemberRepository) *SubscriptionService {
	return &SubscriptionService{
		subRepo:    subRepo,
		memberRepo: memberRepo,
	}
}

// RecordPayment stores a member's subscription for a month. A second
// payment for the same (member, month) is rejected.
func (s *SubscriptionService) RecordPayment(memberID int32, month util.MonthKey, amount decimal.Decimal, paymentDate time.Time) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		MemberID:    memberID,
		Month:       month,
		Amount:      amount,
		PaymentDate: paymentDate,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.memberRepo.GetByID(memberID); err != nil {
		return nil, err
	}

	exists, err := s.subRepo.Exists(memberID, month)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.DuplicateSubscriptionError{MemberID: memberID, Month: month}
	}

	return s.subRepo.Create(sub)
}

// GetByMonth lists subscriptions paid for a month.
func (s *SubscriptionService) GetByMonth(month util.MonthKey) ([]*domain.SubscriptionWithMember, error) {
	return s.subRepo.ListByMonth(month)
}

// Delete removes a subscription record.
func (s *SubscriptionService) Delete(id int32) error {
	if _, err := s.subRepo.GetByID(id); err != nil {
		return err
	}
	return s.subRepo.Delete(id)
}
