package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/util"
)

var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAmountInvalid = errors.New("subscription amount must be positive")
)

// Subscription is a member's monthly contribution payment. At most one
// exists per (member, month).
type Subscription struct {
	ID          int32           `json:"id"`
	MemberID    int32           `json:"memberId"`
	Month       util.MonthKey   `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"paymentDate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (s *Subscription) Validate() error {
	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrSubscriptionAmountInvalid
	}
	if _, err := util.ParseMonthKey(s.Month.String()); err != nil {
		return ErrInvalidInput
	}
	return nil
}

// SubscriptionWithMember is a subscription joined with the member's name.
type SubscriptionWithMember struct {
	Subscription
	MemberName string `json:"memberName"`
}

// DuplicateSubscriptionError reports that a member already paid for a month.
type DuplicateSubscriptionError struct {
	MemberID int32
	Month    util.MonthKey
}

func (e *DuplicateSubscriptionError) Error() string {
	return fmt.Sprintf("subscription already exists for member %d in %s", e.MemberID, e.Month)
}

type SubscriptionRepository interface {
	Create(sub *Subscription) (*Subscription, error)
	GetByID(id int32) (*Subscription, error)
	Exists(memberID int32, month util.MonthKey) (bool, error)
	ListByMonth(month util.MonthKey) ([]*SubscriptionWithMember, error)
	ListInRange(r util.DateRange) ([]*SubscriptionWithMember, error)
	// SumUpTo totals subscription amounts with a payment date on or before
	// the given date.
	SumUpTo(date time.Time) (decimal.Decimal, error)
	SumAll() (decimal.Decimal, error)
	// MemberIDsForMonth lists members that already paid the given month.
	MemberIDsForMonth(month util.MonthKey) (map[int32]bool, error)
	Delete(id int32) error
}
