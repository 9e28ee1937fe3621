package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/util"
)

var (
	ErrRepaymentAmountNegative = errors.New("repayment amounts cannot be negative")
	ErrRepaymentEmpty          = errors.New("repayment must include a principal or interest amount")
)

// Repayment is an append-only record of a payment against a loan, split
// into its principal and interest portions. Rows are never mutated.
type Repayment struct {
	ID              int32           `json:"id"`
	LoanID          int32           `json:"loanId"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	PaymentDate     time.Time       `json:"paymentDate"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (r *Repayment) Validate() error {
	if r.PrincipalAmount.IsNegative() || r.InterestAmount.IsNegative() {
		return ErrRepaymentAmountNegative
	}
	if r.PrincipalAmount.IsZero() && r.InterestAmount.IsZero() {
		return ErrRepaymentEmpty
	}
	return nil
}

// InterestAccrual is an append-only record of one month's interest charged
// to a loan. Accruals are obligations, independent of payment.
type InterestAccrual struct {
	ID            int32           `json:"id"`
	LoanID        int32           `json:"loanId"`
	AccrualMonth  util.MonthKey   `json:"accrualMonth"`
	AccruedAmount decimal.Decimal `json:"accruedAmount"`
	AccrualDate   time.Time       `json:"accrualDate"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type RepaymentRepository interface {
	ListByLoan(loanID int32) ([]*Repayment, error)
	SumPrincipalByLoan(loanID int32) (decimal.Decimal, error)
	SumInterestByLoan(loanID int32) (decimal.Decimal, error)
	// SumInterestUpTo totals interest portions of repayments with a payment
	// date on or before the given date (cash received, not accrued).
	SumInterestUpTo(date time.Time) (decimal.Decimal, error)
	SumInterestInRange(r util.DateRange) (decimal.Decimal, error)
	SumPrincipalInRange(r util.DateRange) (decimal.Decimal, error)
	// LoanIDsWithInterestInMonth lists loans that paid any interest during
	// the given month, for the due report.
	LoanIDsWithInterestInMonth(month util.MonthKey) (map[int32]bool, error)
}

type AccrualRepository interface {
	// InsertBatch writes all accrual rows in a single transaction so a
	// mid-batch failure leaves nothing behind.
	InsertBatch(accruals []*InterestAccrual) error
	ExistsForMonth(month util.MonthKey) (bool, error)
	ListByLoan(loanID int32) ([]*InterestAccrual, error)
	SumByLoan(loanID int32) (decimal.Decimal, error)
	SumInRange(r util.DateRange) (decimal.Decimal, error)
	// DistinctMonths lists every month that has at least one accrual.
	DistinctMonths() ([]util.MonthKey, error)
}

// AccrualsPostedError reports that a month already has posted accruals and
// needs explicit confirmation before posting again.
type AccrualsPostedError struct {
	Month util.MonthKey
}

func (e *AccrualsPostedError) Error() string {
	return fmt.Sprintf("interest has already been posted for %s; confirm to post again and create duplicate entries", e.Month)
}
