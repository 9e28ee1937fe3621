package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound       = errors.New("loan not found")
	ErrLoanNotActive      = errors.New("loan is not active")
	ErrLoanAmountInvalid  = errors.New("loan amount must be positive")
	ErrLoanRateRequired   = errors.New("flat rate loans require a non-negative interest rate")
	ErrLoanSchemeInvalid  = errors.New("interest scheme must be progressive, flat or zero")
	ErrLoanConcurrentEdit = errors.New("loan was modified concurrently, retry the operation")
)

// InterestScheme selects how monthly interest is computed on a loan's
// outstanding principal.
type InterestScheme string

const (
	// SchemeProgressive charges 2% on the balance up to the tier limit and
	// 3% on the excess.
	SchemeProgressive InterestScheme = "progressive"
	// SchemeFlat charges a single stored percentage on the whole balance.
	SchemeFlat InterestScheme = "flat"
	// SchemeZero charges no interest.
	SchemeZero InterestScheme = "zero"
)

// Progressive scheme tier: 2% up to the limit, 3% on the excess.
var (
	ProgressiveTierLimit = decimal.NewFromInt(200000)
	ProgressiveLowerRate = decimal.NewFromFloat(0.02)
	ProgressiveUpperRate = decimal.NewFromFloat(0.03)
)

// LoanStatus is the lifecycle state of a loan. A loan closes exactly when
// its outstanding principal reaches zero and never reopens.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusClosed LoanStatus = "closed"
)

// Loan is a disbursement to a member. Amount grows on top-ups; Outstanding
// is the authoritative unpaid principal, maintained transactionally on every
// mutation and never negative.
type Loan struct {
	ID          int32           `json:"id"`
	MemberID    int32           `json:"memberId"`
	Amount      decimal.Decimal `json:"amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Scheme      InterestScheme  `json:"scheme"`
	ManualRate  decimal.Decimal `json:"manualRate"`
	LoanDate    time.Time       `json:"loanDate"`
	Status      LoanStatus      `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (l *Loan) Validate() error {
	if l.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrLoanAmountInvalid
	}
	switch l.Scheme {
	case SchemeProgressive, SchemeZero:
	case SchemeFlat:
		if l.ManualRate.IsNegative() {
			return ErrLoanRateRequired
		}
	default:
		return ErrLoanSchemeInvalid
	}
	return nil
}

// LoanWithMember is a loan joined with the borrowing member's name for
// listings and statements.
type LoanWithMember struct {
	Loan
	MemberName string `json:"memberName"`
}

// DuplicateLoanError reports that a member already holds an active loan.
// It carries the existing loan so callers can name it in their message.
type DuplicateLoanError struct {
	LoanID      int32
	Outstanding decimal.Decimal
}

func (e *DuplicateLoanError) Error() string {
	return fmt.Sprintf("member already has an active loan (LN%04d) with %s outstanding",
		e.LoanID, e.Outstanding.StringFixed(2))
}

// OverpaymentError reports a repayment portion exceeding the corresponding
// outstanding balance.
type OverpaymentError struct {
	Portion string // "principal" or "interest"
	Maximum decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("%s amount cannot exceed the current balance of %s",
		e.Portion, e.Maximum.StringFixed(2))
}

// RepaymentResult reports the effect of a repayment back to the caller.
type RepaymentResult struct {
	MemberName     string          `json:"memberName"`
	NewOutstanding decimal.Decimal `json:"newOutstanding"`
	LoanClosed     bool            `json:"loanClosed"`
}

type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	GetByID(id int32) (*Loan, error)
	GetActiveByMember(memberID int32) (*Loan, error)
	ListActive() ([]*LoanWithMember, error)
	List() ([]*LoanWithMember, error)
	// ApplyTopUp atomically grows both amount and outstanding of an active
	// loan. Fails with ErrLoanNotActive if the loan closed in the meantime.
	ApplyTopUp(id int32, extra decimal.Decimal) (*Loan, error)
	// ApplyRepayment atomically inserts the repayment row and decrements the
	// outstanding principal, closing the loan when it reaches zero. The
	// update carries an outstanding-amount precondition so two concurrent
	// repayments cannot both succeed against the same balance.
	ApplyRepayment(rep *Repayment) (*Loan, error)
	EarliestLoanDate() (*time.Time, error)
}
