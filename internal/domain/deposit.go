package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/util"
)

var (
	ErrDepositNotFound      = errors.New("fixed deposit not found")
	ErrDepositAmountInvalid = errors.New("deposit amount must be positive")
	ErrDepositTenureInvalid = errors.New("deposit tenure must be between 1 and 12 months")
	ErrNothingToDistribute  = errors.New("no subscription or deposit balance to distribute against")
	ErrNoActiveDeposits     = errors.New("no active fixed deposits found for the period")
)

// DepositStatus is the lifecycle state of a fixed deposit.
type DepositStatus string

const (
	DepositStatusActive  DepositStatus = "active"
	DepositStatusMatured DepositStatus = "matured"
)

// FixedDeposit is a member's term deposit. Maturity is fixed at creation as
// deposit date plus tenure.
type FixedDeposit struct {
	ID           int32           `json:"id"`
	MemberID     int32           `json:"memberId"`
	Amount       decimal.Decimal `json:"amount"`
	TenureMonths int32           `json:"tenureMonths"`
	DepositDate  time.Time       `json:"depositDate"`
	MaturityDate time.Time       `json:"maturityDate"`
	Status       DepositStatus   `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (d *FixedDeposit) Validate() error {
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrDepositAmountInvalid
	}
	if d.TenureMonths < 1 || d.TenureMonths > 12 {
		return ErrDepositTenureInvalid
	}
	return nil
}

// DepositWithMember is a deposit joined with the holder's name.
type DepositWithMember struct {
	FixedDeposit
	MemberName string `json:"memberName"`
}

// FDInterestCalculation is one deposit's share of a quarterly interest
// distribution. The three pool inputs are snapshotted on every row so a
// posted quarter can be audited without replaying history.
type FDInterestCalculation struct {
	ID                 int32           `json:"id"`
	FDID               int32           `json:"fdId"`
	Year               int             `json:"year"`
	Quarter            string          `json:"quarter"`
	OpeningBalance     decimal.Decimal `json:"openingBalance"`
	InterestEarned     decimal.Decimal `json:"interestEarned"`
	ClosingBalance     decimal.Decimal `json:"closingBalance"`
	TotalSubscriptions decimal.Decimal `json:"totalSubscriptions"`
	TotalFDBalance     decimal.Decimal `json:"totalFdBalance"`
	TotalLoanInterest  decimal.Decimal `json:"totalLoanInterest"`
	CalculationDate    time.Time       `json:"calculationDate"`
}

// QuarterPostedError reports that a quarter already has posted calculations
// and needs explicit confirmation to be replaced.
type QuarterPostedError struct {
	Year    int
	Quarter string
}

func (e *QuarterPostedError) Error() string {
	return fmt.Sprintf("interest has already been posted for %s %d; confirm to replace the existing records",
		e.Quarter, e.Year)
}

// QuarterSummary aggregates one posted quarter for the history view.
type QuarterSummary struct {
	Year            int             `json:"year"`
	Quarter         string          `json:"quarter"`
	DepositCount    int             `json:"depositCount"`
	TotalInterest   decimal.Decimal `json:"totalInterest"`
	CalculationDate time.Time       `json:"calculationDate"`
}

type DepositRepository interface {
	Create(deposit *FixedDeposit) (*FixedDeposit, error)
	GetByID(id int32) (*FixedDeposit, error)
	List() ([]*DepositWithMember, error)
	// ListActiveAsOf lists active deposits whose deposit date is on or
	// before the given date.
	ListActiveAsOf(date time.Time) ([]*DepositWithMember, error)
	SumPrincipal() (decimal.Decimal, error)
}

type FDCalculationRepository interface {
	ExistsForQuarter(year int, quarter string) (bool, error)
	// ReplaceForQuarter deletes any rows for (year, quarter) and inserts the
	// new set within one transaction: a posted quarter is replaced whole,
	// never merged.
	ReplaceForQuarter(year int, quarter string, rows []*FDInterestCalculation) error
	// SumPriorInterest totals interest earned by one deposit in quarters
	// strictly before (year, quarter).
	SumPriorInterest(fdID int32, year int, quarter string) (decimal.Decimal, error)
	SumEarnedInRange(r util.DateRange) (decimal.Decimal, error)
	SumEarned() (decimal.Decimal, error)
	ListQuarterSummaries() ([]*QuarterSummary, error)
}
