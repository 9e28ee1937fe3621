package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// DepositService manages fixed deposits and the quarterly distribution of
// collected loan interest across them.
type DepositService struct {
	depositRepo   domain.DepositRepository
	calcRepo      domain.FDCalculationRepository
	memberRepo    domain.MemberRepository
	subRepo       domain.SubscriptionRepository
	repaymentRepo domain.RepaymentRepository
	quarters      *QuarterService
}

// NewDepositService creates a new DepositService
func NewDepositService(depositRepo domain.DepositRepository, calcRepo domain.FDCalculationRepository, memberRepo domain.MemberRepository, subRepo domain.SubscriptionRepository, repaymentRepo domain.RepaymentRepository, quarters *QuarterService) *DepositService {
	return &DepositService{
		depositRepo:   depositRepo,
		calcRepo:      calcRepo,
		memberRepo:    memberRepo,
		subRepo:       subRepo,
		repaymentRepo: repaymentRepo,
		quarters:      quarters,
	}
}

// CreateDepositInput contains input for opening a fixed deposit
type CreateDepositInput struct {
	MemberID     int32
	Amount       decimal.Decimal
	TenureMonths int32
	DepositDate  time.Time
}

// CreateDeposit opens a fixed deposit for an active member. Maturity is
// fixed at creation as deposit date plus tenure.
func (s *DepositService) CreateDeposit(input CreateDepositInput) (*domain.FixedDeposit, error) {
	deposit := &domain.FixedDeposit{
		MemberID:     input.MemberID,
		Amount:       input.Amount,
		TenureMonths: input.TenureMonths,
		DepositDate:  input.DepositDate,
		MaturityDate: input.DepositDate.AddDate(0, int(input.TenureMonths), 0),
		Status:       domain.DepositStatusActive,
	}
	if err := deposit.Validate(); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberStatusActive {
		return nil, domain.ErrMemberSuspended
	}

	return s.depositRepo.Create(deposit)
}

// GetDeposits lists all deposits with member names.
func (s *DepositService) GetDeposits() ([]*domain.DepositWithMember, error) {
	return s.depositRepo.List()
}

// FDInterestResult is one deposit's share of a quarterly distribution.
type FDInterestResult struct {
	FDID            int32           `json:"fdId"`
	MemberID        int32           `json:"memberId"`
	MemberName      string          `json:"memberName"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	InterestEarned  decimal.Decimal `json:"interestEarned"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
	SharePercentage decimal.Decimal `json:"sharePercentage"`
}

// QuarterCalculation is a complete, not-yet-posted quarterly interest
// distribution. Callers pass it unchanged into PostQuarterlyInterest; no
// pending state is held inside the service between the two steps.
type QuarterCalculation struct {
	Year               int                 `json:"year"`
	Quarter            string              `json:"quarter"`
	Period             util.DateRange      `json:"period"`
	TotalSubscriptions decimal.Decimal     `json:"totalSubscriptions"`
	TotalFDBalance     decimal.Decimal     `json:"totalFdBalance"`
	TotalLoanInterest  decimal.Decimal     `json:"totalLoanInterest"`
	TotalDistributed   decimal.Decimal     `json:"totalDistributed"`
	Results            []*FDInterestResult `json:"results"`
}

// CalculateQuarterlyInterest apportions the loan interest collected up to
// quarter end across the active deposits, proportional to each deposit's
// share of the combined subscription-plus-deposit pool. Subscriptions join
// the pool denominator but earn nothing here; only deposit holders are
// credited.
//
// The distributable amount is interest actually received in repayments, not
// interest accrued: only cash in hand is paid out. The profit statement
// deliberately counts accruals too; see ProfitService.
func (s *DepositService) CalculateQuarterlyInterest(year int, quarter string) (*QuarterCalculation, error) {
	period, err := s.quarters.QuarterDates(year, quarter)
	if err != nil {
		return nil, err
	}

	deposits, err := s.depositRepo.ListActiveAsOf(period.To)
	if err != nil {
		return nil, err
	}
	if len(deposits) == 0 {
		return nil, domain.ErrNoActiveDeposits
	}

	totalSubscriptions, err := s.subRepo.SumUpTo(period.To)
	if err != nil {
		return nil, err
	}
	totalLoanInterest, err := s.repaymentRepo.SumInterestUpTo(period.To)
	if err != nil {
		return nil, err
	}

	// Opening balance per deposit is principal plus everything it earned in
	// earlier quarters.
	openings := make([]decimal.Decimal, len(deposits))
	totalFDBalance := decimal.Zero
	for i, fd := range deposits {
		prior, err := s.calcRepo.SumPriorInterest(fd.ID, year, quarter)
		if err != nil {
			return nil, err
		}
		openings[i] = fd.Amount.Add(prior)
		totalFDBalance = totalFDBalance.Add(openings[i])
	}

	pool := totalSubscriptions.Add(totalFDBalance)
	if pool.IsZero() {
		return nil, domain.ErrNothingToDistribute
	}

	calc := &QuarterCalculation{
		Year:               year,
		Quarter:            quarter,
		Period:             period,
		TotalSubscriptions: totalSubscriptions,
		TotalFDBalance:     totalFDBalance,
		TotalLoanInterest:  totalLoanInterest,
		TotalDistributed:   decimal.Zero,
	}

	// Share percentage is each deposit's slice of the deposit balance total,
	// so the column sums to 100 regardless of how large the subscription side
	// of the pool is.
	hundred := decimal.NewFromInt(100)
	for i, fd := range deposits {
		opening := openings[i]
		earned := opening.Div(pool).Mul(totalLoanInterest)
		calc.Results = append(calc.Results, &FDInterestResult{
			FDID:            fd.ID,
			MemberID:        fd.MemberID,
			MemberName:      fd.MemberName,
			OpeningBalance:  opening,
			InterestEarned:  earned,
			ClosingBalance:  opening.Add(earned),
			SharePercentage: opening.Div(totalFDBalance).Mul(hundred),
		})
		calc.TotalDistributed = calc.TotalDistributed.Add(earned)
	}
	return calc, nil
}

// PostQuarterlyInterest persists a quarterly calculation. If the quarter was
// posted before, the caller must pass force, and the existing rows are
// replaced wholesale. Each row snapshots the three pool inputs used for the
// quarter.
func (s *DepositService) PostQuarterlyInterest(calc *QuarterCalculation, force bool) error {
	if calc == nil || len(calc.Results) == 0 {
		return domain.ErrInvalidInput
	}

	exists, err := s.calcRepo.ExistsForQuarter(calc.Year, calc.Quarter)
	if err != nil {
		return err
	}
	if exists && !force {
		return &domain.QuarterPostedError{Year: calc.Year, Quarter: calc.Quarter}
	}

	postingDate := time.Now().UTC().Truncate(24 * time.Hour)
	rows := make([]*domain.FDInterestCalculation, len(calc.Results))
	for i, r := range calc.Results {
		rows[i] = &domain.FDInterestCalculation{
			FDID:               r.FDID,
			Year:               calc.Year,
			Quarter:            calc.Quarter,
			OpeningBalance:     r.OpeningBalance.Round(2),
			InterestEarned:     r.InterestEarned.Round(2),
			ClosingBalance:     r.ClosingBalance.Round(2),
			TotalSubscriptions: calc.TotalSubscriptions.Round(2),
			TotalFDBalance:     calc.TotalFDBalance.Round(2),
			TotalLoanInterest:  calc.TotalLoanInterest.Round(2),
			CalculationDate:    postingDate,
		}
	}

	return s.calcRepo.ReplaceForQuarter(calc.Year, calc.Quarter, rows)
}

// GetInterestHistory lists posted quarters, newest first.
func (s *DepositService) GetInterestHistory() ([]*domain.QuarterSummary, error) {
	return s.calcRepo.ListQuarterSummaries()
}
