package service

import (
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// ProfitService computes society-wide income, expenditure and the
// distribution of net profit across contributing members.
type ProfitService struct {
	repaymentRepo domain.RepaymentRepository
	accrualRepo   domain.AccrualRepository
	calcRepo      domain.FDCalculationRepository
	subRepo       domain.SubscriptionRepository
}

// NewProfitService creates a new ProfitService
func NewProfitService(repaymentRepo domain.RepaymentRepository, accrualRepo domain.AccrualRepository, calcRepo domain.FDCalculationRepository, subRepo domain.SubscriptionRepository) *ProfitService {
	return &ProfitService{
		repaymentRepo: repaymentRepo,
		accrualRepo:   accrualRepo,
		calcRepo:      calcRepo,
		subRepo:       subRepo,
	}
}

// IncomeExpenditure is the society's operating statement for a period.
//
// Income counts interest RECEIVED and interest ACCRUED: the statement is on
// an accrual basis. The quarterly deposit payout deliberately uses received
// interest only (cash basis) — the two must not be "unified"; see
// DepositService.CalculateQuarterlyInterest.
type IncomeExpenditure struct {
	Period            util.DateRange  `json:"period"`
	InterestReceived  decimal.Decimal `json:"interestReceived"`
	InterestAccrued   decimal.Decimal `json:"interestAccrued"`
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	FDInterestExpense decimal.Decimal `json:"fdInterestExpense"`
	TotalExpenditure  decimal.Decimal `json:"totalExpenditure"`
	NetIncome         decimal.Decimal `json:"netIncome"`
}

// IncomeExpenditureStatement computes the operating statement over an
// inclusive date range.
func (s *ProfitService) IncomeExpenditureStatement(period util.DateRange) (*IncomeExpenditure, error) {
	received, err := s.repaymentRepo.SumInterestInRange(period)
	if err != nil {
		return nil, err
	}
	accrued, err := s.accrualRepo.SumInRange(period)
	if err != nil {
		return nil, err
	}
	fdExpense, err := s.calcRepo.SumEarnedInRange(period)
	if err != nil {
		return nil, err
	}

	income := received.Add(accrued)
	return &IncomeExpenditure{
		Period:            period,
		InterestReceived:  received,
		InterestAccrued:   accrued,
		TotalIncome:       income,
		FDInterestExpense: fdExpense,
		TotalExpenditure:  fdExpense,
		NetIncome:         income.Sub(fdExpense),
	}, nil
}

// DistributionOutcome classifies a profit distribution result.
type DistributionOutcome string

const (
	// OutcomeDistributed means shares were computed for every contributor.
	OutcomeDistributed DistributionOutcome = "distributed"
	// OutcomeNoProfit means the period closed at zero or a loss. This is a
	// displayable result, not an error.
	OutcomeNoProfit DistributionOutcome = "no_profit"
	// OutcomeNoContributions means nobody paid subscriptions in the period.
	OutcomeNoContributions DistributionOutcome = "no_contributions"
)

// MemberShare is one member's slice of the distributable profit.
type MemberShare struct {
	MemberID               int32           `json:"memberId"`
	MemberName             string          `json:"memberName"`
	Contribution           decimal.Decimal `json:"contribution"`
	ContributionPercentage decimal.Decimal `json:"contributionPercentage"`
	ProfitShare            decimal.Decimal `json:"profitShare"`
}

// ProfitDistribution is the result of a profit distribution calculation.
type ProfitDistribution struct {
	Outcome            DistributionOutcome `json:"outcome"`
	Statement          *IncomeExpenditure  `json:"statement"`
	TotalContributions decimal.Decimal     `json:"totalContributions"`
	Shares             []*MemberShare      `json:"shares,omitempty"`
}

// CalculateProfitDistribution splits the period's net profit across members
// in proportion to their subscription contributions within the period. The
// shares sum to the net profit up to minor-unit rounding.
func (s *ProfitService) CalculateProfitDistribution(period util.DateRange) (*ProfitDistribution, error) {
	statement, err := s.IncomeExpenditureStatement(period)
	if err != nil {
		return nil, err
	}

	result := &ProfitDistribution{
		Statement:          statement,
		TotalContributions: decimal.Zero,
	}

	if statement.NetIncome.LessThanOrEqual(decimal.Zero) {
		result.Outcome = OutcomeNoProfit
		return result, nil
	}

	subs, err := s.subRepo.ListInRange(period)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		result.Outcome = OutcomeNoContributions
		return result, nil
	}

	// Group contributions by member, preserving first-seen order.
	var order []int32
	contributions := make(map[int32]*MemberShare)
	for _, sub := range subs {
		share, ok := contributions[sub.MemberID]
		if !ok {
			share = &MemberShare{MemberID: sub.MemberID, MemberName: sub.MemberName, Contribution: decimal.Zero}
			contributions[sub.MemberID] = share
			order = append(order, sub.MemberID)
		}
		share.Contribution = share.Contribution.Add(sub.Amount)
		result.TotalContributions = result.TotalContributions.Add(sub.Amount)
	}

	hundred := decimal.NewFromInt(100)
	for _, id := range order {
		share := contributions[id]
		ratio := share.Contribution.Div(result.TotalContributions)
		share.ContributionPercentage = ratio.Mul(hundred)
		share.ProfitShare = statement.NetIncome.Mul(ratio)
		result.Shares = append(result.Shares, share)
	}

	result.Outcome = OutcomeDistributed
	return result, nil
}
