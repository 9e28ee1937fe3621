package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// DashboardService aggregates society-wide totals for the overview screen.
type DashboardService struct {
	loanRepo      domain.LoanRepository
	repaymentRepo domain.RepaymentRepository
	subRepo       domain.SubscriptionRepository
	depositRepo   domain.DepositRepository
	calcRepo      domain.FDCalculationRepository
	profit        *ProfitService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(loanRepo domain.LoanRepository, repaymentRepo domain.RepaymentRepository, subRepo domain.SubscriptionRepository, depositRepo domain.DepositRepository, calcRepo domain.FDCalculationRepository, profit *ProfitService) *DashboardService {
	return &DashboardService{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		subRepo:       subRepo,
		depositRepo:   depositRepo,
		calcRepo:      calcRepo,
		profit:        profit,
	}
}

// DashboardSummary is the society's headline totals.
type DashboardSummary struct {
	TotalSubscriptions    decimal.Decimal    `json:"totalSubscriptions"`
	ActiveLoanCount       int                `json:"activeLoanCount"`
	TotalOutstanding      decimal.Decimal    `json:"totalOutstanding"`
	TotalInterestReceived decimal.Decimal    `json:"totalInterestReceived"`
	TotalFDPrincipal      decimal.Decimal    `json:"totalFdPrincipal"`
	TotalFDInterest       decimal.Decimal    `json:"totalFdInterest"`
	CurrentMonth          *IncomeExpenditure `json:"currentMonth"`
}

// GetSummary computes the dashboard totals, including the current month's
// income and expenditure.
func (s *DashboardService) GetSummary() (*DashboardSummary, error) {
	totalSubs, err := s.subRepo.SumAll()
	if err != nil {
		return nil, err
	}

	activeLoans, err := s.loanRepo.ListActive()
	if err != nil {
		return nil, err
	}
	outstanding := decimal.Zero
	for _, loan := range activeLoans {
		outstanding = outstanding.Add(loan.Outstanding)
	}

	now := time.Now().UTC()
	interestReceived, err := s.repaymentRepo.SumInterestUpTo(now)
	if err != nil {
		return nil, err
	}

	fdPrincipal, err := s.depositRepo.SumPrincipal()
	if err != nil {
		return nil, err
	}
	fdInterest, err := s.calcRepo.SumEarned()
	if err != nil {
		return nil, err
	}

	month := util.MonthKeyFromDate(now)
	currentMonth, err := s.profit.IncomeExpenditureStatement(util.DateRange{
		From: month.FirstDay(),
		To:   month.LastDay(),
	})
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalSubscriptions:    totalSubs,
		ActiveLoanCount:       len(activeLoans),
		TotalOutstanding:      outstanding,
		TotalInterestReceived: interestReceived,
		TotalFDPrincipal:      fdPrincipal,
		TotalFDInterest:       fdInterest,
		CurrentMonth:          currentMonth,
	}, nil
}
