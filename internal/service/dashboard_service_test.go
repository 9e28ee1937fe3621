package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/testutil"
	"github.com/sanchaya/society-backend/internal/util"
)

func TestGetSummary_AggregatesTotals(t *testing.T) {
	repos := NewMockRepos()
	repos.Members.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})

	subs := testutil.NewMockSubscriptionRepository()
	subs.Members = repos.Members
	deposits := testutil.NewMockDepositRepository()
	deposits.Members = repos.Members
	calcs := testutil.NewMockFDCalculationRepository()

	profit := NewProfitService(repos.Repayments, repos.Accruals, calcs, subs)
	svc := NewDashboardService(repos.Loans, repos.Repayments, subs, deposits, calcs, profit)

	repos.addActiveLoan(1, 100000, domain.SchemeProgressive, 0)
	repos.addActiveLoan(1, 50000, domain.SchemeProgressive, 0)
	repos.Repayments.AddRepayment(&domain.Repayment{
		LoanID: 1, PrincipalAmount: decimal.Zero,
		InterestAmount: decimal.NewFromInt(3000), PaymentDate: date(2024, 5, 1),
	})
	subs.AddSubscription(&domain.Subscription{
		MemberID: 1, Month: util.NewMonthKey(2024, 4),
		Amount: decimal.NewFromInt(2000), PaymentDate: date(2024, 4, 5),
	})
	deposits.AddDeposit(&domain.FixedDeposit{
		ID: 1, MemberID: 1, Amount: decimal.NewFromInt(30000),
		TenureMonths: 12, DepositDate: date(2024, 4, 1),
		MaturityDate: date(2025, 4, 1), Status: domain.DepositStatusActive,
	})
	calcs.AddCalculation(&domain.FDInterestCalculation{
		FDID: 1, Year: 2024, Quarter: "Q1",
		InterestEarned: decimal.NewFromInt(900), CalculationDate: date(2024, 7, 1),
	})

	summary, err := svc.GetSummary()
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ActiveLoanCount)
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(150000)))
	assert.True(t, summary.TotalSubscriptions.Equal(decimal.NewFromInt(2000)))
	assert.True(t, summary.TotalInterestReceived.Equal(decimal.NewFromInt(3000)))
	assert.True(t, summary.TotalFDPrincipal.Equal(decimal.NewFromInt(30000)))
	assert.True(t, summary.TotalFDInterest.Equal(decimal.NewFromInt(900)))
	require.NotNil(t, summary.CurrentMonth)
}

func TestGetSummary_CurrentMonthWindow(t *testing.T) {
	repos := NewMockRepos()
	subs := testutil.NewMockSubscriptionRepository()
	deposits := testutil.NewMockDepositRepository()
	calcs := testutil.NewMockFDCalculationRepository()
	profit := NewProfitService(repos.Repayments, repos.Accruals, calcs, subs)
	svc := NewDashboardService(repos.Loans, repos.Repayments, subs, deposits, calcs, profit)

	monthStart := util.MonthKeyFromDate(time.Now().UTC()).FirstDay()
	repos.Repayments.AddRepayment(&domain.Repayment{
		LoanID: 1, PrincipalAmount: decimal.Zero,
		InterestAmount: decimal.NewFromInt(700), PaymentDate: monthStart,
	})
	// A payment well in the past stays out of the current-month statement.
	repos.Repayments.AddRepayment(&domain.Repayment{
		LoanID: 1, PrincipalAmount: decimal.Zero,
		InterestAmount: decimal.NewFromInt(9999), PaymentDate: monthStart.AddDate(-1, 0, 0),
	})

	summary, err := svc.GetSummary()
	require.NoError(t, err)
	assert.True(t, summary.CurrentMonth.InterestReceived.Equal(decimal.NewFromInt(700)),
		"current month received %s", summary.CurrentMonth.InterestReceived)
}
