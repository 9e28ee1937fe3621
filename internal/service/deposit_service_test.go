package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/testutil"
	"github.com/sanchaya/society-backend/internal/util"
)

type depositFixture struct {
	svc      *DepositService
	deposits *testutil.MockDepositRepository
	calcs    *testutil.MockFDCalculationRepository
	members  *testutil.MockMemberRepository
	subs     *testutil.MockSubscriptionRepository
	reps     *testutil.MockRepaymentRepository
}

func newDepositFixture() *depositFixture {
	members := testutil.NewMockMemberRepository()
	members.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})
	members.AddMember(&domain.Member{ID: 2, Name: "Binu", Status: domain.MemberStatusActive})
	members.AddMember(&domain.Member{ID: 3, Name: "Chitra", Status: domain.MemberStatusSuspended})

	deposits := testutil.NewMockDepositRepository()
	deposits.Members = members
	calcs := testutil.NewMockFDCalculationRepository()
	subs := testutil.NewMockSubscriptionRepository()
	subs.Members = members
	reps := testutil.NewMockRepaymentRepository()
	quarters := NewQuarterService(testutil.NewMockQuarterRepository())

	return &depositFixture{
		svc:      NewDepositService(deposits, calcs, members, subs, reps, quarters),
		deposits: deposits,
		calcs:    calcs,
		members:  members,
		subs:     subs,
		reps:     reps,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateDeposit_SetsMaturityFromTenure(t *testing.T) {
	f := newDepositFixture()

	fd, err := f.svc.CreateDeposit(CreateDepositInput{
		MemberID:     1,
		Amount:       decimal.NewFromInt(30000),
		TenureMonths: 6,
		DepositDate:  date(2024, 4, 15),
	})
	require.NoError(t, err)

	assert.Equal(t, date(2024, 10, 15), fd.MaturityDate)
	assert.Equal(t, domain.DepositStatusActive, fd.Status)
}

func TestCreateDeposit_TenureBounds(t *testing.T) {
	f := newDepositFixture()

	for _, tenure := range []int32{0, 13} {
		_, err := f.svc.CreateDeposit(CreateDepositInput{
			MemberID:     1,
			Amount:       decimal.NewFromInt(10000),
			TenureMonths: tenure,
			DepositDate:  date(2024, 4, 1),
		})
		assert.ErrorIs(t, err, domain.ErrDepositTenureInvalid, "tenure %d", tenure)
	}
}

func TestCreateDeposit_SuspendedMemberRejected(t *testing.T) {
	f := newDepositFixture()

	_, err := f.svc.CreateDeposit(CreateDepositInput{
		MemberID:     3,
		Amount:       decimal.NewFromInt(10000),
		TenureMonths: 6,
		DepositDate:  date(2024, 4, 1),
	})
	assert.ErrorIs(t, err, domain.ErrMemberSuspended)
}

// Two deposits of 30000 and 20000, subscriptions of 50000 and 10000 of loan
// interest collected: pool 100000, so the deposits earn 3000 and 2000.
func seedQuarterScenario(f *depositFixture) {
	f.deposits.AddDeposit(&domain.FixedDeposit{
		ID: 1, MemberID: 1, Amount: decimal.NewFromInt(30000),
		TenureMonths: 12, DepositDate: date(2024, 4, 1),
		MaturityDate: date(2025, 4, 1), Status: domain.DepositStatusActive,
	})
	f.deposits.AddDeposit(&domain.FixedDeposit{
		ID: 2, MemberID: 2, Amount: decimal.NewFromInt(20000),
		TenureMonths: 12, DepositDate: date(2024, 5, 1),
		MaturityDate: date(2025, 5, 1), Status: domain.DepositStatusActive,
	})
	f.subs.AddSubscription(&domain.Subscription{
		MemberID: 1, Month: util.NewMonthKey(2024, 4),
		Amount: decimal.NewFromInt(50000), PaymentDate: date(2024, 4, 5),
	})
	f.reps.AddRepayment(&domain.Repayment{
		LoanID: 7, PrincipalAmount: decimal.Zero,
		InterestAmount: decimal.NewFromInt(10000), PaymentDate: date(2024, 5, 20),
	})
}

func TestCalculateQuarterlyInterest_ProportionalSplit(t *testing.T) {
	f := newDepositFixture()
	seedQuarterScenario(f)

	calc, err := f.svc.CalculateQuarterlyInterest(2024, "Q1")
	require.NoError(t, err)

	assert.Equal(t, "2024-04-01", util.FormatDate(calc.Period.From))
	assert.Equal(t, "2024-06-30", util.FormatDate(calc.Period.To))
	assert.True(t, calc.TotalSubscriptions.Equal(decimal.NewFromInt(50000)))
	assert.True(t, calc.TotalFDBalance.Equal(decimal.NewFromInt(50000)))
	assert.True(t, calc.TotalLoanInterest.Equal(decimal.NewFromInt(10000)))

	require.Len(t, calc.Results, 2)
	assert.True(t, calc.Results[0].InterestEarned.Equal(decimal.NewFromInt(3000)),
		"fd1 earned %s", calc.Results[0].InterestEarned)
	assert.True(t, calc.Results[1].InterestEarned.Equal(decimal.NewFromInt(2000)),
		"fd2 earned %s", calc.Results[1].InterestEarned)
	assert.True(t, calc.Results[0].ClosingBalance.Equal(decimal.NewFromInt(33000)))
	assert.True(t, calc.TotalDistributed.Equal(decimal.NewFromInt(5000)))
}

func TestCalculateQuarterlyInterest_SharePercentagesSumTo100(t *testing.T) {
	f := newDepositFixture()
	seedQuarterScenario(f)

	calc, err := f.svc.CalculateQuarterlyInterest(2024, "Q1")
	require.NoError(t, err)

	total := decimal.Zero
	for _, r := range calc.Results {
		total = total.Add(r.SharePercentage)
	}
	diff := total.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.01)), "shares sum to %s", total)
}

func TestCalculateQuarterlyInterest_PriorQuartersCompound(t *testing.T) {
	f := newDepositFixture()
	seedQuarterScenario(f)
	// FD 1 already earned 3000 in Q1, so its Q2 opening balance grows.
	f.calcs.AddCalculation(&domain.FDInterestCalculation{
		FDID: 1, Year: 2024, Quarter: "Q1",
		OpeningBalance: decimal.NewFromInt(30000),
		InterestEarned: decimal.NewFromInt(3000),
		ClosingBalance: decimal.NewFromInt(33000),
	})

	calc, err := f.svc.CalculateQuarterlyInterest(2024, "Q2")
	require.NoError(t, err)

	require.Len(t, calc.Results, 2)
	assert.True(t, calc.Results[0].OpeningBalance.Equal(decimal.NewFromInt(33000)),
		"fd1 opening %s", calc.Results[0].OpeningBalance)
	assert.True(t, calc.Results[1].OpeningBalance.Equal(decimal.NewFromInt(20000)))
	assert.True(t, calc.TotalFDBalance.Equal(decimal.NewFromInt(53000)))
}

func TestCalculateQuarterlyInterest_NoDeposits(t *testing.T) {
	f := newDepositFixture()

	_, err := f.svc.CalculateQuarterlyInterest(2024, "Q1")
	assert.ErrorIs(t, err, domain.ErrNoActiveDeposits)
}

func TestCalculateQuarterlyInterest_LaterDepositsExcluded(t *testing.T) {
	f := newDepositFixture()
	seedQuarterScenario(f)
	// Opened after the Q1 end date, must not participate.
	f.deposits.AddDeposit(&domain.FixedDeposit{
		ID: 3, MemberID: 1, Amount: decimal.NewFromInt(99999),
		TenureMonths: 12, DepositDate: date(2024, 7, 1),
		MaturityDate: date(2025, 7, 1), Status: domain.DepositStatusActive,
	})

	calc, err := f.svc.CalculateQuarterlyInterest(2024, "Q1")
	require.NoError(t, err)
	assert.Len(t, calc.Results, 2)
}

func TestPostQuarterlyInterest_SecondPostNeedsForce(t *testing.T) {
	f := newDepositFixture()
	seedQuarterScenario(f)

	calc, err := f.svc.CalculateQuarterlyInterest(2024, "Q1")
	require.NoError(t, err)
	require.NoError(t, f.svc.PostQuarterlyInterest(calc, false))

	err = f.svc.PostQuarterlyInterest(calc, false)
	var posted *domain.QuarterPostedError
	require.True(t, errors.As(err, &posted))
	assert.Equal(t, 2024, posted.Year)
	assert.Equal(t, "Q1", posted.Quarter)

	// Forcing replaces the rows rather than stacking a second set.
	require.NoError(t, f.svc.PostQuarterlyInterest(calc, true))
	assert.Len(t, f.calcs.Calculations, 2)
}

func TestPostQuarterlyInterest_RowsSnapshotPoolInputs(t *testing.T) {
	f := newDepositFixture()
	seedQuarterScenario(f)

	calc, err := f.svc.CalculateQuarterlyInterest(2024, "Q1")
	require.NoError(t, err)
	require.NoError(t, f.svc.PostQuarterlyInterest(calc, false))

	require.Len(t, f.calcs.Calculations, 2)
	row := f.calcs.Calculations[0]
	assert.True(t, row.TotalSubscriptions.Equal(decimal.NewFromInt(50000)))
	assert.True(t, row.TotalFDBalance.Equal(decimal.NewFromInt(50000)))
	assert.True(t, row.TotalLoanInterest.Equal(decimal.NewFromInt(10000)))
}
