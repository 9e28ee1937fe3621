package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/testutil"
	"github.com/sanchaya/society-backend/internal/util"
)

func TestComputeMonthlyInterest_ProgressiveBelowTier(t *testing.T) {
	// 100,000 at 2% = 2,000
	got := ComputeMonthlyInterest(decimal.NewFromInt(100000), domain.SchemeProgressive, decimal.Zero)
	want := decimal.NewFromInt(2000)

	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestComputeMonthlyInterest_ProgressiveAboveTier(t *testing.T) {
	// 300,000: 200,000 x 2% + 100,000 x 3% = 4,000 + 3,000 = 7,000
	got := ComputeMonthlyInterest(decimal.NewFromInt(300000), domain.SchemeProgressive, decimal.Zero)
	want := decimal.NewFromInt(7000)

	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestComputeMonthlyInterest_ProgressiveContinuousAtTier(t *testing.T) {
	// The schedule must not jump at the tier boundary.
	atTier := ComputeMonthlyInterest(domain.ProgressiveTierLimit, domain.SchemeProgressive, decimal.Zero)
	if !atTier.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Expected 4000 at the tier limit, got %s", atTier)
	}

	epsilon := decimal.NewFromInt(1)
	justAbove := ComputeMonthlyInterest(domain.ProgressiveTierLimit.Add(epsilon), domain.SchemeProgressive, decimal.Zero)
	want := atTier.Add(epsilon.Mul(domain.ProgressiveUpperRate))
	if !justAbove.Equal(want) {
		t.Errorf("Expected %s just above the tier limit, got %s", want, justAbove)
	}
}

func TestComputeMonthlyInterest_Flat(t *testing.T) {
	// 50,000 at a flat 2% = 1,000
	got := ComputeMonthlyInterest(decimal.NewFromInt(50000), domain.SchemeFlat, decimal.NewFromInt(2))
	want := decimal.NewFromInt(1000)

	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestComputeMonthlyInterest_Zero(t *testing.T) {
	got := ComputeMonthlyInterest(decimal.NewFromInt(50000), domain.SchemeZero, decimal.Zero)
	if !got.IsZero() {
		t.Errorf("Expected zero interest, got %s", got)
	}
}

func TestComputeMonthlyInterest_NoBalance(t *testing.T) {
	got := ComputeMonthlyInterest(decimal.Zero, domain.SchemeProgressive, decimal.Zero)
	if !got.IsZero() {
		t.Errorf("Expected zero interest on a repaid loan, got %s", got)
	}
}

func newInterestFixture() (*InterestService, *MockRepos) {
	repos := NewMockRepos()
	return NewInterestService(repos.Loans, repos.Accruals), repos
}

// MockRepos bundles the linked in-memory repositories used across the
// service tests.
type MockRepos struct {
	Members    *testutil.MockMemberRepository
	Loans      *testutil.MockLoanRepository
	Repayments *testutil.MockRepaymentRepository
	Accruals   *testutil.MockAccrualRepository
}

// NewMockRepos wires the mocks together so loan listings carry member names
// and applied repayments land in the repayment repo.
func NewMockRepos() *MockRepos {
	members := testutil.NewMockMemberRepository()
	loans := testutil.NewMockLoanRepository()
	repayments := testutil.NewMockRepaymentRepository()
	loans.Members = members
	loans.Repayments = repayments
	return &MockRepos{
		Members:    members,
		Loans:      loans,
		Repayments: repayments,
		Accruals:   testutil.NewMockAccrualRepository(),
	}
}

func (r *MockRepos) addActiveLoan(memberID int32, outstanding int64, scheme domain.InterestScheme, rate int64) *domain.Loan {
	loan := &domain.Loan{
		MemberID:    memberID,
		Amount:      decimal.NewFromInt(outstanding),
		Outstanding: decimal.NewFromInt(outstanding),
		Scheme:      scheme,
		ManualRate:  decimal.NewFromInt(rate),
		LoanDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:      domain.LoanStatusActive,
	}
	r.Loans.AddLoan(loan)
	return loan
}

func TestPostMonthlyInterest_PostsAccruals(t *testing.T) {
	svc, repos := newInterestFixture()
	repos.Members.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})
	repos.addActiveLoan(1, 300000, domain.SchemeProgressive, 0)
	repos.addActiveLoan(1, 50000, domain.SchemeFlat, 2)

	result, err := svc.PostMonthlyInterest(util.NewMonthKey(2024, 3), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.LoansProcessed != 2 {
		t.Errorf("Expected 2 loans processed, got %d", result.LoansProcessed)
	}
	// 7,000 progressive + 1,000 flat
	if !result.TotalInterest.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("Expected total 8000, got %s", result.TotalInterest)
	}
	if len(repos.Accruals.Accruals) != 2 {
		t.Errorf("Expected 2 accrual rows, got %d", len(repos.Accruals.Accruals))
	}
}

func TestPostMonthlyInterest_SkipsZeroBalanceButCountsIt(t *testing.T) {
	svc, repos := newInterestFixture()
	loan := repos.addActiveLoan(1, 100000, domain.SchemeProgressive, 0)
	loan.Outstanding = decimal.Zero

	result, err := svc.PostMonthlyInterest(util.NewMonthKey(2024, 3), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.LoansProcessed != 1 {
		t.Errorf("Expected 1 loan processed, got %d", result.LoansProcessed)
	}
	if len(repos.Accruals.Accruals) != 0 {
		t.Errorf("Expected no accrual rows, got %d", len(repos.Accruals.Accruals))
	}
}

func TestPostMonthlyInterest_ZeroSchemeGetsNoRow(t *testing.T) {
	svc, repos := newInterestFixture()
	repos.addActiveLoan(1, 100000, domain.SchemeZero, 0)

	result, err := svc.PostMonthlyInterest(util.NewMonthKey(2024, 3), false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.LoansProcessed != 1 || len(repos.Accruals.Accruals) != 0 {
		t.Errorf("Expected processed=1 rows=0, got processed=%d rows=%d",
			result.LoansProcessed, len(repos.Accruals.Accruals))
	}
}

func TestPostMonthlyInterest_SecondPostNeedsForce(t *testing.T) {
	svc, repos := newInterestFixture()
	repos.addActiveLoan(1, 100000, domain.SchemeProgressive, 0)
	month := util.NewMonthKey(2024, 3)

	if _, err := svc.PostMonthlyInterest(month, false); err != nil {
		t.Fatalf("Unexpected error on first post: %v", err)
	}

	_, err := svc.PostMonthlyInterest(month, false)
	var posted *domain.AccrualsPostedError
	if !errors.As(err, &posted) {
		t.Fatalf("Expected AccrualsPostedError, got %v", err)
	}
	if posted.Month != month {
		t.Errorf("Expected error to name %s, got %s", month, posted.Month)
	}
	if len(repos.Accruals.Accruals) != 1 {
		t.Errorf("Expected accruals unchanged after rejected post, got %d rows", len(repos.Accruals.Accruals))
	}
}

func TestPostMonthlyInterest_ForceAllowsDuplicate(t *testing.T) {
	svc, repos := newInterestFixture()
	repos.addActiveLoan(1, 100000, domain.SchemeProgressive, 0)
	month := util.NewMonthKey(2024, 3)

	if _, err := svc.PostMonthlyInterest(month, false); err != nil {
		t.Fatalf("Unexpected error on first post: %v", err)
	}
	if _, err := svc.PostMonthlyInterest(month, true); err != nil {
		t.Fatalf("Unexpected error on forced post: %v", err)
	}

	if len(repos.Accruals.Accruals) != 2 {
		t.Errorf("Expected 2 accrual rows after forced duplicate, got %d", len(repos.Accruals.Accruals))
	}
}

func TestPostMonthlyInterest_BatchFailureWritesNothing(t *testing.T) {
	svc, repos := newInterestFixture()
	repos.addActiveLoan(1, 100000, domain.SchemeProgressive, 0)
	repos.Accruals.InsertBatchErr = errors.New("connection reset")

	if _, err := svc.PostMonthlyInterest(util.NewMonthKey(2024, 3), false); err == nil {
		t.Fatal("Expected storage error")
	}
	if len(repos.Accruals.Accruals) != 0 {
		t.Errorf("Expected no accrual rows after failed batch, got %d", len(repos.Accruals.Accruals))
	}
}

func TestMissingAccrualMonths_NoLoans(t *testing.T) {
	svc, _ := newInterestFixture()

	missing, err := svc.MissingAccrualMonths()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected no missing months without loans, got %v", missing)
	}
}

func TestMissingAccrualMonths_ExcludesPostedMonths(t *testing.T) {
	svc, repos := newInterestFixture()

	// Loan issued two months ago; only last month was posted.
	now := time.Now().UTC()
	loanDate := now.AddDate(0, -2, 0)
	loan := repos.addActiveLoan(1, 100000, domain.SchemeProgressive, 0)
	loan.LoanDate = loanDate

	lastMonth := util.MonthKeyFromDate(now).Previous()
	repos.Accruals.AddAccrual(&domain.InterestAccrual{
		LoanID:        loan.ID,
		AccrualMonth:  lastMonth,
		AccruedAmount: decimal.NewFromInt(2000),
		AccrualDate:   now,
	})

	missing, err := svc.MissingAccrualMonths()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, m := range missing {
		if m == lastMonth {
			t.Errorf("Expected %s to be excluded from missing months", lastMonth)
		}
	}
	loanMonth := util.MonthKeyFromDate(loanDate)
	found := false
	for _, m := range missing {
		if m == loanMonth {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s to be reported missing", loanMonth)
	}
}
