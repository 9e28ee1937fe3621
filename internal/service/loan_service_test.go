package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

func newLoanFixture() (*LoanService, *MockRepos) {
	repos := NewMockRepos()
	repos.Members.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})
	repos.Members.AddMember(&domain.Member{ID: 2, Name: "Binu", Status: domain.MemberStatusSuspended})
	svc := NewLoanService(repos.Loans, repos.Members, repos.Accruals, repos.Repayments)
	return svc, repos
}

func issueDate() time.Time {
	return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
}

func TestIssueLoan_CreatesActiveLoan(t *testing.T) {
	svc, repos := newLoanFixture()

	result, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(300000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.MemberName != "Asha" {
		t.Errorf("Expected member name Asha, got %s", result.MemberName)
	}
	loan := repos.Loans.Loans[result.LoanID]
	if loan == nil {
		t.Fatal("Expected loan to be stored")
	}
	if !loan.Outstanding.Equal(loan.Amount) {
		t.Errorf("Expected outstanding == amount at issue, got %s vs %s", loan.Outstanding, loan.Amount)
	}
	if loan.Status != domain.LoanStatusActive {
		t.Errorf("Expected active status, got %s", loan.Status)
	}
}

func TestIssueLoan_RejectsSuspendedMember(t *testing.T) {
	svc, _ := newLoanFixture()

	_, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 2,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if err != domain.ErrMemberSuspended {
		t.Errorf("Expected ErrMemberSuspended, got %v", err)
	}
}

func TestIssueLoan_RejectsUnknownMember(t *testing.T) {
	svc, _ := newLoanFixture()

	_, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 99,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if err != domain.ErrMemberNotFound {
		t.Errorf("Expected ErrMemberNotFound, got %v", err)
	}
}

func TestIssueLoan_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newLoanFixture()

	_, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.Zero,
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if err != domain.ErrLoanAmountInvalid {
		t.Errorf("Expected ErrLoanAmountInvalid, got %v", err)
	}
}

func TestIssueLoan_FlatSchemeRequiresRate(t *testing.T) {
	svc, _ := newLoanFixture()

	_, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeFlat,
	})
	if err != domain.ErrLoanRateRequired {
		t.Errorf("Expected ErrLoanRateRequired, got %v", err)
	}
}

func TestIssueLoan_SecondActiveLoanRejected(t *testing.T) {
	svc, _ := newLoanFixture()

	first, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(50000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err = svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(20000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	var dup *domain.DuplicateLoanError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateLoanError, got %v", err)
	}
	if dup.LoanID != first.LoanID {
		t.Errorf("Expected error to name loan %d, got %d", first.LoanID, dup.LoanID)
	}
	if !dup.Outstanding.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected error to carry outstanding 50000, got %s", dup.Outstanding)
	}
}

func TestRepay_ExactRepaymentClosesLoan(t *testing.T) {
	svc, repos := newLoanFixture()
	result, err := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(300000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rep, err := svc.Repay(result.LoanID, decimal.NewFromInt(300000), decimal.Zero, issueDate().AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !rep.LoanClosed {
		t.Error("Expected loan to close on exact repayment")
	}
	if !rep.NewOutstanding.IsZero() {
		t.Errorf("Expected zero outstanding, got %s", rep.NewOutstanding)
	}
	if repos.Loans.Loans[result.LoanID].Status != domain.LoanStatusClosed {
		t.Error("Expected stored loan status closed")
	}
}

func TestRepay_PrincipalOverpaymentRejected(t *testing.T) {
	svc, _ := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})

	_, err := svc.Repay(result.LoanID, decimal.NewFromInt(10001), decimal.Zero, issueDate())
	var over *domain.OverpaymentError
	if !errors.As(err, &over) {
		t.Fatalf("Expected OverpaymentError, got %v", err)
	}
	if over.Portion != "principal" {
		t.Errorf("Expected principal overpayment, got %s", over.Portion)
	}
	if !over.Maximum.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected maximum 10000, got %s", over.Maximum)
	}
}

func TestRepay_InterestOverpaymentRejected(t *testing.T) {
	svc, repos := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(100000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})

	// One month accrued: 2,000. Paying more interest than that must fail.
	repos.Accruals.AddAccrual(&domain.InterestAccrual{
		LoanID:        result.LoanID,
		AccrualMonth:  util.NewMonthKey(2024, 4),
		AccruedAmount: decimal.NewFromInt(2000),
		AccrualDate:   issueDate(),
	})

	_, err := svc.Repay(result.LoanID, decimal.Zero, decimal.NewFromInt(2001), issueDate())
	var over *domain.OverpaymentError
	if !errors.As(err, &over) {
		t.Fatalf("Expected OverpaymentError, got %v", err)
	}
	if over.Portion != "interest" {
		t.Errorf("Expected interest overpayment, got %s", over.Portion)
	}
}

func TestRepay_InterestBalanceNetsPriorPayments(t *testing.T) {
	svc, repos := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(100000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})

	repos.Accruals.AddAccrual(&domain.InterestAccrual{
		LoanID:        result.LoanID,
		AccrualMonth:  util.NewMonthKey(2024, 4),
		AccruedAmount: decimal.NewFromInt(2000),
		AccrualDate:   issueDate(),
	})
	if _, err := svc.Repay(result.LoanID, decimal.Zero, decimal.NewFromInt(1500), issueDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	balance, err := svc.OutstandingInterest(result.LoanID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected interest balance 500, got %s", balance)
	}
}

func TestRepay_ClosedLoanRejected(t *testing.T) {
	svc, _ := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if _, err := svc.Repay(result.LoanID, decimal.NewFromInt(10000), decimal.Zero, issueDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := svc.Repay(result.LoanID, decimal.NewFromInt(1), decimal.Zero, issueDate())
	if err != domain.ErrLoanNotActive {
		t.Errorf("Expected ErrLoanNotActive, got %v", err)
	}
}

func TestRepay_EmptyRepaymentRejected(t *testing.T) {
	svc, _ := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})

	_, err := svc.Repay(result.LoanID, decimal.Zero, decimal.Zero, issueDate())
	if err != domain.ErrRepaymentEmpty {
		t.Errorf("Expected ErrRepaymentEmpty, got %v", err)
	}
}

func TestTopUp_ThenEqualRepaymentRestoresBalance(t *testing.T) {
	svc, _ := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(100000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})

	topped, err := svc.TopUp(result.LoanID, decimal.NewFromInt(50000), issueDate().AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !topped.Outstanding.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("Expected outstanding 150000 after top-up, got %s", topped.Outstanding)
	}
	if !topped.Amount.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("Expected amount 150000 after top-up, got %s", topped.Amount)
	}

	rep, err := svc.Repay(result.LoanID, decimal.NewFromInt(50000), decimal.Zero, issueDate().AddDate(0, 2, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !rep.NewOutstanding.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected outstanding back to 100000, got %s", rep.NewOutstanding)
	}
	if rep.LoanClosed {
		t.Error("Expected loan to remain open")
	}
}

func TestTopUp_InactiveLoanRejected(t *testing.T) {
	svc, _ := newLoanFixture()
	result, _ := svc.IssueLoan(IssueLoanInput{
		MemberID: 1,
		Amount:   decimal.NewFromInt(10000),
		LoanDate: issueDate(),
		Scheme:   domain.SchemeProgressive,
	})
	if _, err := svc.Repay(result.LoanID, decimal.NewFromInt(10000), decimal.Zero, issueDate()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := svc.TopUp(result.LoanID, decimal.NewFromInt(5000), issueDate())
	if err != domain.ErrLoanNotActive {
		t.Errorf("Expected ErrLoanNotActive, got %v", err)
	}
}
