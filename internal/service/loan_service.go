package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
)

// LoanService handles loan issue, top-up and repayment business logic.
type LoanService struct {
	loanRepo      domain.LoanRepository
	memberRepo    domain.MemberRepository
	accrualRepo   domain.AccrualRepository
	repaymentRepo domain.RepaymentRepository
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, memberRepo domain.MemberRepository, accrualRepo domain.AccrualRepository, repaymentRepo domain.RepaymentRepository) *LoanService {
	return &LoanService{
		loanRepo:      loanRepo,
		memberRepo:    memberRepo,
		accrualRepo:   accrualRepo,
		repaymentRepo: repaymentRepo,
	}
}

// IssueLoanInput contains input for issuing a loan
type IssueLoanInput struct {
	MemberID   int32
	Amount     decimal.Decimal
	LoanDate   time.Time
	Scheme     domain.InterestScheme
	ManualRate *decimal.Decimal // Required for flat scheme, ignored otherwise
}

// IssueLoanResult echoes the created loan with the member name so callers
// can render a confirmation.
type IssueLoanResult struct {
	LoanID     int32           `json:"loanId"`
	MemberName string          `json:"memberName"`
	Amount     decimal.Decimal `json:"amount"`
}

// IssueLoan creates a new active loan after validating the member and the
// one-active-loan-per-member rule.
func (s *LoanService) IssueLoan(input IssueLoanInput) (*IssueLoanResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrLoanAmountInvalid
	}

	manualRate := decimal.Zero
	switch input.Scheme {
	case domain.SchemeProgressive, domain.SchemeZero:
	case domain.SchemeFlat:
		if input.ManualRate == nil || input.ManualRate.IsNegative() {
			return nil, domain.ErrLoanRateRequired
		}
		manualRate = *input.ManualRate
	default:
		return nil, domain.ErrLoanSchemeInvalid
	}

	member, err := s.memberRepo.GetByID(input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != domain.MemberStatusActive {
		return nil, domain.ErrMemberSuspended
	}

	existing, err := s.loanRepo.GetActiveByMember(input.MemberID)
	if err != nil && err != domain.ErrLoanNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.DuplicateLoanError{
			LoanID:      existing.ID,
			Outstanding: existing.Outstanding,
		}
	}

	loan := &domain.Loan{
		MemberID:    input.MemberID,
		Amount:      input.Amount,
		Outstanding: input.Amount,
		Scheme:      input.Scheme,
		ManualRate:  manualRate,
		LoanDate:    input.LoanDate,
		Status:      domain.LoanStatusActive,
	}
	created, err := s.loanRepo.Create(loan)
	if err != nil {
		return nil, err
	}

	return &IssueLoanResult{
		LoanID:     created.ID,
		MemberName: member.Name,
		Amount:     created.Amount,
	}, nil
}

// TopUp enlarges an active loan. The existing scheme and rate continue to
// govern interest on the grown balance; no new scheme is applied.
func (s *LoanService) TopUp(loanID int32, extra decimal.Decimal, date time.Time) (*domain.Loan, error) {
	if extra.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrLoanAmountInvalid
	}

	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.ErrLoanNotActive
	}

	return s.loanRepo.ApplyTopUp(loanID, extra)
}

// OutstandingInterest derives the unpaid interest balance of a loan:
// everything accrued minus everything repaid as interest, floored at zero.
func (s *LoanService) OutstandingInterest(loanID int32) (decimal.Decimal, error) {
	accrued, err := s.accrualRepo.SumByLoan(loanID)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := s.repaymentRepo.SumInterestByLoan(loanID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := accrued.Sub(paid)
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}

// Repay applies a repayment split into principal and interest portions.
// Either portion may exceed neither its outstanding balance; the loan closes
// exactly when the outstanding principal reaches zero.
func (s *LoanService) Repay(loanID int32, principalPortion, interestPortion decimal.Decimal, date time.Time) (*domain.RepaymentResult, error) {
	rep := &domain.Repayment{
		LoanID:          loanID,
		PrincipalAmount: principalPortion,
		InterestAmount:  interestPortion,
		PaymentDate:     date,
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}

	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.ErrLoanNotActive
	}

	if principalPortion.GreaterThan(loan.Outstanding) {
		return nil, &domain.OverpaymentError{Portion: "principal", Maximum: loan.Outstanding}
	}

	interestBalance, err := s.OutstandingInterest(loanID)
	if err != nil {
		return nil, err
	}
	if interestPortion.GreaterThan(interestBalance) {
		return nil, &domain.OverpaymentError{Portion: "interest", Maximum: interestBalance}
	}

	// The repository enforces the outstanding-amount precondition again
	// inside the transaction, so a concurrent repayment that slipped in
	// between our read and the write fails instead of overdrawing.
	updated, err := s.loanRepo.ApplyRepayment(rep)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(loan.MemberID)
	if err != nil {
		return nil, err
	}

	return &domain.RepaymentResult{
		MemberName:     member.Name,
		NewOutstanding: updated.Outstanding,
		LoanClosed:     updated.Status == domain.LoanStatusClosed,
	}, nil
}

// GetActiveLoans lists active loans with member names and balances.
func (s *LoanService) GetActiveLoans() ([]*domain.LoanWithMember, error) {
	return s.loanRepo.ListActive()
}

// GetLoans lists every loan, open or closed.
func (s *LoanService) GetLoans() ([]*domain.LoanWithMember, error) {
	return s.loanRepo.List()
}

// GetLoanByID retrieves a single loan.
func (s *LoanService) GetLoanByID(id int32) (*domain.Loan, error) {
	return s.loanRepo.GetByID(id)
}
