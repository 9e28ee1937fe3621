package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// ReportService builds per-loan statements and the monthly due report.
type ReportService struct {
	loanRepo      domain.LoanRepository
	memberRepo    domain.MemberRepository
	accrualRepo   domain.AccrualRepository
	repaymentRepo domain.RepaymentRepository
	subRepo       domain.SubscriptionRepository
}

// NewReportService creates a new ReportService
func NewReportService(loanRepo domain.LoanRepository, memberRepo domain.MemberRepository, accrualRepo domain.AccrualRepository, repaymentRepo domain.RepaymentRepository, subRepo domain.SubscriptionRepository) *ReportService {
	return &ReportService{
		loanRepo:      loanRepo,
		memberRepo:    memberRepo,
		accrualRepo:   accrualRepo,
		repaymentRepo: repaymentRepo,
		subRepo:       subRepo,
	}
}

// LedgerEntryType classifies a loan statement line.
type LedgerEntryType string

const (
	EntryDisbursement LedgerEntryType = "disbursement"
	EntryAccrual      LedgerEntryType = "interest_accrued"
	EntryRepayment    LedgerEntryType = "repayment"
)

// LedgerEntry is one chronological line of a loan statement with running
// balances after the entry.
type LedgerEntry struct {
	Date             string          `json:"date"`
	Type             LedgerEntryType `json:"type"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	PrincipalBalance decimal.Decimal `json:"principalBalance"`
	InterestBalance  decimal.Decimal `json:"interestBalance"`
}

// LoanStatement is the full ledger of one loan.
type LoanStatement struct {
	Loan             *domain.Loan    `json:"loan"`
	MemberName       string          `json:"memberName"`
	Entries          []*LedgerEntry  `json:"entries"`
	PrincipalBalance decimal.Decimal `json:"principalBalance"`
	InterestBalance  decimal.Decimal `json:"interestBalance"`
}

// GetLoanStatement merges the disbursement, accruals and repayments of a
// loan into one chronological ledger with running balances.
func (s *ReportService) GetLoanStatement(loanID int32) (*LoanStatement, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByID(loan.MemberID)
	if err != nil {
		return nil, err
	}
	accruals, err := s.accrualRepo.ListByLoan(loanID)
	if err != nil {
		return nil, err
	}
	repayments, err := s.repaymentRepo.ListByLoan(loanID)
	if err != nil {
		return nil, err
	}

	type event struct {
		date      string
		order     int // disbursement < accrual < repayment on the same day
		entryType LedgerEntryType
		principal decimal.Decimal
		interest  decimal.Decimal
	}

	events := []event{{
		date:      util.FormatDate(loan.LoanDate),
		order:     0,
		entryType: EntryDisbursement,
		principal: loan.Amount,
		interest:  decimal.Zero,
	}}
	for _, a := range accruals {
		events = append(events, event{
			date:      util.FormatDate(a.AccrualDate),
			order:     1,
			entryType: EntryAccrual,
			principal: decimal.Zero,
			interest:  a.AccruedAmount,
		})
	}
	for _, r := range repayments {
		events = append(events, event{
			date:      util.FormatDate(r.PaymentDate),
			order:     2,
			entryType: EntryRepayment,
			principal: r.PrincipalAmount,
			interest:  r.InterestAmount,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].date != events[j].date {
			return events[i].date < events[j].date
		}
		return events[i].order < events[j].order
	})

	statement := &LoanStatement{Loan: loan, MemberName: member.Name}
	principalBal := decimal.Zero
	interestBal := decimal.Zero
	for _, e := range events {
		switch e.entryType {
		case EntryDisbursement:
			principalBal = principalBal.Add(e.principal)
		case EntryAccrual:
			interestBal = interestBal.Add(e.interest)
		case EntryRepayment:
			principalBal = principalBal.Sub(e.principal)
			interestBal = interestBal.Sub(e.interest)
			if interestBal.IsNegative() {
				interestBal = decimal.Zero
			}
		}
		statement.Entries = append(statement.Entries, &LedgerEntry{
			Date:             e.date,
			Type:             e.entryType,
			Principal:        e.principal,
			Interest:         e.interest,
			PrincipalBalance: principalBal,
			InterestBalance:  interestBal,
		})
	}
	statement.PrincipalBalance = principalBal
	statement.InterestBalance = interestBal
	return statement, nil
}

// SubscriptionDue names a member who has not paid the month's subscription.
type SubscriptionDue struct {
	MemberID int32           `json:"memberId"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

// InterestDue names an active loan with no interest payment in the month.
type InterestDue struct {
	LoanID      int32           `json:"loanId"`
	MemberName  string          `json:"memberName"`
	Outstanding decimal.Decimal `json:"outstanding"`
	InterestDue decimal.Decimal `json:"interestDue"`
}

// DueReport lists everything unpaid for one month.
type DueReport struct {
	Month            util.MonthKey      `json:"month"`
	SubscriptionsDue []*SubscriptionDue `json:"subscriptionsDue"`
	InterestDue      []*InterestDue     `json:"interestDue"`
}

// GetDueReport lists active members who have not paid the month's
// subscription and active loans that paid no interest during the month.
func (s *ReportService) GetDueReport(month util.MonthKey) (*DueReport, error) {
	report := &DueReport{Month: month}

	active := domain.MemberStatusActive
	members, err := s.memberRepo.List(&active)
	if err != nil {
		return nil, err
	}
	paid, err := s.subRepo.MemberIDsForMonth(month)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if !paid[m.ID] {
			report.SubscriptionsDue = append(report.SubscriptionsDue, &SubscriptionDue{
				MemberID: m.ID,
				Name:     m.Name,
				Amount:   m.SubscriptionAmount,
			})
		}
	}

	loans, err := s.loanRepo.ListActive()
	if err != nil {
		return nil, err
	}
	interestPaid, err := s.repaymentRepo.LoanIDsWithInterestInMonth(month)
	if err != nil {
		return nil, err
	}
	for _, loan := range loans {
		if !interestPaid[loan.ID] {
			report.InterestDue = append(report.InterestDue, &InterestDue{
				LoanID:      loan.ID,
				MemberName:  loan.MemberName,
				Outstanding: loan.Outstanding,
				InterestDue: ComputeMonthlyInterest(loan.Outstanding, loan.Scheme, loan.ManualRate).Round(2),
			})
		}
	}
	return report, nil
}
