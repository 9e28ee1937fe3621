package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// InterestService computes and posts monthly loan interest accruals.
type InterestService struct {
	loanRepo    domain.LoanRepository
	accrualRepo domain.AccrualRepository
}

// NewInterestService creates a new InterestService
func NewInterestService(loanRepo domain.LoanRepository, accrualRepo domain.AccrualRepository) *InterestService {
	return &InterestService{
		loanRepo:    loanRepo,
		accrualRepo: accrualRepo,
	}
}

// ComputeMonthlyInterest calculates one month of interest on an outstanding
// principal balance. Interest is charged on principal only; accrued but
// unpaid interest never compounds.
func ComputeMonthlyInterest(balance decimal.Decimal, scheme domain.InterestScheme, manualRate decimal.Decimal) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	switch scheme {
	case domain.SchemeProgressive:
		if balance.LessThanOrEqual(domain.ProgressiveTierLimit) {
			return balance.Mul(domain.ProgressiveLowerRate)
		}
		lower := domain.ProgressiveTierLimit.Mul(domain.ProgressiveLowerRate)
		upper := balance.Sub(domain.ProgressiveTierLimit).Mul(domain.ProgressiveUpperRate)
		return lower.Add(upper)
	case domain.SchemeFlat:
		return balance.Mul(manualRate.Div(decimal.NewFromInt(100)))
	default: // zero
		return decimal.Zero
	}
}

// LoanInterestLine is one loan's row in an interest preview.
type LoanInterestLine struct {
	LoanID           int32           `json:"loanId"`
	MemberName       string          `json:"memberName"`
	PrincipalBalance decimal.Decimal `json:"principalBalance"`
	Scheme           domain.InterestScheme `json:"scheme"`
	Interest         decimal.Decimal `json:"interest"`
	Detail           string          `json:"detail"`
}

// InterestPreview is the dry-run result of a monthly interest calculation.
type InterestPreview struct {
	Month         util.MonthKey       `json:"month"`
	Lines         []*LoanInterestLine `json:"lines"`
	TotalInterest decimal.Decimal     `json:"totalInterest"`
}

// PreviewMonthlyInterest computes interest for every active loan without
// writing anything.
func (s *InterestService) PreviewMonthlyInterest(month util.MonthKey) (*InterestPreview, error) {
	loans, err := s.loanRepo.ListActive()
	if err != nil {
		return nil, err
	}

	preview := &InterestPreview{Month: month, TotalInterest: decimal.Zero}
	for _, loan := range loans {
		interest := ComputeMonthlyInterest(loan.Outstanding, loan.Scheme, loan.ManualRate)
		preview.Lines = append(preview.Lines, &LoanInterestLine{
			LoanID:           loan.ID,
			MemberName:       loan.MemberName,
			PrincipalBalance: loan.Outstanding,
			Scheme:           loan.Scheme,
			Interest:         interest,
			Detail:           interestDetail(loan.Outstanding, loan.Scheme, loan.ManualRate, interest),
		})
		preview.TotalInterest = preview.TotalInterest.Add(interest)
	}
	return preview, nil
}

// PostingResult summarizes a completed monthly interest posting.
type PostingResult struct {
	Month          util.MonthKey   `json:"month"`
	LoansProcessed int             `json:"loansProcessed"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	PostingDate    time.Time       `json:"postingDate"`
}

// PostMonthlyInterest appends one accrual row per active loan carrying a
// balance. When accruals already exist for the month the caller must pass
// force: duplicate postings are permitted but never silent.
//
// All rows for the batch are written in a single transaction, so a storage
// failure part-way leaves no accruals behind.
func (s *InterestService) PostMonthlyInterest(month util.MonthKey, force bool) (*PostingResult, error) {
	exists, err := s.accrualRepo.ExistsForMonth(month)
	if err != nil {
		return nil, err
	}
	if exists && !force {
		return nil, &domain.AccrualsPostedError{Month: month}
	}

	loans, err := s.loanRepo.ListActive()
	if err != nil {
		return nil, err
	}

	postingDate := time.Now().UTC().Truncate(24 * time.Hour)
	result := &PostingResult{Month: month, TotalInterest: decimal.Zero, PostingDate: postingDate}

	var batch []*domain.InterestAccrual
	for _, loan := range loans {
		// Fully repaid loans still count as processed but get no row.
		if loan.Outstanding.LessThanOrEqual(decimal.Zero) {
			result.LoansProcessed++
			continue
		}
		interest := ComputeMonthlyInterest(loan.Outstanding, loan.Scheme, loan.ManualRate).Round(2)
		if interest.GreaterThan(decimal.Zero) {
			batch = append(batch, &domain.InterestAccrual{
				LoanID:        loan.ID,
				AccrualMonth:  month,
				AccruedAmount: interest,
				AccrualDate:   postingDate,
			})
			result.TotalInterest = result.TotalInterest.Add(interest)
		}
		result.LoansProcessed++
	}

	if len(batch) > 0 {
		if err := s.accrualRepo.InsertBatch(batch); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// MissingAccrualMonths lists months since the first loan was issued, up to
// and including the previous month, that have no posted accruals. Used to
// warn operators before they run period reports on incomplete data.
func (s *InterestService) MissingAccrualMonths() ([]util.MonthKey, error) {
	earliest, err := s.loanRepo.EarliestLoanDate()
	if err != nil {
		return nil, err
	}
	if earliest == nil {
		return nil, nil
	}

	posted, err := s.accrualRepo.DistinctMonths()
	if err != nil {
		return nil, err
	}
	postedSet := make(map[util.MonthKey]bool, len(posted))
	for _, m := range posted {
		postedSet[m] = true
	}

	from := util.MonthKeyFromDate(*earliest)
	to := util.MonthKeyFromDate(time.Now().UTC()).Previous()

	var missing []util.MonthKey
	for _, m := range util.MonthsBetween(from, to) {
		if !postedSet[m] {
			missing = append(missing, m)
		}
	}
	return missing, nil
}

func interestDetail(balance decimal.Decimal, scheme domain.InterestScheme, manualRate, interest decimal.Decimal) string {
	if balance.LessThanOrEqual(decimal.Zero) {
		return "principal fully repaid - no interest"
	}
	switch scheme {
	case domain.SchemeProgressive:
		if balance.LessThanOrEqual(domain.ProgressiveTierLimit) {
			return fmt.Sprintf("%s x 2%% = %s", balance.StringFixed(2), interest.StringFixed(2))
		}
		excess := balance.Sub(domain.ProgressiveTierLimit)
		return fmt.Sprintf("%s x 2%% + %s x 3%% = %s",
			domain.ProgressiveTierLimit.StringFixed(2), excess.StringFixed(2), interest.StringFixed(2))
	case domain.SchemeFlat:
		return fmt.Sprintf("%s x %s%% = %s", balance.StringFixed(2), manualRate.String(), interest.StringFixed(2))
	default:
		return "no interest (0% rate)"
	}
}
