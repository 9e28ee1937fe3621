package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// RepaymentRepository implements domain.RepaymentRepository using PostgreSQL.
// Repayment rows are written by LoanRepository.ApplyRepayment; this type only
// reads them.
type RepaymentRepository struct {
	pool *pgxpool.Pool
}

// NewRepaymentRepository creates a new RepaymentRepository
func NewRepaymentRepository(pool *pgxpool.Pool) *RepaymentRepository {
	return &RepaymentRepository{pool: pool}
}

// ListByLoan retrieves a loan's repayments in payment order
func (r *RepaymentRepository) ListByLoan(loanID int32) ([]*domain.Repayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_id, principal_amount, interest_amount, payment_date, created_at
		FROM repayments
		WHERE loan_id = $1
		ORDER BY payment_date, id`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repayments []*domain.Repayment
	for rows.Next() {
		var rep domain.Repayment
		var principal, interest pgtype.Numeric
		if err := rows.Scan(&rep.ID, &rep.LoanID, &principal, &interest, &rep.PaymentDate, &rep.CreatedAt); err != nil {
			return nil, err
		}
		rep.PrincipalAmount = pgNumericToDecimal(principal)
		rep.InterestAmount = pgNumericToDecimal(interest)
		repayments = append(repayments, &rep)
	}
	return repayments, rows.Err()
}

func (r *RepaymentRepository) sum(query string, args ...any) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumPrincipalByLoan totals the principal repaid on a loan
func (r *RepaymentRepository) SumPrincipalByLoan(loanID int32) (decimal.Decimal, error) {
	return r.sum(`SELECT COALESCE(SUM(principal_amount), 0) FROM repayments WHERE loan_id = $1`, loanID)
}

// SumInterestByLoan totals the interest paid on a loan
func (r *RepaymentRepository) SumInterestByLoan(loanID int32) (decimal.Decimal, error) {
	return r.sum(`SELECT COALESCE(SUM(interest_amount), 0) FROM repayments WHERE loan_id = $1`, loanID)
}

// SumInterestUpTo totals interest received on or before the date
func (r *RepaymentRepository) SumInterestUpTo(date time.Time) (decimal.Decimal, error) {
	return r.sum(`SELECT COALESCE(SUM(interest_amount), 0) FROM repayments WHERE payment_date <= $1`, date)
}

// SumInterestInRange totals interest received inside the inclusive range
func (r *RepaymentRepository) SumInterestInRange(rng util.DateRange) (decimal.Decimal, error) {
	return r.sum(`SELECT COALESCE(SUM(interest_amount), 0) FROM repayments WHERE payment_date BETWEEN $1 AND $2`,
		rng.From, rng.To)
}

// SumPrincipalInRange totals principal received inside the inclusive range
func (r *RepaymentRepository) SumPrincipalInRange(rng util.DateRange) (decimal.Decimal, error) {
	return r.sum(`SELECT COALESCE(SUM(principal_amount), 0) FROM repayments WHERE payment_date BETWEEN $1 AND $2`,
		rng.From, rng.To)
}

// LoanIDsWithInterestInMonth lists loans that paid any interest in the month
func (r *RepaymentRepository) LoanIDsWithInterestInMonth(month util.MonthKey) (map[int32]bool, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT loan_id FROM repayments
		WHERE interest_amount > 0 AND payment_date BETWEEN $1 AND $2`,
		month.FirstDay(), month.LastDay())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paid := make(map[int32]bool)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		paid[id] = true
	}
	return paid, rows.Err()
}
