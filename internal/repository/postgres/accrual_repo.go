package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// AccrualRepository implements domain.AccrualRepository using PostgreSQL
type AccrualRepository struct {
	pool *pgxpool.Pool
}

// NewAccrualRepository creates a new AccrualRepository
func NewAccrualRepository(pool *pgxpool.Pool) *AccrualRepository {
	return &AccrualRepository{pool: pool}
}

// InsertBatch writes a posting run's accrual rows in one transaction. A
// failure on any row rolls back the whole run.
func (r *AccrualRepository) InsertBatch(accruals []*domain.InterestAccrual) error {
	if len(accruals) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, a := range accruals {
		amount, err := decimalToPgNumeric(a.AccruedAmount)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO interest_accruals (loan_id, accrual_month, accrued_amount, accrual_date)
			VALUES ($1, $2, $3, $4)`,
			a.LoanID, a.AccrualMonth.String(), amount, a.AccrualDate); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ExistsForMonth reports whether any accrual was posted for the month
func (r *AccrualRepository) ExistsForMonth(month util.MonthKey) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM interest_accruals WHERE accrual_month = $1)`,
		month.String()).Scan(&exists)
	return exists, err
}

// ListByLoan retrieves a loan's accruals in month order
func (r *AccrualRepository) ListByLoan(loanID int32) ([]*domain.InterestAccrual, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id, loan_id, accrual_month, accrued_amount, accrual_date, created_at
		FROM interest_accruals
		WHERE loan_id = $1
		ORDER BY accrual_month, id`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accruals []*domain.InterestAccrual
	for rows.Next() {
		var a domain.InterestAccrual
		var month string
		var amount pgtype.Numeric
		if err := rows.Scan(&a.ID, &a.LoanID, &month, &amount, &a.AccrualDate, &a.CreatedAt); err != nil {
			return nil, err
		}
		key, err := util.ParseMonthKey(month)
		if err != nil {
			return nil, err
		}
		a.AccrualMonth = key
		a.AccruedAmount = pgNumericToDecimal(amount)
		accruals = append(accruals, &a)
	}
	return accruals, rows.Err()
}

// SumByLoan totals the interest accrued on a loan
func (r *AccrualRepository) SumByLoan(loanID int32) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(accrued_amount), 0) FROM interest_accruals WHERE loan_id = $1`,
		loanID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumInRange totals accruals with an accrual date inside the inclusive range
func (r *AccrualRepository) SumInRange(rng util.DateRange) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(accrued_amount), 0) FROM interest_accruals WHERE accrual_date BETWEEN $1 AND $2`,
		rng.From, rng.To).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// DistinctMonths lists every month with at least one accrual
func (r *AccrualRepository) DistinctMonths() ([]util.MonthKey, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT accrual_month FROM interest_accruals ORDER BY accrual_month`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []util.MonthKey
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, err
		}
		key, err := util.ParseMonthKey(month)
		if err != nil {
			return nil, err
		}
		months = append(months, key)
	}
	return months, rows.Err()
}
