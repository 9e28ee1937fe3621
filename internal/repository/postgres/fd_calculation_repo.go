package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// FDCalculationRepository implements domain.FDCalculationRepository using
// PostgreSQL
type FDCalculationRepository struct {
	pool *pgxpool.Pool
}

// NewFDCalculationRepository creates a new FDCalculationRepository
func NewFDCalculationRepository(pool *pgxpool.Pool) *FDCalculationRepository {
	return &FDCalculationRepository{pool: pool}
}

// ExistsForQuarter reports whether the quarter has posted rows
func (r *FDCalculationRepository) ExistsForQuarter(year int, quarter string) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fd_interest_calculations WHERE year = $1 AND quarter = $2)`,
		year, quarter).Scan(&exists)
	return exists, err
}

// ReplaceForQuarter swaps the quarter's rows for the given set in one
// transaction. A posted quarter is replaced whole, never merged.
func (r *FDCalculationRepository) ReplaceForQuarter(year int, quarter string, calcRows []*domain.FDInterestCalculation) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM fd_interest_calculations WHERE year = $1 AND quarter = $2`,
		year, quarter); err != nil {
		return err
	}

	for _, c := range calcRows {
		opening, err := decimalToPgNumeric(c.OpeningBalance)
		if err != nil {
			return err
		}
		earned, err := decimalToPgNumeric(c.InterestEarned)
		if err != nil {
			return err
		}
		closing, err := decimalToPgNumeric(c.ClosingBalance)
		if err != nil {
			return err
		}
		subs, err := decimalToPgNumeric(c.TotalSubscriptions)
		if err != nil {
			return err
		}
		fdBalance, err := decimalToPgNumeric(c.TotalFDBalance)
		if err != nil {
			return err
		}
		loanInterest, err := decimalToPgNumeric(c.TotalLoanInterest)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO fd_interest_calculations
				(fd_id, year, quarter, opening_balance, interest_earned, closing_balance,
				 total_subscriptions, total_fd_balance, total_loan_interest, calculation_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			c.FDID, c.Year, c.Quarter, opening, earned, closing,
			subs, fdBalance, loanInterest, c.CalculationDate); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SumPriorInterest totals one deposit's earnings in quarters strictly before
// (year, quarter). Quarter labels sort lexicographically in quarter order.
func (r *FDCalculationRepository) SumPriorInterest(fdID int32, year int, quarter string) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(interest_earned), 0)
		FROM fd_interest_calculations
		WHERE fd_id = $1 AND (year < $2 OR (year = $2 AND quarter < $3))`,
		fdID, year, quarter).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumEarnedInRange totals interest posted with a calculation date inside the
// inclusive range
func (r *FDCalculationRepository) SumEarnedInRange(rng util.DateRange) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(interest_earned), 0)
		FROM fd_interest_calculations
		WHERE calculation_date BETWEEN $1 AND $2`,
		rng.From, rng.To).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumEarned totals all posted deposit interest
func (r *FDCalculationRepository) SumEarned() (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(interest_earned), 0) FROM fd_interest_calculations`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// ListQuarterSummaries aggregates posted quarters, newest first
func (r *FDCalculationRepository) ListQuarterSummaries() ([]*domain.QuarterSummary, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT year, quarter, COUNT(*), COALESCE(SUM(interest_earned), 0), MAX(calculation_date)
		FROM fd_interest_calculations
		GROUP BY year, quarter
		ORDER BY year DESC, quarter DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*domain.QuarterSummary
	for rows.Next() {
		var s domain.QuarterSummary
		var total pgtype.Numeric
		if err := rows.Scan(&s.Year, &s.Quarter, &s.DepositCount, &total, &s.CalculationDate); err != nil {
			return nil, err
		}
		s.TotalInterest = pgNumericToDecimal(total)
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}
