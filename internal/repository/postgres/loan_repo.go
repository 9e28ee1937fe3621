package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// outstanding_amount is authoritative. The COALESCE over repayments exists
// only for rows migrated from the spreadsheet era that predate the column.
const loanColumns = `
	l.id, l.member_id, l.amount,
	COALESCE(l.outstanding_amount,
		l.amount - (SELECT COALESCE(SUM(rp.principal_amount), 0) FROM repayments rp WHERE rp.loan_id = l.id)),
	l.scheme, l.manual_rate, l.loan_date, l.status, l.created_at, l.updated_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	var amount, outstanding, rate pgtype.Numeric
	if err := row.Scan(&l.ID, &l.MemberID, &amount, &outstanding, &l.Scheme, &rate,
		&l.LoanDate, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	l.Amount = pgNumericToDecimal(amount)
	l.Outstanding = pgNumericToDecimal(outstanding)
	l.ManualRate = pgNumericToDecimal(rate)
	return &l, nil
}

// Create inserts a new loan
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(loan.Amount)
	if err != nil {
		return nil, err
	}
	outstanding, err := decimalToPgNumeric(loan.Outstanding)
	if err != nil {
		return nil, err
	}
	rate, err := decimalToPgNumeric(loan.ManualRate)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans AS l (member_id, amount, outstanding_amount, scheme, manual_rate, loan_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+loanColumns,
		loan.MemberID, amount, outstanding, loan.Scheme, rate, loan.LoanDate, loan.Status)
	return scanLoan(row)
}

// GetByID retrieves a loan by id
func (r *LoanRepository) GetByID(id int32) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans l WHERE l.id = $1`, id)
	return scanLoan(row)
}

// GetActiveByMember retrieves the member's active loan, if any
func (r *LoanRepository) GetActiveByMember(memberID int32) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+` FROM loans l
		WHERE l.member_id = $1 AND l.status = 'active'
		ORDER BY l.loan_date DESC
		LIMIT 1`, memberID)
	return scanLoan(row)
}

func (r *LoanRepository) listWithMembers(where string) ([]*domain.LoanWithMember, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`, m.name
		FROM loans l
		JOIN members m ON m.id = l.member_id
		`+where+`
		ORDER BY l.loan_date DESC, l.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.LoanWithMember
	for rows.Next() {
		var lm domain.LoanWithMember
		var amount, outstanding, rate pgtype.Numeric
		if err := rows.Scan(&lm.ID, &lm.MemberID, &amount, &outstanding, &lm.Scheme, &rate,
			&lm.LoanDate, &lm.Status, &lm.CreatedAt, &lm.UpdatedAt, &lm.MemberName); err != nil {
			return nil, err
		}
		lm.Amount = pgNumericToDecimal(amount)
		lm.Outstanding = pgNumericToDecimal(outstanding)
		lm.ManualRate = pgNumericToDecimal(rate)
		loans = append(loans, &lm)
	}
	return loans, rows.Err()
}

// ListActive retrieves active loans with member names
func (r *LoanRepository) ListActive() ([]*domain.LoanWithMember, error) {
	return r.listWithMembers(`WHERE l.status = 'active'`)
}

// List retrieves all loans with member names
func (r *LoanRepository) List() ([]*domain.LoanWithMember, error) {
	return r.listWithMembers("")
}

// ApplyTopUp grows amount and outstanding together. The status predicate
// makes a top-up racing a closing repayment fail rather than resurrect the
// loan.
func (r *LoanRepository) ApplyTopUp(id int32, extra decimal.Decimal) (*domain.Loan, error) {
	ctx := context.Background()

	pgExtra, err := decimalToPgNumeric(extra)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE loans AS l
		SET amount = amount + $2,
		    outstanding_amount = outstanding_amount + $2,
		    updated_at = NOW()
		WHERE l.id = $1 AND l.status = 'active'
		RETURNING `+loanColumns,
		id, pgExtra)
	loan, err := scanLoan(row)
	if err == domain.ErrLoanNotFound {
		return nil, domain.ErrLoanNotActive
	}
	return loan, err
}

// ApplyRepayment inserts the repayment and decrements the outstanding
// balance in one transaction. The outstanding-amount predicate re-checks the
// balance inside the transaction; losing the race returns
// ErrLoanConcurrentEdit instead of overdrawing.
func (r *LoanRepository) ApplyRepayment(rep *domain.Repayment) (*domain.Loan, error) {
	ctx := context.Background()

	principal, err := decimalToPgNumeric(rep.PrincipalAmount)
	if err != nil {
		return nil, err
	}
	interest, err := decimalToPgNumeric(rep.InterestAmount)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO repayments (loan_id, principal_amount, interest_amount, payment_date)
		VALUES ($1, $2, $3, $4)`,
		rep.LoanID, principal, interest, rep.PaymentDate); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE loans AS l
		SET outstanding_amount = outstanding_amount - $2,
		    status = CASE WHEN outstanding_amount - $2 <= 0 THEN 'closed' ELSE status END,
		    updated_at = NOW()
		WHERE l.id = $1 AND l.status = 'active' AND l.outstanding_amount >= $2
		RETURNING `+loanColumns,
		rep.LoanID, principal)
	loan, err := scanLoan(row)
	if err == domain.ErrLoanNotFound {
		// The loan existed when the service validated; the predicate failed.
		return nil, domain.ErrLoanConcurrentEdit
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return loan, nil
}

// EarliestLoanDate returns the date of the first loan ever issued, or nil
// when no loans exist.
func (r *LoanRepository) EarliestLoanDate() (*time.Time, error) {
	ctx := context.Background()
	var earliest pgtype.Date
	err := r.pool.QueryRow(ctx, `SELECT MIN(loan_date) FROM loans`).Scan(&earliest)
	if err != nil {
		return nil, err
	}
	if !earliest.Valid {
		return nil, nil
	}
	return &earliest.Time, nil
}
