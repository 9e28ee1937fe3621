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

// DepositRepository implements domain.DepositRepository using PostgreSQL
type DepositRepository struct {
	pool *pgxpool.Pool
}

// NewDepositRepository creates a new DepositRepository
func NewDepositRepository(pool *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{pool: pool}
}

const depositColumns = `d.id, d.member_id, d.amount, d.tenure_months, d.deposit_date, d.maturity_date, d.status, d.created_at, d.updated_at`

func scanDeposit(row pgx.Row) (*domain.FixedDeposit, error) {
	var d domain.FixedDeposit
	var amount pgtype.Numeric
	if err := row.Scan(&d.ID, &d.MemberID, &amount, &d.TenureMonths,
		&d.DepositDate, &d.MaturityDate, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDepositNotFound
		}
		return nil, err
	}
	d.Amount = pgNumericToDecimal(amount)
	return &d, nil
}

// Create inserts a new fixed deposit
func (r *DepositRepository) Create(deposit *domain.FixedDeposit) (*domain.FixedDeposit, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(deposit.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO fixed_deposits AS d (member_id, amount, tenure_months, deposit_date, maturity_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+depositColumns,
		deposit.MemberID, amount, deposit.TenureMonths, deposit.DepositDate, deposit.MaturityDate, deposit.Status)
	return scanDeposit(row)
}

// GetByID retrieves a deposit by id
func (r *DepositRepository) GetByID(id int32) (*domain.FixedDeposit, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+depositColumns+` FROM fixed_deposits d WHERE d.id = $1`, id)
	return scanDeposit(row)
}

func (r *DepositRepository) listWithMembers(where string, args ...any) ([]*domain.DepositWithMember, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+depositColumns+`, m.name
		FROM fixed_deposits d
		JOIN members m ON m.id = d.member_id
		`+where+`
		ORDER BY d.deposit_date, d.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []*domain.DepositWithMember
	for rows.Next() {
		var dm domain.DepositWithMember
		var amount pgtype.Numeric
		if err := rows.Scan(&dm.ID, &dm.MemberID, &amount, &dm.TenureMonths,
			&dm.DepositDate, &dm.MaturityDate, &dm.Status, &dm.CreatedAt, &dm.UpdatedAt, &dm.MemberName); err != nil {
			return nil, err
		}
		dm.Amount = pgNumericToDecimal(amount)
		deposits = append(deposits, &dm)
	}
	return deposits, rows.Err()
}

// List retrieves all deposits with member names
func (r *DepositRepository) List() ([]*domain.DepositWithMember, error) {
	return r.listWithMembers("")
}

// ListActiveAsOf lists active deposits opened on or before the date
func (r *DepositRepository) ListActiveAsOf(date time.Time) ([]*domain.DepositWithMember, error) {
	return r.listWithMembers(`WHERE d.status = 'active' AND d.deposit_date <= $1`, date)
}

// SumPrincipal totals all deposit principal
func (r *DepositRepository) SumPrincipal() (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM fixed_deposits`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}
