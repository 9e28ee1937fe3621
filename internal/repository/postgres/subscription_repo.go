package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// SubscriptionRepository implements domain.SubscriptionRepository using
// PostgreSQL
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	var month string
	var amount pgtype.Numeric
	if err := row.Scan(&s.ID, &s.MemberID, &month, &amount, &s.PaymentDate, &s.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	key, err := util.ParseMonthKey(month)
	if err != nil {
		return nil, err
	}
	s.Month = key
	s.Amount = pgNumericToDecimal(amount)
	return &s, nil
}

// Create inserts a subscription payment
func (r *SubscriptionRepository) Create(sub *domain.Subscription) (*domain.Subscription, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(sub.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (member_id, month, amount, payment_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, member_id, month, amount, payment_date, created_at`,
		sub.MemberID, sub.Month.String(), amount, sub.PaymentDate)
	return scanSubscription(row)
}

// GetByID retrieves a subscription by id
func (r *SubscriptionRepository) GetByID(id int32) (*domain.Subscription, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT id, member_id, month, amount, payment_date, created_at
		FROM subscriptions WHERE id = $1`, id)
	return scanSubscription(row)
}

// Exists reports whether the member already paid for the month
func (r *SubscriptionRepository) Exists(memberID int32, month util.MonthKey) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE member_id = $1 AND month = $2)`,
		memberID, month.String()).Scan(&exists)
	return exists, err
}

func (r *SubscriptionRepository) listWithMembers(where string, args ...any) ([]*domain.SubscriptionWithMember, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.member_id, s.month, s.amount, s.payment_date, s.created_at, m.name
		FROM subscriptions s
		JOIN members m ON m.id = s.member_id
		`+where+`
		ORDER BY s.payment_date, s.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.SubscriptionWithMember
	for rows.Next() {
		var sm domain.SubscriptionWithMember
		var month string
		var amount pgtype.Numeric
		if err := rows.Scan(&sm.ID, &sm.MemberID, &month, &amount, &sm.PaymentDate, &sm.CreatedAt, &sm.MemberName); err != nil {
			return nil, err
		}
		key, err := util.ParseMonthKey(month)
		if err != nil {
			return nil, err
		}
		sm.Month = key
		sm.Amount = pgNumericToDecimal(amount)
		subs = append(subs, &sm)
	}
	return subs, rows.Err()
}

// ListByMonth lists subscriptions paid for a month
func (r *SubscriptionRepository) ListByMonth(month util.MonthKey) ([]*domain.SubscriptionWithMember, error) {
	return r.listWithMembers(`WHERE s.month = $1`, month.String())
}

// ListInRange lists subscriptions paid inside the inclusive date range
func (r *SubscriptionRepository) ListInRange(rng util.DateRange) ([]*domain.SubscriptionWithMember, error) {
	return r.listWithMembers(`WHERE s.payment_date BETWEEN $1 AND $2`, rng.From, rng.To)
}

// SumUpTo totals subscriptions paid on or before the date
func (r *SubscriptionRepository) SumUpTo(date time.Time) (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM subscriptions WHERE payment_date <= $1`,
		date).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// SumAll totals every subscription ever paid
func (r *SubscriptionRepository) SumAll() (decimal.Decimal, error) {
	ctx := context.Background()
	var total pgtype.Numeric
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM subscriptions`).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// MemberIDsForMonth lists members who paid for the month
func (r *SubscriptionRepository) MemberIDsForMonth(month util.MonthKey) (map[int32]bool, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT member_id FROM subscriptions WHERE month = $1`, month.String())
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

// Delete removes a subscription record
func (r *SubscriptionRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}
