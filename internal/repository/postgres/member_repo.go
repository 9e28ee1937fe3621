package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanchaya/society-backend/internal/domain"
)

// MemberRepository implements domain.MemberRepository using PostgreSQL
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, name, phone, subscription_amount, status, join_date, created_at, updated_at`

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	var phone pgtype.Text
	var amount pgtype.Numeric
	if err := row.Scan(&m.ID, &m.Name, &phone, &amount, &m.Status, &m.JoinDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	if phone.Valid {
		m.Phone = &phone.String
	}
	m.SubscriptionAmount = pgNumericToDecimal(amount)
	return &m, nil
}

// Create inserts a new member
func (r *MemberRepository) Create(member *domain.Member) (*domain.Member, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(member.SubscriptionAmount)
	if err != nil {
		return nil, err
	}
	phone := pgtype.Text{}
	if member.Phone != nil {
		phone.String = *member.Phone
		phone.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO members (name, phone, subscription_amount, status, join_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+memberColumns,
		member.Name, phone, amount, member.Status, member.JoinDate)
	return scanMember(row)
}

// GetByID retrieves a member by id
func (r *MemberRepository) GetByID(id int32) (*domain.Member, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

// List retrieves members, optionally filtered by status
func (r *MemberRepository) List(status *domain.MemberStatus) ([]*domain.Member, error) {
	ctx := context.Background()

	query := `SELECT ` + memberColumns + ` FROM members ORDER BY name`
	args := []any{}
	if status != nil {
		query = `SELECT ` + memberColumns + ` FROM members WHERE status = $1 ORDER BY name`
		args = append(args, *status)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Update edits a member's details
func (r *MemberRepository) Update(member *domain.Member) (*domain.Member, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(member.SubscriptionAmount)
	if err != nil {
		return nil, err
	}
	phone := pgtype.Text{}
	if member.Phone != nil {
		phone.String = *member.Phone
		phone.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE members
		SET name = $2, phone = $3, subscription_amount = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+memberColumns,
		member.ID, member.Name, phone, amount)
	return scanMember(row)
}

// UpdateStatus changes a member's status
func (r *MemberRepository) UpdateStatus(id int32, status domain.MemberStatus) (*domain.Member, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE members SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+memberColumns,
		id, status)
	return scanMember(row)
}
