package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanchaya/society-backend/internal/domain"
)

// QuarterRepository implements domain.QuarterRepository using PostgreSQL.
// The quarter_settings table holds exactly four rows, seeded by migration.
type QuarterRepository struct {
	pool *pgxpool.Pool
}

// NewQuarterRepository creates a new QuarterRepository
func NewQuarterRepository(pool *pgxpool.Pool) *QuarterRepository {
	return &QuarterRepository{pool: pool}
}

// GetAll retrieves the four quarter settings in Q1..Q4 order
func (r *QuarterRepository) GetAll() ([]*domain.QuarterSetting, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT quarter, start_month, end_month, updated_at
		FROM quarter_settings
		ORDER BY quarter`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*domain.QuarterSetting
	for rows.Next() {
		var q domain.QuarterSetting
		if err := rows.Scan(&q.Quarter, &q.StartMonth, &q.EndMonth, &q.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, &q)
	}
	return settings, rows.Err()
}

// GetByName retrieves one quarter's setting
func (r *QuarterRepository) GetByName(name string) (*domain.QuarterSetting, error) {
	ctx := context.Background()
	var q domain.QuarterSetting
	err := r.pool.QueryRow(ctx, `
		SELECT quarter, start_month, end_month, updated_at
		FROM quarter_settings
		WHERE quarter = $1`, name).Scan(&q.Quarter, &q.StartMonth, &q.EndMonth, &q.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrQuarterNotFound
		}
		return nil, err
	}
	return &q, nil
}

// Update changes one quarter's boundaries
func (r *QuarterRepository) Update(setting *domain.QuarterSetting) (*domain.QuarterSetting, error) {
	ctx := context.Background()
	var q domain.QuarterSetting
	err := r.pool.QueryRow(ctx, `
		UPDATE quarter_settings
		SET start_month = $2, end_month = $3, updated_at = NOW()
		WHERE quarter = $1
		RETURNING quarter, start_month, end_month, updated_at`,
		setting.Quarter, setting.StartMonth, setting.EndMonth).Scan(&q.Quarter, &q.StartMonth, &q.EndMonth, &q.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrQuarterNotFound
		}
		return nil, err
	}
	return &q, nil
}
