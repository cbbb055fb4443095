package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

type VisitorRepository struct {
	pool *pgxpool.Pool
}

var _ ports.VisitorRepository = (*VisitorRepository)(nil)

func NewVisitorRepository(pool *pgxpool.Pool) *VisitorRepository {
	return &VisitorRepository{pool: pool}
}

// Upsert relies on the ON CONFLICT clause so concurrent visits from the same
// identity serialize inside Postgres instead of racing in application code.
func (r *VisitorRepository) Upsert(ctx context.Context, ipHash string, now time.Time) (*domain.VisitorRecord, error) {
	const query = `
		INSERT INTO visitors (ip_hash, visit_count, first_seen_at, last_seen_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (ip_hash) DO UPDATE
		SET visit_count = visitors.visit_count + 1,
		    last_seen_at = EXCLUDED.last_seen_at
		RETURNING ip_hash, visit_count, first_seen_at, last_seen_at`

	var rec domain.VisitorRecord
	err := r.pool.QueryRow(ctx, query, ipHash, now).
		Scan(&rec.IPHash, &rec.VisitCount, &rec.FirstSeenAt, &rec.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *VisitorRepository) AnySeenSince(ctx context.Context, since time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM visitors WHERE last_seen_at >= $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *VisitorRepository) CountAll(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM visitors`

	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VisitorRepository) CountSeenSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM visitors WHERE last_seen_at >= $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
