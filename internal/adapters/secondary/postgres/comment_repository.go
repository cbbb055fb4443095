package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	const query = `
		INSERT INTO comments (application_id, visitor_name, content)
		VALUES ($1, $2, $3)
		RETURNING id, application_id, visitor_name, content, created_at`

	var c domain.Comment
	err := r.pool.QueryRow(ctx, query,
		comment.ApplicationID, comment.VisitorName, comment.Content).
		Scan(&c.ID, &c.ApplicationID, &c.VisitorName, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) ListByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*domain.Comment, error) {
	const query = `
		SELECT id, application_id, visitor_name, content, created_at
		FROM comments
		WHERE application_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.VisitorName,
			&c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) ListRecentForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.CommentWithContext, error) {
	const query = `
		SELECT c.id, c.application_id, c.visitor_name, c.content, c.created_at,
		       a.company, a.role
		FROM comments c
		JOIN applications a ON a.id = c.application_id
		WHERE a.owner_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.CommentWithContext{}
	for rows.Next() {
		var c domain.CommentWithContext
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.VisitorName,
			&c.Content, &c.CreatedAt, &c.Company, &c.Role); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
