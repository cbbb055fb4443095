package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ApplicationRepository = (*ApplicationRepository)(nil)

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
	a.id, a.owner_id, a.company, a.company_website, a.role, a.status,
	a.salary, a.contact_person, a.cv_version, a.cv_path,
	a.cover_letter, a.cover_letter_path, a.logo_url, a.description,
	(SELECT COUNT(*) FROM comments c WHERE c.application_id = a.id) AS comment_count,
	a.created_at, a.updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO applications (
				owner_id, company, company_website, role, status,
				salary, contact_person, cv_version, cv_path,
				cover_letter, cover_letter_path, logo_url, description
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING *
		)
		SELECT ` + applicationColumns + ` FROM inserted a`

	row := r.pool.QueryRow(ctx, query,
		app.OwnerID, app.Company, app.CompanyWebsite, app.Role, app.Status,
		app.Salary, app.ContactPerson, app.CVVersion, app.CVPath,
		app.CoverLetter, app.CoverLetterPath, app.LogoURL, app.Description)

	return scanApplication(row)
}

func (r *ApplicationRepository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications a
		WHERE a.id = $1 AND a.owner_id = $2`

	app, err := scanApplication(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) GetSummary(ctx context.Context, id uuid.UUID) (*ports.ApplicationSummary, error) {
	const query = `
		SELECT id, company, role, status
		FROM applications
		WHERE id = $1`

	var s ports.ApplicationSummary
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Company, &s.Role, &s.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ApplicationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications a
		WHERE a.owner_id = $1
		ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []*domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// updateAssignments maps the non-nil partial-update fields to SET clauses in
// a fixed column order so the generated SQL is deterministic.
func updateAssignments(params ports.UpdateApplicationParams) ([]string, []any) {
	fields := []struct {
		column string
		value  *string
	}{
		{"company", params.Company},
		{"company_website", params.CompanyWebsite},
		{"role", params.Role},
		{"status", params.Status},
		{"salary", params.Salary},
		{"contact_person", params.ContactPerson},
		{"cv_version", params.CVVersion},
		{"cv_path", params.CVPath},
		{"cover_letter", params.CoverLetter},
		{"cover_letter_path", params.CoverLetterPath},
		{"logo_url", params.LogoURL},
		{"description", params.Description},
	}

	var assignments []string
	var args []any
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		args = append(args, *f.value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}
	return assignments, args
}

func (r *ApplicationRepository) Update(ctx context.Context, id, ownerID uuid.UUID, params ports.UpdateApplicationParams) (*domain.Application, error) {
	assignments, args := updateAssignments(params)

	// A no-field update still bumps updated_at and returns the row, so the
	// caller gets a consistent read either way.
	assignments = append(assignments, "updated_at = NOW()")

	args = append(args, id, ownerID)
	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE applications
			SET %s
			WHERE id = $%d AND owner_id = $%d
			RETURNING *
		)
		SELECT `+applicationColumns+` FROM updated a`,
		strings.Join(assignments, ", "), len(args)-1, len(args))

	app, err := scanApplication(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	const query = `DELETE FROM applications WHERE id = $1 AND owner_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepository) ListPublic(ctx context.Context) ([]*domain.PublicApplication, error) {
	const query = `
		SELECT id, company, company_website, role, status, logo_url, created_at
		FROM applications
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []*domain.PublicApplication{}
	for rows.Next() {
		var a domain.PublicApplication
		if err := rows.Scan(&a.ID, &a.Company, &a.CompanyWebsite, &a.Role,
			&a.Status, &a.LogoURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, &a)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) GetPublicDetail(ctx context.Context, id uuid.UUID) (*domain.PublicApplicationDetail, error) {
	const query = `
		SELECT id, company, company_website, role, status, salary,
		       cover_letter, cv_path, logo_url, description, created_at
		FROM applications
		WHERE id = $1`

	var a domain.PublicApplicationDetail
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Company, &a.CompanyWebsite,
		&a.Role, &a.Status, &a.Salary, &a.CoverLetter, &a.CVPath, &a.LogoURL,
		&a.Description, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) DailyActivity(ctx context.Context, ownerID uuid.UUID, days int) ([]domain.DailyCount, error) {
	const query = `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM applications
		WHERE owner_id = $1 AND created_at >= NOW() - ($2 || ' days')::interval
		GROUP BY day
		ORDER BY day`

	rows, err := r.pool.Query(ctx, query, ownerID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []domain.DailyCount{}
	for rows.Next() {
		var c domain.DailyCount
		if err := rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *ApplicationRepository) StatusDistribution(ctx context.Context, ownerID uuid.UUID) ([]domain.StatusCount, error) {
	const query = `
		SELECT status, COUNT(*)
		FROM applications
		WHERE owner_id = $1
		GROUP BY status
		ORDER BY COUNT(*) DESC, status`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []domain.StatusCount{}
	for rows.Next() {
		var c domain.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Company, &a.CompanyWebsite,
		&a.Role, &a.Status, &a.Salary, &a.ContactPerson, &a.CVVersion,
		&a.CVPath, &a.CoverLetter, &a.CoverLetterPath, &a.LogoURL,
		&a.Description, &a.CommentCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
