package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
)

// UserRepository persists owner accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// VerifyByToken marks the matching account verified and clears the
	// token. Returns ErrInvalidVerificationToken when nothing matches.
	VerifyByToken(ctx context.Context, token string) error
}

// ApplicationSummary is the denormalized slice of an application needed to
// build a live-feed event without a second query afterwards.
type ApplicationSummary struct {
	ID      uuid.UUID
	Company string
	Role    string
	Status  string
}

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) (*domain.Application, error)
	// GetForOwner fetches an application scoped to its owner.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Application, error)
	// GetSummary fetches the event context for any application, no owner scoping.
	GetSummary(ctx context.Context, id uuid.UUID) (*ApplicationSummary, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error)
	// Update applies a partial update (nil fields keep their stored value)
	// and returns the updated row, or ErrApplicationNotFound.
	Update(ctx context.Context, id, ownerID uuid.UUID, params UpdateApplicationParams) (*domain.Application, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	ListPublic(ctx context.Context) ([]*domain.PublicApplication, error)
	GetPublicDetail(ctx context.Context, id uuid.UUID) (*domain.PublicApplicationDetail, error)
	DailyActivity(ctx context.Context, ownerID uuid.UUID, days int) ([]domain.DailyCount, error)
	StatusDistribution(ctx context.Context, ownerID uuid.UUID) ([]domain.StatusCount, error)
}

// UpdateApplicationParams is the partial-update shape: nil means "leave as is".
type UpdateApplicationParams struct {
	Company         *string
	CompanyWebsite  *string
	Role            *string
	Status          *string
	Salary          *string
	ContactPerson   *string
	CVVersion       *string
	CVPath          *string
	CoverLetter     *string
	CoverLetterPath *string
	LogoURL         *string
	Description     *string
}

// CommentRepository persists visitor comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	ListByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*domain.Comment, error)
	// ListRecentForOwner returns the owner's newest comments joined with
	// company/role context.
	ListRecentForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.CommentWithContext, error)
}

// VisitorRepository persists visit accounting rows keyed by identity hash.
type VisitorRepository interface {
	// Upsert atomically inserts a first-visit row or increments the
	// existing one, returning the record after the write.
	Upsert(ctx context.Context, ipHash string, now time.Time) (*domain.VisitorRecord, error)
	// AnySeenSince reports whether any visitor has been seen at or after
	// the given instant.
	AnySeenSince(ctx context.Context, since time.Time) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	CountSeenSince(ctx context.Context, since time.Time) (int64, error)
}
