package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// CreateApplicationParams defines the input for creating an application.
type CreateApplicationParams struct {
	OwnerID         uuid.UUID
	Company         string
	CompanyWebsite  *string
	Role            string
	Status          string
	Salary          *string
	ContactPerson   *string
	CVVersion       *string
	CVPath          *string
	CoverLetter     *string
	CoverLetterPath *string
	LogoURL         *string
	Description     *string
}

// ApplicationService defines the core business operations for the pipeline.
type ApplicationService interface {
	Create(ctx context.Context, params CreateApplicationParams) (*domain.Application, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Application, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error)
	// Update applies a partial update and, on success, publishes an
	// ApplicationStatusUpdated event.
	Update(ctx context.Context, id, ownerID uuid.UUID, params UpdateApplicationParams) (*domain.Application, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*domain.DashboardStats, error)
	ListPublic(ctx context.Context) ([]*domain.PublicApplication, error)
	GetPublicDetail(ctx context.Context, id uuid.UUID) (*domain.PublicApplicationDetail, error)
}

// CreateCommentParams defines the input for creating a visitor comment.
type CreateCommentParams struct {
	ApplicationID uuid.UUID
	VisitorName   string
	Content       string
}

// CommentService defines the port for comment business logic.
type CommentService interface {
	// CreateComment persists the comment and, on success, publishes a
	// CommentCreated event.
	CreateComment(ctx context.Context, params CreateCommentParams) (*domain.Comment, error)
	ListForApplication(ctx context.Context, applicationID uuid.UUID) ([]*domain.Comment, error)
	RecentForOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.CommentWithContext, error)
}

// VisitorService defines the port for visit accounting.
type VisitorService interface {
	// RecordVisit upserts the caller's hashed identity and returns the
	// derived stats. Aggregate failures degrade to zero counts rather
	// than failing the call.
	RecordVisit(ctx context.Context, identity string) (*domain.VisitStats, error)
}

// EventPublisher is the publish side of the live-feed bus. Publish never
// blocks and never fails; producers treat delivery as best-effort.
type EventPublisher interface {
	Publish(event domain.Event)
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientEmail string
	Subject        string
	Message        string
}

// Notifier defines the port for sending out-of-band notifications
// (verification mails, contact-form deliveries).
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}
