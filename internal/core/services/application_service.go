package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// ApplicationService implements business logic for the application pipeline.
type ApplicationService struct {
	appRepo   ports.ApplicationRepository
	publisher ports.EventPublisher
	logger    *slog.Logger
}

var _ ports.ApplicationService = (*ApplicationService)(nil)

// NewApplicationService creates a new application service.
func NewApplicationService(
	appRepo ports.ApplicationRepository,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:   appRepo,
		publisher: publisher,
		logger:    logger.With("component", "application_service"),
	}
}

// Create handles the use case for tracking a new application.
func (s *ApplicationService) Create(ctx context.Context, params ports.CreateApplicationParams) (*domain.Application, error) {
	app, err := domain.NewApplication(domain.ApplicationParams{
		OwnerID:         params.OwnerID,
		Company:         params.Company,
		CompanyWebsite:  params.CompanyWebsite,
		Role:            params.Role,
		Status:          params.Status,
		Salary:          params.Salary,
		ContactPerson:   params.ContactPerson,
		CVVersion:       params.CVVersion,
		CVPath:          params.CVPath,
		CoverLetter:     params.CoverLetter,
		CoverLetterPath: params.CoverLetterPath,
		LogoURL:         params.LogoURL,
		Description:     params.Description,
	})
	if err != nil {
		return nil, err
	}
	return s.appRepo.Create(ctx, app)
}

// Get retrieves one application scoped to its owner.
func (s *ApplicationService) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Application, error) {
	return s.appRepo.GetForOwner(ctx, id, ownerID)
}

// List retrieves the owner's pipeline, newest first.
func (s *ApplicationService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error) {
	return s.appRepo.ListByOwner(ctx, ownerID)
}

// Update applies a partial update. On successful commit it publishes exactly
// one ApplicationStatusUpdated event; the publish happens strictly after the
// store acknowledged the write and its outcome never affects the caller,
// since the live feed is a secondary effect of an already committed mutation.
func (s *ApplicationService) Update(ctx context.Context, id, ownerID uuid.UUID, params ports.UpdateApplicationParams) (*domain.Application, error) {
	app, err := s.appRepo.Update(ctx, id, ownerID, params)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.ApplicationStatusUpdated{
		ID:      app.ID,
		Company: app.Company,
		Status:  app.Status,
	})

	return app, nil
}

// Delete removes an application owned by the caller.
func (s *ApplicationService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.appRepo.Delete(ctx, id, ownerID)
}

// Stats aggregates the owner's dashboard charts.
func (s *ApplicationService) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.DashboardStats, error) {
	daily, err := s.appRepo.DailyActivity(ctx, ownerID, 30)
	if err != nil {
		return nil, err
	}
	distribution, err := s.appRepo.StatusDistribution(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		DailyActivity:      daily,
		StatusDistribution: distribution,
	}, nil
}

// ListPublic returns the trimmed pipeline shown to visitors.
func (s *ApplicationService) ListPublic(ctx context.Context) ([]*domain.PublicApplication, error) {
	return s.appRepo.ListPublic(ctx)
}

// GetPublicDetail returns the public detail view of one application.
func (s *ApplicationService) GetPublicDetail(ctx context.Context, id uuid.UUID) (*domain.PublicApplicationDetail, error) {
	return s.appRepo.GetPublicDetail(ctx, id)
}
