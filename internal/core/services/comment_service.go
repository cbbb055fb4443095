package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// RecentCommentsLimit bounds the owner's recent-comments widget.
const RecentCommentsLimit = 10

// CommentService implements the business logic for visitor comments.
type CommentService struct {
	commentRepo ports.CommentRepository
	appRepo     ports.ApplicationRepository
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

var _ ports.CommentService = (*CommentService)(nil)

// NewCommentService creates a new service for comment logic.
func NewCommentService(
	commentRepo ports.CommentRepository,
	appRepo ports.ApplicationRepository,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		appRepo:     appRepo,
		publisher:   publisher,
		logger:      logger.With("component", "comment_service"),
	}
}

// CreateComment adds a visitor comment to a public application. The
// application summary is fetched first so the published event carries the
// company/role context subscribers need; the event itself is published only
// after the comment insert is acknowledged.
func (s *CommentService) CreateComment(ctx context.Context, params ports.CreateCommentParams) (*domain.Comment, error) {
	summary, err := s.appRepo.GetSummary(ctx, params.ApplicationID)
	if err != nil {
		return nil, err
	}

	comment, err := domain.NewComment(domain.CommentParams{
		ApplicationID: params.ApplicationID,
		VisitorName:   params.VisitorName,
		Content:       params.Content,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.CommentCreated{
		ID:            created.ID,
		ApplicationID: created.ApplicationID,
		VisitorName:   created.VisitorName,
		Company:       summary.Company,
		Role:          summary.Role,
	})

	return created, nil
}

// ListForApplication retrieves the comments on one application, newest first.
func (s *CommentService) ListForApplication(ctx context.Context, applicationID uuid.UUID) ([]*domain.Comment, error) {
	return s.commentRepo.ListByApplicationID(ctx, applicationID)
}

// RecentForOwner retrieves the newest comments across the owner's pipeline.
func (s *CommentService) RecentForOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.CommentWithContext, error) {
	return s.commentRepo.ListRecentForOwner(ctx, ownerID, RecentCommentsLimit)
}
