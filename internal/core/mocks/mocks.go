package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) VerifyByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockApplicationRepository is a mock implementation of ports.ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{}
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Application, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) GetSummary(ctx context.Context, id uuid.UUID) (*ports.ApplicationSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ApplicationSummary), args.Error(1)
}

func (m *MockApplicationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Application, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) Update(ctx context.Context, id, ownerID uuid.UUID, params ports.UpdateApplicationParams) (*domain.Application, error) {
	args := m.Called(ctx, id, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockApplicationRepository) ListPublic(ctx context.Context) ([]*domain.PublicApplication, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PublicApplication), args.Error(1)
}

func (m *MockApplicationRepository) GetPublicDetail(ctx context.Context, id uuid.UUID) (*domain.PublicApplicationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublicApplicationDetail), args.Error(1)
}

func (m *MockApplicationRepository) DailyActivity(ctx context.Context, ownerID uuid.UUID, days int) ([]domain.DailyCount, error) {
	args := m.Called(ctx, ownerID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyCount), args.Error(1)
}

func (m *MockApplicationRepository) StatusDistribution(ctx context.Context, ownerID uuid.UUID) ([]domain.StatusCount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusCount), args.Error(1)
}

// MockCommentRepository is a mock implementation of ports.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	args := m.Called(ctx, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*domain.Comment, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListRecentForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.CommentWithContext, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommentWithContext), args.Error(1)
}

// MockVisitorRepository is a mock implementation of ports.VisitorRepository
type MockVisitorRepository struct {
	mock.Mock
}

func NewMockVisitorRepository() *MockVisitorRepository {
	return &MockVisitorRepository{}
}

func (m *MockVisitorRepository) Upsert(ctx context.Context, ipHash string, now time.Time) (*domain.VisitorRecord, error) {
	args := m.Called(ctx, ipHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VisitorRecord), args.Error(1)
}

func (m *MockVisitorRepository) AnySeenSince(ctx context.Context, since time.Time) (bool, error) {
	args := m.Called(ctx, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockVisitorRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVisitorRepository) CountSeenSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(event domain.Event) {
	m.Called(event)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}
