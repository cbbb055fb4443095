package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/core/localtime"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// Clock abstracts wall-clock reads so the day-boundary logic is testable
// without real time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// VisitorService implements visit accounting with hashed-identity
// uniqueness detection. Visit recording is telemetry: aggregate reads are
// best-effort and degrade to zero instead of failing a page load.
type VisitorService struct {
	visitorRepo ports.VisitorRepository
	salt        string
	location    *time.Location
	clock       Clock
	logger      *slog.Logger
}

var _ ports.VisitorService = (*VisitorService)(nil)

// NewVisitorService creates a new visitor service. The location fixes the
// calendar-day boundary regardless of where the server runs.
func NewVisitorService(
	visitorRepo ports.VisitorRepository,
	salt string,
	location *time.Location,
	clock Clock,
	logger *slog.Logger,
) *VisitorService {
	return &VisitorService{
		visitorRepo: visitorRepo,
		salt:        salt,
		location:    location,
		clock:       clock,
		logger:      logger.With("component", "visitor_service"),
	}
}

// RecordVisit runs the visit-accounting sequence for one caller identity.
//
// The "anyone here today" check runs BEFORE the upsert so is_first_of_day
// reflects the table state prior to this request. Two near-simultaneous
// first visits of a day can therefore both observe false and both report
// is_first_of_day=true. The race is accepted; the flag drives a cosmetic
// banner, nothing authoritative.
func (s *VisitorService) RecordVisit(ctx context.Context, identity string) (*domain.VisitStats, error) {
	now := s.clock.Now()
	dayStart := localtime.StartOfDay(now, s.location)

	wasAnyoneHereToday, err := s.visitorRepo.AnySeenSince(ctx, dayStart)
	if err != nil {
		s.logger.Warn("first-of-day probe failed, treating day as empty", "error", err)
		wasAnyoneHereToday = false
	}

	ipHash := domain.HashVisitorIdentity(identity, s.salt)

	record, err := s.visitorRepo.Upsert(ctx, ipHash, now)
	if err != nil {
		return nil, err
	}

	total, err := s.visitorRepo.CountAll(ctx)
	if err != nil {
		s.logger.Warn("total visitor count failed, degrading to zero", "error", err)
		total = 0
	}
	today, err := s.visitorRepo.CountSeenSince(ctx, dayStart)
	if err != nil {
		s.logger.Warn("today visitor count failed, degrading to zero", "error", err)
		today = 0
	}

	return &domain.VisitStats{
		IsFirstVisit:        record.VisitCount == 1,
		IsFirstOfDay:        !wasAnyoneHereToday,
		TotalUniqueVisitors: total,
		TodayVisitors:       today,
	}, nil
}
