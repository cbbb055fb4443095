package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
)

// Field length limits enforced at the domain boundary.
const (
	MaxCompanyLength     = 255
	MaxRoleLength        = 255
	MaxStatusLength      = 64
	MaxFreeTextLength    = 10000
	DefaultStatusApplied = "Applied"
)

// Application is the core domain entity: one tracked job application owned
// by the authenticated user. Status is a free-form label ("Applied",
// "Interview", "Rejected", ...) rather than a closed enum, matching how the
// kanban board on the frontend treats it.
type Application struct {
	ID              uuid.UUID
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
	CommentCount    int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplicationParams holds the validated input for creating an application.
type ApplicationParams struct {
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

// NewApplication is a factory function to create a valid new application.
func NewApplication(params ApplicationParams) (*Application, error) {
	if params.Company == "" {
		return nil, apperrors.ErrCompanyRequired
	}
	if len(params.Company) > MaxCompanyLength {
		return nil, apperrors.ErrCompanyTooLong
	}
	if params.Role == "" {
		return nil, apperrors.ErrRoleRequired
	}
	if len(params.Role) > MaxRoleLength {
		return nil, apperrors.ErrRoleTooLong
	}

	status := params.Status
	if status == "" {
		status = DefaultStatusApplied
	}
	if len(status) > MaxStatusLength {
		return nil, apperrors.ErrStatusTooLong
	}

	now := time.Now().UTC()
	return &Application{
		OwnerID:         params.OwnerID,
		Company:         params.Company,
		CompanyWebsite:  params.CompanyWebsite,
		Role:            params.Role,
		Status:          status,
		Salary:          params.Salary,
		ContactPerson:   params.ContactPerson,
		CVVersion:       params.CVVersion,
		CVPath:          params.CVPath,
		CoverLetter:     params.CoverLetter,
		CoverLetterPath: params.CoverLetterPath,
		LogoURL:         params.LogoURL,
		Description:     params.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsOwnedBy checks if the given user owns this application.
func (a *Application) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// PublicApplication is the trimmed view exposed to unauthenticated visitors
// on the public pipeline page.
type PublicApplication struct {
	ID             uuid.UUID
	Company        string
	CompanyWebsite *string
	Role           string
	Status         string
	LogoURL        *string
	CreatedAt      time.Time
}

// PublicApplicationDetail is the public detail view. It includes the cover
// letter and CV path the owner chose to publish, but never contact or salary
// negotiation notes.
type PublicApplicationDetail struct {
	ID             uuid.UUID
	Company        string
	CompanyWebsite *string
	Role           string
	Status         string
	Salary         *string
	CoverLetter    *string
	CVPath         *string
	LogoURL        *string
	Description    *string
	CreatedAt      time.Time
}

// DailyCount is one day of application activity for the dashboard chart.
type DailyCount struct {
	Date  string
	Count int64
}

// StatusCount is one slice of the status distribution chart.
type StatusCount struct {
	Status string
	Count  int64
}

// DashboardStats aggregates the owner's dashboard charts.
type DashboardStats struct {
	DailyActivity      []DailyCount
	StatusDistribution []StatusCount
}
