package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
)

func TestNewApplication(t *testing.T) {
	ownerID := uuid.New()

	t.Run("valid application", func(t *testing.T) {
		website := "https://acme.test"
		app, err := domain.NewApplication(domain.ApplicationParams{
			OwnerID:        ownerID,
			Company:        "Acme",
			CompanyWebsite: &website,
			Role:           "Backend Engineer",
			Status:         "Interview",
		})

		require.NoError(t, err)
		assert.Equal(t, ownerID, app.OwnerID)
		assert.Equal(t, "Acme", app.Company)
		assert.Equal(t, "Backend Engineer", app.Role)
		assert.Equal(t, "Interview", app.Status)
		assert.Equal(t, &website, app.CompanyWebsite)
		assert.False(t, app.CreatedAt.IsZero())
		assert.Equal(t, app.CreatedAt, app.UpdatedAt)
	})

	t.Run("empty status defaults to Applied", func(t *testing.T) {
		app, err := domain.NewApplication(domain.ApplicationParams{
			OwnerID: ownerID,
			Company: "Acme",
			Role:    "Backend Engineer",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultStatusApplied, app.Status)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name    string
			params  domain.ApplicationParams
			wantErr error
		}{
			{
				name:    "missing company",
				params:  domain.ApplicationParams{OwnerID: ownerID, Role: "Engineer"},
				wantErr: apperrors.ErrCompanyRequired,
			},
			{
				name: "company too long",
				params: domain.ApplicationParams{
					OwnerID: ownerID,
					Company: strings.Repeat("a", domain.MaxCompanyLength+1),
					Role:    "Engineer",
				},
				wantErr: apperrors.ErrCompanyTooLong,
			},
			{
				name:    "missing role",
				params:  domain.ApplicationParams{OwnerID: ownerID, Company: "Acme"},
				wantErr: apperrors.ErrRoleRequired,
			},
			{
				name: "role too long",
				params: domain.ApplicationParams{
					OwnerID: ownerID,
					Company: "Acme",
					Role:    strings.Repeat("a", domain.MaxRoleLength+1),
				},
				wantErr: apperrors.ErrRoleTooLong,
			},
			{
				name: "status too long",
				params: domain.ApplicationParams{
					OwnerID: ownerID,
					Company: "Acme",
					Role:    "Engineer",
					Status:  strings.Repeat("a", domain.MaxStatusLength+1),
				},
				wantErr: apperrors.ErrStatusTooLong,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				app, err := domain.NewApplication(tt.params)
				assert.Nil(t, app)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestApplicationIsOwnedBy(t *testing.T) {
	ownerID := uuid.New()
	app := &domain.Application{OwnerID: ownerID}

	assert.True(t, app.IsOwnedBy(ownerID))
	assert.False(t, app.IsOwnedBy(uuid.New()))
}
