package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
)

func TestCommentRepository_CreateList(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	owner := createTestUser(t)
	app := createTestApplication(t, owner.ID, "Acme Oy", "Backend Engineer")

	first, err := repo.Create(ctx, &domain.Comment{
		ApplicationID: app.ID,
		VisitorName:   "Maija",
		Content:       "Good luck!",
	})
	require.NoError(t, err)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := repo.Create(ctx, &domain.Comment{
		ApplicationID: app.ID,
		VisitorName:   "Pekka",
		Content:       "Fingers crossed",
	})
	require.NoError(t, err)

	comments, err := repo.ListByApplicationID(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	// Newest first.
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)
}

func TestCommentRepository_ListRecentForOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	owner := createTestUser(t)
	other := createTestUser(t)

	ownApp := createTestApplication(t, owner.ID, "Acme Oy", "Backend Engineer")
	otherApp := createTestApplication(t, other.ID, "Globex", "Platform Engineer")

	_, err := repo.Create(ctx, &domain.Comment{
		ApplicationID: ownApp.ID,
		VisitorName:   "Maija",
		Content:       "On my pipeline",
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Comment{
		ApplicationID: otherApp.ID,
		VisitorName:   "Pekka",
		Content:       "On someone else's pipeline",
	})
	require.NoError(t, err)

	recent, err := repo.ListRecentForOwner(ctx, owner.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1, "only the owner's applications contribute")
	assert.Equal(t, "Maija", recent[0].VisitorName)
	assert.Equal(t, "Acme Oy", recent[0].Company)
	assert.Equal(t, "Backend Engineer", recent[0].Role)
}

func TestCommentRepository_ListRecentForOwner_Limit(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	owner := createTestUser(t)
	app := createTestApplication(t, owner.ID, "Acme Oy", "Backend Engineer")

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, &domain.Comment{
			ApplicationID: app.ID,
			VisitorName:   "Maija",
			Content:       "hello",
		})
		require.NoError(t, err)
	}

	recent, err := repo.ListRecentForOwner(ctx, owner.ID, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestCommentRepository_CommentCountOnApplication(t *testing.T) {
	ctx := context.Background()
	commentRepo := NewCommentRepository(testPool)
	appRepo := NewApplicationRepository(testPool)
	owner := createTestUser(t)
	app := createTestApplication(t, owner.ID, "Acme Oy", "Backend Engineer")

	_, err := commentRepo.Create(ctx, &domain.Comment{
		ApplicationID: app.ID,
		VisitorName:   "Maija",
		Content:       "hello",
	})
	require.NoError(t, err)

	found, err := appRepo.GetForOwner(ctx, app.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.CommentCount)
}
