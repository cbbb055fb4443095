package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
)

func testHash() string {
	return domain.HashVisitorIdentity(uuid.NewString(), "test-salt")
}

func TestVisitorRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(testPool)
	hash := testHash()

	first := time.Now().UTC().Truncate(time.Microsecond)
	rec, err := repo.Upsert(ctx, hash, first)
	require.NoError(t, err)
	assert.Equal(t, hash, rec.IPHash)
	assert.Equal(t, int32(1), rec.VisitCount)
	assert.Equal(t, first, rec.FirstSeenAt.UTC())

	second := first.Add(time.Minute)
	rec, err = repo.Upsert(ctx, hash, second)
	require.NoError(t, err)
	assert.Equal(t, int32(2), rec.VisitCount)
	assert.Equal(t, first, rec.FirstSeenAt.UTC(), "first_seen_at never moves")
	assert.Equal(t, second, rec.LastSeenAt.UTC())
}

func TestVisitorRepository_Upsert_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(testPool)
	hash := testHash()

	const visits = 10
	var wg sync.WaitGroup
	for i := 0; i < visits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Upsert(ctx, hash, time.Now().UTC())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := repo.Upsert(ctx, hash, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int32(visits+1), rec.VisitCount, "every concurrent visit is counted exactly once")
}

func TestVisitorRepository_AnySeenSince(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(testPool)

	now := time.Now().UTC()
	_, err := repo.Upsert(ctx, testHash(), now)
	require.NoError(t, err)

	seen, err := repo.AnySeenSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = repo.AnySeenSince(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestVisitorRepository_Counts(t *testing.T) {
	ctx := context.Background()
	repo := NewVisitorRepository(testPool)

	before, err := repo.CountAll(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = repo.Upsert(ctx, testHash(), now)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, testHash(), now)
	require.NoError(t, err)

	after, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)

	today, err := repo.CountSeenSince(ctx, now.Add(-time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, today, int64(2))
}
