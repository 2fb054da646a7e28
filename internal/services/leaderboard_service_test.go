package services

import (
	"context"
	"testing"
	"time"

	"merithub/internal/config"
	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		CertificatePrefix:       "MHC",
		CertificateSeqDigits:    5,
		VerificationCodeLength:  12,
		VerificationCodeRetries: 5,
		ReviewCountWeight:       10,
		ReviewQualityWeight:     5,
		PublicationWeight:       10,
		EditedIssueWeight:       10,
		TurnaroundBaseline:      30,
	}
}

func newLeaderboardServiceForTest(activities *fakeActivityRepository, snapshots *fakeLeaderboardRepository) LeaderboardService {
	return NewLeaderboardService(
		activities, snapshots,
		newFakeJournalRepository(testJournal()),
		newFakeCache(), testEngineConfig(), time.Minute, zap.NewNop(),
	)
}

func at(t time.Time) *time.Time { return &t }

func TestNormalizePeriodEnd(t *testing.T) {
	midMarch := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	assert.Equal(t,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		normalizePeriodEnd(models.PeriodMonthly, midMarch))
	assert.Equal(t,
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		normalizePeriodEnd(models.PeriodQuarterly, midMarch))
	assert.Equal(t,
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		normalizePeriodEnd(models.PeriodYearly, midMarch))
	assert.Equal(t, allTimePeriodEnd,
		normalizePeriodEnd(models.PeriodAllTime, midMarch))

	// Every instant inside the same period addresses the same snapshot.
	assert.Equal(t,
		normalizePeriodEnd(models.PeriodMonthly, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		normalizePeriodEnd(models.PeriodMonthly, time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)))
}

func TestPeriodWindowIsHalfOpen(t *testing.T) {
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	since, until := periodWindow(models.PeriodMonthly, end)
	require.NotNil(t, since)
	require.NotNil(t, until)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *since)
	assert.Equal(t, end, *until)

	since, until = periodWindow(models.PeriodAllTime, allTimePeriodEnd)
	assert.Nil(t, since)
	assert.Nil(t, until)
}

func TestLeaderboardRankingOrderAndDenseRanks(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	activities := newFakeActivityRepository()
	activities.setListing(
		// Same score as profile 2, lower quality: ranks below it.
		&models.MetricBundle{ProfileID: 1, ReviewsCompleted: 10, AvgQualityScore: 0, FirstActivityAt: at(early)},
		&models.MetricBundle{ProfileID: 2, ReviewsCompleted: 9, AvgQualityScore: 2, FirstActivityAt: at(late)},
		// Top score.
		&models.MetricBundle{ProfileID: 3, ReviewsCompleted: 20, AvgQualityScore: 4, FirstActivityAt: at(late)},
		// Zero score: excluded.
		&models.MetricBundle{ProfileID: 4},
		// Ties with profile 2 on every metric except profile ID.
		&models.MetricBundle{ProfileID: 5, ReviewsCompleted: 9, AvgQualityScore: 2, FirstActivityAt: at(late)},
	)

	service := newLeaderboardServiceForTest(activities, newFakeLeaderboardRepository())

	snapshot, err := service.Rebuild(context.Background(), &GetLeaderboardRequest{
		Category: models.CategoryReviewer,
		Period:   models.PeriodAllTime,
	})
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 4)

	// score(1) = 100, score(2) = score(5) = 100, score(3) = 220.
	assert.Equal(t, int64(3), snapshot.Entries[0].ProfileID)
	assert.Equal(t, int64(2), snapshot.Entries[1].ProfileID, "higher quality wins the score tie")
	assert.Equal(t, int64(5), snapshot.Entries[2].ProfileID, "lower profile ID wins the full tie")
	assert.Equal(t, int64(1), snapshot.Entries[3].ProfileID)

	for i, entry := range snapshot.Entries {
		assert.Equal(t, i+1, entry.Rank, "ranks are dense with no gaps")
	}
}

func TestLeaderboardGetBuildsMissingSnapshot(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		&models.MetricBundle{ProfileID: 1, ReviewsCompleted: 3, FirstActivityAt: at(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))},
	)
	snapshots := newFakeLeaderboardRepository()
	service := newLeaderboardServiceForTest(activities, snapshots)

	req := &GetLeaderboardRequest{
		Category: models.CategoryReviewer,
		Period:   models.PeriodAllTime,
	}

	snapshot, err := service.Get(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 1)
	assert.Equal(t, 1, snapshots.replaced, "first read materializes the snapshot")

	_, err = service.Get(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshots.replaced, "second read serves the stored snapshot")
}

func TestLeaderboardLimitTruncatesView(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		&models.MetricBundle{ProfileID: 1, Citations: 30},
		&models.MetricBundle{ProfileID: 2, Citations: 20},
		&models.MetricBundle{ProfileID: 3, Citations: 10},
	)
	snapshots := newFakeLeaderboardRepository()
	service := newLeaderboardServiceForTest(activities, snapshots)

	snapshot, err := service.Rebuild(context.Background(), &GetLeaderboardRequest{
		Category: models.CategoryCitations,
		Period:   models.PeriodAllTime,
		Limit:    2,
	})
	require.NoError(t, err)
	assert.Len(t, snapshot.Entries, 2, "limit truncates the returned view")

	stored, err := snapshots.GetSnapshot(context.Background(),
		models.CategoryCitations, models.PeriodAllTime, allTimePeriodEnd, models.Scope{})
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 3, "the stored snapshot keeps every entry")
}

func TestLeaderboardRejectsUnknownCategoryAndScope(t *testing.T) {
	service := newLeaderboardServiceForTest(newFakeActivityRepository(), newFakeLeaderboardRepository())

	_, err := service.Get(context.Background(), &GetLeaderboardRequest{
		Category: "NONSENSE",
		Period:   models.PeriodAllTime,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	badJournal := int64(999)
	_, err = service.Get(context.Background(), &GetLeaderboardRequest{
		Category: models.CategoryReviewer,
		Period:   models.PeriodAllTime,
		Scope:    models.Scope{JournalID: &badJournal},
	})
	require.Error(t, err)
	assert.True(t, IsInvalidScopeError(err))
}
