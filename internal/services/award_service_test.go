package services

import (
	"context"
	"testing"

	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAwardServiceForTest(activities *fakeActivityRepository, awards *fakeAwardRepository) AwardService {
	return NewAwardService(
		activities, awards,
		newFakeJournalRepository(testJournal()),
		nil, testEngineConfig(), zap.NewNop(),
	)
}

func TestAwardComputeSelectsBestReviewer(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		// 10*10 + 4*5 + (30-10) = 140.
		&models.MetricBundle{ProfileID: 1, ReviewsCompleted: 10, AvgQualityScore: 4, AvgTurnaroundDays: 10},
		// 12*10 + 3*5 + (30-25) = 140. Quality breaks the tie for profile 1.
		&models.MetricBundle{ProfileID: 2, ReviewsCompleted: 12, AvgQualityScore: 3, AvgTurnaroundDays: 25},
		// Ineligible: no reviews.
		&models.MetricBundle{ProfileID: 3, Publications: 50},
	)

	service := newAwardServiceForTest(activities, newFakeAwardRepository())

	award, err := service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: models.AwardBestReviewer,
		Year:      2026,
		JournalID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), award.RecipientProfileID)
	assert.Equal(t, 2026, award.Year)
	assert.NotEmpty(t, award.Citation)
	require.NotNil(t, award.Metrics)
	assert.Equal(t, 10, award.Metrics.ReviewsCompleted)
}

func TestAwardIsMemoized(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		&models.MetricBundle{ProfileID: 1, ReviewsCompleted: 10, AvgQualityScore: 4},
	)
	awards := newFakeAwardRepository()
	service := newAwardServiceForTest(activities, awards)

	req := &GetAwardRequest{AwardType: models.AwardBestReviewer, Year: 2026, JournalID: 7}

	first, err := service.GetOrCompute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.RecipientProfileID)

	// The underlying metrics change; the stored award must not.
	activities.setListing(
		&models.MetricBundle{ProfileID: 2, ReviewsCompleted: 100, AvgQualityScore: 5},
	)

	second, err := service.GetOrCompute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.RecipientProfileID, "memoized result survives later activity")

	recomputed, err := service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: models.AwardBestReviewer, Year: 2026, JournalID: 7, Recompute: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), recomputed.RecipientProfileID, "recompute replaces the stored row")
}

func TestAwardNoEligibleRecipient(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		// Activity exists, but none of it qualifies for the editor award.
		&models.MetricBundle{ProfileID: 1, ReviewsCompleted: 10},
	)
	service := newAwardServiceForTest(activities, newFakeAwardRepository())

	_, err := service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: models.AwardBestEditor,
		Year:      2026,
		JournalID: 7,
	})
	require.Error(t, err)
	assert.True(t, IsNoEligibleRecipientError(err))
}

func TestAwardUnknownTypeAndJournal(t *testing.T) {
	service := newAwardServiceForTest(newFakeActivityRepository(), newFakeAwardRepository())

	_, err := service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: "LIFETIME_ACHIEVEMENT",
		Year:      2026,
		JournalID: 7,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: models.AwardBestReviewer,
		Year:      2026,
		JournalID: 999,
	})
	require.Error(t, err)
	assert.True(t, IsInvalidScopeError(err))
}

func TestAwardResearcherOfTheYearScoring(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		// 3*10 + 40 = 70.
		&models.MetricBundle{ProfileID: 1, Publications: 3, Citations: 40},
		// 5*10 + 10 = 60.
		&models.MetricBundle{ProfileID: 2, Publications: 5, Citations: 10},
	)
	service := newAwardServiceForTest(activities, newFakeAwardRepository())

	award, err := service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: models.AwardResearcherOfTheYear,
		Year:      2026,
		JournalID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), award.RecipientProfileID)
}

func TestAwardListByYear(t *testing.T) {
	activities := newFakeActivityRepository()
	activities.setListing(
		&models.MetricBundle{ProfileID: 1, ReviewsCompleted: 5},
	)
	awards := newFakeAwardRepository()
	service := newAwardServiceForTest(activities, awards)

	_, err := service.GetOrCompute(context.Background(), &GetAwardRequest{
		AwardType: models.AwardBestReviewer, Year: 2026, JournalID: 7,
	})
	require.NoError(t, err)

	listed, err := service.List(context.Background(), 2026)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	empty, err := service.List(context.Background(), 1999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
