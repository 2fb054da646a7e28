package services

import (
	"context"
	"testing"
	"time"

	"merithub/internal/events"
	"merithub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reviewerLadder() []*models.Badge {
	return []*models.Badge{
		{ID: 1, Name: "Reviewer Bronze", Family: models.FamilyReviewer, Tier: models.TierBronze, Threshold: 5, IsActive: true},
		{ID: 2, Name: "Reviewer Silver", Family: models.FamilyReviewer, Tier: models.TierSilver, Threshold: 15, IsActive: true},
		{ID: 3, Name: "Reviewer Gold", Family: models.FamilyReviewer, Tier: models.TierGold, Threshold: 40, IsActive: true},
	}
}

func testJournal() *models.Journal {
	return &models.Journal{ID: 7, Name: "Annals of Testing", Discipline: "CS", Country: "KE", IsActive: true}
}

func newBadgeServiceForTest(activities *fakeActivityRepository, badges *fakeBadgeRepository) BadgeService {
	return newBadgeServiceWithBus(activities, badges, nil)
}

func newBadgeServiceWithBus(activities *fakeActivityRepository, badges *fakeBadgeRepository, bus *fakeEventBus) BadgeService {
	logger := zap.NewNop()
	var eventBus events.EventBus
	if bus != nil {
		eventBus = bus
	}
	return NewBadgeService(
		activities, badges,
		newFakeJournalRepository(testJournal()),
		newFakeCache(), eventBus, time.Minute, logger,
	)
}

func reviewRequest(eventID string) *RecordReviewRequest {
	return &RecordReviewRequest{
		SourceEventID:  eventID,
		ProfileID:      42,
		JournalID:      7,
		Year:           2026,
		QualityScore:   4.5,
		TurnaroundDays: 12,
		CompletedAt:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordReviewDuplicateEvent(t *testing.T) {
	activities := newFakeActivityRepository()
	service := newBadgeServiceForTest(activities, newFakeBadgeRepository(reviewerLadder()...))

	first, err := service.RecordReview(context.Background(), reviewRequest("evt-1"))
	require.NoError(t, err)
	assert.True(t, first.Recorded)
	assert.False(t, first.Duplicate)

	second, err := service.RecordReview(context.Background(), reviewRequest("evt-1"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.False(t, second.Recorded)
	assert.Empty(t, second.NewGrants)
}

func TestRecordReviewUnknownJournal(t *testing.T) {
	service := newBadgeServiceForTest(newFakeActivityRepository(), newFakeBadgeRepository(reviewerLadder()...))

	req := reviewRequest("evt-2")
	req.JournalID = 999

	_, err := service.RecordReview(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsInvalidScopeError(err))
}

func TestEvaluateBackfillsReachedTiers(t *testing.T) {
	activities := newFakeActivityRepository()
	journalID := int64(7)
	activities.setMetrics(42, 2026, models.Scope{JournalID: &journalID},
		&models.MetricBundle{ProfileID: 42, Year: 2026, ReviewsCompleted: 16})

	service := newBadgeServiceForTest(activities, newFakeBadgeRepository(reviewerLadder()...))

	grants, err := service.Evaluate(context.Background(), 42, models.FamilyReviewer, 2026, &journalID)
	require.NoError(t, err)
	require.Len(t, grants, 2, "16 reviews reach the bronze and silver thresholds")
	assert.Equal(t, models.TierBronze, grants[0].Badge.Tier)
	assert.Equal(t, models.TierSilver, grants[1].Badge.Tier)
	assert.Equal(t, 16, grants[0].MetricAtGrant)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	activities := newFakeActivityRepository()
	journalID := int64(7)
	activities.setMetrics(42, 2026, models.Scope{JournalID: &journalID},
		&models.MetricBundle{ProfileID: 42, Year: 2026, ReviewsCompleted: 16})

	service := newBadgeServiceForTest(activities, newFakeBadgeRepository(reviewerLadder()...))

	first, err := service.Evaluate(context.Background(), 42, models.FamilyReviewer, 2026, &journalID)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := service.Evaluate(context.Background(), 42, models.FamilyReviewer, 2026, &journalID)
	require.NoError(t, err)
	assert.Empty(t, second, "replayed evaluation creates no new grants")
}

func TestRecordReviewEvaluatesBothScopes(t *testing.T) {
	activities := newFakeActivityRepository()
	journalID := int64(7)
	activities.setMetrics(42, 2026, models.Scope{JournalID: &journalID},
		&models.MetricBundle{ProfileID: 42, Year: 2026, ReviewsCompleted: 5})
	activities.setMetrics(42, 2026, models.Scope{},
		&models.MetricBundle{ProfileID: 42, Year: 2026, ReviewsCompleted: 15})

	badges := newFakeBadgeRepository(reviewerLadder()...)
	service := newBadgeServiceForTest(activities, badges)

	result, err := service.RecordReview(context.Background(), reviewRequest("evt-3"))
	require.NoError(t, err)
	require.True(t, result.Recorded)

	// Journal-scoped bronze, plus cross-journal bronze and silver.
	require.Len(t, result.NewGrants, 3)

	var scoped, global int
	for _, g := range result.NewGrants {
		if g.JournalID != nil {
			scoped++
		} else {
			global++
		}
	}
	assert.Equal(t, 1, scoped)
	assert.Equal(t, 2, global)
}

func TestRecordSubmissionRejectedDoesNotEvaluate(t *testing.T) {
	activities := newFakeActivityRepository()
	journalID := int64(7)
	activities.setMetrics(42, 2026, models.Scope{JournalID: &journalID},
		&models.MetricBundle{ProfileID: 42, Year: 2026, Publications: 100})

	ladder := []*models.Badge{
		{ID: 10, Name: "Author Bronze", Family: models.FamilyAuthor, Tier: models.TierBronze, Threshold: 1, IsActive: true},
	}
	service := newBadgeServiceForTest(activities, newFakeBadgeRepository(ladder...))

	result, err := service.RecordSubmission(context.Background(), &RecordSubmissionRequest{
		SourceEventID: "sub-1",
		ProfileID:     42,
		JournalID:     7,
		Year:          2026,
		Status:        "REJECTED",
		DecidedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, result.Recorded)
	assert.Empty(t, result.NewGrants, "a rejection is recorded but grants nothing")
}

func TestRecordIssueGrantsEditorBadge(t *testing.T) {
	activities := newFakeActivityRepository()
	journalID := int64(7)
	activities.setMetrics(42, 2026, models.Scope{JournalID: &journalID},
		&models.MetricBundle{ProfileID: 42, Year: 2026, EditedIssues: 1})
	activities.setMetrics(42, 2026, models.Scope{},
		&models.MetricBundle{ProfileID: 42, Year: 2026, EditedIssues: 1})

	ladder := []*models.Badge{
		{ID: 20, Name: "Editor Bronze", Family: models.FamilyEditor, Tier: models.TierBronze, Threshold: 1, IsActive: true},
	}
	service := newBadgeServiceForTest(activities, newFakeBadgeRepository(ladder...))

	result, err := service.RecordIssue(context.Background(), &RecordIssueRequest{
		SourceEventID: "iss-1",
		ProfileID:     42,
		JournalID:     7,
		Year:          2026,
		PublishedAt:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, result.Recorded)
	// The same grant is attempted for both scopes; the cross-journal one
	// has a distinct scope key so both land.
	assert.Len(t, result.NewGrants, 2)
}

func TestIngestionPublishesDomainEvents(t *testing.T) {
	activities := newFakeActivityRepository()
	bus := newFakeEventBus()
	service := newBadgeServiceWithBus(activities, newFakeBadgeRepository(reviewerLadder()...), bus)

	_, err := service.RecordReview(context.Background(), reviewRequest("evt-bus-1"))
	require.NoError(t, err)

	_, err = service.RecordSubmission(context.Background(), &RecordSubmissionRequest{
		SourceEventID: "sub-bus-1",
		ProfileID:     42,
		JournalID:     7,
		Year:          2026,
		Status:        "PUBLISHED",
		DecidedAt:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = service.RecordIssue(context.Background(), &RecordIssueRequest{
		SourceEventID: "iss-bus-1",
		ProfileID:     42,
		JournalID:     7,
		Year:          2026,
		PublishedAt:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	types := bus.eventTypes()
	assert.Contains(t, types, events.TypeReviewCompleted)
	assert.Contains(t, types, events.TypeSubmissionStatusChanged)
	assert.Contains(t, types, events.TypeIssuePublished)
}

func TestIngestionDuplicateDoesNotRepublish(t *testing.T) {
	activities := newFakeActivityRepository()
	bus := newFakeEventBus()
	service := newBadgeServiceWithBus(activities, newFakeBadgeRepository(), bus)

	_, err := service.RecordReview(context.Background(), reviewRequest("evt-bus-2"))
	require.NoError(t, err)
	published := len(bus.eventTypes())

	_, err = service.RecordReview(context.Background(), reviewRequest("evt-bus-2"))
	require.NoError(t, err)
	assert.Equal(t, published, len(bus.eventTypes()), "a redelivered event is acknowledged silently")
}

func TestListCatalogCarriesHolderCounts(t *testing.T) {
	badges := newFakeBadgeRepository(reviewerLadder()...)

	journalID := int64(7)
	for _, profileID := range []int64{1, 2, 3} {
		_, err := badges.InsertGrant(context.Background(), &models.UserBadge{
			ProfileID: profileID,
			BadgeID:   1,
			Year:      2026,
			JournalID: &journalID,
		})
		require.NoError(t, err)
	}

	service := newBadgeServiceForTest(newFakeActivityRepository(), badges)

	catalog, err := service.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, int64(3), catalog[0].HolderCount)
	assert.Equal(t, int64(0), catalog[1].HolderCount)
}

func TestListProfileBadgesRejectsBadProfile(t *testing.T) {
	service := newBadgeServiceForTest(newFakeActivityRepository(), newFakeBadgeRepository())

	_, err := service.ListProfileBadges(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
