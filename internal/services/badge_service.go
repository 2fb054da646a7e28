package services

import (
	"context"
	"time"

	"merithub/internal/cache"
	"merithub/internal/events"
	"merithub/internal/models"
	"merithub/internal/repositories"
	"merithub/internal/validation"

	"go.uber.org/zap"
)

const badgeCatalogCacheKey = "badges:catalog"

// badgeService implements BadgeService: activity ingestion plus the
// tier-grant state machine on top of it.
type badgeService struct {
	activities repositories.ActivityRepository
	badges     repositories.BadgeRepository
	journals   repositories.JournalRepository
	cache      cache.Cache
	bus        events.EventBus
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewBadgeService creates a new badge service
func NewBadgeService(
	activities repositories.ActivityRepository,
	badges repositories.BadgeRepository,
	journals repositories.JournalRepository,
	cacheProvider cache.Cache,
	bus events.EventBus,
	cacheTTL time.Duration,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		activities: activities,
		badges:     badges,
		journals:   journals,
		cache:      cacheProvider,
		bus:        bus,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ===============================
// INGESTION
// ===============================

func (s *badgeService) RecordReview(ctx context.Context, req *RecordReviewRequest) (*IngestResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid review event", err)
	}
	if err := s.checkJournal(ctx, req.JournalID); err != nil {
		return nil, err
	}

	inserted, err := s.activities.InsertReview(ctx, &models.ReviewActivity{
		SourceEventID:  req.SourceEventID,
		ProfileID:      req.ProfileID,
		JournalID:      req.JournalID,
		Year:           req.Year,
		QualityScore:   req.QualityScore,
		TurnaroundDays: req.TurnaroundDays,
		CompletedAt:    req.CompletedAt,
	})
	if err != nil {
		return nil, NewInternalError("failed to record review")
	}
	if !inserted {
		return &IngestResult{Duplicate: true}, nil
	}
	s.publishAsync(ctx, events.NewReviewCompletedEvent(
		req.SourceEventID, req.ProfileID, req.JournalID, req.Year,
		req.QualityScore, req.TurnaroundDays, req.CompletedAt))

	grants, err := s.evaluateScopes(ctx, req.ProfileID, models.FamilyReviewer, req.Year, req.JournalID)
	if err != nil {
		return nil, err
	}
	return &IngestResult{Recorded: true, NewGrants: grants}, nil
}

func (s *badgeService) RecordSubmission(ctx context.Context, req *RecordSubmissionRequest) (*IngestResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid submission event", err)
	}
	if err := s.checkJournal(ctx, req.JournalID); err != nil {
		return nil, err
	}

	inserted, err := s.activities.InsertSubmission(ctx, &models.SubmissionActivity{
		SourceEventID: req.SourceEventID,
		ProfileID:     req.ProfileID,
		JournalID:     req.JournalID,
		Year:          req.Year,
		Status:        req.Status,
		Citations:     req.Citations,
		DecidedAt:     req.DecidedAt,
	})
	if err != nil {
		return nil, NewInternalError("failed to record submission")
	}
	if !inserted {
		return &IngestResult{Duplicate: true}, nil
	}
	s.publishAsync(ctx, events.NewSubmissionStatusChangedEvent(
		req.SourceEventID, req.ProfileID, req.JournalID, req.Year,
		req.Status, req.Citations, req.DecidedAt))

	// Only acceptance and publication count as publication activity.
	if req.Status != models.SubmissionAccepted && req.Status != models.SubmissionPublished {
		return &IngestResult{Recorded: true}, nil
	}

	grants, err := s.evaluateScopes(ctx, req.ProfileID, models.FamilyAuthor, req.Year, req.JournalID)
	if err != nil {
		return nil, err
	}
	return &IngestResult{Recorded: true, NewGrants: grants}, nil
}

func (s *badgeService) RecordIssue(ctx context.Context, req *RecordIssueRequest) (*IngestResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid issue event", err)
	}
	if err := s.checkJournal(ctx, req.JournalID); err != nil {
		return nil, err
	}

	inserted, err := s.activities.InsertEditorActivity(ctx, &models.EditorActivity{
		SourceEventID: req.SourceEventID,
		ProfileID:     req.ProfileID,
		JournalID:     req.JournalID,
		Year:          req.Year,
		PublishedAt:   req.PublishedAt,
	})
	if err != nil {
		return nil, NewInternalError("failed to record issue")
	}
	if !inserted {
		return &IngestResult{Duplicate: true}, nil
	}
	s.publishAsync(ctx, events.NewIssuePublishedEvent(
		req.SourceEventID, req.ProfileID, req.JournalID, req.Year, req.PublishedAt))

	grants, err := s.evaluateScopes(ctx, req.ProfileID, models.FamilyEditor, req.Year, req.JournalID)
	if err != nil {
		return nil, err
	}
	return &IngestResult{Recorded: true, NewGrants: grants}, nil
}

// publishAsync forwards a domain event to the bus. Ingestion and grant
// outcomes must not fail on a full queue; delivery is best effort.
func (s *badgeService) publishAsync(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}

func (s *badgeService) checkJournal(ctx context.Context, journalID int64) error {
	exists, err := s.journals.Exists(ctx, journalID)
	if err != nil {
		return NewInternalError("failed to check journal scope")
	}
	if !exists {
		return NewInvalidScopeError("unknown journal in event scope")
	}
	return nil
}

// ===============================
// CATALOG AND GRANT READS
// ===============================

func (s *badgeService) ListCatalog(ctx context.Context) ([]*models.Badge, error) {
	if data, ok := s.cache.Get(ctx, badgeCatalogCacheKey); ok {
		var badges []*models.Badge
		if err := cache.Decode(data, &badges); err == nil {
			return badges, nil
		}
	}

	badges, err := s.badges.ListBadges(ctx, true)
	if err != nil {
		return nil, NewInternalError("failed to load badge catalog")
	}
	for _, badge := range badges {
		count, err := s.badges.CountHolders(ctx, badge.ID)
		if err != nil {
			return nil, NewInternalError("failed to count badge holders")
		}
		badge.HolderCount = count
	}

	if err := s.cache.Set(ctx, badgeCatalogCacheKey, badges, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache badge catalog", zap.Error(err))
	}
	return badges, nil
}

func (s *badgeService) ListProfileBadges(ctx context.Context, profileID int64) ([]*models.UserBadge, error) {
	if profileID <= 0 {
		return nil, NewValidationError("profile id must be positive", nil)
	}
	grants, err := s.badges.ListGrantsByProfile(ctx, profileID)
	if err != nil {
		return nil, NewInternalError("failed to load profile badges")
	}
	return grants, nil
}

// ===============================
// EVALUATION
// ===============================

// evaluateScopes runs the evaluator for both the event's journal scope
// and the cross-journal scope, the two ladders a single activity can
// advance.
func (s *badgeService) evaluateScopes(ctx context.Context, profileID int64, family models.BadgeFamily, year int, journalID int64) ([]*models.UserBadge, error) {
	scoped, err := s.Evaluate(ctx, profileID, family, year, &journalID)
	if err != nil {
		return nil, err
	}
	global, err := s.Evaluate(ctx, profileID, family, year, nil)
	if err != nil {
		return nil, err
	}
	return append(scoped, global...), nil
}

// Evaluate recomputes the family counter and back-fills every reached,
// not-yet-granted tier. The unique grant constraint in storage is the
// sole idempotency guard: concurrent or replayed evaluations converge on
// the same grant set.
func (s *badgeService) Evaluate(ctx context.Context, profileID int64, family models.BadgeFamily, year int, journalID *int64) ([]*models.UserBadge, error) {
	if !family.IsValid() {
		return nil, NewValidationError("unknown badge family", nil)
	}

	ladder, err := s.badges.ListFamilyBadges(ctx, family)
	if err != nil {
		return nil, NewInternalError("failed to load badge ladder")
	}
	if len(ladder) == 0 {
		return nil, nil
	}

	scope := models.Scope{JournalID: journalID}
	bundle, err := s.activities.GetProfileMetrics(ctx, profileID, repositories.MetricsFilter{
		Scope: scope,
		Year:  year,
	})
	if err != nil {
		return nil, NewInternalError("failed to aggregate metrics")
	}
	counter := bundle.FamilyCounter(family)

	var granted []*models.UserBadge
	for _, badge := range ladder {
		if counter < badge.Threshold {
			break
		}

		grant := &models.UserBadge{
			ProfileID:     profileID,
			BadgeID:       badge.ID,
			Year:          year,
			JournalID:     journalID,
			MetricAtGrant: counter,
			GrantedAt:     time.Now().UTC(),
			Badge:         badge,
		}
		inserted, err := s.badges.InsertGrant(ctx, grant)
		if err != nil {
			return nil, NewInternalError("failed to persist badge grant")
		}
		if !inserted {
			// Already granted; absorbed, never surfaced.
			continue
		}

		granted = append(granted, grant)
		s.logger.Info("Badge granted",
			zap.Int64("profile_id", profileID),
			zap.String("badge", badge.Name),
			zap.String("tier", string(badge.Tier)),
			zap.Int("year", year),
			zap.Int("metric_at_grant", counter),
		)
		s.publishAsync(ctx, events.NewBadgeGrantedEvent(
			grant.ID, profileID, badge.Name, string(badge.Family), string(badge.Tier), year))
	}
	return granted, nil
}
