package services

import (
	"context"
	"fmt"
	"time"

	"merithub/internal/cache"
	"merithub/internal/config"
	"merithub/internal/models"
	"merithub/internal/repositories"
	"merithub/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// allTimePeriodEnd is the fixed period_end key for ALL_TIME snapshots.
var allTimePeriodEnd = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// leaderboardService implements LeaderboardService.
type leaderboardService struct {
	activities   repositories.ActivityRepository
	leaderboards repositories.LeaderboardRepository
	journals     repositories.JournalRepository
	cache        cache.Cache
	engine       config.EngineConfig
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	activities repositories.ActivityRepository,
	leaderboards repositories.LeaderboardRepository,
	journals repositories.JournalRepository,
	cacheProvider cache.Cache,
	engine config.EngineConfig,
	cacheTTL time.Duration,
	logger *zap.Logger,
) LeaderboardService {
	return &leaderboardService{
		activities:   activities,
		leaderboards: leaderboards,
		journals:     journals,
		cache:        cacheProvider,
		engine:       engine,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

func (s *leaderboardService) Get(ctx context.Context, req *GetLeaderboardRequest) (*models.LeaderboardSnapshot, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	periodEnd := normalizePeriodEnd(req.Period, req.PeriodEnd)

	cacheKey := snapshotCacheKey(req.Category, req.Period, periodEnd, req.Scope)
	if data, ok := s.cache.Get(ctx, cacheKey); ok {
		snapshot := &models.LeaderboardSnapshot{}
		if err := cache.Decode(data, snapshot); err == nil {
			return truncate(snapshot, req.Limit), nil
		}
	}

	snapshot, err := s.leaderboards.GetSnapshot(ctx, req.Category, req.Period, periodEnd, req.Scope)
	if err != nil {
		return nil, NewInternalError("failed to load leaderboard snapshot")
	}
	if snapshot == nil {
		return s.rebuild(ctx, req, periodEnd)
	}

	if err := s.cache.Set(ctx, cacheKey, snapshot, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard snapshot", zap.Error(err))
	}
	return truncate(snapshot, req.Limit), nil
}

func (s *leaderboardService) Rebuild(ctx context.Context, req *GetLeaderboardRequest) (*models.LeaderboardSnapshot, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	return s.rebuild(ctx, req, normalizePeriodEnd(req.Period, req.PeriodEnd))
}

func (s *leaderboardService) validateRequest(ctx context.Context, req *GetLeaderboardRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return NewValidationError("invalid leaderboard request", err)
	}
	if !req.Category.IsValid() {
		return NewValidationError(fmt.Sprintf("unknown leaderboard category %q", req.Category), nil)
	}
	if !req.Period.IsValid() {
		return NewValidationError(fmt.Sprintf("unknown leaderboard period %q", req.Period), nil)
	}
	return validateScope(ctx, s.journals, req.Scope)
}

// rebuild recomputes the ranking and atomically replaces the stored
// snapshot. An empty candidate set persists an empty snapshot.
func (s *leaderboardService) rebuild(ctx context.Context, req *GetLeaderboardRequest, periodEnd time.Time) (*models.LeaderboardSnapshot, error) {
	since, until := periodWindow(req.Period, periodEnd)

	bundles, err := s.activities.ListMetrics(ctx, repositories.MetricsFilter{
		Scope: req.Scope,
		Since: since,
		Until: until,
	})
	if err != nil {
		return nil, NewInternalError("failed to aggregate leaderboard candidates")
	}

	entries := s.rank(req.Category, bundles)
	snapshot := &models.LeaderboardSnapshot{
		Category:  req.Category,
		Period:    req.Period,
		PeriodEnd: periodEnd,
		Scope:     req.Scope,
		BuiltAt:   time.Now().UTC(),
		Entries:   entries,
	}

	if err := s.leaderboards.ReplaceSnapshot(ctx, snapshot); err != nil {
		return nil, NewInternalError("failed to persist leaderboard snapshot")
	}

	cacheKey := snapshotCacheKey(req.Category, req.Period, periodEnd, req.Scope)
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}

	s.logger.Info("Leaderboard rebuilt",
		zap.String("category", string(req.Category)),
		zap.String("period", string(req.Period)),
		zap.Time("period_end", periodEnd),
		zap.String("scope", req.Scope.Key()),
		zap.Int("entries", len(entries)),
	)
	return truncate(snapshot, req.Limit), nil
}

// rank scores candidates and assigns dense ranks 1..N under the
// deterministic total order: score desc, secondary metric desc, earlier
// first activity, ascending profile ID.
func (s *leaderboardService) rank(category models.LeaderboardCategory, bundles []*models.MetricBundle) []*models.LeaderboardEntry {
	type candidate struct {
		bundle *models.MetricBundle
		score  float64
	}

	candidates := make([]candidate, 0, len(bundles))
	for _, bundle := range bundles {
		score := s.score(category, bundle)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, candidate{bundle: bundle, score: score})
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		sa, sb := secondaryMetric(category, a.bundle), secondaryMetric(category, b.bundle)
		if sa != sb {
			if sa > sb {
				return -1
			}
			return 1
		}
		ta, tb := firstActivity(a.bundle), firstActivity(b.bundle)
		if !ta.Equal(tb) {
			if ta.Before(tb) {
				return -1
			}
			return 1
		}
		if a.bundle.ProfileID < b.bundle.ProfileID {
			return -1
		}
		return 1
	})

	entries := make([]*models.LeaderboardEntry, len(candidates))
	for i, c := range candidates {
		entries[i] = &models.LeaderboardEntry{
			Rank:      i + 1,
			ProfileID: c.bundle.ProfileID,
			Score:     c.score,
			Metrics:   c.bundle,
		}
	}
	return entries
}

func (s *leaderboardService) score(category models.LeaderboardCategory, m *models.MetricBundle) float64 {
	switch category {
	case models.CategoryReviewer:
		return float64(m.ReviewsCompleted)*s.engine.ReviewCountWeight + m.AvgQualityScore*s.engine.ReviewQualityWeight
	case models.CategoryAuthor, models.CategoryContributions:
		return float64(m.Publications)*s.engine.PublicationWeight + float64(m.Citations)
	case models.CategoryCitations:
		return float64(m.Citations)
	}
	return 0
}

// secondaryMetric is the per-category quality dimension used to break
// score ties.
func secondaryMetric(category models.LeaderboardCategory, m *models.MetricBundle) float64 {
	switch category {
	case models.CategoryReviewer:
		return m.AvgQualityScore
	case models.CategoryAuthor, models.CategoryContributions:
		return float64(m.Citations)
	case models.CategoryCitations:
		return float64(m.Publications)
	}
	return 0
}

// firstActivity treats a missing first-activity time as latest possible,
// so profiles with recorded history rank ahead on ties.
func firstActivity(m *models.MetricBundle) time.Time {
	if m.FirstActivityAt == nil {
		return time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return *m.FirstActivityAt
}

// ===============================
// PERIOD HELPERS
// ===============================

// normalizePeriodEnd collapses any time inside a period to the period's
// exclusive end boundary at UTC midnight, so every caller addresses the
// same snapshot key.
func normalizePeriodEnd(period models.LeaderboardPeriod, t time.Time) time.Time {
	if period == models.PeriodAllTime {
		return allTimePeriodEnd
	}
	if t.IsZero() {
		t = time.Now().UTC()
	}
	t = t.UTC()

	switch period {
	case models.PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	case models.PeriodQuarterly:
		quarterStart := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), quarterStart, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 3, 0)
	case models.PeriodYearly:
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// periodWindow returns the half-open [since, until) aggregation window.
func periodWindow(period models.LeaderboardPeriod, periodEnd time.Time) (*time.Time, *time.Time) {
	var since time.Time
	switch period {
	case models.PeriodMonthly:
		since = periodEnd.AddDate(0, -1, 0)
	case models.PeriodQuarterly:
		since = periodEnd.AddDate(0, -3, 0)
	case models.PeriodYearly:
		since = periodEnd.AddDate(-1, 0, 0)
	default:
		return nil, nil
	}
	return &since, &periodEnd
}

func snapshotCacheKey(category models.LeaderboardCategory, period models.LeaderboardPeriod, periodEnd time.Time, scope models.Scope) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s:%s",
		category, period, periodEnd.Format("2006-01-02"), scope.Key())
}

func truncate(snapshot *models.LeaderboardSnapshot, limit int) *models.LeaderboardSnapshot {
	if limit > 0 && limit < len(snapshot.Entries) {
		snapshot.Entries = snapshot.Entries[:limit]
	}
	return snapshot
}
