package services

import (
	"context"
	"fmt"

	"merithub/internal/models"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

// metricsService implements MetricsService over the activity history.
type metricsService struct {
	activities repositories.ActivityRepository
	journals   repositories.JournalRepository
	logger     *zap.Logger
}

// NewMetricsService creates a new metrics service
func NewMetricsService(activities repositories.ActivityRepository, journals repositories.JournalRepository, logger *zap.Logger) MetricsService {
	return &metricsService{
		activities: activities,
		journals:   journals,
		logger:     logger,
	}
}

func (s *metricsService) Aggregate(ctx context.Context, profileID int64, year int, scope models.Scope) (*models.MetricBundle, error) {
	if profileID <= 0 {
		return nil, NewValidationError("profile id must be positive", nil)
	}
	if err := validateScope(ctx, s.journals, scope); err != nil {
		return nil, err
	}

	bundle, err := s.activities.GetProfileMetrics(ctx, profileID, repositories.MetricsFilter{
		Scope: scope,
		Year:  year,
	})
	if err != nil {
		s.logger.Error("Metric aggregation failed",
			zap.Int64("profile_id", profileID),
			zap.Int("year", year),
			zap.String("scope", scope.Key()),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to aggregate metrics")
	}
	return bundle, nil
}

// validateScope rejects scopes referencing unknown journals before any
// computation runs.
func validateScope(ctx context.Context, journals repositories.JournalRepository, scope models.Scope) error {
	if scope.JournalID == nil {
		return nil
	}
	if *scope.JournalID <= 0 {
		return NewInvalidScopeError("journal id must be positive")
	}
	exists, err := journals.Exists(ctx, *scope.JournalID)
	if err != nil {
		return NewInternalError("failed to check journal scope")
	}
	if !exists {
		return NewInvalidScopeError(fmt.Sprintf("unknown journal %d", *scope.JournalID))
	}
	return nil
}
