package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"merithub/internal/config"
	"merithub/internal/events"
	"merithub/internal/models"
	"merithub/internal/repositories"
	"merithub/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// awardService implements AwardService.
type awardService struct {
	activities repositories.ActivityRepository
	awards     repositories.AwardRepository
	journals   repositories.JournalRepository
	bus        events.EventBus
	engine     config.EngineConfig
	logger     *zap.Logger
}

// NewAwardService creates a new award service
func NewAwardService(
	activities repositories.ActivityRepository,
	awards repositories.AwardRepository,
	journals repositories.JournalRepository,
	bus events.EventBus,
	engine config.EngineConfig,
	logger *zap.Logger,
) AwardService {
	return &awardService{
		activities: activities,
		awards:     awards,
		journals:   journals,
		bus:        bus,
		engine:     engine,
		logger:     logger,
	}
}

// GetOrCompute returns the memoized award for the key, computing and
// persisting it on first request. Recompute replaces the stored row.
func (s *awardService) GetOrCompute(ctx context.Context, req *GetAwardRequest) (*models.Award, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid award request", err)
	}
	if !req.AwardType.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("unknown award type %q", req.AwardType), nil)
	}

	exists, err := s.journals.Exists(ctx, req.JournalID)
	if err != nil {
		return nil, NewInternalError("failed to check journal scope")
	}
	if !exists {
		return nil, NewInvalidScopeError(fmt.Sprintf("unknown journal %d", req.JournalID))
	}

	if !req.Recompute {
		award, err := s.awards.GetAward(ctx, req.AwardType, req.Year, req.JournalID, req.Scope)
		if err != nil {
			return nil, NewInternalError("failed to load award")
		}
		if award != nil {
			return award, nil
		}
	}

	return s.compute(ctx, req)
}

func (s *awardService) List(ctx context.Context, year int) ([]*models.Award, error) {
	awards, err := s.awards.ListAwardsByYear(ctx, year)
	if err != nil {
		return nil, NewInternalError("failed to list awards")
	}
	return awards, nil
}

func (s *awardService) compute(ctx context.Context, req *GetAwardRequest) (*models.Award, error) {
	scope := models.Scope{
		JournalID:  &req.JournalID,
		Discipline: req.Scope.Discipline,
		Country:    req.Scope.Country,
	}
	bundles, err := s.activities.ListMetrics(ctx, repositories.MetricsFilter{
		Scope: scope,
		Year:  req.Year,
	})
	if err != nil {
		return nil, NewInternalError("failed to aggregate award candidates")
	}

	winner := s.selectWinner(req.AwardType, bundles)
	if winner == nil {
		// An award never materializes without a recipient.
		return nil, NewNoEligibleRecipientError(string(req.AwardType), req.Year)
	}

	award := &models.Award{
		AwardType:          req.AwardType,
		Year:               req.Year,
		JournalID:          req.JournalID,
		Discipline:         req.Scope.Discipline,
		Country:            req.Scope.Country,
		RecipientProfileID: winner.ProfileID,
		Citation:           s.citation(req.AwardType, req.Year, winner),
		Metrics:            winner,
		ComputedAt:         time.Now().UTC(),
	}

	inserted, err := s.awards.SaveAward(ctx, award, req.Recompute)
	if err != nil {
		return nil, NewInternalError("failed to persist award")
	}
	if !inserted {
		// Another computation won the insert race; its row is canonical.
		stored, err := s.awards.GetAward(ctx, req.AwardType, req.Year, req.JournalID, req.Scope)
		if err != nil || stored == nil {
			return nil, NewInternalError("failed to load award after insert race")
		}
		return stored, nil
	}

	if s.bus != nil {
		event := events.NewAwardComputedEvent(award.ID, string(award.AwardType), award.Year, award.JournalID, award.RecipientProfileID)
		if err := s.bus.PublishAsync(ctx, event); err != nil {
			s.logger.Warn("Failed to publish award-computed event", zap.Error(err))
		}
	}
	return award, nil
}

// selectWinner scores eligible candidates and picks the single winner
// under the deterministic tie-break order.
func (s *awardService) selectWinner(awardType models.AwardType, bundles []*models.MetricBundle) *models.MetricBundle {
	type candidate struct {
		bundle *models.MetricBundle
		score  float64
	}

	var candidates []candidate
	for _, bundle := range bundles {
		if !s.eligible(awardType, bundle) {
			continue
		}
		candidates = append(candidates, candidate{bundle: bundle, score: s.compositeScore(awardType, bundle)})
	}
	if len(candidates) == 0 {
		return nil
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		sa, sb := s.awardSecondary(awardType, a.bundle), s.awardSecondary(awardType, b.bundle)
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
	return candidates[0].bundle
}

func (s *awardService) eligible(awardType models.AwardType, m *models.MetricBundle) bool {
	switch awardType {
	case models.AwardBestReviewer:
		return m.ReviewsCompleted > 0
	case models.AwardResearcherOfTheYear:
		return m.Publications > 0
	case models.AwardBestEditor:
		return m.EditedIssues > 0
	}
	return false
}

func (s *awardService) compositeScore(awardType models.AwardType, m *models.MetricBundle) float64 {
	switch awardType {
	case models.AwardBestReviewer:
		return float64(m.ReviewsCompleted)*s.engine.ReviewCountWeight +
			m.AvgQualityScore*s.engine.ReviewQualityWeight +
			math.Max(0, s.engine.TurnaroundBaseline-m.AvgTurnaroundDays)
	case models.AwardResearcherOfTheYear:
		return float64(m.Publications)*s.engine.PublicationWeight + float64(m.Citations)
	case models.AwardBestEditor:
		return float64(m.EditedIssues) * s.engine.EditedIssueWeight
	}
	return 0
}

func (s *awardService) awardSecondary(awardType models.AwardType, m *models.MetricBundle) float64 {
	switch awardType {
	case models.AwardBestReviewer:
		return m.AvgQualityScore
	case models.AwardResearcherOfTheYear:
		return float64(m.Citations)
	case models.AwardBestEditor:
		return float64(m.EditedIssues)
	}
	return 0
}

func (s *awardService) citation(awardType models.AwardType, year int, m *models.MetricBundle) string {
	switch awardType {
	case models.AwardBestReviewer:
		return fmt.Sprintf("For %d completed reviews in %d with an average quality score of %.1f",
			m.ReviewsCompleted, year, m.AvgQualityScore)
	case models.AwardResearcherOfTheYear:
		return fmt.Sprintf("For %d published works and %d citations in %d",
			m.Publications, m.Citations, year)
	case models.AwardBestEditor:
		return fmt.Sprintf("For %d journal issues brought to publication in %d",
			m.EditedIssues, year)
	}
	return ""
}
