package services

import (
	"fmt"

	"merithub/internal/cache"
	"merithub/internal/config"
	"merithub/internal/events"
	"merithub/internal/repositories"

	"go.uber.org/zap"
)

// Collection holds all service instances for dependency injection
type Collection struct {
	Metrics     MetricsService
	Badge       BadgeService
	Leaderboard LeaderboardService
	Award       AwardService
	Certificate CertificateService

	logger *zap.Logger
}

// NewCollection wires the services over the repository collection, the
// cache provider and the event bus.
func NewCollection(
	repos *repositories.Collection,
	cacheProvider cache.Cache,
	bus events.EventBus,
	cfg *config.Config,
	logger *zap.Logger,
) (*Collection, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository collection is required")
	}
	if cacheProvider == nil {
		return nil, fmt.Errorf("cache provider is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{logger: logger}

	collection.Metrics = NewMetricsService(repos.Activity, repos.Journal, logger)
	collection.Badge = NewBadgeService(
		repos.Activity, repos.Badge, repos.Journal,
		cacheProvider, bus, cfg.Cache.TTL, logger,
	)
	collection.Leaderboard = NewLeaderboardService(
		repos.Activity, repos.Leaderboard, repos.Journal,
		cacheProvider, cfg.Engine, cfg.Cache.TTL, logger,
	)
	collection.Award = NewAwardService(
		repos.Activity, repos.Award, repos.Journal,
		bus, cfg.Engine, logger,
	)
	collection.Certificate = NewCertificateService(
		repos.Certificate, repos.Award, repos.Badge, repos.Journal,
		bus, cfg.Engine, logger,
	)

	logger.Info("Service collection initialized")
	return collection, nil
}
