package repositories

import (
	"context"
	"fmt"

	"merithub/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	Activity    ActivityRepository
	Badge       BadgeRepository
	Leaderboard LeaderboardRepository
	Award       AwardRepository
	Certificate CertificateRepository
	Journal     JournalRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		db:     db,
		logger: logger,
	}

	collection.Activity = NewActivityRepository(db, logger)
	collection.Badge = NewBadgeRepository(db, logger)
	collection.Leaderboard = NewLeaderboardRepository(db, logger)
	collection.Award = NewAwardRepository(db, logger)
	collection.Certificate = NewCertificateRepository(db, logger)
	collection.Journal = NewJournalRepository(db, logger)

	logger.Info("Repository collection initialized")
	return collection, nil
}

// HealthCheck reports database connectivity and query counters.
func (c *Collection) HealthCheck(ctx context.Context) map[string]interface{} {
	health := make(map[string]interface{})

	dbHealth := c.db.Health(ctx)
	health["database"] = map[string]interface{}{
		"status":        dbHealth.Status,
		"response_time": dbHealth.ResponseTime,
		"errors":        dbHealth.Errors,
	}

	metrics := c.db.Metrics()
	health["performance"] = map[string]interface{}{
		"query_count":        metrics.QueryCount,
		"error_count":        metrics.ErrorCount,
		"slow_query_count":   metrics.SlowQueryCount,
		"avg_query_duration": metrics.AvgQueryDuration,
	}

	return health
}

// GetDB returns the underlying database manager for advanced operations
func (c *Collection) GetDB() *database.Manager {
	return c.db
}

// Close closes the underlying database connections.
func (c *Collection) Close() error {
	c.logger.Info("Closing repository collection")
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
