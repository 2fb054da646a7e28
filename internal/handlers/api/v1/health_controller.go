package v1

import (
	"context"
	"net/http"
	"time"

	"merithub/internal/cache"
	"merithub/internal/database"
	"merithub/internal/events"
	"merithub/internal/response"

	"go.uber.org/zap"
)

// HealthController reports process and dependency health.
type HealthController struct {
	db              *database.Manager
	cache           cache.Cache
	bus             events.EventBus
	logger          *zap.Logger
	responseBuilder *response.Builder
	startedAt       time.Time
}

// NewHealthController creates a new health controller
func NewHealthController(db *database.Manager, cacheProvider cache.Cache, bus events.EventBus, logger *zap.Logger) *HealthController {
	return &HealthController{
		db:              db,
		cache:           cacheProvider,
		bus:             bus,
		logger:          logger,
		responseBuilder: response.NewBuilder(logger),
		startedAt:       time.Now().UTC(),
	}
}

// Live handles GET /health/live
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.Success(w, r, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(c.startedAt).String(),
	})
}

// Ready handles GET /health. Degraded dependencies turn the overall
// status and the HTTP code; load balancers key off the code alone.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbHealth := c.db.Health(ctx)

	cacheStatus := "healthy"
	if err := c.cache.Health(ctx); err != nil {
		cacheStatus = "unhealthy"
		c.logger.Warn("Cache health check failed", zap.Error(err))
	}

	status := "healthy"
	code := http.StatusOK
	if dbHealth.Status != "healthy" || cacheStatus != "healthy" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	body := map[string]interface{}{
		"status":    status,
		"uptime":    time.Since(c.startedAt).String(),
		"database":  dbHealth,
		"cache":     map[string]string{"status": cacheStatus},
		"event_bus": c.bus.Stats(),
	}

	c.responseBuilder.Status(w, r, code, body)
}

// Database handles GET /health/db
func (c *HealthController) Database(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c.responseBuilder.Success(w, r, map[string]interface{}{
		"health":  c.db.Health(ctx),
		"metrics": c.db.Metrics(),
	})
}
