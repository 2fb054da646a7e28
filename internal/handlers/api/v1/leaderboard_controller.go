package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"merithub/internal/middleware"
	"merithub/internal/models"
	"merithub/internal/response"
	"merithub/internal/services"

	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 50

// LeaderboardController serves ranking snapshots.
type LeaderboardController struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewLeaderboardController creates a new leaderboard controller
func NewLeaderboardController(serviceCollection *services.Collection, logger *zap.Logger) *LeaderboardController {
	return &LeaderboardController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: response.NewBuilder(logger),
	}
}

// Get handles GET /api/v1/leaderboards
func (c *LeaderboardController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	req, err := c.requestFromQuery(r)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	snapshot, err := c.services.Leaderboard.Get(ctx, req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, snapshot)
}

// Rebuild handles POST /api/v1/leaderboards/rebuild
func (c *LeaderboardController) Rebuild(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	logger := c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", "rebuild_leaderboard"),
	)

	var req services.GetLeaderboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	snapshot, err := c.services.Leaderboard.Rebuild(ctx, &req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	logger.Info("Leaderboard rebuild requested",
		zap.String("category", string(req.Category)),
		zap.String("period", string(req.Period)),
	)
	c.responseBuilder.Success(w, r, snapshot)
}

func (c *LeaderboardController) requestFromQuery(r *http.Request) (*services.GetLeaderboardRequest, error) {
	scope, err := parseScopeParams(r)
	if err != nil {
		return nil, err
	}
	limit, err := parseLimitParam(r, defaultLeaderboardLimit)
	if err != nil {
		return nil, err
	}
	periodEnd, err := parsePeriodEndParam(r)
	if err != nil {
		return nil, err
	}

	return &services.GetLeaderboardRequest{
		Category:  models.LeaderboardCategory(r.URL.Query().Get("category")),
		Period:    models.LeaderboardPeriod(r.URL.Query().Get("period")),
		PeriodEnd: periodEnd,
		Scope:     scope,
		Limit:     limit,
	}, nil
}
