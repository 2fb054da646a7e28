package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"merithub/internal/response"
	"merithub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BadgeController serves the badge catalog and per-profile grants.
type BadgeController struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewBadgeController creates a new badge controller
func NewBadgeController(serviceCollection *services.Collection, logger *zap.Logger) *BadgeController {
	return &BadgeController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: response.NewBuilder(logger),
	}
}

// ListCatalog handles GET /api/v1/badges
func (c *BadgeController) ListCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	badges, err := c.services.Badge.ListCatalog(ctx)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, badges)
}

// ListProfileBadges handles GET /api/v1/profiles/{profileID}/badges
func (c *BadgeController) ListProfileBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	profileID, err := strconv.ParseInt(chi.URLParam(r, "profileID"), 10, 64)
	if err != nil {
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid profile ID", err))
		return
	}

	grants, err := c.services.Badge.ListProfileBadges(ctx, profileID)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, grants)
}

// GetProfileMetrics handles GET /api/v1/profiles/{profileID}/metrics
func (c *BadgeController) GetProfileMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	profileID, err := strconv.ParseInt(chi.URLParam(r, "profileID"), 10, 64)
	if err != nil {
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid profile ID", err))
		return
	}

	year, err := parseYearParam(r)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	scope, err := parseScopeParams(r)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	bundle, err := c.services.Metrics.Aggregate(ctx, profileID, year, scope)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, bundle)
}
