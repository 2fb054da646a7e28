package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"merithub/internal/models"
	"merithub/internal/response"
	"merithub/internal/services"

	"go.uber.org/zap"
)

// AwardController serves memoized award computations.
type AwardController struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAwardController creates a new award controller
func NewAwardController(serviceCollection *services.Collection, logger *zap.Logger) *AwardController {
	return &AwardController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: response.NewBuilder(logger),
	}
}

// Get handles GET /api/v1/awards/compute. The first request for a key
// computes and stores the award; later requests return the stored row
// unless recompute=true.
func (c *AwardController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	req, err := c.requestFromQuery(r)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	award, err := c.services.Award.GetOrCompute(ctx, req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	c.responseBuilder.Success(w, r, award)
}

const defaultAwardPageSize = 50

// List handles GET /api/v1/awards with offset pagination.
func (c *AwardController) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	year, err := parseYearParam(r)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}
	page, pageSize, err := parsePageParams(r, defaultAwardPageSize)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	awards, err := c.services.Award.List(ctx, year)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	total := len(awards)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	c.responseBuilder.SuccessWithMeta(w, r, awards[start:end], &response.Meta{
		Pagination: response.NewPaginationMeta(page, pageSize, int64(total)),
	})
}

func (c *AwardController) requestFromQuery(r *http.Request) (*services.GetAwardRequest, error) {
	journalID, err := strconv.ParseInt(r.URL.Query().Get("journal_id"), 10, 64)
	if err != nil {
		return nil, services.NewValidationError("journal_id is required and must be a positive integer", err)
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return nil, services.NewValidationError("year is required and must be an integer", err)
	}

	var scope models.Scope
	if discipline := r.URL.Query().Get("discipline"); discipline != "" {
		scope.Discipline = &discipline
	}
	if country := r.URL.Query().Get("country"); country != "" {
		scope.Country = &country
	}

	return &services.GetAwardRequest{
		AwardType: models.AwardType(r.URL.Query().Get("type")),
		Year:      year,
		JournalID: journalID,
		Scope:     scope,
		Recompute: parseBoolParam(r, "recompute"),
	}, nil
}
