package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"merithub/internal/middleware"
	"merithub/internal/response"
	"merithub/internal/services"

	"go.uber.org/zap"
)

// EventsController accepts upstream platform events. Redelivery of an
// already-seen source_event_id is acknowledged, not re-processed.
type EventsController struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewEventsController creates a new events controller
func NewEventsController(serviceCollection *services.Collection, logger *zap.Logger) *EventsController {
	return &EventsController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: response.NewBuilder(logger),
	}
}

// RecordReview handles POST /api/v1/events/review-completed
func (c *EventsController) RecordReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.requestLogger(r, "record_review")

	var req services.RecordReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Badge.RecordReview(ctx, &req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	c.respondIngest(w, r, result)
}

// RecordSubmission handles POST /api/v1/events/submission-status
func (c *EventsController) RecordSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.requestLogger(r, "record_submission")

	var req services.RecordSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Badge.RecordSubmission(ctx, &req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	c.respondIngest(w, r, result)
}

// RecordIssue handles POST /api/v1/events/issue-published
func (c *EventsController) RecordIssue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := c.requestLogger(r, "record_issue")

	var req services.RecordIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid request body", zap.Error(err))
		c.responseBuilder.Error(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Badge.RecordIssue(ctx, &req)
	if err != nil {
		c.responseBuilder.Error(w, r, err)
		return
	}

	c.respondIngest(w, r, result)
}

// respondIngest maps the ingest outcome: a duplicate acknowledges with
// 200, a freshly recorded event returns 201.
func (c *EventsController) respondIngest(w http.ResponseWriter, r *http.Request, result *services.IngestResult) {
	if result.Duplicate {
		c.responseBuilder.Success(w, r, result)
		return
	}
	c.responseBuilder.Created(w, r, result)
}

func (c *EventsController) requestLogger(r *http.Request, endpoint string) *zap.Logger {
	return c.logger.With(
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("endpoint", endpoint),
	)
}
