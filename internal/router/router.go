package router

import (
	"net/http"
	"time"

	"merithub/internal/cache"
	"merithub/internal/database"
	"merithub/internal/events"
	v1 "merithub/internal/handlers/api/v1"
	"merithub/internal/middleware"
	"merithub/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Dependencies holds everything the router wires together.
type Dependencies struct {
	Services *services.Collection
	DB       *database.Manager
	Cache    cache.Cache
	Bus      events.EventBus
	Logger   *zap.Logger
}

// New builds the HTTP routing tree.
func New(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	eventsController := v1.NewEventsController(deps.Services, logger)
	badgeController := v1.NewBadgeController(deps.Services, logger)
	leaderboardController := v1.NewLeaderboardController(deps.Services, logger)
	awardController := v1.NewAwardController(deps.Services, logger)
	certificateController := v1.NewCertificateController(deps.Services, logger)
	streamController := v1.NewStreamController(deps.Bus, logger)
	healthController := v1.NewHealthController(deps.DB, deps.Cache, deps.Bus, logger)

	// One shared bucket set for the unauthenticated public surface.
	publicLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(), logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID(logger))
	r.Use(middleware.RequestLogging(logger, middleware.DefaultLoggingConfig()))
	r.Use(middleware.Recovery(middleware.DefaultRecoveryConfig(), logger))
	r.Use(chimiddleware.Timeout(90 * time.Second))

	// Liveness and readiness.
	r.Get("/health", healthController.Ready)
	r.Get("/health/live", healthController.Live)
	r.Get("/health/db", healthController.Database)

	// Public certificate verification. No auth, rate limited, never a
	// 5xx on an unknown code.
	r.With(middleware.RateLimit(publicLimiter)).Get("/verify/{code}", certificateController.Verify)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/review-completed", eventsController.RecordReview)
			r.Post("/submission-status", eventsController.RecordSubmission)
			r.Post("/issue-published", eventsController.RecordIssue)
		})

		r.Get("/badges", badgeController.ListCatalog)

		r.Route("/profiles/{profileID}", func(r chi.Router) {
			r.Get("/badges", badgeController.ListProfileBadges)
			r.Get("/metrics", badgeController.GetProfileMetrics)
			r.Get("/certificates", certificateController.ListProfileCertificates)
		})

		r.Route("/leaderboards", func(r chi.Router) {
			r.Get("/", leaderboardController.Get)
			r.Post("/rebuild", leaderboardController.Rebuild)
		})

		r.Route("/awards", func(r chi.Router) {
			r.Get("/", awardController.List)
			r.Get("/compute", awardController.Get)
		})

		r.Post("/certificates", certificateController.Issue)

		r.With(middleware.RateLimit(publicLimiter)).Get("/achievements/stream", streamController.Stream)
	})

	return r
}
