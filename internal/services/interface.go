package services

import (
	"context"

	"merithub/internal/models"
)

// MetricsService aggregates recorded activity into per-profile counters.
type MetricsService interface {
	// Aggregate computes one profile's metric bundle for a year (0 = all
	// time) within a scope. Pure read; identical history always yields an
	// identical bundle.
	Aggregate(ctx context.Context, profileID int64, year int, scope models.Scope) (*models.MetricBundle, error)
}

// BadgeService ingests qualifying activity and maintains tier grants.
type BadgeService interface {
	RecordReview(ctx context.Context, req *RecordReviewRequest) (*IngestResult, error)
	RecordSubmission(ctx context.Context, req *RecordSubmissionRequest) (*IngestResult, error)
	RecordIssue(ctx context.Context, req *RecordIssueRequest) (*IngestResult, error)

	ListCatalog(ctx context.Context) ([]*models.Badge, error)
	ListProfileBadges(ctx context.Context, profileID int64) ([]*models.UserBadge, error)

	// Evaluate recomputes one profile's metric for a family and grants
	// every reached, not-yet-granted tier. Idempotent; returns only the
	// grants created by this call.
	Evaluate(ctx context.Context, profileID int64, family models.BadgeFamily, year int, journalID *int64) ([]*models.UserBadge, error)
}

// LeaderboardService builds and serves ranking snapshots.
type LeaderboardService interface {
	// Get returns the stored snapshot for the request key, building it
	// first when absent.
	Get(ctx context.Context, req *GetLeaderboardRequest) (*models.LeaderboardSnapshot, error)
	// Rebuild recomputes and atomically replaces the snapshot.
	Rebuild(ctx context.Context, req *GetLeaderboardRequest) (*models.LeaderboardSnapshot, error)
}

// AwardService computes and memoizes "best of" awards.
type AwardService interface {
	GetOrCompute(ctx context.Context, req *GetAwardRequest) (*models.Award, error)
	List(ctx context.Context, year int) ([]*models.Award, error)
}

// CertificateService issues and verifies certificates.
type CertificateService interface {
	Issue(ctx context.Context, req *IssueCertificateRequest) (*models.Certificate, error)
	// Verify resolves a public verification code. Unknown codes and
	// certificates not marked public yield an invalid result, never an
	// error.
	Verify(ctx context.Context, code string) (*models.VerificationResult, error)
	ListByProfile(ctx context.Context, profileID int64) ([]*models.Certificate, error)
}
