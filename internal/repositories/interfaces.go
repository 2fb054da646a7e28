package repositories

import (
	"context"
	"time"

	"merithub/internal/models"
)

// MetricsFilter narrows activity aggregation to a scope and window.
// Year 0 means all years; nil Since/Until mean an unbounded window.
type MetricsFilter struct {
	Scope models.Scope
	Year  int
	Since *time.Time
	Until *time.Time
}

// ActivityRepository stores the ingested activity history and serves the
// order-independent aggregations the engine is built on.
type ActivityRepository interface {
	// InsertReview records a completed review. Returns false when the
	// source event was already recorded.
	InsertReview(ctx context.Context, activity *models.ReviewActivity) (bool, error)
	// InsertSubmission records an accepted/published submission decision.
	InsertSubmission(ctx context.Context, activity *models.SubmissionActivity) (bool, error)
	// InsertEditorActivity records a published issue credit.
	InsertEditorActivity(ctx context.Context, activity *models.EditorActivity) (bool, error)

	// GetProfileMetrics aggregates one profile's counters.
	GetProfileMetrics(ctx context.Context, profileID int64, filter MetricsFilter) (*models.MetricBundle, error)
	// ListMetrics aggregates counters for every profile with activity in
	// the filter's scope and window.
	ListMetrics(ctx context.Context, filter MetricsFilter) ([]*models.MetricBundle, error)
}

// BadgeRepository serves the badge catalog and persists grants.
type BadgeRepository interface {
	ListBadges(ctx context.Context, activeOnly bool) ([]*models.Badge, error)
	GetBadgeByID(ctx context.Context, id int64) (*models.Badge, error)
	// ListFamilyBadges returns one family's active ladder ordered by
	// ascending tier.
	ListFamilyBadges(ctx context.Context, family models.BadgeFamily) ([]*models.Badge, error)

	// InsertGrant persists a grant. Returns false when the unique grant
	// constraint reports the badge as already granted.
	InsertGrant(ctx context.Context, grant *models.UserBadge) (bool, error)
	GetGrantByID(ctx context.Context, id int64) (*models.UserBadge, error)
	ListGrantsByProfile(ctx context.Context, profileID int64) ([]*models.UserBadge, error)
	CountHolders(ctx context.Context, badgeID int64) (int64, error)
}

// LeaderboardRepository persists immutable ranking snapshots.
type LeaderboardRepository interface {
	// ReplaceSnapshot atomically swaps the stored snapshot for the
	// snapshot's (category, period, period_end, scope) key.
	ReplaceSnapshot(ctx context.Context, snapshot *models.LeaderboardSnapshot) error
	// GetSnapshot loads the stored snapshot with entries, nil when absent.
	GetSnapshot(ctx context.Context, category models.LeaderboardCategory, period models.LeaderboardPeriod, periodEnd time.Time, scope models.Scope) (*models.LeaderboardSnapshot, error)
}

// AwardRepository persists memoized award computations.
type AwardRepository interface {
	// GetAward loads the stored award for the key, nil when absent.
	GetAward(ctx context.Context, awardType models.AwardType, year int, journalID int64, scope models.Scope) (*models.Award, error)
	GetAwardByID(ctx context.Context, id int64) (*models.Award, error)
	// SaveAward inserts the award; with replace it overwrites the stored
	// row for the same key. Returns false when another writer won the
	// insert race.
	SaveAward(ctx context.Context, award *models.Award, replace bool) (bool, error)
	ListAwardsByYear(ctx context.Context, year int) ([]*models.Award, error)
}

// CertificateRepository persists certificates and the per-year number
// sequences behind them.
type CertificateRepository interface {
	// NextSequence atomically reserves the next number for (prefix, year).
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)
	// Insert persists a certificate. Unique violations surface as typed
	// sentinel errors (ErrDuplicateCode, ErrSubjectAlreadyCertified,
	// ErrDuplicateNumber).
	Insert(ctx context.Context, cert *models.Certificate) error

	GetByID(ctx context.Context, id int64) (*models.Certificate, error)
	GetByNumber(ctx context.Context, number string) (*models.Certificate, error)
	GetByVerificationCode(ctx context.Context, code string) (*models.Certificate, error)
	GetByAwardID(ctx context.Context, awardID int64) (*models.Certificate, error)
	GetByUserBadgeID(ctx context.Context, userBadgeID int64) (*models.Certificate, error)
	ListByProfile(ctx context.Context, profileID int64) ([]*models.Certificate, error)
}

// JournalRepository serves the read-only journal reference mirror.
type JournalRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Journal, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Journal, error)
}
