package services

import (
	"time"

	"merithub/internal/models"
)

// ===============================
// INGESTION TYPES
// ===============================

// RecordReviewRequest carries one review-completed event. SourceEventID
// is the upstream identity; redelivery with the same ID is a no-op.
type RecordReviewRequest struct {
	SourceEventID  string    `json:"source_event_id" validate:"required,max=128"`
	ProfileID      int64     `json:"profile_id" validate:"required,gt=0"`
	JournalID      int64     `json:"journal_id" validate:"required,gt=0"`
	Year           int       `json:"year" validate:"required,gte=2000,lte=2100"`
	QualityScore   float64   `json:"quality_score" validate:"gte=0,lte=5"`
	TurnaroundDays int       `json:"turnaround_days" validate:"gte=0"`
	CompletedAt    time.Time `json:"completed_at" validate:"required"`
}

// RecordSubmissionRequest carries one submission status decision.
// Events carry no manuscript identity, so each qualifying decision is a
// distinct publication activity: a manuscript reported ACCEPTED and
// later PUBLISHED under two source event IDs counts twice. Platforms
// that emit both must reuse the source event ID across the transition.
type RecordSubmissionRequest struct {
	SourceEventID string    `json:"source_event_id" validate:"required,max=128"`
	ProfileID     int64     `json:"profile_id" validate:"required,gt=0"`
	JournalID     int64     `json:"journal_id" validate:"required,gt=0"`
	Year          int       `json:"year" validate:"required,gte=2000,lte=2100"`
	Status        string    `json:"status" validate:"required,oneof=SUBMITTED ACCEPTED PUBLISHED REJECTED"`
	Citations     int       `json:"citations" validate:"gte=0"`
	DecidedAt     time.Time `json:"decided_at" validate:"required"`
}

// RecordIssueRequest carries one published-issue credit for an editor.
type RecordIssueRequest struct {
	SourceEventID string    `json:"source_event_id" validate:"required,max=128"`
	ProfileID     int64     `json:"profile_id" validate:"required,gt=0"`
	JournalID     int64     `json:"journal_id" validate:"required,gt=0"`
	Year          int       `json:"year" validate:"required,gte=2000,lte=2100"`
	PublishedAt   time.Time `json:"published_at" validate:"required"`
}

// IngestResult reports the outcome of one ingestion call.
type IngestResult struct {
	Recorded  bool                `json:"recorded"`
	Duplicate bool                `json:"duplicate"`
	NewGrants []*models.UserBadge `json:"new_grants,omitempty"`
}

// ===============================
// LEADERBOARD TYPES
// ===============================

// GetLeaderboardRequest selects a snapshot. A zero PeriodEnd resolves to
// the current period's end. Limit truncates the returned view only.
type GetLeaderboardRequest struct {
	Category  models.LeaderboardCategory `json:"category" validate:"required"`
	Period    models.LeaderboardPeriod   `json:"period" validate:"required"`
	PeriodEnd time.Time                  `json:"period_end"`
	Scope     models.Scope               `json:"scope"`
	Limit     int                        `json:"limit" validate:"gte=0,lte=500"`
}

// ===============================
// AWARD TYPES
// ===============================

// GetAwardRequest identifies one award computation. Recompute forces a
// fresh computation replacing the memoized row.
type GetAwardRequest struct {
	AwardType models.AwardType `json:"award_type" validate:"required"`
	Year      int              `json:"year" validate:"required,gte=2000,lte=2100"`
	JournalID int64            `json:"journal_id" validate:"required,gt=0"`
	Scope     models.Scope     `json:"scope"`
	Recompute bool             `json:"recompute"`
}

// ===============================
// CERTIFICATE TYPES
// ===============================

// IssueCertificateRequest names the single subject a certificate is
// issued for: exactly one of AwardID or UserBadgeID.
type IssueCertificateRequest struct {
	AwardID       *int64 `json:"award_id,omitempty"`
	UserBadgeID   *int64 `json:"user_badge_id,omitempty"`
	RecipientName string `json:"recipient_name" validate:"required,max=200"`
	IsPublic      bool   `json:"is_public"`
}
