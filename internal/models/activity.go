package models

import "time"

// Submission statuses that qualify as publication activity.
const (
	SubmissionAccepted  = "ACCEPTED"
	SubmissionPublished = "PUBLISHED"
)

// ReviewActivity is one completed-review record in the event history the
// aggregator reads. SourceEventID makes at-least-once ingestion idempotent.
type ReviewActivity struct {
	ID             int64     `json:"id" db:"id"`
	SourceEventID  string    `json:"source_event_id" db:"source_event_id"`
	ProfileID      int64     `json:"profile_id" db:"profile_id"`
	JournalID      int64     `json:"journal_id" db:"journal_id"`
	Year           int       `json:"year" db:"year"`
	QualityScore   float64   `json:"quality_score" db:"quality_score"`
	TurnaroundDays int       `json:"turnaround_days" db:"turnaround_days"`
	CompletedAt    time.Time `json:"completed_at" db:"completed_at"`
}

// SubmissionActivity is one accepted/published submission record.
type SubmissionActivity struct {
	ID            int64     `json:"id" db:"id"`
	SourceEventID string    `json:"source_event_id" db:"source_event_id"`
	ProfileID     int64     `json:"profile_id" db:"profile_id"`
	JournalID     int64     `json:"journal_id" db:"journal_id"`
	Year          int       `json:"year" db:"year"`
	Status        string    `json:"status" db:"status"`
	Citations     int       `json:"citations" db:"citations"`
	DecidedAt     time.Time `json:"decided_at" db:"decided_at"`
}

// EditorActivity is one published-issue record credited to the handling
// editor.
type EditorActivity struct {
	ID            int64     `json:"id" db:"id"`
	SourceEventID string    `json:"source_event_id" db:"source_event_id"`
	ProfileID     int64     `json:"profile_id" db:"profile_id"`
	JournalID     int64     `json:"journal_id" db:"journal_id"`
	Year          int       `json:"year" db:"year"`
	PublishedAt   time.Time `json:"published_at" db:"published_at"`
}

// MetricBundle is the aggregated per-profile counter set for one
// (family, year, scope). Re-running aggregation over the same history
// always yields the same bundle regardless of event arrival order.
type MetricBundle struct {
	ProfileID         int64      `json:"profile_id"`
	Year              int        `json:"year"`
	ReviewsCompleted  int        `json:"reviews_completed"`
	AvgQualityScore   float64    `json:"avg_quality_score"`
	AvgTurnaroundDays float64    `json:"avg_turnaround_days"`
	Publications      int        `json:"publications"`
	Citations         int        `json:"citations"`
	EditedIssues      int        `json:"edited_issues"`
	FirstActivityAt   *time.Time `json:"first_activity_at,omitempty"`
}

// FamilyCounter returns the counter a badge family's thresholds are
// compared against.
func (m *MetricBundle) FamilyCounter(family BadgeFamily) int {
	switch family {
	case FamilyReviewer:
		return m.ReviewsCompleted
	case FamilyAuthor:
		return m.Publications
	case FamilyEditor:
		return m.EditedIssues
	}
	return 0
}
