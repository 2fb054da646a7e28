package events

import (
	"time"

	"github.com/gofrs/uuid"
)

// Event type names.
const (
	TypeReviewCompleted         = "review.completed"
	TypeSubmissionStatusChanged = "submission.status_changed"
	TypeIssuePublished          = "issue.published"
	TypeBadgeGranted            = "badge.granted"
	TypeAwardComputed           = "award.computed"
	TypeCertificateIssued       = "certificate.issued"
)

func newBase(eventType string) BaseEvent {
	id, _ := uuid.NewV4()
	return BaseEvent{
		EventID:   id.String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// ReviewCompletedEvent signals a reviewer finished a review. Delivery
// is at-least-once and possibly out of order; SourceEventID carries the
// upstream identity used for history-level deduplication.
type ReviewCompletedEvent struct {
	BaseEvent
	SourceEventID  string    `json:"source_event_id"`
	ProfileID      int64     `json:"profile_id"`
	JournalID      int64     `json:"journal_id"`
	Year           int       `json:"year"`
	QualityScore   float64   `json:"quality_score"`
	TurnaroundDays int       `json:"turnaround_days"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewReviewCompletedEvent builds a review-completed event.
func NewReviewCompletedEvent(sourceEventID string, profileID, journalID int64, year int, quality float64, turnaroundDays int, completedAt time.Time) *ReviewCompletedEvent {
	return &ReviewCompletedEvent{
		BaseEvent:      newBase(TypeReviewCompleted),
		SourceEventID:  sourceEventID,
		ProfileID:      profileID,
		JournalID:      journalID,
		Year:           year,
		QualityScore:   quality,
		TurnaroundDays: turnaroundDays,
		CompletedAt:    completedAt,
	}
}

// SubmissionStatusChangedEvent signals a submission decision.
type SubmissionStatusChangedEvent struct {
	BaseEvent
	SourceEventID string    `json:"source_event_id"`
	ProfileID     int64     `json:"profile_id"`
	JournalID     int64     `json:"journal_id"`
	Year          int       `json:"year"`
	Status        string    `json:"status"`
	Citations     int       `json:"citations"`
	DecidedAt     time.Time `json:"decided_at"`
}

// NewSubmissionStatusChangedEvent builds a submission-status event.
func NewSubmissionStatusChangedEvent(sourceEventID string, profileID, journalID int64, year int, status string, citations int, decidedAt time.Time) *SubmissionStatusChangedEvent {
	return &SubmissionStatusChangedEvent{
		BaseEvent:     newBase(TypeSubmissionStatusChanged),
		SourceEventID: sourceEventID,
		ProfileID:     profileID,
		JournalID:     journalID,
		Year:          year,
		Status:        status,
		Citations:     citations,
		DecidedAt:     decidedAt,
	}
}

// IssuePublishedEvent signals a journal issue went out, credited to the
// handling editor.
type IssuePublishedEvent struct {
	BaseEvent
	SourceEventID string    `json:"source_event_id"`
	ProfileID     int64     `json:"profile_id"`
	JournalID     int64     `json:"journal_id"`
	Year          int       `json:"year"`
	PublishedAt   time.Time `json:"published_at"`
}

// NewIssuePublishedEvent builds an issue-published event.
func NewIssuePublishedEvent(sourceEventID string, profileID, journalID int64, year int, publishedAt time.Time) *IssuePublishedEvent {
	return &IssuePublishedEvent{
		BaseEvent:     newBase(TypeIssuePublished),
		SourceEventID: sourceEventID,
		ProfileID:     profileID,
		JournalID:     journalID,
		Year:          year,
		PublishedAt:   publishedAt,
	}
}

// BadgeGrantedEvent is emitted after the evaluator persists a new grant.
type BadgeGrantedEvent struct {
	BaseEvent
	UserBadgeID int64  `json:"user_badge_id"`
	ProfileID   int64  `json:"profile_id"`
	BadgeName   string `json:"badge_name"`
	Family      string `json:"family"`
	Tier        string `json:"tier"`
	Year        int    `json:"year"`
}

// NewBadgeGrantedEvent builds a badge-granted event.
func NewBadgeGrantedEvent(userBadgeID, profileID int64, badgeName, family, tier string, year int) *BadgeGrantedEvent {
	return &BadgeGrantedEvent{
		BaseEvent:   newBase(TypeBadgeGranted),
		UserBadgeID: userBadgeID,
		ProfileID:   profileID,
		BadgeName:   badgeName,
		Family:      family,
		Tier:        tier,
		Year:        year,
	}
}

// AwardComputedEvent is emitted when a new Award row is materialized.
type AwardComputedEvent struct {
	BaseEvent
	AwardID            int64  `json:"award_id"`
	AwardType          string `json:"award_type"`
	Year               int    `json:"year"`
	JournalID          int64  `json:"journal_id"`
	RecipientProfileID int64  `json:"recipient_profile_id"`
}

// NewAwardComputedEvent builds an award-computed event.
func NewAwardComputedEvent(awardID int64, awardType string, year int, journalID, recipientID int64) *AwardComputedEvent {
	return &AwardComputedEvent{
		BaseEvent:          newBase(TypeAwardComputed),
		AwardID:            awardID,
		AwardType:          awardType,
		Year:               year,
		JournalID:          journalID,
		RecipientProfileID: recipientID,
	}
}

// CertificateIssuedEvent is emitted when a certificate is issued.
type CertificateIssuedEvent struct {
	BaseEvent
	CertificateID     int64  `json:"certificate_id"`
	CertificateNumber string `json:"certificate_number"`
	ProfileID         int64  `json:"profile_id"`
}

// NewCertificateIssuedEvent builds a certificate-issued event.
func NewCertificateIssuedEvent(certificateID int64, number string, profileID int64) *CertificateIssuedEvent {
	return &CertificateIssuedEvent{
		BaseEvent:         newBase(TypeCertificateIssued),
		CertificateID:     certificateID,
		CertificateNumber: number,
		ProfileID:         profileID,
	}
}
