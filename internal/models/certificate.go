package models

import "time"

// Certificate is a uniquely numbered, publicly verifiable record issued
// for exactly one Award or one UserBadge, never both. Number and
// verification code are immutable once issued.
type Certificate struct {
	ID                 int64     `json:"id" db:"id"`
	CertificateNumber  string    `json:"certificate_number" db:"certificate_number"`
	VerificationCode   string    `json:"verification_code" db:"verification_code"`
	Title              string    `json:"title" db:"title"`
	RecipientProfileID int64     `json:"recipient_profile_id" db:"recipient_profile_id"`
	RecipientName      string    `json:"recipient_name" db:"recipient_name"`
	JournalID          *int64    `json:"journal_id,omitempty" db:"journal_id"`
	AwardID            *int64    `json:"award_id,omitempty" db:"award_id"`
	UserBadgeID        *int64    `json:"user_badge_id,omitempty" db:"user_badge_id"`
	IsPublic           bool      `json:"is_public" db:"is_public"`
	IssuedAt           time.Time `json:"issued_at" db:"issued_at"`
}

// VerificationResult is the public view returned by the verification
// lookup. It intentionally carries no internal identifiers.
type VerificationResult struct {
	Valid             bool      `json:"valid"`
	CertificateNumber string    `json:"certificate_number,omitempty"`
	Title             string    `json:"title,omitempty"`
	RecipientName     string    `json:"recipient_name,omitempty"`
	JournalName       string    `json:"journal_name,omitempty"`
	IssuedAt          time.Time `json:"issued_at,omitempty"`
}
