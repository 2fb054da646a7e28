package models

import "time"

// AwardType identifies one "best of" award definition.
type AwardType string

const (
	AwardBestReviewer        AwardType = "BEST_REVIEWER"
	AwardResearcherOfTheYear AwardType = "RESEARCHER_OF_THE_YEAR"
	AwardBestEditor          AwardType = "BEST_EDITOR"
)

// IsValid reports whether the award type is known.
func (t AwardType) IsValid() bool {
	switch t {
	case AwardBestReviewer, AwardResearcherOfTheYear, AwardBestEditor:
		return true
	}
	return false
}

// Award is the materialized result of one award computation. The
// (type, year, journal, scope) key is unique; the first request computes
// and persists, later requests read the stored row.
type Award struct {
	ID                 int64         `json:"id" db:"id"`
	AwardType          AwardType     `json:"award_type" db:"award_type"`
	Year               int           `json:"year" db:"year"`
	JournalID          int64         `json:"journal_id" db:"journal_id"`
	Discipline         *string       `json:"discipline,omitempty" db:"discipline"`
	Country            *string       `json:"country,omitempty" db:"country"`
	RecipientProfileID int64         `json:"recipient_profile_id" db:"recipient_profile_id"`
	Citation           string        `json:"citation" db:"citation"`
	Metrics            *MetricBundle `json:"metrics,omitempty" db:"-"`
	ComputedAt         time.Time     `json:"computed_at" db:"computed_at"`
}
