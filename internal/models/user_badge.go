package models

import "time"

// UserBadge is a single grant of a catalog badge to a profile.
// The (profile, badge, year, journal scope) tuple is unique in storage;
// grants are created only by the badge evaluator and never mutated.
type UserBadge struct {
	ID            int64     `json:"id" db:"id"`
	ProfileID     int64     `json:"profile_id" db:"profile_id"`
	BadgeID       int64     `json:"badge_id" db:"badge_id"`
	Year          int       `json:"year" db:"year"`
	JournalID     *int64    `json:"journal_id,omitempty" db:"journal_id"`
	MetricAtGrant int       `json:"metric_at_grant" db:"metric_at_grant"`
	GrantedAt     time.Time `json:"granted_at" db:"granted_at"`

	// Denormalized catalog fields for read paths.
	Badge *Badge `json:"badge,omitempty" db:"-"`
}
