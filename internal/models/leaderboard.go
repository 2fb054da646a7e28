package models

import (
	"fmt"
	"time"
)

// LeaderboardCategory selects which metric a ranking is built from.
type LeaderboardCategory string

const (
	CategoryReviewer      LeaderboardCategory = "REVIEWER"
	CategoryAuthor        LeaderboardCategory = "AUTHOR"
	CategoryCitations     LeaderboardCategory = "CITATIONS"
	CategoryContributions LeaderboardCategory = "CONTRIBUTIONS"
)

// IsValid reports whether the category is known.
func (c LeaderboardCategory) IsValid() bool {
	switch c {
	case CategoryReviewer, CategoryAuthor, CategoryCitations, CategoryContributions:
		return true
	}
	return false
}

// LeaderboardPeriod is the time window a snapshot covers.
type LeaderboardPeriod string

const (
	PeriodMonthly   LeaderboardPeriod = "MONTHLY"
	PeriodQuarterly LeaderboardPeriod = "QUARTERLY"
	PeriodYearly    LeaderboardPeriod = "YEARLY"
	PeriodAllTime   LeaderboardPeriod = "ALL_TIME"
)

// IsValid reports whether the period is known.
func (p LeaderboardPeriod) IsValid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly, PeriodAllTime:
		return true
	}
	return false
}

// Scope narrows a leaderboard or award computation. Zero values mean
// "no filter on this dimension".
type Scope struct {
	JournalID  *int64  `json:"journal_id,omitempty"`
	Discipline *string `json:"discipline,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// Key returns a stable string form of the scope, used in snapshot keys
// and cache keys. Unset dimensions collapse to "-".
func (s Scope) Key() string {
	journal := "-"
	if s.JournalID != nil {
		journal = fmt.Sprintf("%d", *s.JournalID)
	}
	discipline, country := "-", "-"
	if s.Discipline != nil && *s.Discipline != "" {
		discipline = *s.Discipline
	}
	if s.Country != nil && *s.Country != "" {
		country = *s.Country
	}
	return journal + ":" + discipline + ":" + country
}

// IsZero reports whether no filter dimension is set.
func (s Scope) IsZero() bool {
	return s.JournalID == nil &&
		(s.Discipline == nil || *s.Discipline == "") &&
		(s.Country == nil || *s.Country == "")
}

// LeaderboardSnapshot is one immutable ranking result. Callers always
// read a specific snapshot, never a mutable cursor; a rebuild replaces
// the snapshot for the same key in a single transaction.
type LeaderboardSnapshot struct {
	ID        int64               `json:"id" db:"id"`
	Category  LeaderboardCategory `json:"category" db:"category"`
	Period    LeaderboardPeriod   `json:"period" db:"period"`
	PeriodEnd time.Time           `json:"period_end" db:"period_end"`
	Scope     Scope               `json:"scope"`
	BuiltAt   time.Time           `json:"built_at" db:"built_at"`

	Entries []*LeaderboardEntry `json:"entries" db:"-"`
}

// LeaderboardEntry is one ranked row. Ranks are dense 1..N; ties on
// score still receive distinct ranks via the deterministic tie-break.
type LeaderboardEntry struct {
	ID         int64         `json:"id" db:"id"`
	SnapshotID int64         `json:"-" db:"snapshot_id"`
	Rank       int           `json:"rank" db:"rank"`
	ProfileID  int64         `json:"profile_id" db:"profile_id"`
	Score      float64       `json:"score" db:"score"`
	Metrics    *MetricBundle `json:"metrics,omitempty" db:"-"`
}

// Top returns the first n entries without mutating the snapshot.
func (s *LeaderboardSnapshot) Top(n int) []*LeaderboardEntry {
	if n <= 0 || n >= len(s.Entries) {
		return s.Entries
	}
	return s.Entries[:n]
}
