package models

import (
	"fmt"
	"time"
)

// BadgeFamily groups badges into a threshold ladder per contribution kind.
type BadgeFamily string

const (
	FamilyReviewer BadgeFamily = "REVIEWER"
	FamilyAuthor   BadgeFamily = "AUTHOR"
	FamilyEditor   BadgeFamily = "EDITOR"
)

// IsValid reports whether the family is a known catalog family.
func (f BadgeFamily) IsValid() bool {
	switch f {
	case FamilyReviewer, FamilyAuthor, FamilyEditor:
		return true
	}
	return false
}

// BadgeTier is an ordered badge level within a family.
type BadgeTier string

const (
	TierBronze   BadgeTier = "BRONZE"
	TierSilver   BadgeTier = "SILVER"
	TierGold     BadgeTier = "GOLD"
	TierPlatinum BadgeTier = "PLATINUM"
	TierDiamond  BadgeTier = "DIAMOND"
)

// tierOrder maps tiers to their position in the ladder (lowest first).
var tierOrder = map[BadgeTier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
	TierDiamond:  5,
}

// Order returns the 1-based ladder position, 0 for an unknown tier.
func (t BadgeTier) Order() int {
	return tierOrder[t]
}

// IsValid reports whether the tier is part of the ladder.
func (t BadgeTier) IsValid() bool {
	return t.Order() > 0
}

// Less reports whether t sits below other in the ladder.
func (t BadgeTier) Less(other BadgeTier) bool {
	return t.Order() < other.Order()
}

// Badge is an immutable catalog entry. Within a family, thresholds are
// strictly increasing with tier order and no two badges share a threshold.
type Badge struct {
	ID        int64       `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Family    BadgeFamily `json:"family" db:"family"`
	Tier      BadgeTier   `json:"tier" db:"tier"`
	Threshold int         `json:"threshold" db:"threshold"`
	Points    int         `json:"points" db:"points"`
	IsActive  bool        `json:"is_active" db:"is_active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`

	// HolderCount is the number of distinct profiles holding the badge,
	// filled on catalog reads.
	HolderCount int64 `json:"holder_count" db:"-"`
}

// ValidateCatalog checks the ladder invariant over one family's badges,
// assuming the slice is sorted by tier order.
func ValidateCatalog(family BadgeFamily, badges []*Badge) error {
	lastOrder, lastThreshold := 0, -1
	for _, b := range badges {
		if b.Family != family {
			return fmt.Errorf("badge %q belongs to family %s, expected %s", b.Name, b.Family, family)
		}
		if !b.Tier.IsValid() {
			return fmt.Errorf("badge %q has unknown tier %q", b.Name, b.Tier)
		}
		if b.Tier.Order() <= lastOrder {
			return fmt.Errorf("badge %q breaks tier ordering in family %s", b.Name, family)
		}
		if b.Threshold <= lastThreshold {
			return fmt.Errorf("badge %q threshold %d is not strictly increasing in family %s", b.Name, b.Threshold, family)
		}
		lastOrder = b.Tier.Order()
		lastThreshold = b.Threshold
	}
	return nil
}
