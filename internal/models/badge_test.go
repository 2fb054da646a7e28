package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierOrdering(t *testing.T) {
	assert.True(t, TierBronze.Less(TierSilver))
	assert.True(t, TierSilver.Less(TierGold))
	assert.True(t, TierGold.Less(TierPlatinum))
	assert.True(t, TierPlatinum.Less(TierDiamond))
	assert.False(t, TierDiamond.Less(TierBronze))

	assert.True(t, TierDiamond.IsValid())
	assert.False(t, BadgeTier("IRON").IsValid())
	assert.Equal(t, 0, BadgeTier("IRON").Order())
}

func TestValidateCatalog(t *testing.T) {
	ladder := []*Badge{
		{Name: "Reviewer Bronze", Family: FamilyReviewer, Tier: TierBronze, Threshold: 5},
		{Name: "Reviewer Silver", Family: FamilyReviewer, Tier: TierSilver, Threshold: 15},
		{Name: "Reviewer Gold", Family: FamilyReviewer, Tier: TierGold, Threshold: 40},
	}
	require.NoError(t, ValidateCatalog(FamilyReviewer, ladder))
}

func TestValidateCatalogRejectsViolations(t *testing.T) {
	wrongFamily := []*Badge{
		{Name: "Author Bronze", Family: FamilyAuthor, Tier: TierBronze, Threshold: 1},
	}
	assert.Error(t, ValidateCatalog(FamilyReviewer, wrongFamily))

	tierOutOfOrder := []*Badge{
		{Name: "Silver", Family: FamilyReviewer, Tier: TierSilver, Threshold: 5},
		{Name: "Bronze", Family: FamilyReviewer, Tier: TierBronze, Threshold: 15},
	}
	assert.Error(t, ValidateCatalog(FamilyReviewer, tierOutOfOrder))

	flatThreshold := []*Badge{
		{Name: "Bronze", Family: FamilyReviewer, Tier: TierBronze, Threshold: 10},
		{Name: "Silver", Family: FamilyReviewer, Tier: TierSilver, Threshold: 10},
	}
	assert.Error(t, ValidateCatalog(FamilyReviewer, flatThreshold))
}

func TestFamilyCounter(t *testing.T) {
	bundle := &MetricBundle{ReviewsCompleted: 3, Publications: 7, EditedIssues: 2}

	assert.Equal(t, 3, bundle.FamilyCounter(FamilyReviewer))
	assert.Equal(t, 7, bundle.FamilyCounter(FamilyAuthor))
	assert.Equal(t, 2, bundle.FamilyCounter(FamilyEditor))
	assert.Equal(t, 0, bundle.FamilyCounter(BadgeFamily("OTHER")))
}
