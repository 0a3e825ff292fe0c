package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartgym/location-cli/internal/model"
)

func TestIdentifyRisks(t *testing.T) {
	bundle := &model.Bundle{
		Competition: &model.CompetitionAnalysis{
			Count:            6,
			HighlyRatedCount: 3,
		},
		Demographics:  &model.DemographicAnalysis{DemographicScore: 30},
		Accessibility: &model.AccessibilityAnalysis{PublicTransportCount: 1},
		Isochrones:    &model.IsochroneResult{Score: 20},
		Municipal: &model.MunicipalAnalysis{
			Demographics: model.DemographicProfile{MunicipalityCode: "28079"},
			Scores:       model.DemographicScores{Overall: 35},
		},
	}

	risks := identifyRisks(bundle)
	assert.Equal(t, []string{
		"High competition (6 gyms within the search radius)",
		"Strong competition: several highly rated gyms nearby",
		"Low target-group density in the surrounding area",
		"Poor public transport connections",
		"Small walk-in catchment: low ten-minute walking coverage",
		"Weak municipal demographics per the statistical registry",
	}, risks)
}

func TestIdentifyRisks_EmptyBundle(t *testing.T) {
	// Absent data suppresses triggers instead of firing them.
	assert.Empty(t, identifyRisks(&model.Bundle{}))
}

func TestIdentifyOpportunities(t *testing.T) {
	bundle := &model.Bundle{
		Competition: &model.CompetitionAnalysis{Count: 0},
		Demographics: &model.DemographicAnalysis{
			YoungCount:  4,
			OfficeCount: 6,
		},
		Accessibility: &model.AccessibilityAnalysis{AccessibilityScore: 85},
		Isochrones:    &model.IsochroneResult{Score: 75},
		Municipal: &model.MunicipalAnalysis{
			Demographics: model.DemographicProfile{MunicipalityCode: "28079"},
			Scores:       model.DemographicScores{Overall: 80},
		},
		Postal: &model.PostalAdjustment{
			IsCentral:   true,
			DataQuality: model.QualityEstimated,
		},
	}

	opps := identifyOpportunities(bundle)
	assert.Equal(t, []string{
		"No direct competition in the area (blue ocean)",
		"High student density: ideal target group",
		"Many offices: potential for corporate memberships",
		"Excellent accessibility",
		"Dense walkable catchment within ten minutes",
		"Strong municipal demographics per the statistical registry",
		"Central business-district postal code",
	}, opps)
}

func TestIdentifyOpportunities_WeakCompetition(t *testing.T) {
	bundle := &model.Bundle{
		Competition: &model.CompetitionAnalysis{Count: 3, AverageRating: 3.2},
	}
	opps := identifyOpportunities(bundle)
	assert.Equal(t, []string{"Weak competition: room to win on service quality"}, opps)
}

func TestIdentifyOpportunities_UnavailablePostalSuppressed(t *testing.T) {
	bundle := &model.Bundle{
		Postal: &model.PostalAdjustment{
			IsCentral:   true,
			DataQuality: model.QualityUnavailable,
		},
	}
	assert.Empty(t, identifyOpportunities(bundle))
}
