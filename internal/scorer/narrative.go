package scorer

import (
	"fmt"

	"github.com/smartgym/location-cli/internal/model"
)

// Narrative trigger thresholds.
const (
	highCompetitionCount   = 5
	strongCompetitorsCount = 2
	weakCompetitionRating  = 3.5
	lowDemographicScore    = 40
	minTransitStops        = 2
	lowReachabilityScore   = 30
	weakMunicipalOverall   = 40
	studentDensityCount    = 3
	officeDensityCount     = 5
	goodAccessibilityScore = 70
	highReachabilityScore  = 70
	strongMunicipalOverall = 70
)

// identifyRisks evaluates the fixed risk triggers in deterministic order:
// competition, demographics, accessibility, reachability, external
// demographics. Absent data suppresses a trigger, never errors.
func identifyRisks(bundle *model.Bundle) []string {
	var risks []string

	if comp := bundle.Competition; comp != nil {
		if comp.Count >= highCompetitionCount {
			risks = append(risks, fmt.Sprintf("High competition (%d gyms within the search radius)", comp.Count))
		}
		if comp.HighlyRatedCount >= strongCompetitorsCount {
			risks = append(risks, "Strong competition: several highly rated gyms nearby")
		}
	}

	if demo := bundle.Demographics; demo != nil && demo.DemographicScore < lowDemographicScore {
		risks = append(risks, "Low target-group density in the surrounding area")
	}

	if access := bundle.Accessibility; access != nil && access.PublicTransportCount < minTransitStops {
		risks = append(risks, "Poor public transport connections")
	}

	if iso := bundle.Isochrones; iso != nil && iso.Score < lowReachabilityScore {
		risks = append(risks, "Small walk-in catchment: low ten-minute walking coverage")
	}

	if muni := bundle.Municipal; muni != nil && !muni.Demographics.Empty() && muni.Scores.Overall < weakMunicipalOverall {
		risks = append(risks, "Weak municipal demographics per the statistical registry")
	}

	return risks
}

// identifyOpportunities evaluates the fixed opportunity triggers in
// deterministic order: competition, demographics, accessibility,
// reachability, external demographics, postal centrality.
func identifyOpportunities(bundle *model.Bundle) []string {
	var opps []string

	if comp := bundle.Competition; comp != nil {
		if comp.Count == 0 {
			opps = append(opps, "No direct competition in the area (blue ocean)")
		}
		if comp.Count > 0 && comp.AverageRating < weakCompetitionRating {
			opps = append(opps, "Weak competition: room to win on service quality")
		}
	}

	if demo := bundle.Demographics; demo != nil {
		if demo.YoungCount >= studentDensityCount {
			opps = append(opps, "High student density: ideal target group")
		}
		if demo.OfficeCount >= officeDensityCount {
			opps = append(opps, "Many offices: potential for corporate memberships")
		}
	}

	if access := bundle.Accessibility; access != nil && access.AccessibilityScore > goodAccessibilityScore {
		opps = append(opps, "Excellent accessibility")
	}

	if iso := bundle.Isochrones; iso != nil && iso.Score >= highReachabilityScore {
		opps = append(opps, "Dense walkable catchment within ten minutes")
	}

	if muni := bundle.Municipal; muni != nil && !muni.Demographics.Empty() && muni.Scores.Overall >= strongMunicipalOverall {
		opps = append(opps, "Strong municipal demographics per the statistical registry")
	}

	if postal := bundle.Postal; postal != nil && postal.Available() && postal.IsCentral {
		opps = append(opps, "Central business-district postal code")
	}

	return opps
}
