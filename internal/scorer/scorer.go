package scorer

import (
	"math"

	"go.uber.org/zap"

	"github.com/smartgym/location-cli/internal/model"
)

// Neutral sub-score substituted for any component whose upstream lookup
// degraded. Keeps a partial bundle scoreable without skewing the total.
const neutralScore = 50

// Post-adjustment constants for the enhanced weight table.
const (
	externalBlendInternal = 0.8
	externalBlendExternal = 0.2
	centralDistrictBonus  = 5
)

// Rating thresholds and their fixed recommendations.
const (
	excellentThreshold = 75
	moderateThreshold  = 50

	recommendExcellent = "Highly recommended: optimal conditions for a new gym."
	recommendModerate  = "Possible, but proceed with care and validate the details."
	recommendRisky     = "Not recommended: too many risk factors."
)

// Scorer computes the aggregate location score. It is a pure function of
// the bundle: identical input produces identical output.
type Scorer struct {
	weights Weights
}

// New creates a Scorer after validating the weight table.
func New(w Weights) (*Scorer, error) {
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Score combines the bundle into the aggregate result. Absent components
// degrade to neutral sub-scores; nothing here errors.
func (s *Scorer) Score(bundle *model.Bundle) *model.ScoreResult {
	sub := map[string]float64{
		"competition":       neutralScore,
		"demographics":      neutralScore,
		"accessibility":     neutralScore,
		"market_saturation": clamp(100-float64(competitorCount(bundle))*10, 0, 100),
		"reachability":      neutralScore,
	}
	if bundle.Competition != nil {
		sub["competition"] = bundle.Competition.DensityScore
	}
	if bundle.Demographics != nil {
		sub["demographics"] = bundle.Demographics.DemographicScore
	}
	if bundle.Accessibility != nil {
		sub["accessibility"] = bundle.Accessibility.AccessibilityScore
	}
	if bundle.Isochrones != nil {
		sub["reachability"] = bundle.Isochrones.Score
	}

	total := sub["competition"]*s.weights.Competition +
		sub["demographics"]*s.weights.Demographics +
		sub["accessibility"]*s.weights.Accessibility +
		sub["market_saturation"]*s.weights.MarketSaturation +
		sub["reachability"]*s.weights.Reachability

	// Post-adjustments, applied in this order.
	if s.weights.BlendExternal && hasMunicipalData(bundle) {
		total = total*externalBlendInternal + bundle.Municipal.Scores.Overall*externalBlendExternal
	}
	if s.weights.CentralBonus && bundle.Postal != nil && bundle.Postal.Available() && bundle.Postal.IsCentral {
		total += centralDistrictBonus
	}
	total = clamp(total, 0, 100)

	rating, recommendation := rate(total)

	result := &model.ScoreResult{
		TotalScore:     round1(total),
		SubScores:      sub,
		Rating:         rating,
		Recommendation: recommendation,
		RiskFactors:    identifyRisks(bundle),
		Opportunities:  identifyOpportunities(bundle),
	}

	zap.L().Debug("scorer: aggregate computed",
		zap.Float64("total", result.TotalScore),
		zap.String("rating", result.Rating),
	)
	return result
}

func rate(total float64) (string, string) {
	switch {
	case total >= excellentThreshold:
		return model.RatingExcellent, recommendExcellent
	case total >= moderateThreshold:
		return model.RatingModerate, recommendModerate
	default:
		return model.RatingRisky, recommendRisky
	}
}

func competitorCount(bundle *model.Bundle) int {
	if bundle.Competition == nil {
		return 0
	}
	return bundle.Competition.Count
}

func hasMunicipalData(bundle *model.Bundle) bool {
	return bundle.Municipal != nil && !bundle.Municipal.Demographics.Empty()
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
