// Package scorer combines the collected analysis bundle into one weighted
// suitability score with a rating bucket and narrative annotations.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/smartgym/location-cli/internal/config"
)

// Weights is the explicit, immutable weight table for the aggregate score.
// Component weights must sum to 1.0.
type Weights struct {
	Competition      float64
	Demographics     float64
	Accessibility    float64
	MarketSaturation float64
	Reachability     float64

	// BlendExternal mixes the municipal registry's overall demographic
	// score into the total (0.8 internal / 0.2 external) when available.
	BlendExternal bool

	// CentralBonus adds a flat +5 when the postal adjustment marks the
	// location as a central district.
	CentralBonus bool
}

// BasicWeights is the legacy four-component table: no reachability term,
// no post-adjustments.
func BasicWeights() Weights {
	return Weights{
		Competition:      0.30,
		Demographics:     0.25,
		Accessibility:    0.25,
		MarketSaturation: 0.20,
	}
}

// EnhancedWeights is the canonical table: reachability weighted in, external
// demographic blend and central-district bonus enabled.
func EnhancedWeights() Weights {
	return Weights{
		Competition:      0.25,
		Demographics:     0.20,
		Accessibility:    0.20,
		MarketSaturation: 0.15,
		Reachability:     0.20,
		BlendExternal:    true,
		CentralBonus:     true,
	}
}

// FromConfig resolves the preset named in the configuration and applies any
// per-component overrides.
func FromConfig(cfg config.ScorerConfig) (Weights, error) {
	var w Weights
	switch strings.ToLower(cfg.Preset) {
	case "", "enhanced":
		w = EnhancedWeights()
	case "basic":
		w = BasicWeights()
	default:
		return Weights{}, eris.Errorf("scorer: unknown preset %q (want basic or enhanced)", cfg.Preset)
	}

	for name, value := range cfg.Weights {
		switch strings.ToLower(name) {
		case "competition":
			w.Competition = value
		case "demographics":
			w.Demographics = value
		case "accessibility":
			w.Accessibility = value
		case "market_saturation":
			w.MarketSaturation = value
		case "reachability":
			w.Reachability = value
		default:
			return Weights{}, eris.Errorf("scorer: unknown weight %q", name)
		}
	}

	if err := ValidateWeights(w); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// ValidateWeights checks that a weight table is internally consistent.
func ValidateWeights(w Weights) error {
	var errs []string

	components := map[string]float64{
		"competition":       w.Competition,
		"demographics":      w.Demographics,
		"accessibility":     w.Accessibility,
		"market_saturation": w.MarketSaturation,
		"reachability":      w.Reachability,
	}
	for name, v := range components {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := w.Competition + w.Demographics + w.Accessibility + w.MarketSaturation + w.Reachability
	if math.Abs(sum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.2f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
