// Package postal estimates postal-code-level demographics from municipality
// figures using fixed heuristic multipliers. The registry publishes data by
// municipality, not postal code, so everything here is an approximation and
// is labeled as such in the output.
package postal

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/smartgym/location-cli/internal/model"
)

// Heuristic constants. These encode rough real-world approximations and are
// kept verbatim for behavioral compatibility with earlier analyses.
const (
	// Urban municipalities pack more people into each postal code.
	urbanDensityMultiplier = 2.5

	// A single postal code covers roughly 2% of its city's population.
	cityShareFactor = 0.02

	// Central districts skew toward young professionals.
	centralYoungMultiplier    = 1.20
	peripheralYoungMultiplier = 0.95
	maxYoungPercentage        = 40

	// Central districts skew wealthier.
	centralIncomeMultiplier = 1.15
)

// urbanProvinces maps the two-digit postal prefix of the large urban
// provinces to their names. Membership defines IsUrban.
var urbanProvinces = map[string]string{
	"28": "Madrid",
	"08": "Barcelona",
	"46": "Valencia",
	"41": "Sevilla",
	"15": "A Coruña",
	"50": "Zaragoza",
	"18": "Granada",
	"29": "Málaga",
	"05": "Ávila",
}

// Estimator derives postal-code adjustments. It exists as a named type so a
// real postal-level data source can replace it without touching the scorer.
type Estimator struct{}

// NewEstimator creates a heuristic postal estimator.
func NewEstimator() *Estimator { return &Estimator{} }

// Adjust produces a postal-code-level estimate from municipality figures.
// Returns the unavailable sentinel when the code is not exactly 5 digits or
// no municipality profile exists.
func (e *Estimator) Adjust(profile model.DemographicProfile, postalCode string, cityReference string) model.PostalAdjustment {
	if !ValidCode(postalCode) || profile.Empty() {
		return Unavailable(postalCode)
	}

	province := postalCode[:2]
	provinceName, isUrban := urbanProvinces[province]
	if !isUrban {
		provinceName = "Unknown"
	}

	// Last digit 0/1/2 marks central/business districts.
	lastDigit := postalCode[len(postalCode)-1]
	isCentral := lastDigit == '0' || lastDigit == '1' || lastDigit == '2'

	densityMul := 1.0
	if isUrban {
		densityMul = urbanDensityMultiplier
	}
	estimatedPop := int(float64(profile.TotalPopulation) * densityMul * cityShareFactor)

	youngMul := peripheralYoungMultiplier
	if isCentral {
		youngMul = centralYoungMultiplier
	}
	young := math.Min(maxYoungPercentage, profile.YoungPercentage*youngMul)

	income := profile.IncomeIndex
	if isCentral {
		income *= centralIncomeMultiplier
	}

	return model.PostalAdjustment{
		PostalCode:          postalCode,
		Province:            provinceName,
		IsUrban:             isUrban,
		IsCentral:           isCentral,
		EstimatedPopulation: estimatedPop,
		YoungPercentage:     round1(young),
		IncomeIndex:         round1(income),
		CityReference:       cityReference,
		DataQuality:         model.QualityEstimated,
		Notes:               "Postal figures are extrapolated from municipality data, not measured.",
	}
}

// Ranked is one entry of a postal-code comparison.
type Ranked struct {
	model.PostalAdjustment
	Attractiveness float64 `json:"attractiveness_score"`
}

// Rank compares several postal codes of one municipality and orders them by
// attractiveness: young%*2 + (income-100)*0.5 + 2 if central.
func (e *Estimator) Rank(profile model.DemographicProfile, postalCodes []string, cityReference string) []Ranked {
	ranked := make([]Ranked, 0, len(postalCodes))
	for _, code := range postalCodes {
		adj := e.Adjust(profile, code, cityReference)
		score := adj.YoungPercentage*2 + (adj.IncomeIndex-100)*0.5
		if adj.IsCentral {
			score += 2
		}
		if !adj.Available() {
			score = 0
		}
		ranked = append(ranked, Ranked{PostalAdjustment: adj, Attractiveness: round1(score)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Attractiveness > ranked[j].Attractiveness
	})
	return ranked
}

// Unavailable is the sentinel result for codes that cannot be estimated.
func Unavailable(postalCode string) model.PostalAdjustment {
	return model.PostalAdjustment{
		PostalCode:  postalCode,
		DataQuality: model.QualityUnavailable,
		Notes:       "No postal-level data available.",
	}
}

// ValidCode reports whether s is exactly five digits.
func ValidCode(s string) bool {
	if len(s) != 5 {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) == -1
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
