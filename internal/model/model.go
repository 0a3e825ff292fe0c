// Package model holds the transient value structures produced during a
// single location analysis run. Everything here is built once per run and
// never mutated afterwards; there is no persistence layer behind it.
package model

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceSummary is a trimmed place record returned by nearby search.
type PlaceSummary struct {
	Name        string      `json:"name"`
	Rating      float64     `json:"rating,omitempty"`
	RatingCount int         `json:"rating_count,omitempty"`
	Types       []string    `json:"types,omitempty"`
	Location    Coordinates `json:"location"`
}

// CompetitionAnalysis summarizes competing gyms around the candidate site.
type CompetitionAnalysis struct {
	Count            int            `json:"count"`
	Competitors      []PlaceSummary `json:"competitors"`
	AverageRating    float64        `json:"average_rating"`
	HighlyRatedCount int            `json:"highly_rated_count"`
	DensityScore     float64        `json:"density_score"`
}

// DemographicAnalysis summarizes target-group presence from place search.
type DemographicAnalysis struct {
	ResidentialCount int     `json:"residential_count"`
	OfficeCount      int     `json:"office_count"`
	YoungCount       int     `json:"young_count"`
	DemographicScore float64 `json:"demographic_score"`
	PrimaryTarget    string  `json:"primary_target"`
}

// AccessibilityAnalysis summarizes transit and parking coverage.
type AccessibilityAnalysis struct {
	PublicTransportCount int      `json:"public_transport_count"`
	ParkingCount         int      `json:"parking_count"`
	AccessibilityScore   float64  `json:"accessibility_score"`
	TransportTypes       []string `json:"transport_types,omitempty"`
}

// DemographicProfile holds municipality-level registry figures.
// An empty profile (MunicipalityCode == "") is a valid terminal state
// meaning the registry lookup found nothing, not an error.
type DemographicProfile struct {
	TotalPopulation  int     `json:"total_population"`
	PopulationYoung  int     `json:"population_young_20_39"`
	YoungPercentage  float64 `json:"young_percentage"`
	IncomeIndex      float64 `json:"income_index"`
	MunicipalityCode string  `json:"municipality_code,omitempty"`
	Year             int     `json:"year"`
}

// Empty reports whether the municipality lookup failed.
func (p DemographicProfile) Empty() bool { return p.MunicipalityCode == "" }

// DemographicScores are the registry-derived suitability sub-scores, all
// in [0,100].
type DemographicScores struct {
	TargetGroup     float64 `json:"target_group_score"`
	PurchasingPower float64 `json:"purchasing_power_score"`
	MarketSize      float64 `json:"market_size_score"`
	Overall         float64 `json:"overall_demographic_score"`
}

// MunicipalAnalysis bundles a demographic profile with its sub-scores.
type MunicipalAnalysis struct {
	City         string             `json:"city,omitempty"`
	Demographics DemographicProfile `json:"demographics"`
	Scores       DemographicScores  `json:"scores"`
	DataSource   string             `json:"data_source"`
}

// Data-quality sentinels for postal-level estimates.
const (
	QualityEstimated   = "estimated_from_city_data"
	QualityUnavailable = "unavailable"
)

// PostalAdjustment is a postal-code-level demographic estimate derived from
// municipality figures via fixed heuristic multipliers. It is always an
// approximation; DataQuality says so explicitly.
type PostalAdjustment struct {
	PostalCode          string  `json:"postal_code"`
	Province            string  `json:"province,omitempty"`
	IsUrban             bool    `json:"is_urban"`
	IsCentral           bool    `json:"is_central"`
	EstimatedPopulation int     `json:"estimated_population"`
	YoungPercentage     float64 `json:"young_percentage"`
	IncomeIndex         float64 `json:"income_index"`
	CityReference       string  `json:"city_reference,omitempty"`
	DataQuality         string  `json:"data_quality"`
	Notes               string  `json:"notes,omitempty"`
}

// Available reports whether the adjustment carries usable figures.
func (a PostalAdjustment) Available() bool { return a.DataQuality != QualityUnavailable }

// ModeReach holds reachability counts for one travel mode.
type ModeReach struct {
	Reach5Min                int     `json:"reach_5min"`
	Reach10Min               int     `json:"reach_10min"`
	Reach15Min               int     `json:"reach_15min"`
	EstimatedPopulation10Min int     `json:"estimated_population_10min"`
	CoveragePercent          float64 `json:"coverage_percentage,omitempty"`
	AverageTimeMin           float64 `json:"average_time,omitempty"`
}

// CompetitorComparison summarizes walking proximity to nearby competitors.
type CompetitorComparison struct {
	AverageWalkMin float64 `json:"avg_walk_minutes"`
	Analyzed       int     `json:"competitors_analyzed"`
	Accessibility  string  `json:"accessibility"`
}

// IsochroneResult is the grid-sampled travel-time analysis for both modes.
type IsochroneResult struct {
	Walking     ModeReach             `json:"walking"`
	Driving     ModeReach             `json:"driving"`
	GridPoints  int                   `json:"grid_points"`
	Score       float64               `json:"score"`
	Competitors *CompetitorComparison `json:"competitor_comparison,omitempty"`
}

// RentalListing is a single (possibly synthesized) commercial listing.
type RentalListing struct {
	Title      string  `json:"title"`
	Price      int     `json:"price"`
	SizeM2     int     `json:"size"`
	PricePerM2 float64 `json:"price_per_m2"`
	Location   string  `json:"location,omitempty"`
	Estimated  bool    `json:"is_estimated"`
}

// RentalMarketEstimate summarizes commercial rent conditions around the site.
type RentalMarketEstimate struct {
	Available         bool            `json:"available"`
	PropertiesFound   int             `json:"properties_found"`
	Listings          []RentalListing `json:"suitable_properties,omitempty"`
	AveragePricePerM2 float64         `json:"average_price_per_m2"`
	MonthlyEstimate   int             `json:"monthly_estimate_350m2"`
	MarketScore       float64         `json:"market_score"`
	MarketRating      string          `json:"market_rating,omitempty"`
	Estimated         bool            `json:"is_estimated"`
	City              string          `json:"city,omitempty"`
	Note              string          `json:"note,omitempty"`
}

// Bundle is the full collected analysis input handed to the scorer.
// Any pointer field may be nil when the corresponding upstream lookup
// degraded; the scorer substitutes neutral defaults.
type Bundle struct {
	Address       string                 `json:"address"`
	Coordinates   Coordinates            `json:"coordinates"`
	City          string                 `json:"city,omitempty"`
	PostalCode    string                 `json:"postal_code,omitempty"`
	Competition   *CompetitionAnalysis   `json:"competition,omitempty"`
	Demographics  *DemographicAnalysis   `json:"demographics,omitempty"`
	Accessibility *AccessibilityAnalysis `json:"accessibility,omitempty"`
	Isochrones    *IsochroneResult       `json:"travel_analysis,omitempty"`
	Municipal     *MunicipalAnalysis     `json:"ine_demographics,omitempty"`
	Postal        *PostalAdjustment      `json:"postal_code_data,omitempty"`
	Rental        *RentalMarketEstimate  `json:"rental_market,omitempty"`
}

// Rating buckets for the aggregate score.
const (
	RatingExcellent = "EXCELLENT"
	RatingModerate  = "MODERATE"
	RatingRisky     = "RISKY"
)

// ScoreResult is the aggregate output: weighted total, per-component
// sub-scores, rating bucket, and narrative annotations. Created once,
// never mutated.
type ScoreResult struct {
	TotalScore     float64            `json:"total_score"`
	SubScores      map[string]float64 `json:"individual_scores"`
	Rating         string             `json:"rating"`
	Recommendation string             `json:"recommendation"`
	RiskFactors    []string           `json:"risk_factors"`
	Opportunities  []string           `json:"opportunities"`
}
