package places

import (
	"context"
	"math"

	"github.com/smartgym/location-cli/internal/model"
)

// Rating threshold for a competitor that counts as strong.
const highlyRatedThreshold = 4.0

// AnalyzeCompetition searches competing gyms and derives the density score:
// clamp(100 - 15*count, 0, 100). Zero gyms scores 100, seven or more score 0.
func (c *httpClient) AnalyzeCompetition(ctx context.Context, center model.Coordinates, radiusMeters int) (*model.CompetitionAnalysis, error) {
	competitors, err := c.SearchNearby(ctx, center, radiusMeters, c.categories.Competitors)
	if err != nil {
		return nil, err
	}

	var ratingSum float64
	highlyRated := 0
	for _, comp := range competitors {
		ratingSum += comp.Rating
		if comp.Rating >= highlyRatedThreshold {
			highlyRated++
		}
	}

	avgRating := 0.0
	if len(competitors) > 0 {
		avgRating = math.Round(ratingSum/float64(len(competitors))*10) / 10
	}

	return &model.CompetitionAnalysis{
		Count:            len(competitors),
		Competitors:      competitors,
		AverageRating:    avgRating,
		HighlyRatedCount: highlyRated,
		DensityScore:     DensityScore(len(competitors)),
	}, nil
}

// AnalyzeDemographics measures target-group presence from residential,
// office, and education/young-adult places.
func (c *httpClient) AnalyzeDemographics(ctx context.Context, center model.Coordinates, radiusMeters int) (*model.DemographicAnalysis, error) {
	residential, err := c.SearchNearby(ctx, center, radiusMeters, c.categories.Residential)
	if err != nil {
		return nil, err
	}
	offices, err := c.SearchNearby(ctx, center, radiusMeters, c.categories.Office)
	if err != nil {
		return nil, err
	}
	young, err := c.SearchNearby(ctx, center, radiusMeters, c.categories.Young)
	if err != nil {
		return nil, err
	}

	primary := "residents"
	if len(young) > 2 {
		primary = "young_professionals"
	}

	return &model.DemographicAnalysis{
		ResidentialCount: len(residential),
		OfficeCount:      len(offices),
		YoungCount:       len(young),
		DemographicScore: clamp(float64(len(residential)*5+len(offices)*3+len(young)*8), 0, 100),
		PrimaryTarget:    primary,
	}, nil
}

// AnalyzeAccessibility measures transit and parking coverage.
func (c *httpClient) AnalyzeAccessibility(ctx context.Context, center model.Coordinates, radiusMeters int) (*model.AccessibilityAnalysis, error) {
	transit, err := c.SearchNearby(ctx, center, radiusMeters, c.categories.Transit)
	if err != nil {
		return nil, err
	}
	parking, err := c.SearchNearby(ctx, center, radiusMeters, c.categories.Parking)
	if err != nil {
		return nil, err
	}

	var stopNames []string
	for _, t := range transit {
		if len(stopNames) == 3 {
			break
		}
		if t.Name != "" {
			stopNames = append(stopNames, t.Name)
		}
	}

	return &model.AccessibilityAnalysis{
		PublicTransportCount: len(transit),
		ParkingCount:         len(parking),
		AccessibilityScore:   clamp(float64(len(transit)*20+len(parking)*5), 0, 100),
		TransportTypes:       stopNames,
	}, nil
}

// DensityScore is the inverse-competition score: clamp(100 - 15c, 0, 100).
func DensityScore(competitorCount int) float64 {
	return clamp(100-float64(competitorCount)*15, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
