// Package isochrone approximates travel-time isochrones by sampling a fixed
// square lattice around the origin and querying durations to each point.
package isochrone

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/smartgym/location-cli/internal/model"
	"github.com/smartgym/location-cli/pkg/travel"
)

// Sampling and estimation constants.
const (
	// Kilometers per degree of latitude; longitude is corrected by cos(lat).
	kmPerDegree = 111.0

	// Driving queries sample every 4th lattice point to bound query volume.
	drivingStride = 4

	// peoplePerGridPoint is an average-density assumption (~2000/km² over a
	// 2 km lattice), not a derived figure. Kept for comparability across runs.
	peoplePerGridPoint = 195

	// drivingAreaFactor scales the driving population estimate: one driven
	// sample stands in for roughly four walked ones. Density assumption, not
	// a derived figure.
	drivingAreaFactor = 4

	// Reachability score anchors: 10% ten-minute walking coverage scores 0,
	// 50%+ saturates at 100.
	coverageFloor = 0.10
	coverageSlope = 250
)

// Grid generates the (2N+1)² sample lattice around center, spanning
// ±radiusKM on both axes. Points are orb.Point{lng, lat}. The lattice is
// generated once per run and reused for both travel modes.
func Grid(center model.Coordinates, radiusKM float64, halfWidth int) []orb.Point {
	latStep := radiusKM / kmPerDegree
	lngStep := radiusKM / (kmPerDegree * math.Cos(center.Lat*math.Pi/180))

	points := make([]orb.Point, 0, (2*halfWidth+1)*(2*halfWidth+1))
	for i := -halfWidth; i <= halfWidth; i++ {
		for j := -halfWidth; j <= halfWidth; j++ {
			lat := center.Lat + float64(i)*latStep/float64(halfWidth)
			lng := center.Lng + float64(j)*lngStep/float64(halfWidth)
			points = append(points, orb.Point{lng, lat})
		}
	}
	return points
}

// Sampler runs grid-based reachability analysis through a travel client.
type Sampler struct {
	travel    travel.Client
	radiusKM  float64
	halfWidth int
}

// NewSampler creates a Sampler with the given lattice geometry.
func NewSampler(tc travel.Client, radiusKM float64, halfWidth int) *Sampler {
	return &Sampler{travel: tc, radiusKM: radiusKM, halfWidth: halfWidth}
}

// Analyze samples walking durations over the full lattice and driving
// durations over the strided subset, then derives reach counts, population
// estimates, and the reachability score.
func (s *Sampler) Analyze(ctx context.Context, origin model.Coordinates) (*model.IsochroneResult, error) {
	grid := Grid(origin, s.radiusKM, s.halfWidth)
	dests := toCoordinates(grid)

	zap.L().Debug("isochrone: lattice generated",
		zap.Int("points", len(grid)),
		zap.Float64("radius_km", s.radiusKM),
	)

	walkingSamples, err := s.travel.Durations(ctx, origin, dests, travel.ModeWalking)
	if err != nil {
		return nil, err
	}

	var drivingDests []model.Coordinates
	for i := 0; i < len(dests); i += drivingStride {
		drivingDests = append(drivingDests, dests[i])
	}
	drivingSamples, err := s.travel.Durations(ctx, origin, drivingDests, travel.ModeDriving)
	if err != nil {
		return nil, err
	}

	walking := reach(walkingSamples)
	walking.EstimatedPopulation10Min = walking.Reach10Min * peoplePerGridPoint
	walking.CoveragePercent = round1(float64(walking.Reach10Min) / float64(len(grid)) * 100)
	walking.AverageTimeMin = averageDuration(walkingSamples)

	driving := reach(drivingSamples)
	driving.EstimatedPopulation10Min = driving.Reach10Min * peoplePerGridPoint * drivingAreaFactor

	return &model.IsochroneResult{
		Walking:    walking,
		Driving:    driving,
		GridPoints: len(grid),
		Score:      Score(walking.Reach10Min, len(grid)),
	}, nil
}

// Score maps ten-minute walking coverage to [0,100]: 0 at or below 10%
// coverage, 100 at or above 50%, linear in between.
func Score(reachablePoints, totalPoints int) float64 {
	if totalPoints == 0 {
		return 0
	}
	coverage := float64(reachablePoints) / float64(totalPoints)
	return clamp((coverage-coverageFloor)*coverageSlope, 0, 100)
}

// reach counts points within the 5/10/15-minute bands. Nil durations
// (failed queries) are excluded, never retried.
func reach(samples []travel.Sample) model.ModeReach {
	var r model.ModeReach
	for _, sample := range samples {
		if sample.DurationMin == nil {
			continue
		}
		d := *sample.DurationMin
		if d <= 5 {
			r.Reach5Min++
		}
		if d <= 10 {
			r.Reach10Min++
		}
		if d <= 15 {
			r.Reach15Min++
		}
	}
	return r
}

// CompareCompetitors samples walking times to up to three competitor
// locations. Empty input or all-failed queries yield a zero comparison.
func (s *Sampler) CompareCompetitors(ctx context.Context, origin model.Coordinates, competitors []model.PlaceSummary) (*model.CompetitorComparison, error) {
	if len(competitors) == 0 {
		return &model.CompetitorComparison{Accessibility: "no competitors"}, nil
	}

	sample := competitors
	if len(sample) > 3 {
		sample = sample[:3]
	}
	dests := make([]model.Coordinates, len(sample))
	for i, comp := range sample {
		dests[i] = comp.Location
	}

	samples, err := s.travel.Durations(ctx, origin, dests, travel.ModeWalking)
	if err != nil {
		return nil, err
	}

	avg := averageDuration(samples)
	access := "Limited"
	if avg > 0 && avg < 15 {
		access = "Good"
	}
	return &model.CompetitorComparison{
		AverageWalkMin: avg,
		Analyzed:       len(sample),
		Accessibility:  access,
	}, nil
}

func averageDuration(samples []travel.Sample) float64 {
	var sum float64
	n := 0
	for _, sample := range samples {
		if sample.DurationMin != nil {
			sum += *sample.DurationMin
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

func toCoordinates(points []orb.Point) []model.Coordinates {
	coords := make([]model.Coordinates, len(points))
	for i, p := range points {
		coords[i] = model.Coordinates{Lat: p.Lat(), Lng: p.Lon()}
	}
	return coords
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
