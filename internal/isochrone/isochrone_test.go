package isochrone

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgym/location-cli/internal/model"
	"github.com/smartgym/location-cli/pkg/travel"
)

var madrid = model.Coordinates{Lat: 40.4168, Lng: -3.7038}

// stubTravel serves synthetic durations indexed by destination position.
type stubTravel struct {
	durFor    func(mode travel.Mode, i int) *float64
	destCount map[travel.Mode]int
}

func (s *stubTravel) Durations(_ context.Context, _ model.Coordinates, dests []model.Coordinates, mode travel.Mode) ([]travel.Sample, error) {
	if s.destCount == nil {
		s.destCount = make(map[travel.Mode]int)
	}
	s.destCount[mode] = len(dests)

	samples := make([]travel.Sample, len(dests))
	for i := range dests {
		d := s.durFor(mode, i)
		status := "OK"
		if d == nil {
			status = "ZERO_RESULTS"
		}
		samples[i] = travel.Sample{DurationMin: d, Status: status}
	}
	return samples, nil
}

func minutes(v float64) *float64 { return &v }

func TestGrid_Geometry(t *testing.T) {
	points := Grid(madrid, 2.0, 8)
	require.Len(t, points, 289) // (2*8+1)²

	// The lattice center is the origin itself.
	center := points[len(points)/2]
	assert.InDelta(t, madrid.Lat, center.Lat(), 1e-9)
	assert.InDelta(t, madrid.Lng, center.Lon(), 1e-9)

	// The corners sit ±radius away on the latitude axis.
	assert.InDelta(t, madrid.Lat-2.0/111.0, points[0].Lat(), 1e-9)
	assert.InDelta(t, madrid.Lat+2.0/111.0, points[len(points)-1].Lat(), 1e-9)

	// Longitude steps are wider than latitude steps away from the equator.
	lngSpan := points[len(points)-1].Lon() - points[0].Lon()
	latSpan := points[len(points)-1].Lat() - points[0].Lat()
	assert.Greater(t, lngSpan, latSpan)
}

func TestScore_Anchors(t *testing.T) {
	tests := []struct {
		reachable int
		total     int
		want      float64
	}{
		{0, 100, 0},
		{10, 100, 0},  // at the 10% floor
		{20, 100, 25}, // linear region
		{50, 100, 100},
		{80, 100, 100}, // saturated
		{0, 0, 0},      // degenerate lattice
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.reachable, tt.total), "reach %d/%d", tt.reachable, tt.total)
	}
}

func TestAnalyze(t *testing.T) {
	stub := &stubTravel{
		durFor: func(mode travel.Mode, i int) *float64 {
			if mode == travel.ModeDriving {
				return minutes(5)
			}
			switch {
			case i < 10:
				return minutes(4)
			case i < 15:
				return minutes(8)
			case i < 20:
				return minutes(12)
			default:
				return minutes(20)
			}
		},
	}

	sampler := NewSampler(stub, 2.0, 2)
	result, err := sampler.Analyze(context.Background(), madrid)
	require.NoError(t, err)

	assert.Equal(t, 25, result.GridPoints)
	assert.Equal(t, 25, stub.destCount[travel.ModeWalking])
	// Driving samples every 4th point: indices 0,4,...,24.
	assert.Equal(t, 7, stub.destCount[travel.ModeDriving])

	assert.Equal(t, 10, result.Walking.Reach5Min)
	assert.Equal(t, 15, result.Walking.Reach10Min)
	assert.Equal(t, 20, result.Walking.Reach15Min)
	assert.Equal(t, 15*195, result.Walking.EstimatedPopulation10Min)
	assert.Equal(t, 60.0, result.Walking.CoveragePercent)
	assert.Equal(t, 9.6, result.Walking.AverageTimeMin)

	assert.Equal(t, 7, result.Driving.Reach10Min)
	assert.Equal(t, 7*195*4, result.Driving.EstimatedPopulation10Min)

	// 60% coverage saturates the score.
	assert.Equal(t, 100.0, result.Score)
}

func TestAnalyze_SkipsUnroutablePoints(t *testing.T) {
	stub := &stubTravel{
		durFor: func(mode travel.Mode, i int) *float64 {
			if i%2 == 0 {
				return nil // unroutable
			}
			return minutes(6)
		},
	}

	sampler := NewSampler(stub, 2.0, 2)
	result, err := sampler.Analyze(context.Background(), madrid)
	require.NoError(t, err)

	// 12 of 25 walking points routable, all within ten minutes.
	assert.Equal(t, 0, result.Walking.Reach5Min)
	assert.Equal(t, 12, result.Walking.Reach10Min)
	assert.Equal(t, 6.0, result.Walking.AverageTimeMin)
}

func TestCompareCompetitors(t *testing.T) {
	stub := &stubTravel{
		durFor: func(_ travel.Mode, i int) *float64 {
			return minutes(float64(5 + i*5)) // 5, 10, 15
		},
	}
	sampler := NewSampler(stub, 2.0, 2)

	competitors := []model.PlaceSummary{
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"},
	}
	cmp, err := sampler.CompareCompetitors(context.Background(), madrid, competitors)
	require.NoError(t, err)

	// Capped at three competitors.
	assert.Equal(t, 3, cmp.Analyzed)
	assert.Equal(t, 10.0, cmp.AverageWalkMin)
	assert.Equal(t, "Good", cmp.Accessibility)
}

func TestCompareCompetitors_Empty(t *testing.T) {
	sampler := NewSampler(&stubTravel{}, 2.0, 2)
	cmp, err := sampler.CompareCompetitors(context.Background(), madrid, nil)
	require.NoError(t, err)
	assert.Equal(t, "no competitors", cmp.Accessibility)
	assert.Equal(t, 0, cmp.Analyzed)
}

func TestCompareCompetitors_Distant(t *testing.T) {
	stub := &stubTravel{
		durFor: func(travel.Mode, int) *float64 { return minutes(25) },
	}
	sampler := NewSampler(stub, 2.0, 2)

	cmp, err := sampler.CompareCompetitors(context.Background(), madrid, []model.PlaceSummary{{Name: "A"}})
	require.NoError(t, err)
	assert.Equal(t, "Limited", cmp.Accessibility)
}
