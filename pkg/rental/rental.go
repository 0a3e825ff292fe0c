// Package rental estimates commercial rental prices around a candidate
// site, either from the Idealista listings API or from a static market
// table when no credentials are configured.
package rental

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/smartgym/location-cli/internal/model"
)

// Reference unit for monthly cost projections: a typical gym floor.
const ReferenceSizeM2 = 350

// Estimator analyzes the commercial rental market around a location.
type Estimator interface {
	AnalyzeMarket(ctx context.Context, center model.Coordinates) (*model.RentalMarketEstimate, error)
}

// Fallback chains a primary estimator with a backup; the backup runs when
// the primary errors or reports no data.
type Fallback struct {
	primary Estimator
	backup  Estimator
}

// NewFallback creates a chained estimator.
func NewFallback(primary, backup Estimator) *Fallback {
	return &Fallback{primary: primary, backup: backup}
}

// AnalyzeMarket implements Estimator.
func (f *Fallback) AnalyzeMarket(ctx context.Context, center model.Coordinates) (*model.RentalMarketEstimate, error) {
	result, err := f.primary.AnalyzeMarket(ctx, center)
	if err == nil && result.Available {
		return result, nil
	}
	if err != nil {
		zap.L().Warn("rental: primary estimator failed, using fallback", zap.Error(err))
	}
	return f.backup.AnalyzeMarket(ctx, center)
}

// marketScore buckets average price per m² into a 0-100 score:
// <8 → 100, <12 → 80, <18 → 60, else 40.
func marketScore(avgPricePerM2 float64) float64 {
	switch {
	case avgPricePerM2 < 8:
		return 100
	case avgPricePerM2 < 12:
		return 80
	case avgPricePerM2 < 18:
		return 60
	default:
		return 40
	}
}

// marketRating is the qualitative bucket matching marketScore.
func marketRating(avgPricePerM2 float64) string {
	switch {
	case avgPricePerM2 < 8:
		return "cheap"
	case avgPricePerM2 < 12:
		return "moderate"
	case avgPricePerM2 < 18:
		return "expensive"
	default:
		return "very expensive"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
