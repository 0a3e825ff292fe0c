// Package pipeline orchestrates one analysis run: geocode, collect every
// upstream analysis sequentially, score, and hand the result to reporting.
// Each upstream step degrades independently; only geocoding is required.
package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartgym/location-cli/internal/isochrone"
	"github.com/smartgym/location-cli/internal/model"
	"github.com/smartgym/location-cli/internal/postal"
	"github.com/smartgym/location-cli/internal/scorer"
	"github.com/smartgym/location-cli/pkg/geocode"
	"github.com/smartgym/location-cli/pkg/ine"
	"github.com/smartgym/location-cli/pkg/places"
	"github.com/smartgym/location-cli/pkg/rental"
)

// Pipeline wires the clients behind one analysis run. All calls are issued
// sequentially; there is no shared state across runs.
type Pipeline struct {
	geocoder geocode.Client
	places   places.Client
	registry ine.Client
	postal   *postal.Estimator
	sampler  *isochrone.Sampler
	rental   rental.Estimator
	scorer   *scorer.Scorer
	radiusM  int
}

// New assembles a Pipeline.
func New(
	geocoder geocode.Client,
	placesClient places.Client,
	registry ine.Client,
	postalEstimator *postal.Estimator,
	sampler *isochrone.Sampler,
	rentalEstimator rental.Estimator,
	sc *scorer.Scorer,
	radiusMeters int,
) *Pipeline {
	return &Pipeline{
		geocoder: geocoder,
		places:   placesClient,
		registry: registry,
		postal:   postalEstimator,
		sampler:  sampler,
		rental:   rentalEstimator,
		scorer:   sc,
		radiusM:  radiusMeters,
	}
}

// Run executes the full analysis for one address.
func (p *Pipeline) Run(ctx context.Context, address string) (*model.Bundle, *model.ScoreResult, error) {
	log := zap.L().With(zap.String("address", address))

	geo, err := p.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: geocode")
	}
	if !geo.Matched {
		return nil, nil, eris.Errorf("pipeline: address not found: %s", address)
	}

	bundle := &model.Bundle{
		Address:     address,
		Coordinates: geo.Coordinates,
		City:        ExtractCity(address),
		PostalCode:  ExtractPostalCode(address),
	}
	log.Info("geocoded",
		zap.Float64("lat", bundle.Coordinates.Lat),
		zap.Float64("lng", bundle.Coordinates.Lng),
		zap.String("city", bundle.City),
		zap.String("postal_code", bundle.PostalCode),
	)

	// Each collection step degrades to an absent component on failure;
	// the scorer substitutes neutral defaults.
	if comp, err := p.places.AnalyzeCompetition(ctx, bundle.Coordinates, p.radiusM); err != nil {
		log.Warn("competition analysis degraded", zap.Error(err))
	} else {
		bundle.Competition = comp
	}

	if demo, err := p.places.AnalyzeDemographics(ctx, bundle.Coordinates, p.radiusM); err != nil {
		log.Warn("demographic analysis degraded", zap.Error(err))
	} else {
		bundle.Demographics = demo
	}

	if access, err := p.places.AnalyzeAccessibility(ctx, bundle.Coordinates, p.radiusM); err != nil {
		log.Warn("accessibility analysis degraded", zap.Error(err))
	} else {
		bundle.Accessibility = access
	}

	if iso, err := p.sampler.Analyze(ctx, bundle.Coordinates); err != nil {
		log.Warn("isochrone analysis degraded", zap.Error(err))
	} else {
		bundle.Isochrones = iso
	}

	if bundle.Isochrones != nil && bundle.Competition != nil && len(bundle.Competition.Competitors) > 0 {
		if cmp, err := p.sampler.CompareCompetitors(ctx, bundle.Coordinates, bundle.Competition.Competitors); err != nil {
			log.Warn("competitor comparison degraded", zap.Error(err))
		} else {
			bundle.Isochrones.Competitors = cmp
		}
	}

	if muni, err := p.registry.AnalyzeCity(ctx, bundle.City); err != nil {
		log.Warn("municipal registry degraded", zap.Error(err))
		bundle.Municipal = ine.EmptyAnalysis(bundle.City)
	} else {
		bundle.Municipal = muni
	}

	if bundle.PostalCode != "" {
		adj := p.postal.Adjust(bundle.Municipal.Demographics, bundle.PostalCode, bundle.City)
		bundle.Postal = &adj
	}

	if rent, err := p.rental.AnalyzeMarket(ctx, bundle.Coordinates); err != nil {
		log.Warn("rental market degraded", zap.Error(err))
	} else {
		bundle.Rental = rent
	}

	score := p.scorer.Score(bundle)
	log.Info("analysis complete",
		zap.Float64("total_score", score.TotalScore),
		zap.String("rating", score.Rating),
	)
	return bundle, score, nil
}

var postalCodeRe = regexp.MustCompile(`\b(\d{5})\b`)

// ExtractCity takes the last comma-separated part of the address, with any
// leading postal code stripped ("Calle Mayor 1, 28013 Madrid" -> "Madrid").
func ExtractCity(address string) string {
	parts := strings.Split(address, ",")
	var last string
	if len(parts) >= 2 {
		last = strings.TrimSpace(parts[len(parts)-1])
	} else {
		fields := strings.Fields(address)
		if len(fields) == 0 {
			return ""
		}
		last = fields[len(fields)-1]
	}
	last = strings.TrimSpace(postalCodeRe.ReplaceAllString(last, ""))
	return last
}

// ExtractPostalCode finds the first 5-digit token in the address, or "".
func ExtractPostalCode(address string) string {
	return postalCodeRe.FindString(address)
}
