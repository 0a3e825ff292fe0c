package ine

import (
	"math"

	"github.com/smartgym/location-cli/internal/model"
)

// Sub-score blend weights. Target group dominates: a gym lives or dies on
// the 20-39 population share.
const (
	targetGroupWeight     = 0.40
	purchasingPowerWeight = 0.35
	marketSizeWeight      = 0.25
)

// Scores derives the demographic suitability sub-scores from a profile.
// An empty profile yields all zeros.
func Scores(p model.DemographicProfile) model.DemographicScores {
	if p.Empty() {
		return model.DemographicScores{}
	}

	// Linear ramp: 10% young population scores 0, 30%+ saturates at 100.
	targetGroup := clamp((p.YoungPercentage-10)*5, 0, 100)

	// Income index 80 scores 0, 160+ saturates at 100.
	purchasingPower := clamp((p.IncomeIndex-80)*1.25, 0, 100)

	// Step function of total population.
	var marketSize float64
	switch {
	case p.TotalPopulation > 100_000:
		marketSize = 100
	case p.TotalPopulation > 50_000:
		marketSize = 80
	case p.TotalPopulation > 20_000:
		marketSize = 60
	default:
		marketSize = 40
	}

	overall := targetGroup*targetGroupWeight + purchasingPower*purchasingPowerWeight + marketSize*marketSizeWeight

	return model.DemographicScores{
		TargetGroup:     round1(targetGroup),
		PurchasingPower: round1(purchasingPower),
		MarketSize:      marketSize,
		Overall:         round1(overall),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
