// Package report renders the analysis result to the console and persists
// it as a JSON artifact.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/smartgym/location-cli/internal/model"
)

const divider = "----------------------------------------------------------------------"
const banner = "======================================================================"

// Artifact is the persisted JSON report for one run.
type Artifact struct {
	RunID     string             `json:"run_id"`
	Address   string             `json:"address"`
	Timestamp time.Time          `json:"timestamp"`
	Analysis  *model.Bundle      `json:"analysis"`
	Score     *model.ScoreResult `json:"score"`
}

// WriteConsole prints the fixed-layout report: header, overall score,
// sub-scores, competition, isochrones, demographics (municipal and postal),
// accessibility, risks, opportunities.
func WriteConsole(w io.Writer, address string, bundle *model.Bundle, score *model.ScoreResult) {
	p := func(format string, args ...any) { fmt.Fprintf(w, format+"\n", args...) }

	p(banner)
	p("%s", center("GYM LOCATION ANALYSIS", len(banner)))
	p(banner)
	p("")
	p("Address:     %s", address)
	p("Coordinates: %.4f, %.4f", bundle.Coordinates.Lat, bundle.Coordinates.Lng)
	p("Date:        %s", time.Now().Format("02.01.2006 15:04"))
	p("")
	p(divider)

	p("OVERALL: %s", score.Rating)
	p("  Score: %.1f/100", score.TotalScore)
	p("  Recommendation: %s", score.Recommendation)
	p("")
	p(divider)

	p("SUB-SCORES:")
	p("  Competition density:  %5.1f/100", score.SubScores["competition"])
	p("  Target demographics:  %5.1f/100", score.SubScores["demographics"])
	p("  Accessibility:        %5.1f/100", score.SubScores["accessibility"])
	p("  Market saturation:    %5.1f/100", score.SubScores["market_saturation"])
	p("  Reachability:         %5.1f/100", score.SubScores["reachability"])
	p("")
	p(divider)

	p("COMPETITION:")
	if comp := bundle.Competition; comp != nil {
		p("  Gyms within radius: %d", comp.Count)
		p("  Average rating:     %.1f/5.0", comp.AverageRating)
		p("  Highly rated (>=4): %d", comp.HighlyRatedCount)
		for i, gym := range comp.Competitors {
			if i == 5 {
				break
			}
			p("    - %s (%.1f)", gym.Name, gym.Rating)
		}
	} else {
		p("  no data")
	}
	p("")
	p(divider)

	p("TRAVEL-TIME ISOCHRONES:")
	if iso := bundle.Isochrones; iso != nil {
		p("  Walking:  5min=%d  10min=%d  15min=%d zones", iso.Walking.Reach5Min, iso.Walking.Reach10Min, iso.Walking.Reach15Min)
		p("    Estimated population (10min): %d", iso.Walking.EstimatedPopulation10Min)
		p("    Coverage: %.1f%%", iso.Walking.CoveragePercent)
		p("  Driving:  5min=%d  10min=%d  15min=%d zones", iso.Driving.Reach5Min, iso.Driving.Reach10Min, iso.Driving.Reach15Min)
		p("    Estimated population (10min): %d", iso.Driving.EstimatedPopulation10Min)
		if cmp := iso.Competitors; cmp != nil && cmp.Analyzed > 0 {
			p("  Competitor proximity: %.1f min avg walk (%d analyzed, %s)", cmp.AverageWalkMin, cmp.Analyzed, cmp.Accessibility)
		}
	} else {
		p("  no data")
	}
	p("")
	p(divider)

	p("MUNICIPAL DEMOGRAPHICS:")
	if muni := bundle.Municipal; muni != nil && !muni.Demographics.Empty() {
		demo := muni.Demographics
		p("  Population:        %d", demo.TotalPopulation)
		p("  Young (20-39):     %.1f%%", demo.YoungPercentage)
		p("  Income index:      %.1f", demo.IncomeIndex)
		p("  Registry score:    %.1f/100", muni.Scores.Overall)
		p("  Source:            %s (%d)", muni.DataSource, demo.Year)
	} else {
		p("  no city data available")
	}
	p("")

	p("POSTAL CODE (estimated, not measured):")
	if postal := bundle.Postal; postal != nil && postal.Available() {
		district := "peripheral"
		if postal.IsCentral {
			district = "central"
		}
		p("  %s (%s, %s district)", postal.PostalCode, postal.Province, district)
		p("  Estimated population: %d", postal.EstimatedPopulation)
		p("  Young (20-39):        %.1f%%", postal.YoungPercentage)
		p("  Income index:         %.1f", postal.IncomeIndex)
	} else {
		p("  no postal data available")
	}
	p("")
	p(divider)

	p("ACCESSIBILITY:")
	if access := bundle.Accessibility; access != nil {
		p("  Transit stops: %d", access.PublicTransportCount)
		p("  Parking:       %d", access.ParkingCount)
		if len(access.TransportTypes) > 0 {
			p("  Nearby stops:  %s", strings.Join(access.TransportTypes, ", "))
		}
	} else {
		p("  no data")
	}
	p("")
	p(divider)

	if len(score.RiskFactors) > 0 {
		p("RISKS:")
		for _, risk := range score.RiskFactors {
			p("  - %s", risk)
		}
		p("")
	}
	if len(score.Opportunities) > 0 {
		p("OPPORTUNITIES:")
		for _, opp := range score.Opportunities {
			p("  - %s", opp)
		}
		p("")
	}
	p(banner)
}

// SaveJSON persists the artifact under dir, naming the file from a
// sanitized address substring and a timestamp. Returns the written path.
func SaveJSON(dir, address string, bundle *model.Bundle, score *model.ScoreResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "report: create output dir")
	}

	now := time.Now()
	name := fmt.Sprintf("analysis_%s_%s.json", sanitizeAddress(address), now.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	artifact := Artifact{
		RunID:     uuid.NewString(),
		Address:   address,
		Timestamp: now,
		Analysis:  bundle,
		Score:     score,
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "report: marshal artifact")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "report: write artifact")
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// sanitizeAddress turns an address into a safe filename fragment, capped
// at 30 characters.
func sanitizeAddress(address string) string {
	s := strings.ReplaceAll(strings.TrimSpace(address), " ", "_")
	s = unsafeChars.ReplaceAllString(s, "")
	if len(s) > 30 {
		s = s[:30]
	}
	if s == "" {
		s = "address"
	}
	return s
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
