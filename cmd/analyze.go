package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgym/location-cli/internal/isochrone"
	"github.com/smartgym/location-cli/internal/pipeline"
	"github.com/smartgym/location-cli/internal/postal"
	"github.com/smartgym/location-cli/internal/report"
	"github.com/smartgym/location-cli/internal/scorer"
	"github.com/smartgym/location-cli/pkg/geocode"
	"github.com/smartgym/location-cli/pkg/ine"
	"github.com/smartgym/location-cli/pkg/places"
	"github.com/smartgym/location-cli/pkg/rental"
	"github.com/smartgym/location-cli/pkg/travel"
)

var (
	analyzeRadius   int
	analyzeJSONDir  string
	analyzeNoReport bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [address...]",
	Short: "Analyze a candidate gym location",
	Long: `Run the full suitability analysis for one address.

The address is taken from the command-line arguments, or prompted for
interactively when none are given. Example:

  location-cli analyze Calle Mayor 1, 28013 Madrid`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		// One top-level recovery point: report the fault and exit
		// gracefully instead of crashing with a bare panic.
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("analysis aborted by runtime fault", zap.Any("fault", r), zap.Stack("stack"))
				err = eris.Errorf("analyze: runtime fault: %v", r)
			}
		}()

		if err := cfg.Validate(); err != nil {
			return err
		}

		address := strings.TrimSpace(strings.Join(args, " "))
		if address == "" {
			address, err = promptAddress(cmd)
			if err != nil {
				return err
			}
		}
		if address == "" {
			return eris.New("analyze: no address given")
		}

		radius := cfg.Search.RadiusMeters
		if analyzeRadius > 0 {
			radius = analyzeRadius
		}

		p, err := buildPipeline(radius)
		if err != nil {
			return err
		}

		bundle, score, err := p.Run(cmd.Context(), address)
		if err != nil {
			return err
		}

		if !analyzeNoReport {
			report.WriteConsole(cmd.OutOrStdout(), address, bundle, score)

			dir := cfg.Report.OutputDir
			if analyzeJSONDir != "" {
				dir = analyzeJSONDir
			}
			path, err := report.SaveJSON(dir, address, bundle, score)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport saved: %s\n", path)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Analysis complete: %.1f/100 (%s)\n", score.TotalScore, score.Rating)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeRadius, "radius", 0, "search radius in meters (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeJSONDir, "json-dir", "", "directory for the JSON artifact (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoReport, "no-report", false, "skip console report and JSON artifact")
	rootCmd.AddCommand(analyzeCmd)
}

// buildPipeline wires all clients from the loaded configuration.
func buildPipeline(radiusMeters int) (*pipeline.Pipeline, error) {
	weights, err := scorer.FromConfig(cfg.Scorer)
	if err != nil {
		return nil, err
	}
	sc, err := scorer.New(weights)
	if err != nil {
		return nil, err
	}

	geocoder := geocode.NewClient(cfg.Google.APIKey,
		geocode.WithBaseURL(cfg.Google.GeocodeBaseURL),
		geocode.WithRateLimit(cfg.Google.RequestsPerSec),
	)
	placesClient := places.NewClient(cfg.Google.APIKey, places.DefaultCategories(),
		places.WithBaseURL(cfg.Google.PlacesBaseURL),
		places.WithRateLimit(cfg.Google.RequestsPerSec),
	)
	registry := ine.NewClient(ine.WithBaseURL(cfg.INE.BaseURL))
	travelClient := newTravelClient()
	sampler := isochrone.NewSampler(travelClient, cfg.Grid.RadiusKM, cfg.Grid.HalfWidth)
	rentalEstimator := newRentalEstimator()

	return pipeline.New(
		geocoder,
		placesClient,
		registry,
		postal.NewEstimator(),
		sampler,
		rentalEstimator,
		sc,
		radiusMeters,
	), nil
}

func newTravelClient() travel.Client {
	return travel.NewClient(cfg.Google.APIKey,
		travel.WithBaseURL(cfg.Google.MatrixBaseURL),
		travel.WithRateLimit(cfg.Google.RequestsPerSec),
	)
}

// newRentalEstimator prefers the Idealista API when credentials exist,
// falling back to the static market table either way.
func newRentalEstimator() rental.Estimator {
	static := rental.NewStatic()
	if cfg.Idealista.APIKey == "" || cfg.Idealista.APISecret == "" {
		return static
	}
	live := rental.NewIdealista(cfg.Idealista.APIKey, cfg.Idealista.APISecret,
		rental.WithSearchURL(cfg.Idealista.BaseURL),
		rental.WithAuthURL(cfg.Idealista.AuthURL),
	)
	return rental.NewFallback(live, static)
}

func promptAddress(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter address (e.g. 'Calle Mayor 1, 28013 Madrid'): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", eris.Wrap(err, "analyze: read address")
	}
	return strings.TrimSpace(line), nil
}
