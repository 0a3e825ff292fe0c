package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/smartgym/location-cli/internal/model"
	"github.com/smartgym/location-cli/internal/postal"
	"github.com/smartgym/location-cli/pkg/ine"
)

var comparePostalCity string

var comparePostalCmd = &cobra.Command{
	Use:   "compare-postal [postal codes...]",
	Short: "Rank postal codes of one municipality by attractiveness",
	Long: `Compare several postal codes within the same municipality using the
heuristic postal estimator. Figures are extrapolated from city-level
registry data, not measured.

Example:
  location-cli compare-postal --city Madrid 28001 28010 28045`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return eris.New("compare-postal: at least one postal code required")
		}
		if comparePostalCity == "" {
			return eris.New("compare-postal: --city is required")
		}

		registry := ine.NewClient(ine.WithBaseURL(cfg.INE.BaseURL))
		muni, err := registry.AnalyzeCity(cmd.Context(), comparePostalCity)
		if err != nil {
			return eris.Wrap(err, "compare-postal: registry lookup")
		}
		if muni.Demographics.Empty() {
			return eris.Errorf("compare-postal: no registry data for %q", comparePostalCity)
		}

		ranked := postal.NewEstimator().Rank(muni.Demographics, args, comparePostalCity)
		formatPostalRanking(cmd.OutOrStdout(), comparePostalCity, ranked)
		return nil
	},
}

func formatPostalRanking(out io.Writer, city string, ranked []postal.Ranked) {
	fmt.Fprintf(out, "Postal codes of %s, most attractive first:\n\n", city)
	fmt.Fprintf(out, "%-8s %-10s %-8s %-12s %-10s %s\n", "CODE", "POP(EST)", "YOUNG%", "INCOME IDX", "CENTRAL", "SCORE")
	for _, r := range ranked {
		central := "no"
		if r.IsCentral {
			central = "yes"
		}
		fmt.Fprintf(out, "%-8s %-10d %-8.1f %-12.1f %-10s %.1f\n",
			r.PostalCode, r.EstimatedPopulation, r.YoungPercentage, r.IncomeIndex, central, r.Attractiveness)
	}
	fmt.Fprintln(out, "\nFigures are heuristic estimates from municipality data.")
}

// Reference cities used when compare-cities is called without arguments.
var defaultComparisonCities = []string{"Madrid", "Barcelona", "Valencia", "Sevilla"}

var compareCitiesCmd = &cobra.Command{
	Use:   "compare-cities [city...]",
	Short: "Compare registry demographics across municipalities",
	Long: `Fetch registry demographics for several municipalities and print
their suitability sub-scores side by side. Defaults to the four largest
markets when no cities are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cities := args
		if len(cities) == 0 {
			cities = defaultComparisonCities
		}

		registry := ine.NewClient(ine.WithBaseURL(cfg.INE.BaseURL))

		out := cmd.OutOrStdout()
		formatCityHeader(out)
		for _, city := range cities {
			muni, err := registry.AnalyzeCity(cmd.Context(), city)
			if err != nil {
				return eris.Wrapf(err, "compare-cities: %s", city)
			}
			formatCityRow(out, city, muni)
		}
		return nil
	},
}

func formatCityHeader(out io.Writer) {
	fmt.Fprintf(out, "%-15s %-12s %-8s %-12s %-8s %s\n", "CITY", "POPULATION", "YOUNG%", "INCOME IDX", "SCORE", "YEAR")
}

func formatCityRow(out io.Writer, city string, muni *model.MunicipalAnalysis) {
	if muni.Demographics.Empty() {
		fmt.Fprintf(out, "%-15s %s\n", city, "no registry data")
		return
	}
	demo := muni.Demographics
	fmt.Fprintf(out, "%-15s %-12d %-8.1f %-12.1f %-8.1f %d\n",
		city, demo.TotalPopulation, demo.YoungPercentage, demo.IncomeIndex, muni.Scores.Overall, demo.Year)
}

func init() {
	comparePostalCmd.Flags().StringVar(&comparePostalCity, "city", "", "municipality the postal codes belong to (required)")
	rootCmd.AddCommand(comparePostalCmd)
	rootCmd.AddCommand(compareCitiesCmd)
}
