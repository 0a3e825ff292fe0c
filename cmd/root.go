package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartgym/location-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "location-cli",
	Short: "Gym site suitability analyzer",
	Long:  "Scores candidate gym locations by combining nearby-place search, official demographic registries, travel-time isochrones, and rental market estimates into one weighted suitability score.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
