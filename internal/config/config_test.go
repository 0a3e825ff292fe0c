package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Search.RadiusMeters)
	assert.Equal(t, 2.0, cfg.Grid.RadiusKM)
	assert.Equal(t, 8, cfg.Grid.HalfWidth)
	assert.Equal(t, "enhanced", cfg.Scorer.Preset)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.Google.PlacesBaseURL)
	assert.Equal(t, "https://servicios.ine.es/wstempus/js/ES/DATOS", cfg.INE.BaseURL)
}

func TestLoad_LegacyEnvName(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.Google.APIKey)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	t.Setenv("SMARTGYM_GOOGLE_API_KEY", "prefixed-key")
	t.Setenv("SMARTGYM_SEARCH_RADIUS_METERS", "1500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-key", cfg.Google.APIKey)
	assert.Equal(t, 1500, cfg.Search.RadiusMeters)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Google: GoogleConfig{APIKey: "key"},
			Search: SearchConfig{RadiusMeters: 2000},
			Grid:   GridConfig{RadiusKM: 2.0, HalfWidth: 8},
		}
	}

	assert.NoError(t, valid().Validate())

	missingKey := valid()
	missingKey.Google.APIKey = ""
	err := missingKey.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google api key")

	badRadius := valid()
	badRadius.Search.RadiusMeters = 0
	assert.Error(t, badRadius.Validate())

	badGrid := valid()
	badGrid.Grid.HalfWidth = -1
	assert.Error(t, badGrid.Validate())
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nonsense", Format: "console"}))
}
