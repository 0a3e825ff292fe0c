// Package config loads the application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	INE       INEConfig       `yaml:"ine" mapstructure:"ine"`
	Idealista IdealistaConfig `yaml:"idealista" mapstructure:"idealista"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Grid      GridConfig      `yaml:"grid" mapstructure:"grid"`
	Scorer    ScorerConfig    `yaml:"scorer" mapstructure:"scorer"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds the Google Maps Platform credential and endpoints.
// The same key serves Geocoding, Places, and Distance Matrix.
type GoogleConfig struct {
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	PlacesBaseURL  string  `yaml:"places_base_url" mapstructure:"places_base_url"`
	GeocodeBaseURL string  `yaml:"geocode_base_url" mapstructure:"geocode_base_url"`
	MatrixBaseURL  string  `yaml:"matrix_base_url" mapstructure:"matrix_base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// INEConfig holds the Spanish statistics registry settings.
type INEConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// IdealistaConfig holds optional rental-listings API credentials. When the
// key is empty the static market table is used instead.
type IdealistaConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	APISecret string `yaml:"api_secret" mapstructure:"api_secret"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	AuthURL   string `yaml:"auth_url" mapstructure:"auth_url"`
}

// SearchConfig configures nearby place search.
type SearchConfig struct {
	RadiusMeters int `yaml:"radius_meters" mapstructure:"radius_meters"`
}

// GridConfig configures the isochrone sampling lattice.
type GridConfig struct {
	RadiusKM  float64 `yaml:"radius_km" mapstructure:"radius_km"`
	HalfWidth int     `yaml:"half_width" mapstructure:"half_width"`
}

// ScorerConfig selects the weight preset and allows overriding individual
// weights. Zero-valued weights mean "use the preset value".
type ScorerConfig struct {
	Preset  string             `yaml:"preset" mapstructure:"preset"`
	Weights map[string]float64 `yaml:"weights" mapstructure:"weights"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SMARTGYM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original tooling used GOOGLE_PLACES_API_KEY without a prefix;
	// honor it so existing deployments keep working.
	_ = v.BindEnv("google.api_key", "SMARTGYM_GOOGLE_API_KEY", "GOOGLE_PLACES_API_KEY")
	_ = v.BindEnv("idealista.api_key", "SMARTGYM_IDEALISTA_API_KEY", "IDEALISTA_API_KEY")
	_ = v.BindEnv("idealista.api_secret", "SMARTGYM_IDEALISTA_API_SECRET", "IDEALISTA_API_SECRET")

	// Defaults
	v.SetDefault("google.places_base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.geocode_base_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("google.matrix_base_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	v.SetDefault("google.requests_per_sec", 10)
	v.SetDefault("google.timeout_secs", 30)
	v.SetDefault("ine.base_url", "https://servicios.ine.es/wstempus/js/ES/DATOS")
	v.SetDefault("ine.timeout_secs", 30)
	v.SetDefault("idealista.base_url", "https://api.idealista.com/3.5/es/search")
	v.SetDefault("idealista.auth_url", "https://api.idealista.com/oauth/token")
	v.SetDefault("search.radius_meters", 2000)
	v.SetDefault("grid.radius_km", 2.0)
	v.SetDefault("grid.half_width", 8)
	v.SetDefault("scorer.preset", "enhanced")
	v.SetDefault("report.output_dir", "reports")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the hard requirements before any work starts. A missing
// Google credential is the only fatal configuration state.
func (c *Config) Validate() error {
	if c.Google.APIKey == "" {
		return eris.New("config: google api key missing (set GOOGLE_PLACES_API_KEY)")
	}
	if c.Search.RadiusMeters <= 0 {
		return eris.Errorf("config: search.radius_meters must be > 0 (got %d)", c.Search.RadiusMeters)
	}
	if c.Grid.HalfWidth <= 0 {
		return eris.Errorf("config: grid.half_width must be > 0 (got %d)", c.Grid.HalfWidth)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
