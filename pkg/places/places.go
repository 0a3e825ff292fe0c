// Package places searches nearby points of interest via the Google Places
// API (New) and derives the site-suitability analyses built on them.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/smartgym/location-cli/internal/model"
)

const (
	defaultBaseURL = "https://places.googleapis.com/v1"

	// Provider page cap for searchNearby.
	maxResultCount = 20

	fieldMask = "places.id,places.displayName,places.location,places.types,places.rating,places.userRatingCount,places.businessStatus"
)

// CategoryConfig maps analysis categories to provider place types. It is
// immutable configuration passed in at construction, not ambient state.
type CategoryConfig struct {
	Competitors []string
	Residential []string
	Office      []string
	Young       []string
	Transit     []string
	Parking     []string
	Synergies   []string
}

// DefaultCategories returns the standard gym-analysis category mapping.
func DefaultCategories() CategoryConfig {
	return CategoryConfig{
		Competitors: []string{"gym", "fitness_center", "sports_complex"},
		Residential: []string{"apartment_building", "residential", "lodging"},
		Office:      []string{"office", "coworking_space", "business_center"},
		Young:       []string{"university", "college", "student_housing"},
		Transit:     []string{"subway_station", "bus_station", "train_station"},
		Parking:     []string{"parking"},
		Synergies:   []string{"health_food_store", "sports_goods_store", "physiotherapist", "spa"},
	}
}

// Client searches nearby places and derives category analyses.
type Client interface {
	SearchNearby(ctx context.Context, center model.Coordinates, radiusMeters int, placeTypes []string) ([]model.PlaceSummary, error)
	AnalyzeCompetition(ctx context.Context, center model.Coordinates, radiusMeters int) (*model.CompetitionAnalysis, error)
	AnalyzeDemographics(ctx context.Context, center model.Coordinates, radiusMeters int) (*model.DemographicAnalysis, error)
	AnalyzeAccessibility(ctx context.Context, center model.Coordinates, radiusMeters int) (*model.AccessibilityAnalysis, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Places API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)) }
}

type httpClient struct {
	apiKey     string
	baseURL    string
	categories CategoryConfig
	http       *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Places API client with the given category mapping.
func NewClient(apiKey string, categories CategoryConfig, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		categories: categories,
		http:       &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// searchNearbyRequest is the request body for POST /places:searchNearby.
type searchNearbyRequest struct {
	LocationRestriction struct {
		Circle struct {
			Center struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
	IncludedTypes  []string `json:"includedTypes"`
	MaxResultCount int      `json:"maxResultCount"`
}

// searchNearbyResponse is the response from POST /places:searchNearby.
type searchNearbyResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		Location struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		Types           []string `json:"types"`
		Rating          float64  `json:"rating"`
		UserRatingCount int      `json:"userRatingCount"`
	} `json:"places"`
}

func (c *httpClient) SearchNearby(ctx context.Context, center model.Coordinates, radiusMeters int, placeTypes []string) ([]model.PlaceSummary, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	var reqBody searchNearbyRequest
	reqBody.LocationRestriction.Circle.Center.Latitude = center.Lat
	reqBody.LocationRestriction.Circle.Center.Longitude = center.Lng
	reqBody.LocationRestriction.Circle.Radius = float64(radiusMeters)
	reqBody.IncludedTypes = placeTypes
	reqBody.MaxResultCount = maxResultCount

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed searchNearbyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "places: parse response")
	}

	results := make([]model.PlaceSummary, 0, len(parsed.Places))
	for _, p := range parsed.Places {
		results = append(results, model.PlaceSummary{
			Name:        p.DisplayName.Text,
			Rating:      p.Rating,
			RatingCount: p.UserRatingCount,
			Types:       p.Types,
			Location:    model.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
		})
	}
	return results, nil
}
