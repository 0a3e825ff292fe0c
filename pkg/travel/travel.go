// Package travel estimates point-to-point travel durations via the Google
// Distance Matrix API.
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smartgym/location-cli/internal/model"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

	// Provider limit on destinations per request.
	BatchSize = 25
)

// Mode is a travel mode accepted by the matrix API.
type Mode string

// Supported travel modes.
const (
	ModeWalking Mode = "walking"
	ModeDriving Mode = "driving"
)

// Sample is the travel estimate for one destination. DurationMin is nil
// when the provider could not route the point; such points are simply
// excluded from reachability counts downstream.
type Sample struct {
	DurationMin *float64
	DistanceKM  float64
	Status      string
}

// Client queries travel durations from one origin to many destinations.
type Client interface {
	Durations(ctx context.Context, origin model.Coordinates, dests []model.Coordinates, mode Mode) ([]Sample, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Distance Matrix endpoint.
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
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Distance Matrix client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Durations batches destinations at the provider limit and issues the
// requests sequentially. A failed batch degrades to nil durations for its
// points; it never fails the whole call.
func (c *httpClient) Durations(ctx context.Context, origin model.Coordinates, dests []model.Coordinates, mode Mode) ([]Sample, error) {
	if len(dests) == 0 {
		return nil, nil
	}

	results := make([]Sample, 0, len(dests))
	for start := 0; start < len(dests); start += BatchSize {
		end := min(start+BatchSize, len(dests))
		batch := dests[start:end]

		samples, err := c.matrixRequest(ctx, origin, batch, mode)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "travel: canceled")
			}
			zap.L().Warn("travel: batch failed, points excluded",
				zap.String("mode", string(mode)),
				zap.Int("batch_start", start),
				zap.Error(err),
			)
			samples = failedBatch(len(batch), "REQUEST_FAILED")
		}
		results = append(results, samples...)
	}
	return results, nil
}

// matrixResponse is the Distance Matrix JSON payload.
type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *httpClient) matrixRequest(ctx context.Context, origin model.Coordinates, dests []model.Coordinates, mode Mode) ([]Sample, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "travel: rate limit")
	}

	destStrings := make([]string, len(dests))
	for i, d := range dests {
		destStrings[i] = fmt.Sprintf("%f,%f", d.Lat, d.Lng)
	}
	params := url.Values{
		"origins":      {fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		"destinations": {strings.Join(destStrings, "|")},
		"mode":         {string(mode)},
		"key":          {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "travel: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "travel: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("travel: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "travel: read body")
	}

	var parsed matrixResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "travel: parse response")
	}

	if parsed.Status != "OK" || len(parsed.Rows) == 0 {
		return failedBatch(len(dests), parsed.Status), nil
	}

	elements := parsed.Rows[0].Elements
	samples := make([]Sample, len(dests))
	for i := range dests {
		if i >= len(elements) || elements[i].Status != "OK" {
			status := "UNKNOWN"
			if i < len(elements) {
				status = elements[i].Status
			}
			samples[i] = Sample{Status: status}
			continue
		}
		minutes := elements[i].Duration.Value / 60
		samples[i] = Sample{
			DurationMin: &minutes,
			DistanceKM:  elements[i].Distance.Value / 1000,
			Status:      "OK",
		}
	}
	return samples, nil
}

func failedBatch(n int, status string) []Sample {
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{Status: status}
	}
	return samples
}
