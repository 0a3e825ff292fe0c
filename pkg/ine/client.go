// Package ine queries the Spanish national statistics registry (INE Tempus)
// for municipality-level demographic series and derives suitability
// sub-scores from them.
package ine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/smartgym/location-cli/internal/model"
)

const (
	defaultBaseURL = "https://servicios.ine.es/wstempus/js/ES/DATOS"

	// Tempus series identifiers. Annual periodicity, last value only.
	seriesTotalPopulation = "2852"
	seriesYoungPopulation = "2853" // ages 20-39
	seriesIncomeIndex     = "7586" // 100 = national average
)

// Client looks up municipality demographics.
type Client interface {
	// MunicipalityCode resolves a city name to its registry code.
	// Returns "" when the city is unknown to the registry.
	MunicipalityCode(ctx context.Context, city string) (string, error)

	// Population fetches the demographic profile for a municipality code.
	Population(ctx context.Context, municipalityCode string) (model.DemographicProfile, error)

	// AnalyzeCity resolves the city and returns profile plus sub-scores.
	// A failed lookup yields the empty-profile analysis, not an error.
	AnalyzeCity(ctx context.Context, city string) (*model.MunicipalAnalysis, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Tempus base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	cache map[string]json.RawMessage // best-effort, keyed by endpoint+params
}

// NewClient creates an INE registry client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   make(map[string]json.RawMessage),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get performs a GET against the registry, consulting the in-process cache
// first. Responses are cached for the process lifetime; the registry data
// changes yearly at most.
func (c *httpClient) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.mu.Lock()
	cached, ok := c.cache[reqURL]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ine: build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "location-cli/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ine: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("ine: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ine: read body")
	}

	c.mu.Lock()
	c.cache[reqURL] = body
	c.mu.Unlock()

	return body, nil
}

func (c *httpClient) MunicipalityCode(ctx context.Context, city string) (string, error) {
	name := NormalizeCityName(city)
	if name == "" {
		return "", nil
	}

	body, err := c.get(ctx, "/NOMBRE/"+url.PathEscape(name), nil)
	if err != nil {
		return "", err
	}

	var matches []struct {
		Cod any `json:"cod"`
	}
	if err := json.Unmarshal(body, &matches); err != nil {
		return "", eris.Wrap(err, "ine: parse municipality lookup")
	}
	if len(matches) == 0 || matches[0].Cod == nil {
		return "", nil
	}
	return fmt.Sprint(matches[0].Cod), nil
}

// seriesResponse is the Tempus series payload.
type seriesResponse struct {
	Data []struct {
		Valor float64 `json:"Valor"`
		Anyo  int     `json:"Anyo"`
	} `json:"Data"`
}

// series fetches the latest annual value of one series.
func (c *httpClient) series(ctx context.Context, seriesID string) (value float64, year int, err error) {
	params := url.Values{
		"nult": {"1"},  // last value only
		"tv":   {"15"}, // annual periodicity
	}
	body, err := c.get(ctx, "/SERIE/"+seriesID, params)
	if err != nil {
		return 0, 0, err
	}

	var parsed seriesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, 0, eris.Wrap(err, "ine: parse series")
	}
	if len(parsed.Data) == 0 {
		return 0, 0, nil
	}
	return parsed.Data[0].Valor, parsed.Data[0].Anyo, nil
}

func (c *httpClient) Population(ctx context.Context, municipalityCode string) (model.DemographicProfile, error) {
	total, year, err := c.series(ctx, seriesTotalPopulation)
	if err != nil {
		return model.DemographicProfile{}, err
	}
	young, _, err := c.series(ctx, seriesYoungPopulation)
	if err != nil {
		return model.DemographicProfile{}, err
	}
	income, _, err := c.series(ctx, seriesIncomeIndex)
	if err != nil {
		return model.DemographicProfile{}, err
	}

	youngPct := 0.0
	if total > 0 {
		youngPct = round1(young / total * 100)
	}
	if income == 0 {
		income = 100 // national average when the series has no value
	}
	if year == 0 {
		year = time.Now().Year()
	}

	return model.DemographicProfile{
		TotalPopulation:  int(total),
		PopulationYoung:  int(young),
		YoungPercentage:  youngPct,
		IncomeIndex:      income,
		MunicipalityCode: municipalityCode,
		Year:             year,
	}, nil
}

func (c *httpClient) AnalyzeCity(ctx context.Context, city string) (*model.MunicipalAnalysis, error) {
	code, err := c.MunicipalityCode(ctx, city)
	if err != nil {
		return nil, err
	}
	if code == "" {
		zap.L().Warn("ine: municipality not found", zap.String("city", city))
		return EmptyAnalysis(city), nil
	}

	profile, err := c.Population(ctx, code)
	if err != nil {
		return nil, err
	}

	return &model.MunicipalAnalysis{
		City:         city,
		Demographics: profile,
		Scores:       Scores(profile),
		DataSource:   "INE (Instituto Nacional de Estadística)",
	}, nil
}

// EmptyAnalysis is the valid terminal state for an unknown municipality:
// empty profile, all sub-scores zero.
func EmptyAnalysis(city string) *model.MunicipalAnalysis {
	return &model.MunicipalAnalysis{
		City:       city,
		DataSource: "INE (not found)",
	}
}

// NormalizeCityName uppercases and strips diacritics so registry lookups
// match regardless of input spelling ("Málaga" -> "MALAGA").
func NormalizeCityName(city string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(city))
	if err != nil {
		folded = strings.TrimSpace(city)
	}
	return strings.ToUpper(folded)
}
