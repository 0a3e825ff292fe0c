package rental

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/smartgym/location-cli/internal/model"
)

const (
	defaultSearchURL = "https://api.idealista.com/3.5/es/search"
	defaultAuthURL   = "https://api.idealista.com/oauth/token"

	searchRadiusMeters = 3000
	maxItems           = 50

	// Size window for listings counted as gym-suitable.
	suitableMinM2 = 250
	suitableMaxM2 = 600
)

// Idealista queries the Idealista commercial-premises search API using
// OAuth2 client credentials.
type Idealista struct {
	apiKey    string
	apiSecret string
	searchURL string
	authURL   string
	http      *http.Client

	mu    sync.Mutex
	token string
}

// IdealistaOption configures the client.
type IdealistaOption func(*Idealista)

// WithSearchURL overrides the search endpoint.
func WithSearchURL(u string) IdealistaOption {
	return func(c *Idealista) { c.searchURL = u }
}

// WithAuthURL overrides the OAuth token endpoint.
func WithAuthURL(u string) IdealistaOption {
	return func(c *Idealista) { c.authURL = u }
}

// WithIdealistaHTTPClient overrides the default http.Client.
func WithIdealistaHTTPClient(hc *http.Client) IdealistaOption {
	return func(c *Idealista) { c.http = hc }
}

// NewIdealista creates an Idealista estimator.
func NewIdealista(apiKey, apiSecret string, opts ...IdealistaOption) *Idealista {
	c := &Idealista{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		searchURL: defaultSearchURL,
		authURL:   defaultAuthURL,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// accessToken performs (or reuses) the client-credentials grant.
func (c *Idealista) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	creds := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":" + c.apiSecret))
	body := strings.NewReader("grant_type=client_credentials&scope=read")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, body)
	if err != nil {
		return "", eris.Wrap(err, "rental: build auth request")
	}
	req.Header.Set("Authorization", "Basic "+creds)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "rental: auth request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("rental: auth status %d", resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", eris.Wrap(err, "rental: parse auth response")
	}
	if parsed.AccessToken == "" {
		return "", eris.New("rental: empty access token")
	}

	c.token = parsed.AccessToken
	return c.token, nil
}

// searchResponse is the Idealista search payload.
type searchResponse struct {
	ElementList []struct {
		Price    float64 `json:"price"`
		Size     float64 `json:"size"`
		Address  string  `json:"address"`
		Distance string  `json:"distance"`
	} `json:"elementList"`
	Total int `json:"total"`
}

// AnalyzeMarket implements Estimator with live listings.
func (c *Idealista) AnalyzeMarket(ctx context.Context, center model.Coordinates) (*model.RentalMarketEstimate, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"center":       {strconv.FormatFloat(center.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(center.Lng, 'f', 6, 64)},
		"distance":     {strconv.Itoa(searchRadiusMeters)},
		"propertyType": {"premises"},
		"operation":    {"rent"},
		"maxItems":     {strconv.Itoa(maxItems)},
		"order":        {"distance"},
		"sort":         {"asc"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "rental: build search request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "rental: search request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "rental: read search body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("rental: search status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "rental: parse search response")
	}

	if len(parsed.ElementList) == 0 {
		return &model.RentalMarketEstimate{Available: false, Note: "No commercial listings found."}, nil
	}

	var priceSum float64
	priced := 0
	var suitable []model.RentalListing
	for _, el := range parsed.ElementList {
		if el.Price <= 0 || el.Size <= 0 {
			continue
		}
		perM2 := el.Price / el.Size
		priceSum += perM2
		priced++

		if el.Size >= suitableMinM2 && el.Size <= suitableMaxM2 && len(suitable) < 5 {
			suitable = append(suitable, model.RentalListing{
				Title:      el.Address,
				Price:      int(el.Price),
				SizeM2:     int(el.Size),
				PricePerM2: round2(perM2),
				Location:   el.Address,
			})
		}
	}
	if priced == 0 {
		return &model.RentalMarketEstimate{Available: false, Note: "Listings carried no usable price/size data."}, nil
	}

	avg := round2(priceSum / float64(priced))
	return &model.RentalMarketEstimate{
		Available:         true,
		PropertiesFound:   len(parsed.ElementList),
		Listings:          suitable,
		AveragePricePerM2: avg,
		MonthlyEstimate:   int(avg * ReferenceSizeM2),
		MarketScore:       marketScore(avg),
		MarketRating:      marketRating(avg),
	}, nil
}
