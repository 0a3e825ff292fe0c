package rental

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartgym/location-cli/internal/model"
)

var (
	madrid  = model.Coordinates{Lat: 40.4168, Lng: -3.7038}
	murcia  = model.Coordinates{Lat: 37.9922, Lng: -1.1307}
	nowhere = model.Coordinates{Lat: 43.0, Lng: -8.0}
)

func TestStatic_MadridMarket(t *testing.T) {
	est, err := NewStatic().AnalyzeMarket(context.Background(), madrid)
	require.NoError(t, err)

	assert.True(t, est.Available)
	assert.True(t, est.Estimated)
	assert.Equal(t, "Madrid", est.City)
	require.Len(t, est.Listings, 5)

	// The ramp averages out to exactly the base rate.
	assert.Equal(t, 12.0, est.AveragePricePerM2)
	assert.Equal(t, 12*ReferenceSizeM2, est.MonthlyEstimate)
	assert.Equal(t, 60.0, est.MarketScore)
	assert.Equal(t, "expensive", est.MarketRating)

	// First listing sits at 90% of base.
	first := est.Listings[0]
	assert.Equal(t, 250, first.SizeM2)
	assert.Equal(t, 10.8, first.PricePerM2)
	assert.Equal(t, 2700, first.Price)
	assert.True(t, first.Estimated)
}

func TestStatic_MurciaMarket(t *testing.T) {
	est, err := NewStatic().AnalyzeMarket(context.Background(), murcia)
	require.NoError(t, err)

	assert.Equal(t, "Murcia", est.City)
	assert.Equal(t, 8.0, est.AveragePricePerM2)
	assert.Equal(t, 80.0, est.MarketScore)
	assert.Equal(t, "moderate", est.MarketRating)
}

func TestStatic_NationalDefault(t *testing.T) {
	est, err := NewStatic().AnalyzeMarket(context.Background(), nowhere)
	require.NoError(t, err)

	assert.Equal(t, "Spain", est.City)
	assert.Equal(t, 9.0, est.AveragePricePerM2)
}

func TestMarketBuckets(t *testing.T) {
	tests := []struct {
		price  float64
		score  float64
		rating string
	}{
		{5, 100, "cheap"},
		{7.99, 100, "cheap"},
		{8, 80, "moderate"},
		{11.99, 80, "moderate"},
		{12, 60, "expensive"},
		{17.99, 60, "expensive"},
		{18, 40, "very expensive"},
		{30, 40, "very expensive"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.score, marketScore(tt.price), "price=%.2f", tt.price)
		assert.Equal(t, tt.rating, marketRating(tt.price), "price=%.2f", tt.price)
	}
}

// estimatorFunc adapts a function to the Estimator interface.
type estimatorFunc func(ctx context.Context, center model.Coordinates) (*model.RentalMarketEstimate, error)

func (f estimatorFunc) AnalyzeMarket(ctx context.Context, center model.Coordinates) (*model.RentalMarketEstimate, error) {
	return f(ctx, center)
}

func TestFallback(t *testing.T) {
	primaryResult := &model.RentalMarketEstimate{Available: true, City: "primary"}
	backupResult := &model.RentalMarketEstimate{Available: true, City: "backup"}
	backup := estimatorFunc(func(context.Context, model.Coordinates) (*model.RentalMarketEstimate, error) {
		return backupResult, nil
	})

	tests := []struct {
		name     string
		primary  estimatorFunc
		wantCity string
	}{
		{
			"primary succeeds",
			func(context.Context, model.Coordinates) (*model.RentalMarketEstimate, error) {
				return primaryResult, nil
			},
			"primary",
		},
		{
			"primary errors",
			func(context.Context, model.Coordinates) (*model.RentalMarketEstimate, error) {
				return nil, fmt.Errorf("boom")
			},
			"backup",
		},
		{
			"primary has no data",
			func(context.Context, model.Coordinates) (*model.RentalMarketEstimate, error) {
				return &model.RentalMarketEstimate{Available: false}, nil
			},
			"backup",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := NewFallback(tt.primary, backup).AnalyzeMarket(context.Background(), madrid)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCity, est.City)
		})
	}
}

func TestIdealista_AnalyzeMarket(t *testing.T) {
	authCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		authCalls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
		fmt.Fprint(w, `{"access_token": "tok-123", "token_type": "bearer"}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "premises", r.URL.Query().Get("propertyType"))
		assert.Equal(t, "rent", r.URL.Query().Get("operation"))
		fmt.Fprint(w, `{"total": 3, "elementList": [
			{"price": 3000, "size": 300, "address": "Calle A"},
			{"price": 5000, "size": 500, "address": "Calle B"},
			{"price": 1800, "size": 0, "address": "no size"}
		]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewIdealista("key", "secret",
		WithAuthURL(srv.URL+"/oauth/token"),
		WithSearchURL(srv.URL+"/search"),
	)

	est, err := client.AnalyzeMarket(context.Background(), madrid)
	require.NoError(t, err)

	assert.True(t, est.Available)
	assert.Equal(t, 3, est.PropertiesFound)
	assert.Equal(t, 10.0, est.AveragePricePerM2)
	assert.Equal(t, 3500, est.MonthlyEstimate)
	assert.Equal(t, 80.0, est.MarketScore)
	assert.Equal(t, "moderate", est.MarketRating)

	// Both sized listings fall in the gym-suitable window.
	require.Len(t, est.Listings, 2)
	assert.Equal(t, "Calle A", est.Listings[0].Title)

	// The token is fetched once and reused.
	_, err = client.AnalyzeMarket(context.Background(), madrid)
	require.NoError(t, err)
	assert.Equal(t, 1, authCalls)
}

func TestIdealista_NoListings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token": "tok"}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 0, "elementList": []}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewIdealista("key", "secret",
		WithAuthURL(srv.URL+"/oauth/token"),
		WithSearchURL(srv.URL+"/search"),
	)
	est, err := client.AnalyzeMarket(context.Background(), madrid)
	require.NoError(t, err)
	assert.False(t, est.Available)
}

func TestIdealista_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewIdealista("key", "bad-secret",
		WithAuthURL(srv.URL),
		WithSearchURL(srv.URL),
	)
	_, err := client.AnalyzeMarket(context.Background(), madrid)
	assert.Error(t, err)
}
