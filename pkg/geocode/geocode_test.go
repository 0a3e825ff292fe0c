package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Calle Mayor 1, 28013 Madrid", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [{
				"geometry": {"location": {"lat": 40.4155, "lng": -3.7074}},
				"formatted_address": "Calle Mayor, 1, 28013 Madrid, Spain"
			}]
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := client.Geocode(context.Background(), "Calle Mayor 1, 28013 Madrid")
	require.NoError(t, err)

	assert.True(t, result.Matched)
	assert.Equal(t, 40.4155, result.Coordinates.Lat)
	assert.Equal(t, -3.7074, result.Coordinates.Lng)
	assert.Equal(t, "Calle Mayor, 1, 28013 Madrid, Spain", result.FormattedAddress)
}

func TestGeocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	result, err := client.Geocode(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGeocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Geocode(context.Background(), "Calle Mayor 1")
	assert.Error(t, err)
}

func TestGeocode_CachesNormalizedAddress(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{
			"status": "OK",
			"results": [{
				"geometry": {"location": {"lat": 40.0, "lng": -3.0}},
				"formatted_address": "somewhere"
			}]
		}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	first, err := client.Geocode(ctx, "Calle Mayor 1, Madrid")
	require.NoError(t, err)

	// Same address modulo case and whitespace hits the cache.
	second, err := client.Geocode(ctx, "  calle   MAYOR 1,   madrid ")
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
	assert.Equal(t, first.Coordinates, second.Coordinates)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("Calle Mayor 1"), cacheKey("  calle  mayor  1 "))
	assert.NotEqual(t, cacheKey("Calle Mayor 1"), cacheKey("Calle Mayor 2"))
}
