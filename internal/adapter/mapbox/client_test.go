package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quakesense-service/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		country:    "tr",
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(testToken, 3*time.Second, testMetrics(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, "tr", c.country)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "Pazarcık, Kahramanmaraş")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "tr", r.URL.Query().Get("country"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		resp := response{
			Features: []feature{
				{
					Center:    []float64{37.2986, 37.4866},
					PlaceName: "Pazarcık, Kahramanmaraş, Türkiye",
					Text:      "Pazarcık",
					Relevance: 0.95,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "Pazarcık", "Kahramanmaraş")
	require.NoError(t, err)

	assert.Equal(t, 37.4866, result.Lat)
	assert.Equal(t, 37.2986, result.Lon)
	assert.Equal(t, "Pazarcık, Kahramanmaraş, Türkiye", result.FormattedAddress)
	assert.Equal(t, "Pazarcık", result.PlaceName)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestClient_ForwardGeocode_ProvinceOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Hatay.json", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ForwardGeocode(context.Background(), " ", "Hatay")
	require.NoError(t, err)
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/28.200000,40.800000.json", r.URL.Path, "lon,lat order")
		resp := response{
			Features: []feature{
				{
					Center:    []float64{28.2461, 41.0736},
					PlaceName: "Silivri, İstanbul, Türkiye",
					Text:      "Silivri",
					Relevance: 0.98,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ReverseGeocode(context.Background(), 40.8, 28.2)
	require.NoError(t, err)

	assert.Equal(t, "Silivri, İstanbul, Türkiye", result.FormattedAddress)
	assert.Equal(t, "Silivri", result.PlaceName)
	assert.Equal(t, 0.98, result.Confidence)
}

func TestClient_ReverseGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ReverseGeocode(context.Background(), 35.0, 33.0)
	require.NoError(t, err)
	assert.Empty(t, result.FormattedAddress)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.token = "bad-token"

	_, err := c.ReverseGeocode(context.Background(), 40.8, 28.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"features": [`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ReverseGeocode(context.Background(), 40.8, 28.2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.ForwardGeocode(context.Background(), "Silivri", "İstanbul")
	require.Error(t, err)
}
