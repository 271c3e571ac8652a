//go:build openweather

package openweather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real OpenWeatherMap API and require OPENWEATHER_API_KEY.
// Run with: go test -tags=openweather ./internal/adapter/openweather/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("OPENWEATHER_API_KEY")
	if key == "" {
		t.Fatal("OPENWEATHER_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		units:      "metric",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.openweathermap.org/data/2.5",
		geoURL:     "https://api.openweathermap.org/geo/1.0",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_CurrentByCity(t *testing.T) {
	c := smokeClient(t)

	rec, err := c.CurrentByCity(context.Background(), "London, GB")
	require.NoError(t, err)

	assert.Equal(t, "London", rec.Name)
	assert.Equal(t, "GB", rec.Country)
	assert.InDelta(t, 51.5, rec.Coord.Lat, 0.5)
	assert.NotEmpty(t, rec.Condition)
	t.Logf("London: %.1f°C %s", rec.Temp, rec.Description)
}

func TestSmoke_CurrentByCity_Unknown(t *testing.T) {
	c := smokeClient(t)

	_, err := c.CurrentByCity(context.Background(), "Qwxzzyville")
	require.Error(t, err)
	t.Logf("error: %v", err)
}

func TestSmoke_SearchCities(t *testing.T) {
	c := smokeClient(t)

	got := c.SearchCities(context.Background(), "Springfield", 5)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 5)
	for _, g := range got {
		t.Logf("%s, %s %s (%.4f, %.4f)", g.Name, g.State, g.Country, g.Lat, g.Lon)
	}
}

func TestSmoke_Forecast(t *testing.T) {
	c := smokeClient(t)

	items, err := c.ForecastByCoordinates(context.Background(), 48.8534, 2.3488)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Time.Before(items[i-1].Time))
	}
}
