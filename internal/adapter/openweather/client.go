package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/config"
	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
)

const (
	endpointWeather  = "weather"
	endpointForecast = "forecast"
	endpointGeocode  = "geocode"

	defaultSearchLimit = 5
	maxErrorBody       = 64 << 10
)

// Client implements domain.WeatherProvider using the OpenWeatherMap API.
type Client struct {
	apiKey     string
	units      string
	httpClient *http.Client
	baseURL    string
	geoURL     string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. The API key and unit system are
// attached to every request.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: cfg.OpenWeatherAPIKey,
		units:  cfg.OpenWeatherUnits,
		httpClient: &http.Client{
			Timeout: cfg.OpenWeatherTimeout,
		},
		baseURL: cfg.OpenWeatherBaseURL,
		geoURL:  cfg.OpenWeatherGeoURL,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentByCity returns current conditions for a city name.
func (c *Client) CurrentByCity(ctx context.Context, name string) (domain.WeatherRecord, error) {
	var resp currentResponse
	if err := c.doRequest(ctx, endpointWeather, c.baseURL+"/weather", url.Values{"q": {name}}, &resp); err != nil {
		return domain.WeatherRecord{}, err
	}
	return resp.toRecord(), nil
}

// CurrentByCoordinates returns current conditions at a point.
func (c *Client) CurrentByCoordinates(ctx context.Context, lat, lon float64) (domain.WeatherRecord, error) {
	var resp currentResponse
	if err := c.doRequest(ctx, endpointWeather, c.baseURL+"/weather", coordParams(lat, lon), &resp); err != nil {
		return domain.WeatherRecord{}, err
	}
	return resp.toRecord(), nil
}

// SearchCities returns up to limit geocoding matches for query. Failures are
// logged and yield an empty slice.
func (c *Client) SearchCities(ctx context.Context, query string, limit int) []domain.CityCandidate {
	if query == "" {
		return []domain.CityCandidate{}
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}

	var resp []geocodeEntry
	if err := c.doRequest(ctx, endpointGeocode, c.geoURL+"/direct", params, &resp); err != nil {
		c.logger.Warn("city search failed", "query", query, "error", err)
		return []domain.CityCandidate{}
	}

	out := make([]domain.CityCandidate, 0, len(resp))
	for _, g := range resp {
		out = append(out, domain.CityCandidate{
			Name:    g.Name,
			Country: g.Country,
			State:   g.State,
			Lat:     g.Lat,
			Lon:     g.Lon,
		})
	}
	return out
}

// ForecastByCoordinates returns the 3-hour forecast slots at a point, ordered
// by time ascending.
func (c *Client) ForecastByCoordinates(ctx context.Context, lat, lon float64) ([]domain.ForecastItem, error) {
	var resp forecastResponse
	if err := c.doRequest(ctx, endpointForecast, c.baseURL+"/forecast", coordParams(lat, lon), &resp); err != nil {
		return nil, err
	}

	items := make([]domain.ForecastItem, 0, len(resp.List))
	for _, e := range resp.List {
		items = append(items, e.toItem())
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Time.Before(items[j].Time) })
	return items, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint, rawURL string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	err = c.send(req, endpoint, out)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	return err
}

func (c *Client) send(req *http.Request, endpoint string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func coordParams(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

// errorMessage extracts the "message" field OpenWeatherMap puts in error bodies.
func errorMessage(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Message
}
