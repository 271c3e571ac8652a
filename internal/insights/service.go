// Package insights derives dashboard views from aggregated weather readings:
// temperature rankings, severe-weather alerts, short-range forecasts and
// single-city lookups.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/weather-insights-service/internal/aggregate"
	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
)

const (
	// ForecastSlots is how many 3-hour forecast items RainWind returns (about 24 hours).
	ForecastSlots = 8

	// SuggestLimit caps the number of search-as-you-type candidates.
	SuggestLimit = 5

	minSuggestRunes = 3
)

var (
	ErrEmptyQuery         = errors.New("city name is required")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// Aggregator fetches current weather for a list of cities.
type Aggregator interface {
	Aggregate(ctx context.Context, cities []string) (aggregate.Result, error)
}

// Stats is the summary banner: rounded extreme temperatures and the number of
// active alerts across the tracked cities.
type Stats struct {
	ColdestTemp int `json:"coldest_temp"`
	HottestTemp int `json:"hottest_temp"`
	AlertCount  int `json:"alert_count"`
	Cities      int `json:"cities"`
}

// Service derives insights over a fixed list of tracked cities.
type Service struct {
	aggregator Aggregator
	provider   domain.WeatherProvider
	cities     []string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewService creates a Service. The city list is copied.
func NewService(agg Aggregator, provider domain.WeatherProvider, cities []string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		aggregator: agg,
		provider:   provider,
		cities:     append([]string(nil), cities...),
		logger:     logger,
		metrics:    metrics,
	}
}

// Cities returns the tracked city list.
func (s *Service) Cities() []string {
	return append([]string(nil), s.cities...)
}

// Coldest returns the ten coldest tracked cities. The error is non-nil only
// when the provider could not be reached at all.
func (s *Service) Coldest(ctx context.Context) ([]domain.CityWeather, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Coldest(records, domain.TopN), nil
}

// Hottest returns the ten hottest tracked cities.
func (s *Service) Hottest(ctx context.Context) ([]domain.CityWeather, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Hottest(records, domain.TopN), nil
}

// Disasters classifies every tracked city and returns the most severe alerts.
// An empty, non-nil slice with a nil error means no severe weather.
func (s *Service) Disasters(ctx context.Context) ([]domain.WeatherAlert, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return s.classify(records), nil
}

// Stats computes the summary banner from a single aggregation.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.records(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		AlertCount: len(s.classify(records)),
		Cities:     len(domain.Snapshots(records)),
	}
	if coldest := domain.Coldest(records, 1); len(coldest) > 0 {
		st.ColdestTemp = roundHalfUp(coldest[0].Temp)
	}
	if hottest := domain.Hottest(records, 1); len(hottest) > 0 {
		st.HottestTemp = roundHalfUp(hottest[0].Temp)
	}
	return st, nil
}

// RainWind resolves city to coordinates and returns the next ForecastSlots
// forecast items. On failure it returns an empty slice and the error.
func (s *Service) RainWind(ctx context.Context, city string) ([]domain.ForecastItem, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return []domain.ForecastItem{}, ErrEmptyQuery
	}

	rec, err := s.provider.CurrentByCity(ctx, city)
	if err != nil {
		s.logger.Warn("forecast city resolution failed", "city", city, "error", err)
		return []domain.ForecastItem{}, fmt.Errorf("resolve %s: %w", city, err)
	}

	items, err := s.provider.ForecastByCoordinates(ctx, rec.Coord.Lat, rec.Coord.Lon)
	if err != nil {
		s.logger.Warn("forecast fetch failed", "city", city, "error", err)
		return []domain.ForecastItem{}, fmt.Errorf("forecast %s: %w", city, err)
	}

	if len(items) > ForecastSlots {
		items = items[:ForecastSlots]
	}
	return items, nil
}

// Search looks up current weather for one city. Errors are returned to the
// caller unchanged so the upstream message can reach the user.
func (s *Service) Search(ctx context.Context, city string) (domain.WeatherRecord, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return domain.WeatherRecord{}, ErrEmptyQuery
	}
	return s.provider.CurrentByCity(ctx, city)
}

// SearchByCoordinates looks up current weather at a point.
func (s *Service) SearchByCoordinates(ctx context.Context, lat, lon float64) (domain.WeatherRecord, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.WeatherRecord{}, ErrInvalidCoordinates
	}
	return s.provider.CurrentByCoordinates(ctx, lat, lon)
}

// Suggest returns city candidates for a partial query. Queries shorter than
// three characters return nothing without calling the provider.
func (s *Service) Suggest(ctx context.Context, query string) []domain.CityCandidate {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSuggestRunes {
		return []domain.CityCandidate{}
	}
	return s.provider.SearchCities(ctx, query, SuggestLimit)
}

func (s *Service) records(ctx context.Context) ([]domain.WeatherRecord, error) {
	res, err := s.aggregator.Aggregate(ctx, s.cities)
	if err != nil {
		s.logger.Error("aggregation failed", "cities", len(s.cities), "error", err)
		return nil, err
	}
	return res.Records, nil
}

func (s *Service) classify(records []domain.WeatherRecord) []domain.WeatherAlert {
	all := make([]domain.WeatherAlert, 0)
	for _, r := range records {
		for _, a := range domain.ClassifySevereWeather(r) {
			s.metrics.AlertsGenerated.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
			all = append(all, a)
		}
	}
	return domain.RankAlerts(all, domain.MaxAlerts)
}

// roundHalfUp rounds to the nearest integer with halves going towards positive
// infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
