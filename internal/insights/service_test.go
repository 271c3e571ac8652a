package insights_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/aggregate"
	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/insights"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type stubAggregator struct {
	records []domain.WeatherRecord
	err     error
	calls   int
	cities  []string
}

func (s *stubAggregator) Aggregate(_ context.Context, cities []string) (aggregate.Result, error) {
	s.calls++
	s.cities = cities
	if s.err != nil {
		return aggregate.Result{Failed: cities}, s.err
	}
	return aggregate.Result{Records: s.records}, nil
}

type stubProvider struct {
	current     map[string]domain.WeatherRecord
	currentErr  error
	forecast    []domain.ForecastItem
	forecastErr error
	candidates  []domain.CityCandidate

	forecastLat, forecastLon float64
	searchQuery              string
	searchLimit              int
	searchCalls              int
	coordCalls               int
}

func (s *stubProvider) CurrentByCity(_ context.Context, name string) (domain.WeatherRecord, error) {
	if s.currentErr != nil {
		return domain.WeatherRecord{}, s.currentErr
	}
	rec, ok := s.current[name]
	if !ok {
		return domain.WeatherRecord{}, &domain.UpstreamError{Endpoint: "weather", StatusCode: 404, Message: "city not found"}
	}
	return rec, nil
}

func (s *stubProvider) CurrentByCoordinates(_ context.Context, lat, lon float64) (domain.WeatherRecord, error) {
	s.coordCalls++
	return domain.WeatherRecord{Name: "Pinned", Country: "XX", Coord: domain.Coordinates{Lat: lat, Lon: lon}}, nil
}

func (s *stubProvider) SearchCities(_ context.Context, query string, limit int) []domain.CityCandidate {
	s.searchCalls++
	s.searchQuery = query
	s.searchLimit = limit
	return s.candidates
}

func (s *stubProvider) ForecastByCoordinates(_ context.Context, lat, lon float64) ([]domain.ForecastItem, error) {
	s.forecastLat, s.forecastLon = lat, lon
	if s.forecastErr != nil {
		return nil, s.forecastErr
	}
	return s.forecast, nil
}

func newService(agg insights.Aggregator, p domain.WeatherProvider, cities ...string) (*insights.Service, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return insights.NewService(agg, p, cities, slog.New(slog.NewTextHandler(io.Discard, nil)), m), m
}

func rec(name, country string, temp float64) domain.WeatherRecord {
	return domain.WeatherRecord{Name: name, Country: country, Temp: temp}
}

func forecastItems(n int) []domain.ForecastItem {
	start := time.Date(2025, 1, 15, 6, 0, 0, 0, time.UTC)
	items := make([]domain.ForecastItem, n)
	for i := range items {
		items[i] = domain.ForecastItem{Time: start.Add(time.Duration(i) * 3 * time.Hour), Temp: float64(i)}
	}
	return items
}

// --- rankings ---

func TestService_Coldest(t *testing.T) {
	agg := &stubAggregator{records: []domain.WeatherRecord{
		rec("Oslo", "NO", -6), rec("Cairo", "EG", 16), rec("Moscow", "RU", -14), rec("Lima", "PE", 19),
	}}
	svc, _ := newService(agg, &stubProvider{}, "Oslo", "Cairo", "Moscow", "Lima")

	got, err := svc.Coldest(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Moscow", got[0].Name)
	assert.Equal(t, "Lima", got[3].Name)
	assert.Equal(t, []string{"Oslo", "Cairo", "Moscow", "Lima"}, agg.cities)
}

func TestService_Hottest(t *testing.T) {
	agg := &stubAggregator{records: []domain.WeatherRecord{
		rec("Oslo", "NO", -6), rec("Cairo", "EG", 16), rec("Lima", "PE", 19),
	}}
	svc, _ := newService(agg, &stubProvider{}, "Oslo", "Cairo", "Lima")

	got, err := svc.Hottest(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Lima", "Cairo", "Oslo"}, []string{got[0].Name, got[1].Name, got[2].Name})
}

func TestService_Rankings_UpstreamUnavailable(t *testing.T) {
	agg := &stubAggregator{err: aggregate.ErrUpstreamUnavailable}
	svc, _ := newService(agg, &stubProvider{}, "Oslo")

	cold, err := svc.Coldest(context.Background())
	require.ErrorIs(t, err, aggregate.ErrUpstreamUnavailable)
	assert.Nil(t, cold)

	hot, err := svc.Hottest(context.Background())
	require.ErrorIs(t, err, aggregate.ErrUpstreamUnavailable)
	assert.Nil(t, hot)
}

// --- disasters ---

func TestService_Disasters_ReykjavikCold(t *testing.T) {
	agg := &stubAggregator{records: []domain.WeatherRecord{
		{Name: "Reykjavik", Country: "IS", Temp: -35, WindSpeed: 5},
	}}
	svc, m := newService(agg, &stubProvider{}, "Reykjavik")

	alerts, err := svc.Disasters(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertCold, alerts[0].Type)
	assert.Equal(t, domain.SeverityExtreme, alerts[0].Severity)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AlertsGenerated.WithLabelValues("cold", "extreme")))
}

func TestService_Disasters_LagosWind(t *testing.T) {
	agg := &stubAggregator{records: []domain.WeatherRecord{
		{Name: "Lagos", Country: "NG", Temp: 30, WindSpeed: 22},
	}}
	svc, _ := newService(agg, &stubProvider{}, "Lagos")

	alerts, err := svc.Disasters(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertWind, alerts[0].Type)
	assert.Equal(t, domain.SeveritySevere, alerts[0].Severity)
}

func TestService_Disasters_NoneIsEmptyNotError(t *testing.T) {
	agg := &stubAggregator{records: []domain.WeatherRecord{rec("Paris", "FR", 8)}}
	svc, _ := newService(agg, &stubProvider{}, "Paris")

	alerts, err := svc.Disasters(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestService_Disasters_UpstreamUnavailable(t *testing.T) {
	agg := &stubAggregator{err: aggregate.ErrUpstreamUnavailable}
	svc, _ := newService(agg, &stubProvider{}, "Paris")

	alerts, err := svc.Disasters(context.Background())
	require.ErrorIs(t, err, aggregate.ErrUpstreamUnavailable)
	assert.Nil(t, alerts)
}

func TestService_Disasters_TruncatesToMostSevere(t *testing.T) {
	var records []domain.WeatherRecord
	for i := 0; i < 15; i++ {
		records = append(records, domain.WeatherRecord{Name: "Breezy", Country: "XX", WindSpeed: 16})
	}
	for i := 0; i < 10; i++ {
		records = append(records, domain.WeatherRecord{Name: "Frozen", Country: "XX", Temp: -40})
	}
	svc, _ := newService(&stubAggregator{records: records}, &stubProvider{})

	alerts, err := svc.Disasters(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, domain.MaxAlerts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, domain.SeverityExtreme, alerts[i].Severity)
	}
	for i := 10; i < domain.MaxAlerts; i++ {
		assert.Equal(t, domain.SeverityModerate, alerts[i].Severity)
	}
}

// --- stats ---

func TestService_Stats(t *testing.T) {
	agg := &stubAggregator{records: []domain.WeatherRecord{
		{Name: "Anchorage", Country: "US", Temp: -23.5},
		{Name: "Melbourne", Country: "AU", Temp: 41.5},
		{Name: "Lagos", Country: "NG", Temp: 30, WindSpeed: 22},
		{Name: "", Country: "", Temp: 20},
	}}
	svc, _ := newService(agg, &stubProvider{})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -23, st.ColdestTemp)
	assert.Equal(t, 42, st.HottestTemp)
	assert.Equal(t, 3, st.AlertCount)
	assert.Equal(t, 3, st.Cities)
	assert.Equal(t, 1, agg.calls)
}

func TestService_Stats_NoData(t *testing.T) {
	svc, _ := newService(&stubAggregator{}, &stubProvider{})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, insights.Stats{}, st)
}

func TestService_Stats_UpstreamUnavailable(t *testing.T) {
	svc, _ := newService(&stubAggregator{err: aggregate.ErrUpstreamUnavailable}, &stubProvider{})

	_, err := svc.Stats(context.Background())
	require.ErrorIs(t, err, aggregate.ErrUpstreamUnavailable)
}

// --- rain/wind ---

func TestService_RainWind_FirstEightSlots(t *testing.T) {
	p := &stubProvider{
		current:  map[string]domain.WeatherRecord{"Paris": {Name: "Paris", Country: "FR", Coord: domain.Coordinates{Lat: 48.85, Lon: 2.35}}},
		forecast: forecastItems(40),
	}
	svc, _ := newService(&stubAggregator{}, p)

	items, err := svc.RainWind(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, items, insights.ForecastSlots)
	assert.InDelta(t, 48.85, p.forecastLat, 1e-9)
	assert.InDelta(t, 2.35, p.forecastLon, 1e-9)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].Time.Before(items[i].Time))
	}
}

func TestService_RainWind_ShortForecast(t *testing.T) {
	p := &stubProvider{
		current:  map[string]domain.WeatherRecord{"Paris": {Name: "Paris", Country: "FR"}},
		forecast: forecastItems(3),
	}
	svc, _ := newService(&stubAggregator{}, p)

	items, err := svc.RainWind(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestService_RainWind_UnresolvableCity(t *testing.T) {
	svc, _ := newService(&stubAggregator{}, &stubProvider{})

	items, err := svc.RainWind(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, "city not found", domain.UserMessage(err))
}

func TestService_RainWind_ForecastFails(t *testing.T) {
	p := &stubProvider{
		current:     map[string]domain.WeatherRecord{"Paris": {Name: "Paris", Country: "FR"}},
		forecastErr: errors.New("connection refused"),
	}
	svc, _ := newService(&stubAggregator{}, p)

	items, err := svc.RainWind(context.Background(), "Paris")
	require.Error(t, err)
	assert.Empty(t, items)
	assert.Contains(t, err.Error(), "forecast Paris")
}

func TestService_RainWind_EmptyCity(t *testing.T) {
	svc, _ := newService(&stubAggregator{}, &stubProvider{})

	items, err := svc.RainWind(context.Background(), "  ")
	require.ErrorIs(t, err, insights.ErrEmptyQuery)
	assert.Empty(t, items)
}

// --- search ---

func TestService_Search(t *testing.T) {
	p := &stubProvider{current: map[string]domain.WeatherRecord{"Paris": rec("Paris", "FR", 8)}}
	svc, _ := newService(&stubAggregator{}, p)

	got, err := svc.Search(context.Background(), " Paris ")
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Name)

	_, err = svc.Search(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.Equal(t, "city not found", domain.UserMessage(err))

	_, err = svc.Search(context.Background(), "")
	assert.ErrorIs(t, err, insights.ErrEmptyQuery)
}

func TestService_SearchByCoordinates(t *testing.T) {
	p := &stubProvider{}
	svc, _ := newService(&stubAggregator{}, p)

	got, err := svc.SearchByCoordinates(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 51.5, Lon: -0.12}, got.Coord)

	_, err = svc.SearchByCoordinates(context.Background(), 91, 0)
	require.ErrorIs(t, err, insights.ErrInvalidCoordinates)
	_, err = svc.SearchByCoordinates(context.Background(), 0, -180.5)
	require.ErrorIs(t, err, insights.ErrInvalidCoordinates)
	assert.Equal(t, 1, p.coordCalls)
}

func TestService_Suggest(t *testing.T) {
	p := &stubProvider{candidates: []domain.CityCandidate{{Name: "Paris", Country: "FR"}}}
	svc, _ := newService(&stubAggregator{}, p)

	got := svc.Suggest(context.Background(), "Par")
	require.Len(t, got, 1)
	assert.Equal(t, "Par", p.searchQuery)
	assert.Equal(t, insights.SuggestLimit, p.searchLimit)
}

func TestService_Suggest_ShortQuerySkipsProvider(t *testing.T) {
	p := &stubProvider{candidates: []domain.CityCandidate{{Name: "Paris"}}}
	svc, _ := newService(&stubAggregator{}, p)

	for _, q := range []string{"", "P", "Pa", "  Pa  ", "Äö"} {
		got := svc.Suggest(context.Background(), q)
		assert.NotNil(t, got, q)
		assert.Empty(t, got, q)
	}
	assert.Zero(t, p.searchCalls)
}

func TestService_Cities_ReturnsCopy(t *testing.T) {
	svc, _ := newService(&stubAggregator{}, &stubProvider{}, "Paris", "Rome")

	cities := svc.Cities()
	cities[0] = "Mutated"
	assert.Equal(t, []string{"Paris", "Rome"}, svc.Cities())
}
