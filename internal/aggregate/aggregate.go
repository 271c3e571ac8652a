// Package aggregate fans a list of city names out to the weather provider
// and collects the readings that came back usable.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// ErrUpstreamUnavailable is returned when every city in a non-empty batch failed.
var ErrUpstreamUnavailable = errors.New("weather provider unavailable")

// CurrentFetcher fetches current conditions for one city.
type CurrentFetcher interface {
	CurrentByCity(ctx context.Context, name string) (domain.WeatherRecord, error)
}

// Result is the outcome of one aggregation. Records are in input order and
// never include a city whose request failed or whose reading lacked a name or
// country.
type Result struct {
	Records []domain.WeatherRecord
	Failed  []string
}

// Aggregator issues one request per city with a bounded number in flight.
type Aggregator struct {
	provider    CurrentFetcher
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates an Aggregator. A concurrency below 1 is treated as 1.
func New(provider CurrentFetcher, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		provider:    provider,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

type slot struct {
	record domain.WeatherRecord
	err    error
}

// Aggregate fetches current weather for every city and waits for all requests
// to settle. Individual failures are logged and omitted. It returns
// ErrUpstreamUnavailable only if every request failed, and the context error
// if ctx was cancelled.
func (a *Aggregator) Aggregate(ctx context.Context, cities []string) (Result, error) {
	start := time.Now()
	a.metrics.AggregationCities.Observe(float64(len(cities)))

	slots := make([]slot, len(cities))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, city := range cities {
		g.Go(func() error {
			rec, err := a.provider.CurrentByCity(ctx, city)
			slots[i] = slot{record: rec, err: err}
			return nil
		})
	}
	_ = g.Wait()

	a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Records: make([]domain.WeatherRecord, 0, len(cities))}
	var errs *multierror.Error
	for i, s := range slots {
		if s.err != nil {
			a.logger.Warn("city fetch failed", "city", cities[i], "error", s.err)
			res.Failed = append(res.Failed, cities[i])
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", cities[i], s.err))
			continue
		}
		if !s.record.HasIdentity() {
			a.logger.Debug("dropping reading without name or country", "city", cities[i])
			continue
		}
		res.Records = append(res.Records, s.record)
	}
	a.metrics.AggregationFailures.Add(float64(len(res.Failed)))

	if len(cities) > 0 && len(res.Failed) == len(cities) {
		return res, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, errs.ErrorOrNil())
	}
	return res, nil
}
