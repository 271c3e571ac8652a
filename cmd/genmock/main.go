// Command genmock fetches current weather for the configured city list and
// writes it as a JSON fixture for the package test suites. It goes through
// the same client and aggregator as the service so the fixture matches what
// the insight functions see in production.
//
// Usage:
//
//	OPENWEATHER_API_KEY=... go run ./cmd/genmock \
//	  -out data/mock/current_weather.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/adapter/openweather"
	"github.com/couchcryptid/weather-insights-service/internal/aggregate"
	"github.com/couchcryptid/weather-insights-service/internal/config"
	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/mock/current_weather.json", "output path for the current weather fixture")
	timeout := flag.Duration("timeout", 60*time.Second, "overall fetch timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	client := openweather.NewClient(cfg, metrics, logger)
	agg := aggregate.New(client, cfg.AggregateConcurrency, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := agg.Aggregate(ctx, cfg.Cities)
	if err != nil {
		return fmt.Errorf("fetch current weather: %w", err)
	}
	for _, city := range res.Failed {
		log.Printf("skipped %s: request failed", city)
	}
	log.Printf("fetched %d of %d cities", len(res.Records), len(cfg.Cities))

	if err := writeJSON(*out, res.Records); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(res.Records)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.WeatherRecord) {
	var alerts []domain.WeatherAlert
	for _, r := range records {
		alerts = append(alerts, domain.ClassifySevereWeather(r)...)
	}
	ranked := domain.RankAlerts(alerts, domain.MaxAlerts)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d\n", len(records))

	fmt.Print("Coldest:")
	for _, c := range domain.Coldest(records, domain.TopN) {
		fmt.Printf(" %s(%.1f)", c.Name, c.Temp)
	}
	fmt.Println()

	fmt.Print("Hottest:")
	for _, c := range domain.Hottest(records, domain.TopN) {
		fmt.Printf(" %s(%.1f)", c.Name, c.Temp)
	}
	fmt.Println()

	bySeverity := map[domain.Severity]int{}
	for _, a := range ranked {
		bySeverity[a.Severity]++
	}
	fmt.Printf("Alerts: %d (extreme=%d, severe=%d, moderate=%d)\n", len(ranked),
		bySeverity[domain.SeverityExtreme], bySeverity[domain.SeveritySevere], bySeverity[domain.SeverityModerate])

	byType := map[domain.AlertType]int{}
	for _, a := range ranked {
		byType[a.Type]++
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %s=%d\n", t, byType[domain.AlertType(t)])
	}
}
