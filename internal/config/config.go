package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// OpenWeatherMap provider configuration.
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherGeoURL  string
	OpenWeatherUnits   string
	OpenWeatherTimeout time.Duration

	// Aggregation and insight settings.
	AggregateConcurrency    int
	DisasterRefreshInterval time.Duration
	CitiesFile              string
	Cities                  []string

	// Session state.
	SearchHistorySize int
	MaxSessions       int

	// Kafka alert sink configuration.
	KafkaBrokers    []string
	KafkaAlertTopic string
	KafkaEnabled    bool
}

const maxAggregateConcurrency = 64

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	owmTimeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("DISASTER_REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	concurrency, err := parseIntInRange("AGGREGATE_CONCURRENCY", 8, 1, maxAggregateConcurrency)
	if err != nil {
		return nil, err
	}

	historySize, err := parseIntInRange("SEARCH_HISTORY_SIZE", 5, 1, 50)
	if err != nil {
		return nil, err
	}

	maxSessions, err := parseIntInRange("MAX_SESSIONS", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	citiesFile := os.Getenv("CITIES_FILE")
	cities, err := LoadCities(citiesFile)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		OpenWeatherGeoURL:  sharedcfg.EnvOrDefault("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0"),
		OpenWeatherUnits:   sharedcfg.EnvOrDefault("OPENWEATHER_UNITS", "metric"),
		OpenWeatherTimeout: owmTimeout,

		AggregateConcurrency:    concurrency,
		DisasterRefreshInterval: refreshInterval,
		CitiesFile:              citiesFile,
		Cities:                  cities,

		SearchHistorySize: historySize,
		MaxSessions:       maxSessions,

		KafkaBrokers:    brokers,
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "weather-alerts"),
		KafkaEnabled:    kafkaEnabled,
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ALERT_TOPIC is required when the Kafka sink is enabled")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
