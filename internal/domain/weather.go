package domain

import (
	"context"
	"time"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherRecord is the normalised current-weather reading for one location.
type WeatherRecord struct {
	ID          int64       `json:"id,omitempty"`
	Name        string      `json:"name"`
	Country     string      `json:"country,omitempty"`
	Coord       Coordinates `json:"coord"`
	Temp        float64     `json:"temp"`
	FeelsLike   float64     `json:"feels_like"`
	TempMin     float64     `json:"temp_min"`
	TempMax     float64     `json:"temp_max"`
	Pressure    float64     `json:"pressure"`
	Humidity    float64     `json:"humidity"`
	WindSpeed   float64     `json:"wind_speed"`
	WindDeg     float64     `json:"wind_deg"`
	Rain1h      float64     `json:"rain_1h,omitempty"`
	Rain3h      float64     `json:"rain_3h,omitempty"`
	Condition   string      `json:"condition,omitempty"` // weather[0].main, e.g. "Thunderstorm"
	Description string      `json:"description,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// HasIdentity reports whether the record carries both a city name and a country.
func (r WeatherRecord) HasIdentity() bool {
	return r.Name != "" && r.Country != ""
}

// Rainfall returns the hourly rainfall, falling back to the 3-hour figure when
// the provider did not report a positive 1-hour value.
func (r WeatherRecord) Rainfall() float64 {
	if r.Rain1h > 0 {
		return r.Rain1h
	}
	return r.Rain3h
}

// CityWeather is an immutable snapshot of one city's conditions at fetch time.
type CityWeather struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Temp      float64 `json:"temp"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// CityCandidate is a geocoding match offered while the user types.
type CityCandidate struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// ForecastItem is one 3-hour forecast slot.
type ForecastItem struct {
	Time        time.Time `json:"time"`
	Text        string    `json:"dt_txt"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Pressure    float64   `json:"pressure"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     float64   `json:"wind_deg"`
	Rain3h      float64   `json:"rain_3h"`
	Clouds      float64   `json:"clouds"`
	Condition   string    `json:"condition,omitempty"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
}

// WeatherProvider fetches weather data from an upstream service.
type WeatherProvider interface {
	// CurrentByCity returns current conditions for a city name such as "Paris" or "Paris, FR".
	CurrentByCity(ctx context.Context, name string) (WeatherRecord, error)

	// CurrentByCoordinates returns current conditions at a point.
	CurrentByCoordinates(ctx context.Context, lat, lon float64) (WeatherRecord, error)

	// SearchCities returns up to limit geocoding matches. It never fails; an
	// upstream error yields an empty result.
	SearchCities(ctx context.Context, query string, limit int) []CityCandidate

	// ForecastByCoordinates returns 3-hour forecast slots ordered by time ascending.
	ForecastByCoordinates(ctx context.Context, lat, lon float64) ([]ForecastItem, error)
}
