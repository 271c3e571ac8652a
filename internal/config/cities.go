package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCities is the built-in universe for the coldest, hottest and disaster insights.
var DefaultCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"London", "Paris", "Berlin", "Madrid", "Rome",
	"Tokyo", "Beijing", "Shanghai", "Mumbai", "Delhi",
	"Moscow", "Istanbul", "Cairo", "Sydney", "Melbourne",
	"Toronto", "Vancouver", "São Paulo", "Buenos Aires", "Mexico City",
	"Dubai", "Singapore", "Bangkok", "Jakarta", "Manila",
	"Oslo", "Stockholm", "Helsinki", "Reykjavik", "Anchorage",
	"Miami", "Las Vegas", "Riyadh", "Johannesburg", "Lagos",
}

type citiesFile struct {
	Cities []string `yaml:"cities"`
}

// LoadCities returns the city list from a YAML file of the form
//
//	cities:
//	  - Oslo
//	  - Lagos
//
// An empty path returns a copy of DefaultCities. Blank entries are skipped;
// duplicates are kept.
func LoadCities(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultCities...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CITIES_FILE: %w", err)
	}

	var f citiesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse CITIES_FILE: %w", err)
	}

	cities := make([]string, 0, len(f.Cities))
	for _, c := range f.Cities {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	if len(cities) == 0 {
		return nil, errors.New("CITIES_FILE lists no cities")
	}
	return cities, nil
}
