package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Severity is the ordinal classification of an alert.
type Severity string

const (
	SeverityExtreme  Severity = "extreme"
	SeveritySevere   Severity = "severe"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
	SeverityUnknown  Severity = "unknown"
)

// Rank orders severities for sorting: extreme=0 through unknown=4.
// Unrecognised values rank with unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityExtreme:
		return 0
	case SeveritySevere:
		return 1
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 3
	default:
		return 4
	}
}

// AlertType names the weather hazard an alert was raised for.
type AlertType string

const (
	AlertWind  AlertType = "wind"
	AlertRain  AlertType = "rain"
	AlertCold  AlertType = "cold"
	AlertHeat  AlertType = "heat"
	AlertStorm AlertType = "storm"
)

// MaxAlerts is how many alerts survive ranking.
const MaxAlerts = 20

// Classification thresholds. All comparisons are strict.
const (
	windAlertMS    = 15.0
	windSevereMS   = 20.0
	windExtremeMS  = 25.0
	rainAlertMM    = 10.0
	rainSevereMM   = 20.0
	rainExtremeMM  = 30.0
	coldAlertC     = -20.0
	coldExtremeC   = -30.0
	heatAlertC     = 40.0
	heatExtremeC   = 45.0
	msToKmh        = 3.6
	unknownCountry = "Unknown"
)

// WeatherAlert is a severe-weather warning synthesised from one reading.
type WeatherAlert struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	City        string      `json:"city"`
	Country     string      `json:"country"`
	Type        AlertType   `json:"type"`
	Coordinates Coordinates `json:"coordinates"`
}

// ClassifySevereWeather applies the wind, rain, cold, heat and storm rules to a
// reading and returns every alert that fires, in that order.
func ClassifySevereWeather(r WeatherRecord) []WeatherAlert {
	var alerts []WeatherAlert

	if r.WindSpeed > windAlertMS {
		alerts = append(alerts, newAlert(r, AlertWind, "High Wind Warning",
			fmt.Sprintf("Extreme wind speeds detected: %.1f m/s (%.1f km/h). Take caution.", r.WindSpeed, r.WindSpeed*msToKmh),
			windSeverity(r.WindSpeed)))
	}

	if rain := r.Rainfall(); rain > rainAlertMM {
		alerts = append(alerts, newAlert(r, AlertRain, "Heavy Rainfall Alert",
			fmt.Sprintf("Heavy rainfall detected: %.1f mm/h. Flood warning in effect.", rain),
			rainSeverity(rain)))
	}

	if r.Temp < coldAlertC {
		sev := SeveritySevere
		if r.Temp < coldExtremeC {
			sev = SeverityExtreme
		}
		alerts = append(alerts, newAlert(r, AlertCold, "Extreme Cold Warning",
			fmt.Sprintf("Extremely cold temperatures: %.1f°C. Risk of hypothermia and frostbite.", r.Temp),
			sev))
	}

	if r.Temp > heatAlertC {
		sev := SeveritySevere
		if r.Temp > heatExtremeC {
			sev = SeverityExtreme
		}
		alerts = append(alerts, newAlert(r, AlertHeat, "Extreme Heat Warning",
			fmt.Sprintf("Dangerously high temperatures: %.1f°C. Heat stroke risk. Stay hydrated.", r.Temp),
			sev))
	}

	condition := strings.ToLower(r.Condition)
	if strings.Contains(condition, "thunder") || strings.Contains(condition, "storm") {
		alerts = append(alerts, newAlert(r, AlertStorm, "Severe Storm Warning",
			"Severe storm conditions detected. Seek shelter immediately.",
			SeveritySevere))
	}

	return alerts
}

// RankAlerts sorts alerts by severity, keeping the input order among equals,
// and truncates the result to limit entries. The input slice is not modified.
func RankAlerts(alerts []WeatherAlert, limit int) []WeatherAlert {
	out := make([]WeatherAlert, len(alerts))
	copy(out, alerts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AlertID builds "<city>-<type>-<unix millis>" from the package clock.
func AlertID(city string, t AlertType) string {
	return fmt.Sprintf("%s-%s-%d", city, t, clock.Now().UnixMilli())
}

func newAlert(r WeatherRecord, t AlertType, title, description string, sev Severity) WeatherAlert {
	country := r.Country
	if country == "" {
		country = unknownCountry
	}
	return WeatherAlert{
		ID:          AlertID(r.Name, t),
		Title:       title,
		Description: description,
		Severity:    sev,
		City:        r.Name,
		Country:     country,
		Type:        t,
		Coordinates: r.Coord,
	}
}

func windSeverity(speed float64) Severity {
	switch {
	case speed > windExtremeMS:
		return SeverityExtreme
	case speed > windSevereMS:
		return SeveritySevere
	default:
		return SeverityModerate
	}
}

func rainSeverity(mm float64) Severity {
	switch {
	case mm > rainExtremeMM:
		return SeverityExtreme
	case mm > rainSevereMM:
		return SeveritySevere
	default:
		return SeverityModerate
	}
}
