// Package domain models current-weather readings from the OpenWeatherMap API and
// the insights derived from them.
//
// # Data Source
//
// Readings come from the OpenWeatherMap 2.5 REST API (/weather and /forecast) and
// the Geocoding 1.0 API (/direct). Every request is issued with units=metric, so
// temperatures are degrees Celsius, wind speed is metres per second and rainfall
// is millimetres over the reported window.
//
// # Provider Conventions
//
// Current weather ("/weather"):
//
//	name         city name as the provider spells it ("São Paulo", "Reykjavik")
//	sys.country  ISO 3166-1 alpha-2 code; absent for some ocean/territory results
//	weather[0]   primary condition: main ("Thunderstorm"), description, icon ("11d")
//	rain.1h      rainfall over the last hour; rain.3h over the last three hours
//
// Records missing a name or a country are not usable for ranking and are dropped
// by the aggregator.
//
// Forecast ("/forecast"):
//
//	list[]       3-hour slots ordered by dt ascending; 8 slots cover about 24 hours
//
// # Severe Weather Classification
//
// Alerts are derived, not fetched. Each rule is evaluated independently, so one
// city can raise several alerts. Thresholds are strict (a wind speed of exactly
// 15 m/s raises nothing):
//
//	Wind:  >15 m/s moderate | >20 severe | >25 extreme
//	Rain:  >10 mm/h moderate | >20 severe | >30 extreme
//	Cold:  <-20 °C severe | <-30 extreme
//	Heat:  >40 °C severe | >45 extreme
//	Storm: condition contains "thunder" or "storm" → severe
//
// Alerts are ordered extreme, severe, moderate, minor, unknown and the top 20 are
// kept. Alert identifiers are "<city>-<type>-<unix millis>" and are only unique
// within one classification run.
package domain
