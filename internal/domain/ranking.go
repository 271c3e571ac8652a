package domain

import "sort"

// TopN is how many cities the coldest/hottest rankings return.
const TopN = 10

const (
	defaultCondition = "Unknown"
	defaultIcon      = "01d"
)

// SnapshotFromRecord maps a reading to a CityWeather. It reports false when the
// reading has no city name or country, which makes it unusable for ranking.
func SnapshotFromRecord(r WeatherRecord) (CityWeather, bool) {
	if !r.HasIdentity() {
		return CityWeather{}, false
	}

	condition := r.Condition
	if condition == "" {
		condition = defaultCondition
	}
	icon := r.Icon
	if icon == "" {
		icon = defaultIcon
	}

	return CityWeather{
		Name:      r.Name,
		Country:   r.Country,
		Temp:      r.Temp,
		TempMin:   r.TempMin,
		TempMax:   r.TempMax,
		Condition: condition,
		Icon:      icon,
		Lat:       r.Coord.Lat,
		Lon:       r.Coord.Lon,
	}, true
}

// Snapshots maps readings to snapshots, dropping those without identity.
func Snapshots(records []WeatherRecord) []CityWeather {
	out := make([]CityWeather, 0, len(records))
	for _, r := range records {
		if s, ok := SnapshotFromRecord(r); ok {
			out = append(out, s)
		}
	}
	return out
}

// Coldest returns up to n snapshots ordered by temperature ascending.
// Equal temperatures keep their input order.
func Coldest(records []WeatherRecord, n int) []CityWeather {
	return rank(records, n, func(a, b CityWeather) bool { return a.Temp < b.Temp })
}

// Hottest returns up to n snapshots ordered by temperature descending.
// Equal temperatures keep their input order.
func Hottest(records []WeatherRecord, n int) []CityWeather {
	return rank(records, n, func(a, b CityWeather) bool { return a.Temp > b.Temp })
}

func rank(records []WeatherRecord, n int, less func(a, b CityWeather) bool) []CityWeather {
	snaps := Snapshots(records)
	sort.SliceStable(snaps, func(i, j int) bool { return less(snaps[i], snaps[j]) })
	if n >= 0 && len(snaps) > n {
		snaps = snaps[:n]
	}
	return snaps
}
