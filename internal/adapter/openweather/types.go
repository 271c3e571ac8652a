package openweather

import (
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
)

// OpenWeatherMap API response types.

type errorBody struct {
	Message string `json:"message"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type precipitation struct {
	OneHour   float64 `json:"1h"`
	ThreeHour float64 `json:"3h"`
}

type currentResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []condition   `json:"weather"`
	Main    mainBlock     `json:"main"`
	Wind    wind          `json:"wind"`
	Rain    precipitation `json:"rain"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Dt int64 `json:"dt"`
}

type forecastEntry struct {
	Dt      int64         `json:"dt"`
	DtTxt   string        `json:"dt_txt"`
	Main    mainBlock     `json:"main"`
	Weather []condition   `json:"weather"`
	Wind    wind          `json:"wind"`
	Rain    precipitation `json:"rain"`
	Clouds  struct {
		All float64 `json:"all"`
	} `json:"clouds"`
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type geocodeEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func (r currentResponse) toRecord() domain.WeatherRecord {
	rec := domain.WeatherRecord{
		ID:        r.ID,
		Name:      r.Name,
		Country:   r.Sys.Country,
		Coord:     domain.Coordinates{Lat: r.Coord.Lat, Lon: r.Coord.Lon},
		Temp:      r.Main.Temp,
		FeelsLike: r.Main.FeelsLike,
		TempMin:   r.Main.TempMin,
		TempMax:   r.Main.TempMax,
		Pressure:  r.Main.Pressure,
		Humidity:  r.Main.Humidity,
		WindSpeed: r.Wind.Speed,
		WindDeg:   r.Wind.Deg,
		Rain1h:    r.Rain.OneHour,
		Rain3h:    r.Rain.ThreeHour,
	}
	if r.Dt > 0 {
		rec.Timestamp = time.Unix(r.Dt, 0).UTC()
	}
	if len(r.Weather) > 0 {
		rec.Condition = r.Weather[0].Main
		rec.Description = r.Weather[0].Description
		rec.Icon = r.Weather[0].Icon
	}
	return rec
}

func (e forecastEntry) toItem() domain.ForecastItem {
	item := domain.ForecastItem{
		Time:      time.Unix(e.Dt, 0).UTC(),
		Text:      e.DtTxt,
		Temp:      e.Main.Temp,
		FeelsLike: e.Main.FeelsLike,
		TempMin:   e.Main.TempMin,
		TempMax:   e.Main.TempMax,
		Pressure:  e.Main.Pressure,
		Humidity:  e.Main.Humidity,
		WindSpeed: e.Wind.Speed,
		WindDeg:   e.Wind.Deg,
		Rain3h:    e.Rain.ThreeHour,
		Clouds:    e.Clouds.All,
	}
	if len(e.Weather) > 0 {
		item.Condition = e.Weather[0].Main
		item.Description = e.Weather[0].Description
		item.Icon = e.Weather[0].Icon
	}
	return item
}
