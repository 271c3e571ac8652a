package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/insights"
	"github.com/couchcryptid/weather-insights-service/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	sessionCookie = "wi_session"
	sessionMaxAge = 30 * 24 * time.Hour

	upstreamUnavailableMessage = "Weather data is currently unavailable"
)

// Insights is the query side of the dashboard.
type Insights interface {
	Coldest(ctx context.Context) ([]domain.CityWeather, error)
	Hottest(ctx context.Context) ([]domain.CityWeather, error)
	Stats(ctx context.Context) (insights.Stats, error)
	RainWind(ctx context.Context, city string) ([]domain.ForecastItem, error)
	Search(ctx context.Context, city string) (domain.WeatherRecord, error)
	SearchByCoordinates(ctx context.Context, lat, lon float64) (domain.WeatherRecord, error)
	Suggest(ctx context.Context, query string) []domain.CityCandidate
}

// AlertBoard exposes the most recently published alerts.
type AlertBoard interface {
	State() insights.BoardState
}

// Trigger requests an out-of-band disaster refresh.
type Trigger interface {
	Trigger()
}

// API serves the dashboard JSON endpoints.
type API struct {
	insights  Insights
	board     AlertBoard
	refresher Trigger
	sessions  *session.Store
	logger    *slog.Logger
}

// NewAPI creates an API.
func NewAPI(svc Insights, board AlertBoard, refresher Trigger, sessions *session.Store, logger *slog.Logger) *API {
	return &API{
		insights:  svc,
		board:     board,
		refresher: refresher,
		sessions:  sessions,
		logger:    logger,
	}
}

// Routes returns the API router, meant to be mounted under /api.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/weather", a.handleWeather)
	r.Get("/session", a.handleSession)
	r.Get("/cities/suggest", a.handleSuggest)

	r.Route("/insights", func(r chi.Router) {
		r.Get("/coldest", a.handleColdest)
		r.Get("/hottest", a.handleHottest)
		r.Get("/stats", a.handleStats)
		r.Get("/disasters", a.handleDisasters)
		r.Get("/rainwind", a.handleRainWind)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type disastersResponse struct {
	insights.BoardState
	Refreshing bool `json:"refreshing"`
}

type rainWindResponse struct {
	City     string                `json:"city"`
	Forecast []domain.ForecastItem `json:"forecast"`
}

func (a *API) handleWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		rec domain.WeatherRecord
		err error
	)
	if q.Has("lat") || q.Has("lon") {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lon must both be numbers"})
			return
		}
		rec, err = a.insights.SearchByCoordinates(r.Context(), lat, lon)
	} else {
		rec, err = a.insights.Search(r.Context(), q.Get("city"))
	}

	if isValidationError(err) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sess := a.session(w, r)
	sess.Apply(rec, err)

	if err != nil {
		a.logger.Warn("weather search failed", "query", r.URL.RawQuery, "error", err)
		writeJSON(w, searchStatus(err), errorResponse{Error: domain.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.session(w, r).State())
}

func (a *API) handleSuggest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.insights.Suggest(r.Context(), r.URL.Query().Get("q")))
}

func (a *API) handleColdest(w http.ResponseWriter, r *http.Request) {
	cities, err := a.insights.Coldest(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: upstreamUnavailableMessage})
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (a *API) handleHottest(w http.ResponseWriter, r *http.Request) {
	cities, err := a.insights.Hottest(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: upstreamUnavailableMessage})
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.insights.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: upstreamUnavailableMessage})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) handleDisasters(w http.ResponseWriter, r *http.Request) {
	refreshing := r.URL.Query().Get("refresh") == "true"
	if refreshing {
		a.refresher.Trigger()
	}
	writeJSON(w, http.StatusOK, disastersResponse{BoardState: a.board.State(), Refreshing: refreshing})
}

func (a *API) handleRainWind(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	items, err := a.insights.RainWind(r.Context(), city)
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: domain.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, rainWindResponse{City: city, Forecast: items})
}

// session returns the caller's session, issuing a cookie for a new one.
func (a *API) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	newID, sess := a.sessions.GetOrCreate(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			MaxAge:   int(sessionMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func isValidationError(err error) bool {
	return errors.Is(err, insights.ErrEmptyQuery) || errors.Is(err, insights.ErrInvalidCoordinates)
}

func searchStatus(err error) int {
	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) && upErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
