package insights

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

const boardFailureMessage = "Weather data is currently unavailable"

// BoardState is a point-in-time copy of the alert board.
type BoardState struct {
	Alerts      []domain.WeatherAlert `json:"alerts"`
	UpdatedAt   time.Time             `json:"updated_at"`
	RefreshedAt time.Time             `json:"refreshed_at"`
	Error       string                `json:"error,omitempty"`
}

// AlertBoard holds the latest severe-weather alerts delivered by the refresher.
// A failed refresh keeps the previous alerts and records the error.
type AlertBoard struct {
	clock clockwork.Clock

	mu          sync.RWMutex
	alerts      []domain.WeatherAlert
	updatedAt   time.Time
	refreshedAt time.Time
	lastErr     error
}

// NewAlertBoard creates an empty board.
func NewAlertBoard(clock clockwork.Clock) *AlertBoard {
	return &AlertBoard{clock: clock, alerts: []domain.WeatherAlert{}}
}

// Deliver replaces the board's alerts and clears any recorded error.
func (b *AlertBoard) Deliver(_ context.Context, alerts []domain.WeatherAlert) error {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = append(make([]domain.WeatherAlert, 0, len(alerts)), alerts...)
	b.updatedAt = now
	b.refreshedAt = now
	b.lastErr = nil
	return nil
}

// Fail records a refresh that could not produce alerts.
func (b *AlertBoard) Fail(_ context.Context, err error) {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshedAt = now
	b.lastErr = err
}

// State returns a copy of the board.
func (b *AlertBoard) State() BoardState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := BoardState{
		Alerts:      append(make([]domain.WeatherAlert, 0, len(b.alerts)), b.alerts...),
		UpdatedAt:   b.updatedAt,
		RefreshedAt: b.refreshedAt,
	}
	if b.lastErr != nil {
		st.Error = boardFailureMessage
	}
	return st
}
