// Package session keeps per-browser dashboard state in memory: the current
// reading, the last user-visible error and a short search history.
package session

import (
	"sync"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
)

// SearchResult is one entry of the search history.
type SearchResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// State is a point-in-time copy of a session.
type State struct {
	Current *domain.WeatherRecord `json:"current"`
	Error   string                `json:"error,omitempty"`
	History []SearchResult        `json:"history"`
}

// Session is safe for concurrent use.
type Session struct {
	historySize int

	mu      sync.Mutex
	current *domain.WeatherRecord
	errMsg  string
	history []SearchResult
}

// New creates an empty session keeping at most historySize searches.
func New(historySize int) *Session {
	if historySize < 1 {
		historySize = 1
	}
	return &Session{historySize: historySize, history: []SearchResult{}}
}

// Apply records the outcome of a single-city search. Success replaces the
// current reading, clears the error and prepends to the history; failure
// keeps the current reading and stores the user-visible message.
func (s *Session) Apply(rec domain.WeatherRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.errMsg = domain.UserMessage(err)
		return
	}

	s.current = &rec
	s.errMsg = ""

	entry := SearchResult{Name: rec.Name, Country: rec.Country, Lat: rec.Coord.Lat, Lon: rec.Coord.Lon}
	keep := min(len(s.history), s.historySize-1)
	s.history = append([]SearchResult{entry}, s.history[:keep]...)
}

// ClearError drops the stored error message.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// State returns a copy of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Error:   s.errMsg,
		History: append(make([]SearchResult, 0, len(s.history)), s.history...),
	}
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
	}
	return st
}
