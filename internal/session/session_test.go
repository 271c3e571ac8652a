package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(name string) domain.WeatherRecord {
	return domain.WeatherRecord{Name: name, Country: "XX", Coord: domain.Coordinates{Lat: 1, Lon: 2}}
}

func historyNames(st State) []string {
	out := make([]string, len(st.History))
	for i, h := range st.History {
		out[i] = h.Name
	}
	return out
}

func TestSession_ApplySuccess(t *testing.T) {
	s := New(5)
	s.Apply(reading("Paris"), nil)

	st := s.State()
	require.NotNil(t, st.Current)
	assert.Equal(t, "Paris", st.Current.Name)
	assert.Empty(t, st.Error)
	assert.Equal(t, []SearchResult{{Name: "Paris", Country: "XX", Lat: 1, Lon: 2}}, st.History)
}

func TestSession_HistoryKeepsNewestFive(t *testing.T) {
	s := New(5)
	for _, c := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		s.Apply(reading(c), nil)
	}
	assert.Equal(t, []string{"G", "F", "E", "D", "C"}, historyNames(s.State()))
}

func TestSession_HistoryKeepsDuplicates(t *testing.T) {
	s := New(5)
	s.Apply(reading("Paris"), nil)
	s.Apply(reading("Paris"), nil)
	assert.Equal(t, []string{"Paris", "Paris"}, historyNames(s.State()))
}

func TestSession_ApplyFailureKeepsCurrent(t *testing.T) {
	s := New(5)
	s.Apply(reading("Paris"), nil)
	s.Apply(domain.WeatherRecord{}, &domain.UpstreamError{Endpoint: "weather", StatusCode: 404, Message: "city not found"})

	st := s.State()
	require.NotNil(t, st.Current)
	assert.Equal(t, "Paris", st.Current.Name)
	assert.Equal(t, "city not found", st.Error)
	assert.Len(t, st.History, 1)

	s.Apply(domain.WeatherRecord{}, errors.New("dial tcp: i/o timeout"))
	assert.Equal(t, domain.DefaultFailureMessage, s.State().Error)

	s.Apply(reading("Rome"), nil)
	assert.Empty(t, s.State().Error)
}

func TestSession_ClearError(t *testing.T) {
	s := New(5)
	s.Apply(domain.WeatherRecord{}, errors.New("boom"))
	s.ClearError()
	assert.Empty(t, s.State().Error)
}

func TestSession_StateIsACopy(t *testing.T) {
	s := New(5)
	s.Apply(reading("Paris"), nil)

	st := s.State()
	st.Current.Name = "Mutated"
	st.History[0].Name = "Mutated"

	fresh := s.State()
	assert.Equal(t, "Paris", fresh.Current.Name)
	assert.Equal(t, "Paris", fresh.History[0].Name)
}

func TestSession_EmptyState(t *testing.T) {
	st := New(0).State()
	assert.Nil(t, st.Current)
	assert.NotNil(t, st.History)
	assert.Empty(t, st.History)
}

func TestStore_GetOrCreate(t *testing.T) {
	store := NewStore(10, 5)

	id, s1 := store.GetOrCreate("")
	require.NotEmpty(t, id)

	same, s2 := store.GetOrCreate(id)
	assert.Equal(t, id, same)
	assert.Same(t, s1, s2)

	other, s3 := store.GetOrCreate("unknown-id")
	assert.NotEqual(t, "unknown-id", other)
	assert.NotSame(t, s1, s3)
	assert.Equal(t, 2, store.Len())
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store := NewStore(3, 5)

	ids := make([]string, 3)
	for i := range ids {
		ids[i], _ = store.Create()
	}

	// Touch the oldest so the second becomes least recently used.
	_, ok := store.Get(ids[0])
	require.True(t, ok)

	newest, _ := store.Create()
	assert.Equal(t, 3, store.Len())

	_, ok = store.Get(ids[1])
	assert.False(t, ok, "least recently used session should be evicted")
	for _, id := range []string{ids[0], ids[2], newest} {
		_, ok := store.Get(id)
		assert.True(t, ok, fmt.Sprintf("session %s should survive", id))
	}
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	store := NewStore(10, 5)
	_, a := store.Create()
	_, b := store.Create()

	a.Apply(reading("Paris"), nil)
	assert.Nil(t, b.State().Current)
}
