package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store maps session ids to sessions, evicting the least recently used
// session once maxSessions is exceeded.
type Store struct {
	maxSessions int
	historySize int
	mu          sync.Mutex
	entries     map[string]*entry
	head        *entry // most recently used
	tail        *entry // least recently used
}

type entry struct {
	id      string
	session *Session
	prev    *entry
	next    *entry
}

// NewStore creates a Store.
func NewStore(maxSessions, historySize int) *Store {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Store{
		maxSessions: maxSessions,
		historySize: historySize,
		entries:     make(map[string]*entry),
	}
}

// Get returns the session for id and marks it recently used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	s.moveToFront(e)
	return e.session, true
}

// GetOrCreate returns the session for id, creating a new one with a fresh id
// when id is unknown. The returned id is the one the caller should keep.
func (s *Store) GetOrCreate(id string) (string, *Session) {
	if sess, ok := s.Get(id); ok {
		return id, sess
	}
	return s.Create()
}

// Create starts a new session under a random id.
func (s *Store) Create() (string, *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{id: uuid.NewString(), session: New(s.historySize)}
	s.entries[e.id] = e
	s.addToFront(e)

	if len(s.entries) > s.maxSessions {
		s.evictTail()
	}
	return e.id, e.session
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.id)
	s.remove(s.tail)
}
