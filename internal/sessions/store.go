// Package sessions holds in-memory booking sessions. Each session owns
// its selection; abandoning a session simply discards it, no other
// resources are held.
package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborlight/tourbook/internal/booking"
)

var ErrSessionNotFound = errors.New("booking session not found")

// Session is one customer's booking-in-progress.
type Session struct {
	ID        string
	TourID    int64
	CreatedAt time.Time
	Selection booking.BookingSelection
}

// Store is a mutex-guarded in-memory session map.
type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Create opens a session for a tour and returns it.
func (s *Store) Create(tourID int64) Session {
	session := Session{
		ID:        uuid.New().String(),
		TourID:    tourID,
		CreatedAt: time.Now(),
		Selection: booking.NewSelection(tourID),
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns the session by id.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// SetSelection replaces the session's selection and returns the
// updated session.
func (s *Store) SetSelection(id string, selection booking.BookingSelection) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	session.Selection = selection
	s.sessions[id] = session
	return session, nil
}

// Delete abandons a session. Deleting an unknown id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
