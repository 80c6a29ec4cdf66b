// Package store provides conversation state storage for JekleTube.
//
// It defines the Store interface used by the conversation flow and an
// in-memory backend with time-based expiry. State is intentionally not
// persisted across restarts.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/djmontana/jekletube/internal/models"
)

// Store defines per-user conversation state operations.
// Reads never fail: a missing or expired record reads as the normal mode
// with no data. Implementations must be safe for concurrent use.
type Store interface {
	// SetUserState overwrites the state record for a user, stamping the
	// current time.
	SetUserState(userID string, mode models.StateMode, data map[string]string)

	// GetUserState returns the current mode and data for a user. Records
	// older than models.StateTTL are treated as absent and evicted.
	GetUserState(userID string) (models.StateMode, map[string]string)

	// ClearUserState removes the state record for a user if present.
	ClearUserState(userID string)
}

// InMemoryStore keeps conversation state in a process-local map.
//
// There is no cross-operation locking: two near-simultaneous events from
// the same user are last-write-wins on mode transitions.
type InMemoryStore struct {
	mu     sync.Mutex
	states map[string]models.UserState
	now    func() time.Time
}

// NewInMemoryStore creates an empty in-memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		states: make(map[string]models.UserState),
		now:    time.Now,
	}
}

// SetUserState overwrites the record for userID.
func (s *InMemoryStore) SetUserState(userID string, mode models.StateMode, data map[string]string) {
	if data == nil {
		data = make(map[string]string)
	}
	s.mu.Lock()
	s.states[userID] = models.UserState{
		UserID:    userID,
		Mode:      mode,
		Data:      data,
		UpdatedAt: s.now(),
	}
	s.mu.Unlock()
	slog.Debug("store.SetUserState", "userID", userID, "mode", mode)
}

// GetUserState returns the stored mode and data, evicting expired records.
func (s *InMemoryStore) GetUserState(userID string) (models.StateMode, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		return models.ModeNormal, map[string]string{}
	}
	if s.now().Sub(st.UpdatedAt) > models.StateTTL {
		delete(s.states, userID)
		slog.Debug("store.GetUserState expired record evicted", "userID", userID, "mode", st.Mode)
		return models.ModeNormal, map[string]string{}
	}
	return st.Mode, st.Data
}

// ClearUserState removes the record for userID; no-op if absent.
func (s *InMemoryStore) ClearUserState(userID string) {
	s.mu.Lock()
	_, ok := s.states[userID]
	delete(s.states, userID)
	s.mu.Unlock()
	if ok {
		slog.Debug("store.ClearUserState cleared", "userID", userID)
	}
}

// hasRecord reports whether a raw record exists, ignoring expiry. Used by
// tests to observe read-time eviction.
func (s *InMemoryStore) hasRecord(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.states[userID]
	return ok
}
