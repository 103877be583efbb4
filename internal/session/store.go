// Package session holds the authenticated identity for the running client.
// The store is process-wide: written only by login, logout, and restore,
// read by every guard and screen as a consistent snapshot.
package session

import (
	"log"
	"sync"

	userdomain "brokerops/client/internal/user/domain"
)

// Status is the session lifecycle state. A fresh store is Loading until
// Restore has run; guards render a neutral placeholder in that window.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

// Identity mirrors the server's view of the logged-in user.
type Identity struct {
	ID    int
	Email string
	Name  string
	Role  userdomain.Role
}

// Store is the single-writer session store. Readers always observe a whole
// identity or none; there is no partial state.
type Store struct {
	mu       sync.RWMutex
	status   Status
	identity Identity
	mirror   *Mirror
}

// NewStore returns a store in the Loading state. mirror may be nil, in which
// case nothing is persisted across runs.
func NewStore(mirror *Mirror) *Store {
	return &Store{status: StatusLoading, mirror: mirror}
}

// Restore resolves the Loading state from the persisted mirror. An absent,
// expired, or tampered mirror yields Unauthenticated. The restored identity
// is trusted lazily: the first 401 from the server clears it.
func (s *Store) Restore() {
	var ident *Identity
	if s.mirror != nil {
		var err error
		ident, err = s.mirror.Load()
		if err != nil {
			log.Printf("session: restore mirror: %v", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident == nil {
		s.status = StatusUnauthenticated
		s.identity = Identity{}
		return
	}
	s.status = StatusAuthenticated
	s.identity = *ident
}

// SetAuthenticated records a successful login and persists the mirror.
// Mirror persistence is best-effort; a write failure does not fail the login.
func (s *Store) SetAuthenticated(ident Identity) {
	s.mu.Lock()
	s.status = StatusAuthenticated
	s.identity = ident
	s.mu.Unlock()
	if s.mirror != nil {
		if err := s.mirror.Save(ident); err != nil {
			log.Printf("session: persist mirror: %v", err)
		}
	}
}

// Clear tears the session down (logout or a server-side 401) and removes the
// persisted mirror.
func (s *Store) Clear() {
	s.mu.Lock()
	s.status = StatusUnauthenticated
	s.identity = Identity{}
	s.mu.Unlock()
	if s.mirror != nil {
		if err := s.mirror.Clear(); err != nil {
			log.Printf("session: clear mirror: %v", err)
		}
	}
}

// Snapshot returns the current status and identity as one consistent read.
// The identity is the zero value unless status is StatusAuthenticated.
func (s *Store) Snapshot() (Status, Identity) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.identity
}
