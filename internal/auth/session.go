package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore maps opaque session tokens to user IDs. It is owned by the
// auth service and passed explicitly to everything that needs caller
// identity; nothing reads session state from ambient request globals.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
}

type session struct {
	userID    uint
	expiresAt time.Time
}

// NewSessionStore creates a session store. Sessions expire after ttl;
// a non-positive ttl means sessions never expire.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session),
		ttl:      ttl,
	}
}

// Create issues a new token bound to the given user id.
func (s *SessionStore) Create(userID uint) string {
	token := uuid.NewString()

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = time.Now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[token] = session{userID: userID, expiresAt: expiresAt}
	s.mu.Unlock()

	return token
}

// Resolve returns the user id bound to token. An absent or expired token
// yields (0, false) — the anonymous caller — never an error.
func (s *SessionStore) Resolve(token string) (uint, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return 0, false
	}

	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		s.Delete(token)
		return 0, false
	}

	return sess.userID, true
}

// Delete invalidates a token. Deleting an unknown token is a no-op.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
