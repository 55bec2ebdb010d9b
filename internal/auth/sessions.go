package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore tracks live token ids. A token whose id is absent has been
// logged out or has expired.
type SessionStore interface {
	Save(ctx context.Context, id string, userID int64, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	// Revoke deletes the session and reports whether it was present.
	Revoke(ctx context.Context, id string) (bool, error)
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Expired entries are
// dropped lazily on access.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]memorySession{}, now: time.Now}
}

func (s *MemorySessionStore) Save(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) live(id string) bool {
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, id)
		return false
	}
	return true
}

func (s *MemorySessionStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(id), nil
}

func (s *MemorySessionStore) Revoke(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(id) {
		return false, nil
	}
	delete(s.sessions, id)
	return true, nil
}
