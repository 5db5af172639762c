package memory

import (
	"context"
	"sync"
	"time"

	"venuedash/internal/app/policies"
	"venuedash/internal/domain/availability"
)

// SessionStore keeps selection sessions in memory. A session expires ttl
// after its last update.
type SessionStore struct {
	mu    sync.RWMutex
	items map[string]availability.Session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		items: make(map[string]availability.Session),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (availability.Session, error) {
	s.mu.RLock()
	session, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return availability.Session{}, availability.ErrSessionExpired
	}
	if s.ttl > 0 && s.now().Sub(session.UpdatedAt) > s.ttl {
		_ = s.Delete(ctx, id)
		return availability.Session{}, availability.ErrSessionExpired
	}
	return session, nil
}

func (s *SessionStore) Save(ctx context.Context, session availability.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = session
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

var _ policies.SessionStore = (*SessionStore)(nil)
