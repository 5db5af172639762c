package memory

import (
	"context"
	"sync"
	"time"

	"venuedash/internal/app/middleware"
	"venuedash/internal/app/uow"
)

// IdempotencyStore keeps command results for ttl. A zero ttl keeps them
// forever.
type IdempotencyStore struct {
	mu    sync.RWMutex
	items map[string]middleware.IdempotencyRecord
	ttl   time.Duration
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		items: make(map[string]middleware.IdempotencyRecord),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	rec, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(rec.OccurredAt) > s.ttl {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, true, nil
}

// Save stores rec once the unit of work in ctx commits, so a rolled back
// command is never replayed.
func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	return uow.AfterCommit(ctx, func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items[rec.Key] = rec
		return nil
	})
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
