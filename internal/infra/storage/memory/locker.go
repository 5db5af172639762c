package memory

import (
	"context"
	"sync"

	"venuedash/internal/app/policies"
)

// Locker is a process-local try-lock keyed by string.
type Locker struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]uint64)}
}

func (l *Locker) Acquire(ctx context.Context, key string) (policies.Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, policies.ErrLocked
	}
	l.seq++
	token := l.seq
	l.held[key] = token
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

var _ policies.Locker = (*Locker)(nil)
