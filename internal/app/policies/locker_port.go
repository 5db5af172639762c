package policies

import (
	"context"
	"errors"
)

var ErrLocked = errors.New("policies: lock held by another holder")

// Locker grants exclusive, non-blocking ownership of a key. Acquire fails
// with ErrLocked when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Release gives the lock back. It is safe to call more than once.
type Release func(ctx context.Context) error
