package policies

import (
	"context"

	"venuedash/internal/domain/availability"
)

// SessionStore keeps selection sessions between requests. Get returns
// availability.ErrSessionExpired for unknown or expired ids.
type SessionStore interface {
	Get(ctx context.Context, id string) (availability.Session, error)
	Save(ctx context.Context, session availability.Session) error
	Delete(ctx context.Context, id string) error
}
