package uow

import (
	"context"

	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

// UnitOfWork groups the repositories touched by one command or query.
type UnitOfWork interface {
	Venues() domainvenues.Repository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
