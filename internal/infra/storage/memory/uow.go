package memory

import (
	"context"
	"errors"

	"venuedash/internal/app/uow"
	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory hands out units over shared repositories. Units give no isolation;
// Commit and Rollback are no-ops.
type Factory struct {
	VenuesRepo   domainvenues.Repository
	BookingsRepo domainbooking.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.VenuesRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{venues: f.VenuesRepo, bookings: f.BookingsRepo}, nil
}

type Unit struct {
	venues   domainvenues.Repository
	bookings domainbooking.Repository
}

func (u *Unit) Venues() domainvenues.Repository    { return u.venues }
func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }
func (u *Unit) Commit(ctx context.Context) error   { return nil }
func (u *Unit) Rollback(ctx context.Context) error { return nil }
