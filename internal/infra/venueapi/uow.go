package venueapi

import (
	"context"

	"venuedash/internal/app/uow"
	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

// Factory exposes the API repositories as a unit of work. Every call is
// applied immediately; Commit and Rollback have nothing to do.
type Factory struct {
	Client *Client
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Client == nil {
		return nil, ErrNotConfigured
	}
	return &unit{
		venues:   &VenueRepository{Client: f.Client},
		bookings: &BookingRepository{Client: f.Client},
	}, nil
}

type unit struct {
	venues   *VenueRepository
	bookings *BookingRepository
}

func (u *unit) Venues() domainvenues.Repository    { return u.venues }
func (u *unit) Bookings() domainbooking.Repository { return u.bookings }
func (u *unit) Commit(context.Context) error       { return nil }
func (u *unit) Rollback(context.Context) error     { return nil }
