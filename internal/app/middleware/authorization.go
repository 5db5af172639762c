package middleware

import (
	"context"
	"errors"
	"strings"

	"venuedash/internal/app/commands"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/queries"
	"venuedash/internal/app/uow"
	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

var ErrOperatorRequired = errors.New("middleware: operator id required")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// OperatorScoped messages act on behalf of an operator.
type OperatorScoped interface {
	Principal() string
}

// VenueScoped messages target one venue that the operator must own.
type VenueScoped interface {
	OperatorScoped
	TargetVenue() domainvenues.VenueID
}

// BookingScoped messages target a booking of a venue the operator must own.
type BookingScoped interface {
	OperatorScoped
	TargetBooking() domainbooking.BookingID
}

// VenueOwnership rejects messages whose operator does not own the targeted
// venue. Messages that are not OperatorScoped pass untouched.
type VenueOwnership struct {
	UoWFactory uow.UoWFactory
}

func (a VenueOwnership) Authorize(ctx context.Context, message any) error {
	scoped, ok := message.(OperatorScoped)
	if !ok {
		return nil
	}
	operator := strings.TrimSpace(scoped.Principal())
	if operator == "" {
		return ErrOperatorRequired
	}

	var venueID domainvenues.VenueID
	var bookingID domainbooking.BookingID
	if v, ok := message.(VenueScoped); ok {
		venueID = v.TargetVenue()
	}
	if b, ok := message.(BookingScoped); ok {
		bookingID = b.TargetBooking()
	}
	if venueID == "" && bookingID == "" {
		return nil
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, a.UoWFactory)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if venueID == "" {
		booking, err := unit.Bookings().ByID(execCtx, bookingID)
		if err != nil {
			return err
		}
		venueID = booking.VenueID
	}
	venue, err := unit.Venues().ByID(execCtx, venueID)
	if err != nil {
		return err
	}
	if !venue.OwnedBy(operator) {
		return domainvenues.ErrNotOwner
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
