package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"venuedash/internal/app/dto"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	domainbooking "venuedash/internal/domain/booking"
)

const blockBookingDatesKey = "availability.block_booking"

var ErrBookingRequired = errors.New("availability: booking id is required")

// BlockBookingDatesCommand blocks the free days of a confirmed booking as
// confirmed ranges. It is issued by the booking event consumer, not by an
// operator.
type BlockBookingDatesCommand struct {
	BookingID string
}

func (c BlockBookingDatesCommand) Key() string { return blockBookingDatesKey }

func (c BlockBookingDatesCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return ErrBookingRequired
	}
	return nil
}

type BlockBookingDatesHandler struct {
	Committer *Committer
	Now       func() time.Time
}

func (h *BlockBookingDatesHandler) Handle(ctx context.Context, cmd BlockBookingDatesCommand) (*dto.CommitResult, error) {
	unit, err := uow.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, err
	}
	venue, err := unit.Venues().ByID(ctx, booking.VenueID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domainbooking.StatusConfirmed {
		return &dto.CommitResult{VenueID: string(venue.ID), Mode: string(domainavailability.ModeBlock), Noop: true}, nil
	}

	existing := venue.BlockedDates()
	var free []civil.Date
	booking.Span().Each(func(d civil.Date) bool {
		if !existing.IsBlocked(d) {
			free = append(free, d)
		}
		return true
	})
	session, err := domainavailability.NewSession(uuid.NewString(), string(venue.ID), existing, domainavailability.ModeBlock, handlersupport.Clock(h.Now))
	if err != nil {
		return nil, err
	}
	session.Selection = domainavailability.NewSelection(free...)

	result, _, err := h.Committer.Commit(ctx, session)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
