package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"venuedash/internal/app/dto"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/outbox"
	"venuedash/internal/app/uow"
	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

const (
	listVenueBookingsKey   = "bookings.list"
	updateBookingStatusKey = "bookings.status"
	allStatusesFilterValue = "all"
)

var ErrBookingRequired = errors.New("booking: booking id is required")

type ListVenueBookingsQuery struct {
	VenueID    string
	OperatorID string
	Status     string
}

func (q ListVenueBookingsQuery) Key() string       { return listVenueBookingsKey }
func (q ListVenueBookingsQuery) Principal() string { return q.OperatorID }
func (q ListVenueBookingsQuery) TargetVenue() domainvenues.VenueID {
	return domainvenues.VenueID(strings.TrimSpace(q.VenueID))
}

func (q ListVenueBookingsQuery) Validate() error {
	status := strings.TrimSpace(q.Status)
	if status == "" || strings.EqualFold(status, allStatusesFilterValue) {
		return nil
	}
	_, err := domainbooking.ParseStatus(status)
	return err
}

type ListVenueBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListVenueBookingsHandler) Handle(ctx context.Context, q ListVenueBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByVenue(execCtx, q.TargetVenue())
	if err != nil {
		return dto.BookingCollection{}, err
	}

	var filter domainbooking.Status
	if status := strings.TrimSpace(q.Status); status != "" && !strings.EqualFold(status, allStatusesFilterValue) {
		if filter, err = domainbooking.ParseStatus(status); err != nil {
			return dto.BookingCollection{}, err
		}
	}
	items := make([]dto.Booking, 0, len(bookings))
	for _, b := range bookings {
		if filter != "" && b.Status != filter {
			continue
		}
		items = append(items, dto.MapBooking(b))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "venue bookings listed", "venue_id", q.VenueID, "count", len(items), "status", filter)
	}
	return dto.BookingCollection{Items: items}, nil
}

type UpdateBookingStatusCommand struct {
	BookingID  string
	OperatorID string
	Status     string
}

func (c UpdateBookingStatusCommand) Key() string       { return updateBookingStatusKey }
func (c UpdateBookingStatusCommand) Principal() string { return c.OperatorID }
func (c UpdateBookingStatusCommand) TargetBooking() domainbooking.BookingID {
	return domainbooking.BookingID(strings.TrimSpace(c.BookingID))
}

func (c UpdateBookingStatusCommand) Validate() error {
	if strings.TrimSpace(c.BookingID) == "" {
		return ErrBookingRequired
	}
	_, err := domainbooking.ParseStatus(c.Status)
	return err
}

type UpdateBookingStatusHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *UpdateBookingStatusHandler) Handle(ctx context.Context, cmd UpdateBookingStatusCommand) (*dto.BookingStatusResult, error) {
	status, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	unit, err := uow.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := unit.Bookings().ByID(ctx, cmd.TargetBooking())
	if err != nil {
		return nil, err
	}
	if err := booking.ChangeStatus(status, handlersupport.Clock(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, booking.PendingEvents()...); err != nil {
		return nil, err
	}
	booking.ClearEvents()

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking status updated", "booking_id", booking.ID, "venue_id", booking.VenueID, "status", booking.Status)
	}
	return &dto.BookingStatusResult{BookingID: string(booking.ID), Status: string(booking.Status)}, nil
}
