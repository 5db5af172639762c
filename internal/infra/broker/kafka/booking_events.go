package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/dto"
	appavailability "venuedash/internal/app/handlers/availability"
	domainbooking "venuedash/internal/domain/booking"
)

const bookingStatusChangedType = "booking.status_changed.v1"

// Inbox deduplicates redelivered events.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// BookingConfirmedHandler blocks the dates of bookings whose status changed
// to confirmed. Other events are acknowledged and ignored.
type BookingConfirmedHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

type cloudEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type statusChangedData struct {
	BookingID string `json:"booking_id"`
	To        string `json:"to"`
}

func (h *BookingConfirmedHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger().WarnContext(ctx, "skipping malformed event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if evt.Type != bookingStatusChangedType {
		return nil
	}
	var data statusChangedData
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		h.logger().WarnContext(ctx, "skipping malformed event", "event_id", evt.ID, "error", err)
		return nil
	}
	if domainbooking.Status(data.To) != domainbooking.StatusConfirmed {
		return nil
	}

	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	res, err := commands.Dispatch[appavailability.BlockBookingDatesCommand, *dto.CommitResult](ctx, h.Bus, appavailability.BlockBookingDatesCommand{BookingID: data.BookingID})
	if err != nil {
		if h.Inbox != nil {
			if fErr := h.Inbox.Forget(ctx, evt.ID); fErr != nil {
				return fmt.Errorf("%w (inbox: %v)", err, fErr)
			}
		}
		return err
	}
	if res != nil {
		h.logger().InfoContext(ctx, "booking dates blocked", "booking_id", data.BookingID, "venue_id", res.VenueID, "days", res.Days, "noop", res.Noop)
	}
	return nil
}

func (h *BookingConfirmedHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
