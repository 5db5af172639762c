package booking

import (
	"time"

	"venuedash/internal/domain/venues"
)

type StatusChanged struct {
	BookingID BookingID      `json:"booking_id"`
	VenueID   venues.VenueID `json:"venue_id"`
	From      Status         `json:"from"`
	To        Status         `json:"to"`
	At        time.Time      `json:"at"`
}

func (e StatusChanged) EventName() string     { return "booking.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
