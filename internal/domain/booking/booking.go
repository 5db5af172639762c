package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"venuedash/internal/domain/shared/daterange"
	"venuedash/internal/domain/shared/events"
	"venuedash/internal/domain/venues"
)

var (
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrInvalidState    = errors.New("booking: invalid status transition")
	ErrUnknownStatus   = errors.New("booking: unknown status")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// CanTransition reports whether a booking in status from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              BookingID
	VenueID         venues.VenueID
	UserID          string
	StartDate       civil.Date
	EndDate         civil.Date
	StartTime       string
	EndTime         string
	Guests          int
	TotalAmount     string
	SpecialRequests string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListByVenue(ctx context.Context, venueID venues.VenueID) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
}

func (b *Booking) Validate() error {
	if b.Guests <= 0 {
		return ErrInvalidGuests
	}
	return daterange.Range{Start: b.StartDate, End: b.EndDate}.Validate()
}

func (b *Booking) Span() daterange.Range {
	return daterange.Range{Start: b.StartDate, End: b.EndDate}
}

// ChangeStatus moves the booking to status to and records StatusChanged.
// Setting the current status again is a no-op.
func (b *Booking) ChangeStatus(to Status, now time.Time) error {
	if b.Status == to {
		return nil
	}
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, b.Status, to)
	}
	from := b.Status
	b.Status = to
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{BookingID: b.ID, VenueID: b.VenueID, From: from, To: to, At: b.UpdatedAt})
	return nil
}
