package booking

import (
	"errors"
	"testing"
	"time"

	"venuedash/internal/domain/shared/daterange"
)

func TestChangeStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		from, to Status
		wantErr  bool
		events   int
	}{
		{from: StatusPending, to: StatusConfirmed, events: 1},
		{from: StatusPending, to: StatusRejected, events: 1},
		{from: StatusConfirmed, to: StatusCompleted, events: 1},
		{from: StatusConfirmed, to: StatusConfirmed, events: 0},
		{from: StatusConfirmed, to: StatusPending, wantErr: true},
		{from: StatusCancelled, to: StatusConfirmed, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			b := &Booking{ID: "b-1", VenueID: "v-1", Status: tt.from}
			err := b.ChangeStatus(tt.to, now)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidState) {
					t.Fatalf("expected ErrInvalidState, got %v", err)
				}
				if b.Status != tt.from {
					t.Fatal("status changed on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ChangeStatus: %v", err)
			}
			evs := b.PendingEvents()
			if len(evs) != tt.events {
				t.Fatalf("got %d events", len(evs))
			}
			if tt.events == 1 {
				ev := evs[0].(StatusChanged)
				if ev.From != tt.from || ev.To != tt.to || ev.EventName() != "booking.status_changed" {
					t.Fatalf("unexpected event %+v", ev)
				}
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(" Confirmed "); err != nil || s != StatusConfirmed {
		t.Fatalf("ParseStatus = %q, %v", s, err)
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	b := &Booking{Guests: 10, StartDate: daterange.MustParse("2024-03-02"), EndDate: daterange.MustParse("2024-03-01")}
	if err := b.Validate(); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	b.Guests = 0
	if err := b.Validate(); !errors.Is(err, ErrInvalidGuests) {
		t.Fatalf("expected ErrInvalidGuests, got %v", err)
	}
}
