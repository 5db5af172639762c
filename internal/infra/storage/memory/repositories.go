package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

// VenueRepository is an in-memory venue store for demos and tests. Values
// are copied on the way in and out.
type VenueRepository struct {
	mu    sync.RWMutex
	items map[domainvenues.VenueID]*domainvenues.Venue
	now   func() time.Time
}

func NewVenueRepository() *VenueRepository {
	return &VenueRepository{
		items: make(map[domainvenues.VenueID]*domainvenues.Venue),
		now:   time.Now,
	}
}

func (r *VenueRepository) ByID(ctx context.Context, id domainvenues.VenueID) (*domainvenues.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	venue, ok := r.items[id]
	if !ok {
		return nil, domainvenues.ErrVenueNotFound
	}
	return cloneVenue(venue), nil
}

func (r *VenueRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainvenues.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainvenues.Venue, 0, len(r.items))
	for _, venue := range r.items {
		if ownerID != "" && venue.OwnerID != "" && venue.OwnerID != ownerID {
			continue
		}
		out = append(out, cloneVenue(venue))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *VenueRepository) UpdateMetadata(ctx context.Context, id domainvenues.VenueID, metadata domainvenues.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	venue, ok := r.items[id]
	if !ok {
		return domainvenues.ErrVenueNotFound
	}
	next := cloneVenue(venue)
	next.Metadata = metadata.WithBlockedDates(metadata.BlockedDates)
	next.UpdatedAt = r.now().UTC()
	next.Version++
	r.items[id] = next
	return nil
}

// Save inserts or replaces a venue.
func (r *VenueRepository) Save(ctx context.Context, venue *domainvenues.Venue) error {
	if err := venue.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[venue.ID] = cloneVenue(venue)
	return nil
}

func cloneVenue(v *domainvenues.Venue) *domainvenues.Venue {
	out := *v
	out.Metadata = v.Metadata.WithBlockedDates(v.Metadata.BlockedDates)
	return &out
}

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) ListByVenue(ctx context.Context, venueID domainvenues.VenueID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.VenueID == venueID {
			out = append(out, cloneBooking(booking))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(string(out[i].ID), string(out[j].ID)) < 0
	})
	return out, nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	if err := booking.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneBooking(booking)
	stored.Version++
	r.items[booking.ID] = stored
	booking.Version = stored.Version
	return nil
}

// cloneBooking copies the booking without its pending events.
func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	out := *b
	out.ClearEvents()
	return &out
}

var (
	_ domainvenues.Repository  = (*VenueRepository)(nil)
	_ domainbooking.Repository = (*BookingRepository)(nil)
)
