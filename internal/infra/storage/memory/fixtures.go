package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"

	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

// Fixtures is the on-disk seed format of the memory driver.
type Fixtures struct {
	Venues   []VenueFixture   `json:"venues"`
	Bookings []BookingFixture `json:"bookings"`
}

type VenueFixture struct {
	ID        string                `json:"id"`
	OwnerID   string                `json:"ownerId"`
	Name      string                `json:"name"`
	Type      string                `json:"type"`
	City      string                `json:"city"`
	Capacity  domainvenues.Capacity `json:"capacity"`
	Metadata  domainvenues.Metadata `json:"metadata"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type BookingFixture struct {
	ID              string     `json:"id"`
	VenueID         string     `json:"venueId"`
	UserID          string     `json:"userId"`
	StartDate       civil.Date `json:"startDate"`
	EndDate         civil.Date `json:"endDate"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	NumberOfGuests  int        `json:"numberOfGuests"`
	TotalAmount     string     `json:"totalAmount"`
	Status          string     `json:"status"`
	SpecialRequests string     `json:"specialRequests"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func LoadFixturesFile(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, err
	}
	var fx Fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("memory: parse fixtures %s: %w", path, err)
	}
	return fx, nil
}

// VenueSaver is implemented by venue stores that accept whole venues.
type VenueSaver interface {
	Save(ctx context.Context, venue *domainvenues.Venue) error
}

// Seed stores every fixture venue and booking. Stored blocked ranges must
// satisfy the range set invariants.
func (fx Fixtures) Seed(ctx context.Context, venues VenueSaver, bookings domainbooking.Repository) error {
	for _, vf := range fx.Venues {
		if err := vf.Metadata.BlockedDates.Validate(); err != nil {
			return fmt.Errorf("memory: venue %s: %w", vf.ID, err)
		}
		venue := &domainvenues.Venue{
			ID:        domainvenues.VenueID(vf.ID),
			OwnerID:   vf.OwnerID,
			Name:      vf.Name,
			Type:      vf.Type,
			City:      vf.City,
			Capacity:  vf.Capacity,
			Metadata:  vf.Metadata,
			CreatedAt: vf.CreatedAt,
			UpdatedAt: vf.UpdatedAt,
		}
		if err := venues.Save(ctx, venue); err != nil {
			return fmt.Errorf("memory: venue %s: %w", vf.ID, err)
		}
	}
	for _, bf := range fx.Bookings {
		status, err := domainbooking.ParseStatus(bf.Status)
		if err != nil {
			return fmt.Errorf("memory: booking %s: %w", bf.ID, err)
		}
		booking := &domainbooking.Booking{
			ID:              domainbooking.BookingID(bf.ID),
			VenueID:         domainvenues.VenueID(bf.VenueID),
			UserID:          bf.UserID,
			StartDate:       bf.StartDate,
			EndDate:         bf.EndDate,
			StartTime:       bf.StartTime,
			EndTime:         bf.EndTime,
			Guests:          bf.NumberOfGuests,
			TotalAmount:     bf.TotalAmount,
			Status:          status,
			SpecialRequests: bf.SpecialRequests,
			CreatedAt:       bf.CreatedAt,
			UpdatedAt:       bf.CreatedAt,
		}
		if err := bookings.Save(ctx, booking); err != nil {
			return fmt.Errorf("memory: booking %s: %w", bf.ID, err)
		}
	}
	return nil
}
