package dto

import (
	"time"

	domainvenues "venuedash/internal/domain/venues"
)

type Capacity struct {
	Min         int `json:"min"`
	Max         int `json:"max"`
	Recommended int `json:"recommended"`
}

type Venue struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id,omitempty"`
	Name         string                `json:"name"`
	Type         string                `json:"type,omitempty"`
	City         string                `json:"city,omitempty"`
	Capacity     Capacity              `json:"capacity"`
	Metadata     domainvenues.Metadata `json:"metadata"`
	BlockedDays  int                   `json:"blocked_days"`
	BlockedDates []BlockedRange        `json:"blockedDates"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type VenueCollection struct {
	Items []Venue `json:"items"`
}

func MapVenue(v *domainvenues.Venue) Venue {
	if v == nil {
		return Venue{}
	}
	blocked := v.BlockedDates()
	return Venue{
		ID:           string(v.ID),
		OwnerID:      v.OwnerID,
		Name:         v.Name,
		Type:         v.Type,
		City:         v.City,
		Capacity:     Capacity(v.Capacity),
		Metadata:     v.Metadata,
		BlockedDays:  blocked.Days(),
		BlockedDates: MapBlockedRanges(blocked),
		UpdatedAt:    v.UpdatedAt,
	}
}
