package dto

import (
	"time"

	domainbooking "venuedash/internal/domain/booking"
)

type Booking struct {
	ID              string    `json:"id"`
	VenueID         string    `json:"venue_id"`
	UserID          string    `json:"user_id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	StartTime       string    `json:"start_time,omitempty"`
	EndTime         string    `json:"end_time,omitempty"`
	Guests          int       `json:"number_of_guests"`
	TotalAmount     string    `json:"total_amount"`
	Status          string    `json:"status"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

type BookingStatusResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:              string(b.ID),
		VenueID:         string(b.VenueID),
		UserID:          b.UserID,
		StartDate:       b.StartDate.String(),
		EndDate:         b.EndDate.String(),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Guests:          b.Guests,
		TotalAmount:     b.TotalAmount,
		Status:          string(b.Status),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
