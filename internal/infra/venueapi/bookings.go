package venueapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	domainbooking "venuedash/internal/domain/booking"
	domainvenues "venuedash/internal/domain/venues"
)

type BookingRepository struct {
	Client *Client
}

// amount accepts the total as a JSON string or number.
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amount(n.String())
	return nil
}

type bookingResource struct {
	ID              string     `json:"id"`
	VenueID         string     `json:"venueId"`
	UserID          string     `json:"userId"`
	StartDate       civil.Date `json:"startDate"`
	EndDate         civil.Date `json:"endDate"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	NumberOfGuests  int        `json:"numberOfGuests"`
	TotalAmount     amount     `json:"totalAmount"`
	Status          string     `json:"status"`
	SpecialRequests string     `json:"specialRequests"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (r bookingResource) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(r.ID),
		VenueID:         domainvenues.VenueID(r.VenueID),
		UserID:          r.UserID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Guests:          r.NumberOfGuests,
		TotalAmount:     string(r.TotalAmount),
		Status:          domainbooking.Status(r.Status),
		SpecialRequests: r.SpecialRequests,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var res bookingResource
	if err := r.Client.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(string(id)), nil, &res); err != nil {
		if isNotFound(err) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return res.toAggregate(), nil
}

func (r *BookingRepository) ListByVenue(ctx context.Context, venueID domainvenues.VenueID) ([]*domainbooking.Booking, error) {
	q := url.Values{"venueId": {string(venueID)}, "limit": {strconv.Itoa(500)}}
	var res []bookingResource
	if err := r.Client.do(ctx, http.MethodGet, "/bookings?"+q.Encode(), nil, &res); err != nil {
		return nil, err
	}
	out := make([]*domainbooking.Booking, 0, len(res))
	for _, b := range res {
		out = append(out, b.toAggregate())
	}
	return out, nil
}

// Save only propagates the status; the API owns every other field.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	body := map[string]string{"status": string(b.Status)}
	err := r.Client.do(ctx, http.MethodPatch, "/bookings/"+url.PathEscape(string(b.ID))+"/status", body, nil)
	if isNotFound(err) {
		return domainbooking.ErrBookingNotFound
	}
	return err
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
