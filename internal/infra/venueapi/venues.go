package venueapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	domainvenues "venuedash/internal/domain/venues"
)

// VenueRepository reads and updates venues through the marketplace API.
type VenueRepository struct {
	Client *Client
}

type venueResource struct {
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

func (r venueResource) toAggregate() *domainvenues.Venue {
	return &domainvenues.Venue{
		ID:        domainvenues.VenueID(r.ID),
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Type:      r.Type,
		City:      r.City,
		Capacity:  r.Capacity,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *VenueRepository) ByID(ctx context.Context, id domainvenues.VenueID) (*domainvenues.Venue, error) {
	var res venueResource
	if err := r.Client.do(ctx, http.MethodGet, "/venues/"+url.PathEscape(string(id)), nil, &res); err != nil {
		if isNotFound(err) {
			return nil, domainvenues.ErrVenueNotFound
		}
		return nil, err
	}
	return res.toAggregate(), nil
}

// ListByOwner lists the venues owned by the token's account; the API derives
// the owner from the token.
func (r *VenueRepository) ListByOwner(ctx context.Context, _ string) ([]*domainvenues.Venue, error) {
	var res []venueResource
	if err := r.Client.do(ctx, http.MethodGet, "/venues/owned", nil, &res); err != nil {
		return nil, err
	}
	out := make([]*domainvenues.Venue, 0, len(res))
	for _, v := range res {
		out = append(out, v.toAggregate())
	}
	return out, nil
}

// UpdateMetadata sends PATCH /venues/{id} with {"metadata": ...}. Every
// failure is reported as a failed UpdateResult.
func (r *VenueRepository) UpdateMetadata(ctx context.Context, id domainvenues.VenueID, metadata domainvenues.Metadata) error {
	body := struct {
		Metadata domainvenues.Metadata `json:"metadata"`
	}{Metadata: metadata}
	result := domainvenues.UpdateResult{Success: true}
	if err := r.Client.do(ctx, http.MethodPatch, "/venues/"+url.PathEscape(string(id)), body, nil); err != nil {
		if isNotFound(err) {
			return domainvenues.ErrVenueNotFound
		}
		result = domainvenues.UpdateResult{Success: false, Error: err.Error()}
	}
	return result.Err()
}

var _ domainvenues.Repository = (*VenueRepository)(nil)
