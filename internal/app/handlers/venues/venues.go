package venues

import (
	"context"
	"sort"
	"strings"

	"venuedash/internal/app/dto"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/queries"
	"venuedash/internal/app/uow"
	domainvenues "venuedash/internal/domain/venues"
)

const (
	listVenuesKey = "venues.list"
	getVenueKey   = "venues.get"
)

type ListVenuesQuery struct {
	OperatorID string
}

func (q ListVenuesQuery) Key() string       { return listVenuesKey }
func (q ListVenuesQuery) Principal() string { return q.OperatorID }

type GetVenueQuery struct {
	VenueID    string
	OperatorID string
}

func (q GetVenueQuery) Key() string       { return getVenueKey }
func (q GetVenueQuery) Principal() string { return q.OperatorID }
func (q GetVenueQuery) TargetVenue() domainvenues.VenueID {
	return domainvenues.VenueID(strings.TrimSpace(q.VenueID))
}

type ListVenuesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListVenuesHandler) Handle(ctx context.Context, q ListVenuesQuery) (dto.VenueCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.VenueCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	venues, err := unit.Venues().ListByOwner(execCtx, strings.TrimSpace(q.OperatorID))
	if err != nil {
		return dto.VenueCollection{}, err
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Name < venues[j].Name })
	items := make([]dto.Venue, 0, len(venues))
	for _, v := range venues {
		items = append(items, dto.MapVenue(v))
	}
	return dto.VenueCollection{Items: items}, nil
}

type GetVenueHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetVenueHandler) Handle(ctx context.Context, q GetVenueQuery) (dto.Venue, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Venue{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	venue, err := unit.Venues().ByID(execCtx, q.TargetVenue())
	if err != nil {
		return dto.Venue{}, err
	}
	return dto.MapVenue(venue), nil
}

var (
	_ queries.Handler[ListVenuesQuery, dto.VenueCollection] = (*ListVenuesHandler)(nil)
	_ queries.Handler[GetVenueQuery, dto.Venue]             = (*GetVenueHandler)(nil)
)
