package availability

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"venuedash/internal/app/dto"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/policies"
	"venuedash/internal/app/queries"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
)

const (
	getCalendarKey = "availability.calendar"
	// defaultCalendarDays covers six calendar weeks.
	defaultCalendarDays = 42
)

// GetCalendarQuery renders the day grid of a venue. From defaults to today
// and To to six weeks after From. With SessionID set the session's mode and
// selection are rendered instead of Mode.
type GetCalendarQuery struct {
	VenueID    string
	OperatorID string
	From       string
	To         string
	Mode       string
	SessionID  string
}

func (q GetCalendarQuery) Key() string       { return getCalendarKey }
func (q GetCalendarQuery) Principal() string { return q.OperatorID }
func (q GetCalendarQuery) TargetVenue() domainvenues.VenueID {
	return domainvenues.VenueID(strings.TrimSpace(q.VenueID))
}

func (q GetCalendarQuery) Validate() error {
	if strings.TrimSpace(q.VenueID) == "" {
		return ErrVenueRequired
	}
	for _, v := range []string{q.From, q.To} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := daterange.Parse(v); err != nil {
			return err
		}
	}
	if q.Mode != "" {
		if _, err := domainavailability.ParseMode(q.Mode); err != nil {
			return err
		}
	}
	return nil
}

func (q GetCalendarQuery) window(today civil.Date) (daterange.Range, error) {
	from := today
	if strings.TrimSpace(q.From) != "" {
		d, err := daterange.Parse(q.From)
		if err != nil {
			return daterange.Range{}, err
		}
		from = d
	}
	to := from.AddDays(defaultCalendarDays - 1)
	if strings.TrimSpace(q.To) != "" {
		d, err := daterange.Parse(q.To)
		if err != nil {
			return daterange.Range{}, err
		}
		to = d
	}
	return daterange.New(from, to)
}

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Sessions   policies.SessionStore
	Now        func() time.Time
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	window, err := q.window(daterange.Today(handlersupport.Clock(h.Now)))
	if err != nil {
		return dto.Calendar{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	venue, err := unit.Venues().ByID(execCtx, q.TargetVenue())
	if err != nil {
		return dto.Calendar{}, err
	}

	mode := domainavailability.ModeBlock
	if q.Mode != "" {
		if mode, err = domainavailability.ParseMode(q.Mode); err != nil {
			return dto.Calendar{}, err
		}
	}
	selection := domainavailability.NewSelection()
	if sid := strings.TrimSpace(q.SessionID); sid != "" && h.Sessions != nil {
		session, err := h.Sessions.Get(ctx, sid)
		if err != nil {
			return dto.Calendar{}, err
		}
		if session.VenueID != string(venue.ID) || (session.OperatorID != "" && session.OperatorID != strings.TrimSpace(q.OperatorID)) {
			return dto.Calendar{}, domainvenues.ErrNotOwner
		}
		mode = session.Mode
		selection = session.Selection
	}

	days, err := domainavailability.Calendar(venue.BlockedDates(), window, mode, selection)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(string(venue.ID), mode, days), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
