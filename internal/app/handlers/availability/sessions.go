package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"venuedash/internal/app/dto"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/policies"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
)

const (
	openSessionKey   = "availability.session.open"
	getSessionKey    = "availability.session.get"
	toggleDateKey    = "availability.session.toggle"
	setModeKey       = "availability.session.mode"
	commitSessionKey = "availability.session.commit"
)

var ErrSessionRequired = errors.New("availability: session id is required")

type OpenSessionCommand struct {
	VenueID    string
	OperatorID string
	Mode       string
}

func (c OpenSessionCommand) Key() string       { return openSessionKey }
func (c OpenSessionCommand) Principal() string { return c.OperatorID }
func (c OpenSessionCommand) TargetVenue() domainvenues.VenueID {
	return domainvenues.VenueID(strings.TrimSpace(c.VenueID))
}

func (c OpenSessionCommand) Validate() error {
	if strings.TrimSpace(c.VenueID) == "" {
		return ErrVenueRequired
	}
	if c.Mode == "" {
		return nil
	}
	_, err := domainavailability.ParseMode(c.Mode)
	return err
}

type GetSessionQuery struct {
	SessionID  string
	OperatorID string
}

func (q GetSessionQuery) Key() string       { return getSessionKey }
func (q GetSessionQuery) Principal() string { return q.OperatorID }
func (q GetSessionQuery) Validate() error   { return requireSession(q.SessionID) }

type ToggleDateCommand struct {
	SessionID  string
	OperatorID string
	Date       string
}

func (c ToggleDateCommand) Key() string       { return toggleDateKey }
func (c ToggleDateCommand) Principal() string { return c.OperatorID }

func (c ToggleDateCommand) Validate() error {
	if err := requireSession(c.SessionID); err != nil {
		return err
	}
	_, err := daterange.Parse(c.Date)
	return err
}

type SetModeCommand struct {
	SessionID  string
	OperatorID string
	Mode       string
}

func (c SetModeCommand) Key() string       { return setModeKey }
func (c SetModeCommand) Principal() string { return c.OperatorID }

func (c SetModeCommand) Validate() error {
	if err := requireSession(c.SessionID); err != nil {
		return err
	}
	_, err := domainavailability.ParseMode(c.Mode)
	return err
}

type CommitSessionCommand struct {
	SessionID  string
	OperatorID string
}

func (c CommitSessionCommand) Key() string       { return commitSessionKey }
func (c CommitSessionCommand) Principal() string { return c.OperatorID }
func (c CommitSessionCommand) Validate() error   { return requireSession(c.SessionID) }

func requireSession(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrSessionRequired
	}
	return nil
}

// SessionHandlers serves the selection session commands. Sessions live in
// Store and are only visible to the operator that opened them.
type SessionHandlers struct {
	Store     policies.SessionStore
	Committer *Committer
	Now       func() time.Time
}

func (h *SessionHandlers) Open(ctx context.Context, cmd OpenSessionCommand) (*dto.Session, error) {
	mode := domainavailability.ModeBlock
	if cmd.Mode != "" {
		parsed, err := domainavailability.ParseMode(cmd.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}
	unit, err := uow.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	venue, err := unit.Venues().ByID(ctx, cmd.TargetVenue())
	if err != nil {
		return nil, err
	}
	session, err := domainavailability.NewSession(uuid.NewString(), string(venue.ID), venue.BlockedDates(), mode, handlersupport.Clock(h.Now))
	if err != nil {
		return nil, err
	}
	session.OperatorID = strings.TrimSpace(cmd.OperatorID)
	if err := h.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	out := dto.MapSession(session)
	return &out, nil
}

func (h *SessionHandlers) Get(ctx context.Context, q GetSessionQuery) (dto.Session, error) {
	session, err := h.load(ctx, q.SessionID, q.OperatorID)
	if err != nil {
		return dto.Session{}, err
	}
	return dto.MapSession(session), nil
}

// Toggle flips one day. Adding a day from the wrong side of the calendar is
// rejected; removing an already selected day is always allowed.
func (h *SessionHandlers) Toggle(ctx context.Context, cmd ToggleDateCommand) (*dto.Session, error) {
	session, err := h.load(ctx, cmd.SessionID, cmd.OperatorID)
	if err != nil {
		return nil, err
	}
	day, err := daterange.Parse(cmd.Date)
	if err != nil {
		return nil, err
	}
	if !session.Selection.Has(day) && !domainavailability.Selectable(session.Existing, day, session.Mode) {
		single := domainavailability.NewSelection(day)
		return nil, domainavailability.CheckSelection(session.Existing, single, session.Mode)
	}
	next, err := session.Toggle(day, handlersupport.Clock(h.Now))
	if err != nil {
		return nil, err
	}
	if err := h.Store.Save(ctx, next); err != nil {
		return nil, err
	}
	out := dto.MapSession(next)
	return &out, nil
}

func (h *SessionHandlers) SetMode(ctx context.Context, cmd SetModeCommand) (*dto.Session, error) {
	session, err := h.load(ctx, cmd.SessionID, cmd.OperatorID)
	if err != nil {
		return nil, err
	}
	mode, err := domainavailability.ParseMode(cmd.Mode)
	if err != nil {
		return nil, err
	}
	next, err := session.SetMode(mode, handlersupport.Clock(h.Now))
	if err != nil {
		return nil, err
	}
	if err := h.Store.Save(ctx, next); err != nil {
		return nil, err
	}
	out := dto.MapSession(next)
	return &out, nil
}

// Commit marks the session as committing for the duration of the
// persistence call so concurrent toggles are refused. A per-session lock keeps
// a second commit of the same session from touching the store. The outcome
// is saved once the unit of work settles: the completed session after a
// commit, the pre-commit session after a rollback or a failed commit.
func (h *SessionHandlers) Commit(ctx context.Context, cmd CommitSessionCommand) (*dto.CommitResult, error) {
	id := strings.TrimSpace(cmd.SessionID)
	release, err := h.Committer.acquire(ctx, "session:"+id)
	if err != nil {
		return nil, err
	}
	deferred := false
	defer func() {
		if !deferred {
			_ = release(context.WithoutCancel(ctx))
		}
	}()

	session, err := h.load(ctx, id, cmd.OperatorID)
	if err != nil {
		return nil, err
	}
	if session.Committing() {
		return nil, domainavailability.ErrCommitInFlight
	}
	now := handlersupport.Clock(h.Now)
	if !session.Selection.IsEmpty() {
		busy, _, err := session.Begin(now)
		if err != nil {
			return nil, err
		}
		if err := h.Store.Save(ctx, busy); err != nil {
			return nil, err
		}
	}

	result, next, commitErr := h.Committer.Commit(ctx, session)
	if commitErr != nil {
		if saveErr := h.Store.Save(context.WithoutCancel(ctx), next); saveErr != nil {
			return nil, errors.Join(commitErr, saveErr)
		}
		return nil, commitErr
	}

	deferred = true
	restored := session
	restored.UpdatedAt = now
	uow.OnFailure(ctx, func(ctx context.Context, err error) error {
		defer release(ctx)
		if saveErr := h.Store.Save(ctx, restored); saveErr != nil {
			return errors.Join(err, saveErr)
		}
		return nil
	})
	err = uow.AfterCommit(ctx, func(ctx context.Context) error {
		defer release(ctx)
		return h.Store.Save(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	out := dto.MapSession(next)
	result.Session = &out
	return &result, nil
}

func (h *SessionHandlers) load(ctx context.Context, id, operatorID string) (domainavailability.Session, error) {
	session, err := h.Store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return domainavailability.Session{}, err
	}
	if session.OperatorID != "" && session.OperatorID != strings.TrimSpace(operatorID) {
		return domainavailability.Session{}, domainvenues.ErrNotOwner
	}
	return session, nil
}
