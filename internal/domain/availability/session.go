package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"venuedash/internal/domain/shared/events"
)

var (
	ErrCommitInFlight = errors.New("availability: a commit is already in flight for this venue")
	ErrEmptySelection = errors.New("availability: nothing selected")
	ErrPersistFailed  = errors.New("availability: persisting blocked dates failed")
	ErrSessionExpired = errors.New("availability: session not found or expired")
)

type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateCommitting SessionState = "committing"
)

// Persister stores the full blocked range list of a venue, replacing the
// previous one.
type Persister interface {
	PersistBlockedDates(ctx context.Context, venueID string, ranges BlockedRangeSet) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, venueID string, ranges BlockedRangeSet) error

func (f PersisterFunc) PersistBlockedDates(ctx context.Context, venueID string, ranges BlockedRangeSet) error {
	return f(ctx, venueID, ranges)
}

// Session is one operator's selection state on one venue. Transitions return
// a new value and never modify the receiver.
type Session struct {
	ID         string          `json:"id"`
	VenueID    string          `json:"venue_id"`
	OperatorID string          `json:"operator_id,omitempty"`
	Existing   BlockedRangeSet `json:"existing"`
	Selection  SelectionSet    `json:"selection"`
	Mode       Mode            `json:"mode"`
	State      SessionState    `json:"state"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func NewSession(id, venueID string, existing BlockedRangeSet, mode Mode, now time.Time) (Session, error) {
	if !mode.Valid() {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return Session{
		ID:        id,
		VenueID:   venueID,
		Existing:  existing.Clone(),
		Selection: NewSelection(),
		Mode:      mode,
		State:     StateIdle,
		UpdatedAt: now.UTC(),
	}, nil
}

func (s Session) Committing() bool {
	return s.State == StateCommitting
}

// Toggle flips d in the selection.
func (s Session) Toggle(d civil.Date, now time.Time) (Session, error) {
	if s.Committing() {
		return s, ErrCommitInFlight
	}
	next := s
	next.Selection = s.Selection.Toggle(d)
	next.UpdatedAt = now.UTC()
	return next, nil
}

// SetMode switches between block and unblock. A real switch clears the
// selection since its days were picked for the other side of the calendar.
func (s Session) SetMode(mode Mode, now time.Time) (Session, error) {
	if s.Committing() {
		return s, ErrCommitInFlight
	}
	if !mode.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if mode == s.Mode {
		return s, nil
	}
	next := s
	next.Mode = mode
	next.Selection = NewSelection()
	next.UpdatedAt = now.UTC()
	return next, nil
}

// Begin enters the committing state and returns the candidate range list.
func (s Session) Begin(now time.Time) (Session, BlockedRangeSet, error) {
	if s.Committing() {
		return s, nil, ErrCommitInFlight
	}
	if s.Selection.IsEmpty() {
		return s, nil, ErrEmptySelection
	}
	candidate, err := Apply(s.Existing, s.Selection, s.Mode)
	if err != nil {
		return s, nil, err
	}
	next := s
	next.State = StateCommitting
	next.UpdatedAt = now.UTC()
	return next, candidate, nil
}

// Complete adopts candidate as the stored list and clears the selection.
func (s Session) Complete(candidate BlockedRangeSet, now time.Time) Session {
	next := s
	next.Existing = candidate.Clone()
	next.Selection = NewSelection()
	next.State = StateIdle
	next.UpdatedAt = now.UTC()
	return next
}

// Fail returns to idle keeping the list and selection from before Begin.
func (s Session) Fail(now time.Time) Session {
	next := s
	next.State = StateIdle
	next.UpdatedAt = now.UTC()
	return next
}

// CommitResult describes a finished commit. Event is nil for a no-op.
type CommitResult struct {
	Session Session
	Event   events.DomainEvent
	Noop    bool
}

// Commit applies the selection and hands the result to p. An empty selection
// is a no-op and p is not called. When p fails the returned session equals
// the receiver apart from UpdatedAt.
func (s Session) Commit(ctx context.Context, p Persister, now time.Time) (CommitResult, error) {
	if s.Selection.IsEmpty() && !s.Committing() {
		return CommitResult{Session: s, Noop: true}, nil
	}
	committing, candidate, err := s.Begin(now)
	if err != nil {
		return CommitResult{Session: s}, err
	}
	if err := p.PersistBlockedDates(ctx, s.VenueID, candidate); err != nil {
		return CommitResult{Session: committing.Fail(now)}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	var ev events.DomainEvent
	switch s.Mode {
	case ModeBlock:
		ev = datesBlockedEvent(s.VenueID, s.Existing, candidate, now)
	case ModeUnblock:
		ev = datesUnblockedEvent(s.VenueID, s.Existing, s.Selection, now)
	}
	return CommitResult{Session: committing.Complete(candidate, now), Event: ev}, nil
}
