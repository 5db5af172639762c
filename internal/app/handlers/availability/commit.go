package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"venuedash/internal/app/dto"
	handlersupport "venuedash/internal/app/handlers/support"
	"venuedash/internal/app/outbox"
	"venuedash/internal/app/policies"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	domainvenues "venuedash/internal/domain/venues"
)

const commitBlockedDatesKey = "availability.commit"

var (
	ErrVenueRequired = errors.New("availability: venue id is required")
	ErrDatesRequired = errors.New("availability: dates must be a list of YYYY-MM-DD values")
)

// CommitBlockedDatesCommand blocks or unblocks a set of days in one request.
type CommitBlockedDatesCommand struct {
	VenueID    string
	OperatorID string
	Mode       string
	Dates      []string
	RequestKey string
}

func (c CommitBlockedDatesCommand) Key() string { return commitBlockedDatesKey }

func (c CommitBlockedDatesCommand) Principal() string { return c.OperatorID }

func (c CommitBlockedDatesCommand) TargetVenue() domainvenues.VenueID {
	return domainvenues.VenueID(strings.TrimSpace(c.VenueID))
}

func (c CommitBlockedDatesCommand) IdempotencyKey() string { return strings.TrimSpace(c.RequestKey) }

func (c CommitBlockedDatesCommand) ResultPrototype() any { return &dto.CommitResult{} }

func (c CommitBlockedDatesCommand) Validate() error {
	if strings.TrimSpace(c.VenueID) == "" {
		return ErrVenueRequired
	}
	if _, err := domainavailability.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := domainavailability.ParseSelection(c.Dates); err != nil {
		return fmt.Errorf("%w: %w", ErrDatesRequired, err)
	}
	return nil
}

// Committer persists a session's selection against the venue repository of
// the current unit of work. The venue lock is held from the venue read until
// the persistence call returns. Success is only announced once the unit of
// work commits; a failed commit is reported as ErrPersistFailed.
type Committer struct {
	Locker   policies.Locker
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Notifier policies.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

func (c *Committer) Commit(ctx context.Context, session domainavailability.Session) (dto.CommitResult, domainavailability.Session, error) {
	result := dto.CommitResult{VenueID: session.VenueID, Mode: string(session.Mode)}
	if session.Selection.IsEmpty() {
		result.Noop = true
		result.BlockedDates = dto.MapBlockedRanges(session.Existing)
		return result, session, nil
	}
	unit, err := uow.MustFromContext(ctx)
	if err != nil {
		return result, session, err
	}

	release, err := c.acquire(ctx, "venue:"+session.VenueID)
	if err != nil {
		return result, session, err
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			c.logger().WarnContext(ctx, "venue lock release failed", "venue_id", session.VenueID, "error", relErr)
		}
	}()

	venue, err := unit.Venues().ByID(ctx, domainvenues.VenueID(session.VenueID))
	if err != nil {
		return result, session, err
	}
	current := venue.BlockedDates()
	if err := domainavailability.CheckSelection(current, session.Selection, session.Mode); err != nil {
		c.logger().WarnContext(ctx, "selection rejected", "venue_id", session.VenueID, "mode", session.Mode, "error", err)
		return result, session, err
	}
	session.Existing = current

	persister := domainavailability.PersisterFunc(func(ctx context.Context, _ string, ranges domainavailability.BlockedRangeSet) error {
		return unit.Venues().UpdateMetadata(ctx, venue.ID, venue.Metadata.WithBlockedDates(ranges))
	})
	res, err := session.Commit(ctx, persister, handlersupport.Clock(c.Now))
	if err != nil {
		c.failed(ctx, session, err)
		return result, res.Session, err
	}

	if err := outbox.RecordDomainEvents(ctx, c.Outbox, c.Encoder, res.Event); err != nil {
		return result, session, err
	}
	message := successMessage(session.Mode)
	ranges := len(res.Session.Existing)
	_ = uow.AfterCommit(ctx, func(ctx context.Context) error {
		c.notify(ctx, session, policies.LevelSuccess, message)
		c.logger().InfoContext(ctx, "blocked dates saved", "venue_id", session.VenueID, "mode", session.Mode, "ranges", ranges)
		return nil
	})
	uow.OnFailure(ctx, func(ctx context.Context, err error) error {
		if !errors.Is(err, domainavailability.ErrPersistFailed) {
			err = fmt.Errorf("%w: %w", domainavailability.ErrPersistFailed, err)
		}
		c.failed(ctx, session, err)
		return err
	})

	result.Message = message
	result.Days = session.Selection.Len()
	result.BlockedDates = dto.MapBlockedRanges(res.Session.Existing)
	return result, res.Session, nil
}

func (c *Committer) failed(ctx context.Context, session domainavailability.Session, err error) {
	c.logger().ErrorContext(ctx, "blocked dates not saved", "venue_id", session.VenueID, "mode", session.Mode, "days", session.Selection.Len(), "error", err)
	c.notify(ctx, session, policies.LevelError, err.Error())
}

// acquire takes the lock for key. A held lock is reported as
// ErrCommitInFlight.
func (c *Committer) acquire(ctx context.Context, key string) (policies.Release, error) {
	if c.Locker == nil {
		return func(context.Context) error { return nil }, nil
	}
	release, err := c.Locker.Acquire(ctx, key)
	if errors.Is(err, policies.ErrLocked) {
		return nil, domainavailability.ErrCommitInFlight
	}
	return release, err
}

func (c *Committer) notify(ctx context.Context, session domainavailability.Session, level policies.NotificationLevel, message string) {
	if c.Notifier == nil {
		return
	}
	err := c.Notifier.Notify(ctx, policies.Notification{
		OperatorID: session.OperatorID,
		VenueID:    session.VenueID,
		Level:      level,
		Message:    message,
	})
	if err != nil {
		c.logger().WarnContext(ctx, "notification failed", "venue_id", session.VenueID, "error", err)
	}
}

func (c *Committer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func successMessage(mode domainavailability.Mode) string {
	if mode == domainavailability.ModeUnblock {
		return "Dates unblocked successfully"
	}
	return "Dates blocked successfully"
}

type CommitBlockedDatesHandler struct {
	Committer *Committer
	Now       func() time.Time
}

func (h *CommitBlockedDatesHandler) Handle(ctx context.Context, cmd CommitBlockedDatesCommand) (*dto.CommitResult, error) {
	mode, err := domainavailability.ParseMode(cmd.Mode)
	if err != nil {
		return nil, err
	}
	selection, err := domainavailability.ParseSelection(cmd.Dates)
	if err != nil {
		return nil, err
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
	session.Selection = selection

	result, _, err := h.Committer.Commit(ctx, session)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
