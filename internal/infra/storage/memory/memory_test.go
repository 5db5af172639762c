package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"venuedash/internal/app/middleware"
	appoutbox "venuedash/internal/app/outbox"
	"venuedash/internal/app/policies"
	"venuedash/internal/app/uow"
	"venuedash/internal/domain/availability"
	domainvenues "venuedash/internal/domain/venues"
)

func TestLockerExclusive(t *testing.T) {
	l := NewLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "venue:v-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, "venue:v-1"); !errors.Is(err, policies.ErrLocked) {
		t.Fatalf("second acquire = %v, want ErrLocked", err)
	}
	if _, err := l.Acquire(ctx, "venue:v-2"); err != nil {
		t.Fatalf("other key: %v", err)
	}

	_ = release(ctx)
	again, err := l.Acquire(ctx, "venue:v-1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	// A stale release must not free the new holder.
	_ = release(ctx)
	if _, err := l.Acquire(ctx, "venue:v-1"); !errors.Is(err, policies.ErrLocked) {
		t.Fatalf("stale release freed the lock: %v", err)
	}
	_ = again(ctx)
}

func TestSessionStoreExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	session, err := availability.NewSession("s-1", "v-1", nil, availability.ModeBlock, now)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Get(ctx, "s-1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s-1"); !errors.Is(err, availability.ErrSessionExpired) {
		t.Fatalf("expired get = %v", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, availability.ErrSessionExpired) {
		t.Fatalf("missing get = %v", err)
	}
}

func TestIdempotencyStoreTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{}`), OccurredAt: now})
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Fatal("record not found")
	}
	now = now.Add(2 * time.Hour)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("expired record returned")
	}
}

func TestIdempotencyStoreWaitsForCommit(t *testing.T) {
	store := NewIdempotencyStore(time.Hour)
	rec := middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{}`), OccurredAt: time.Now()}

	ctx, hooks := uow.ContextWithHooks(context.Background())
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("record visible before commit")
	}
	if err := hooks.Committed(ctx); err != nil {
		t.Fatalf("committed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Fatal("record missing after commit")
	}

	ctx, hooks = uow.ContextWithHooks(context.Background())
	rec.Key = "rolled-back"
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = hooks.Failed(ctx, errors.New("write conflict"))
	if _, found, _ := store.Get(ctx, "rolled-back"); found {
		t.Fatal("rolled back command would be replayed")
	}
}

func TestOutboxFlushWaitsForCommit(t *testing.T) {
	box := NewOutbox()
	record := appoutbox.EventRecord{ID: "e-1", Name: "DatesBlocked"}

	ctx, hooks := uow.ContextWithHooks(context.Background())
	_ = box.Add(ctx, record)
	if err := box.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := len(box.Flushed()); got != 0 {
		t.Fatalf("flushed before commit: %d", got)
	}
	_ = hooks.Failed(ctx, errors.New("write conflict"))
	if got := len(box.Flushed()); got != 0 {
		t.Fatalf("rolled back records flushed: %d", got)
	}

	ctx, hooks = uow.ContextWithHooks(context.Background())
	_ = box.Add(ctx, record)
	_ = box.Flush(ctx)
	if err := hooks.Committed(ctx); err != nil {
		t.Fatalf("committed: %v", err)
	}
	if got := len(box.Flushed()); got != 1 {
		t.Fatalf("expected one committed record, got %d", got)
	}
}

func TestSeedFixturesFile(t *testing.T) {
	fx, err := LoadFixturesFile("../../../../data/venues.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	venues := NewVenueRepository()
	bookings := NewBookingRepository()
	ctx := context.Background()
	if err := fx.Seed(ctx, venues, bookings); err != nil {
		t.Fatalf("seed: %v", err)
	}

	owned, err := venues.ListByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("owner-1 venues = %d, want 2", len(owned))
	}
	loft, err := venues.ByID(ctx, "venue-1")
	if err != nil {
		t.Fatalf("venue-1: %v", err)
	}
	if !loft.BlockedDates().IsBlocked(civil.Date{Year: 2026, Month: time.November, Day: 4}) {
		t.Fatal("fixture blocked range not loaded")
	}
	if _, ok := loft.Metadata.Extra["amenities"]; !ok {
		t.Fatal("extra metadata dropped")
	}
	list, err := bookings.ListByVenue(ctx, "venue-1")
	if err != nil {
		t.Fatalf("bookings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("venue-1 bookings = %d, want 2", len(list))
	}
}

func TestSeedRejectsOverlappingRanges(t *testing.T) {
	day := func(d int) civil.Date { return civil.Date{Year: 2024, Month: time.May, Day: d} }
	fx := Fixtures{Venues: []VenueFixture{{
		ID:   "v-1",
		Name: "Hall",
		Metadata: domainvenues.Metadata{BlockedDates: availability.BlockedRangeSet{
			{StartDate: day(1), EndDate: day(5), IsConfirmed: true},
			{StartDate: day(4), EndDate: day(6), IsConfirmed: true},
		}},
	}}}
	if err := fx.Seed(context.Background(), NewVenueRepository(), NewBookingRepository()); err == nil {
		t.Fatal("overlapping ranges accepted")
	}
}

func TestVenueRepositoryCopies(t *testing.T) {
	repo := NewVenueRepository()
	ctx := context.Background()
	_ = repo.Save(ctx, &domainvenues.Venue{ID: "v-1", Name: "Hall"})

	v, _ := repo.ByID(ctx, "v-1")
	v.Name = "changed"
	again, _ := repo.ByID(ctx, "v-1")
	if again.Name != "Hall" {
		t.Fatal("repository returned a shared pointer")
	}
	if err := repo.UpdateMetadata(ctx, "missing", domainvenues.Metadata{}); !errors.Is(err, domainvenues.ErrVenueNotFound) {
		t.Fatalf("update missing = %v", err)
	}
}
