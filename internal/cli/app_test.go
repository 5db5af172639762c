package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/dto"
	availabilityapp "venuedash/internal/app/handlers/availability"
	"venuedash/internal/app/policies"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	domainbooking "venuedash/internal/domain/booking"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
	"venuedash/internal/infra/config"
	ginserver "venuedash/internal/infra/http/gin"
	"venuedash/internal/infra/obs"
	"venuedash/internal/infra/storage/memory"
)

type testEnv struct {
	app      application
	router   *gin.Engine
	venues   *memory.VenueRepository
	outbox   *memory.Outbox
	notifier *recordingNotifier
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []policies.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg policies.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) levels() []policies.NotificationLevel {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]policies.NotificationLevel, 0, len(n.sent))
	for _, msg := range n.sent {
		out = append(out, msg.Level)
	}
	return out
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith builds the memory application. wrap, when set, decorates
// the unit of work factory used by the command pipeline.
func newTestEnvWith(t *testing.T, wrap func(uow.UoWFactory) uow.UoWFactory) testEnv {
	t.Helper()
	ctx := context.Background()
	venues := memory.NewVenueRepository()
	bookings := memory.NewBookingRepository()
	err := venues.Save(ctx, &domainvenues.Venue{
		ID:      "v-1",
		OwnerID: "owner-1",
		Name:    "Riverside Loft",
		Metadata: domainvenues.Metadata{
			BlockedDates: domainavailability.BlockedRangeSet{
				{StartDate: daterange.MustParse("2024-03-10"), EndDate: daterange.MustParse("2024-03-12"), IsConfirmed: true},
			},
			Extra: map[string]any{"floor": float64(2)},
		},
	})
	if err != nil {
		t.Fatalf("seed venue: %v", err)
	}
	err = bookings.Save(ctx, &domainbooking.Booking{
		ID:        "b-1",
		VenueID:   "v-1",
		UserID:    "guest-1",
		StartDate: daterange.MustParse("2024-03-20"),
		EndDate:   daterange.MustParse("2024-03-21"),
		Guests:    30,
		Status:    domainbooking.StatusPending,
		CreatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	var factory uow.UoWFactory = memory.Factory{VenuesRepo: venues, BookingsRepo: bookings}
	if wrap != nil {
		factory = wrap(factory)
	}
	box := memory.NewOutbox()
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := buildApplication(deps{
		UoWFactory:  factory,
		Outbox:      box,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Locker:      memory.NewLocker(),
		Sessions:    memory.NewSessionStore(time.Hour),
		Notifier:    notifier,
		Logger:      logger,
	})
	router := ginserver.NewRouter(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{}, app.handlers)
	return testEnv{app: app, router: router, venues: venues, outbox: box, notifier: notifier}
}

func (e testEnv) do(t *testing.T, method, path, operator string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if operator != "" {
		req.Header.Set(obs.HeaderOperatorID, operator)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestSessionRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability/sessions", "owner-1", map[string]string{"mode": "block"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: %d %s", rec.Code, rec.Body.String())
	}
	session := decode[dto.Session](t, rec)

	for _, day := range []string{"2024-03-13", "2024-03-14", "2024-03-16"} {
		rec = env.do(t, http.MethodPost, "/api/v1/availability/sessions/"+session.ID+"/toggle", "owner-1", map[string]string{"date": day})
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %s: %d %s", day, rec.Code, rec.Body.String())
		}
	}

	rec = env.do(t, http.MethodPost, "/api/v1/availability/sessions/"+session.ID+"/commit", "owner-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: %d %s", rec.Code, rec.Body.String())
	}
	result := decode[dto.CommitResult](t, rec)
	if result.Noop || result.Days != 3 || result.Message != "Dates blocked successfully" {
		t.Fatalf("unexpected commit result %+v", result)
	}
	want := []dto.BlockedRange{
		{StartDate: "2024-03-10", EndDate: "2024-03-12", IsConfirmed: true},
		{StartDate: "2024-03-13", EndDate: "2024-03-14", IsConfirmed: true},
		{StartDate: "2024-03-16", EndDate: "2024-03-16", IsConfirmed: true},
	}
	if len(result.BlockedDates) != len(want) {
		t.Fatalf("blocked dates = %+v", result.BlockedDates)
	}
	for i := range want {
		if result.BlockedDates[i] != want[i] {
			t.Fatalf("range %d = %+v, want %+v", i, result.BlockedDates[i], want[i])
		}
	}
	if result.Session == nil || len(result.Session.Selection) != 0 {
		t.Fatalf("session selection not cleared: %+v", result.Session)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/venues/v-1/calendar?from=2024-03-12&to=2024-03-17", "owner-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar: %d %s", rec.Code, rec.Body.String())
	}
	calendar := decode[dto.Calendar](t, rec)
	blocked := map[string]bool{}
	for _, d := range calendar.Days {
		blocked[d.Date] = d.Blocked
	}
	for day, want := range map[string]bool{
		"2024-03-12": true, "2024-03-13": true, "2024-03-14": true,
		"2024-03-15": false, "2024-03-16": true, "2024-03-17": false,
	} {
		if blocked[day] != want {
			t.Errorf("day %s blocked = %v, want %v", day, blocked[day], want)
		}
	}

	venue, err := env.venues.ByID(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("reload venue: %v", err)
	}
	if venue.Metadata.Extra["floor"] != float64(2) {
		t.Fatalf("other metadata keys lost: %+v", venue.Metadata.Extra)
	}
	if got := len(env.outbox.Flushed()); got != 1 {
		t.Fatalf("expected one event, got %d", got)
	}
}

func TestUnblockSplitsRange(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability", "owner-1", map[string]any{
		"mode":  "unblock",
		"dates": []string{"2024-03-11"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: %d %s", rec.Code, rec.Body.String())
	}
	result := decode[dto.CommitResult](t, rec)
	want := []dto.BlockedRange{
		{StartDate: "2024-03-10", EndDate: "2024-03-10", IsConfirmed: true},
		{StartDate: "2024-03-12", EndDate: "2024-03-12", IsConfirmed: true},
	}
	if len(result.BlockedDates) != 2 || result.BlockedDates[0] != want[0] || result.BlockedDates[1] != want[1] {
		t.Fatalf("blocked dates = %+v", result.BlockedDates)
	}
	if result.Message != "Dates unblocked successfully" {
		t.Fatalf("message = %q", result.Message)
	}
}

func TestCommitErrors(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		body     map[string]any
		status   int
	}{
		{name: "missing operator", operator: "", body: map[string]any{"mode": "block", "dates": []string{"2024-03-20"}}, status: http.StatusUnauthorized},
		{name: "foreign venue", operator: "owner-2", body: map[string]any{"mode": "block", "dates": []string{"2024-03-20"}}, status: http.StatusForbidden},
		{name: "unknown mode", operator: "owner-1", body: map[string]any{"mode": "erase", "dates": []string{"2024-03-20"}}, status: http.StatusBadRequest},
		{name: "invalid date", operator: "owner-1", body: map[string]any{"mode": "block", "dates": []string{"2024-02-30"}}, status: http.StatusBadRequest},
		{name: "blocking a blocked day", operator: "owner-1", body: map[string]any{"mode": "block", "dates": []string{"2024-03-11"}}, status: http.StatusConflict},
		{name: "unblocking a free day", operator: "owner-1", body: map[string]any{"mode": "unblock", "dates": []string{"2024-03-20"}}, status: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability", tt.operator, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestEmptyCommitIsNoop(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability", "owner-1", map[string]any{"mode": "block", "dates": []string{}})
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: %d %s", rec.Code, rec.Body.String())
	}
	result := decode[dto.CommitResult](t, rec)
	if !result.Noop || len(result.BlockedDates) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := len(env.outbox.Flushed()); got != 0 {
		t.Fatalf("noop recorded %d events", got)
	}
}

func TestCommitIdempotencyKeyReplays(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"mode": "block", "dates": []string{"2024-03-20"}}
	first := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability", "owner-1", body, "Idempotency-Key", "req-1")
	if first.Code != http.StatusOK {
		t.Fatalf("first: %d %s", first.Code, first.Body.String())
	}
	second := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability", "owner-1", body, "Idempotency-Key", "req-1")
	if second.Code != http.StatusOK {
		t.Fatalf("replay: %d %s", second.Code, second.Body.String())
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	if got := len(env.outbox.Flushed()); got != 1 {
		t.Fatalf("expected one event, got %d", got)
	}
}

func TestSessionToggleRejectsWrongSide(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/venues/v-1/availability/sessions", "owner-1", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: %d %s", rec.Code, rec.Body.String())
	}
	session := decode[dto.Session](t, rec)

	rec = env.do(t, http.MethodPost, "/api/v1/availability/sessions/"+session.ID+"/toggle", "owner-1", map[string]string{"date": "2024-03-11"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("toggle blocked day in block mode: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, "/api/v1/availability/sessions/"+session.ID+"/mode", "owner-1", map[string]string{"mode": "unblock"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set mode: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/v1/availability/sessions/"+session.ID+"/toggle", "owner-1", map[string]string{"date": "2024-03-11"})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle blocked day in unblock mode: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/availability/sessions/"+session.ID, "owner-2", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign operator read session: %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/availability/sessions/unknown", "owner-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: %d", rec.Code)
	}
}

func TestVenueAndBookingEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/venues", "owner-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list venues: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[dto.VenueCollection](t, rec); len(got.Items) != 1 {
		t.Fatalf("venues = %+v", got)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/venues/missing", "owner-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing venue: %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/venues/v-1/bookings?status=pending", "owner-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list bookings: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[dto.BookingCollection](t, rec); len(got.Items) != 1 {
		t.Fatalf("bookings = %+v", got)
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/b-1/status", "owner-1", map[string]string{"status": "confirmed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm booking: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/b-1/status", "owner-1", map[string]string{"status": "pending"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("invalid transition: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/b-1/status", "owner-2", map[string]string{"status": "cancelled"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign operator: %d", rec.Code)
	}
}

func TestBlockBookingDatesCommand(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cmd := availabilityapp.BlockBookingDatesCommand{BookingID: "b-1"}

	pending, err := commands.Dispatch[availabilityapp.BlockBookingDatesCommand, *dto.CommitResult](ctx, env.app.commands, cmd)
	if err != nil {
		t.Fatalf("pending booking: %v", err)
	}
	if !pending.Noop {
		t.Fatalf("pending booking must not block dates: %+v", pending)
	}

	rec := env.do(t, http.MethodPatch, "/api/v1/bookings/b-1/status", "owner-1", map[string]string{"status": "confirmed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d %s", rec.Code, rec.Body.String())
	}
	result, err := commands.Dispatch[availabilityapp.BlockBookingDatesCommand, *dto.CommitResult](ctx, env.app.commands, cmd)
	if err != nil {
		t.Fatalf("confirmed booking: %v", err)
	}
	if result.Noop || result.Days != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/venues/v-1/calendar?from=2024-03-20&to=2024-03-21", "owner-1", nil)
	calendar := decode[dto.Calendar](t, rec)
	for _, d := range calendar.Days {
		if !d.Blocked || !d.Confirmed {
			t.Fatalf("booking day not blocked: %+v", d)
		}
	}
}
