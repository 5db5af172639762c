package ginserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"venuedash/internal/app/middleware"
	"venuedash/internal/app/queries"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	domainbooking "venuedash/internal/domain/booking"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
	"venuedash/internal/infra/config"
	"venuedash/internal/infra/obs"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{middleware.ErrOperatorRequired, http.StatusUnauthorized},
		{domainvenues.ErrNotOwner, http.StatusForbidden},
		{domainvenues.ErrVenueNotFound, http.StatusNotFound},
		{domainavailability.ErrSessionExpired, http.StatusNotFound},
		{domainavailability.ErrCommitInFlight, http.StatusConflict},
		{fmt.Errorf("%w: 2024-03-01 (block)", domainavailability.ErrSelectionConflict), http.StatusConflict},
		{domainbooking.ErrInvalidState, http.StatusConflict},
		{fmt.Errorf("%w: %w", domainavailability.ErrPersistFailed, errors.New("timeout")), http.StatusBadGateway},
		{domainvenues.UpdateResult{Error: "quota"}.Err(), http.StatusBadGateway},
		{fmt.Errorf("%w: %w", uow.ErrCommitFailed, errors.New("write conflict")), http.StatusBadGateway},
		{fmt.Errorf("%w: %w", middleware.ErrValidation, daterange.ErrInvalidDate), http.StatusBadRequest},
		{domainavailability.ErrUnknownMode, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

type stubQueries struct {
	result any
	err    error
}

func (s stubQueries) Ask(context.Context, queries.Query) (any, error) {
	return s.result, s.err
}

func TestRouterRequiresOperator(t *testing.T) {
	router := NewRouter(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Venue: VenueHandler{Queries: stubQueries{err: domainvenues.ErrVenueNotFound}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/venues/v-1", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without operator = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/venues/v-1", nil)
	req.Header.Set(obs.HeaderOperatorID, "owner-1")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for missing venue = %d", rec.Code)
	}
	if rec.Header().Get(obs.HeaderRequestID) == "" {
		t.Fatal("request id header missing")
	}
}

func TestHealthRoutes(t *testing.T) {
	health := obs.HealthHandlers{Checks: map[string]obs.Check{
		"mongo": func(context.Context) error { return errors.New("down") },
	}}
	router := NewRouter(config.Config{Env: "test"}, obs.Middleware{}, health, Handlers{})

	for path, want := range map[string]int{"/livez": http.StatusOK, "/readyz": http.StatusServiceUnavailable} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s = %d, want %d", path, rec.Code, want)
		}
	}
}
