package venueapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	domainbooking "venuedash/internal/domain/booking"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", time.Second, nil)
}

func TestVenueRepositoryByIDSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		if r.URL.Path != "/venues/v-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id":"v-1","ownerId":"owner-1","name":"Loft","metadata":{"blockedDates":[{"startDate":"2024-03-01","endDate":"2024-03-03"}],"floor":2}}`)
	})
	repo := &VenueRepository{Client: client}

	venue, err := repo.ByID(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if venue.OwnerID != "owner-1" || venue.Name != "Loft" {
		t.Fatalf("unexpected venue %+v", venue)
	}
	blocked := venue.BlockedDates()
	if len(blocked) != 1 || blocked[0].EndDate != daterange.MustParse("2024-03-03") {
		t.Fatalf("blocked dates = %+v", blocked)
	}
	if venue.Metadata.Extra["floor"] != float64(2) {
		t.Fatalf("extra metadata lost: %+v", venue.Metadata.Extra)
	}
}

func TestVenueRepositoryByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	repo := &VenueRepository{Client: client}
	if _, err := repo.ByID(context.Background(), "missing"); !errors.Is(err, domainvenues.ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}
}

func TestVenueRepositoryUpdateMetadata(t *testing.T) {
	var got struct {
		Metadata map[string]json.RawMessage `json:"metadata"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	repo := &VenueRepository{Client: client}
	metadata := domainvenues.Metadata{Extra: map[string]any{"floor": 2}}.WithBlockedDates(domainavailability.BlockedRangeSet{
		{StartDate: daterange.MustParse("2024-03-05"), EndDate: daterange.MustParse("2024-03-05"), IsConfirmed: true},
	})

	if err := repo.UpdateMetadata(context.Background(), "v-1", metadata); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	if string(got.Metadata["blockedDates"]) != `[{"startDate":"2024-03-05","endDate":"2024-03-05","isConfirmed":true}]` {
		t.Fatalf("blockedDates = %s", got.Metadata["blockedDates"])
	}
	if string(got.Metadata["floor"]) != "2" {
		t.Fatalf("floor = %s", got.Metadata["floor"])
	}
}

func TestVenueRepositoryUpdateMetadataFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "api message", status: http.StatusBadRequest, body: `{"message":"metadata too large"}`, message: "metadata too large"},
		{name: "bare status", status: http.StatusInternalServerError, body: `oops`, message: "API Error: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			repo := &VenueRepository{Client: client}
			err := repo.UpdateMetadata(context.Background(), "v-1", domainvenues.Metadata{})
			if !errors.Is(err, domainvenues.ErrUpdateFailed) {
				t.Fatalf("expected ErrUpdateFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestBookingRepositoryListAndSave(t *testing.T) {
	var saved map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/bookings":
			if r.URL.Query().Get("venueId") != "v-1" {
				t.Errorf("venueId = %q", r.URL.Query().Get("venueId"))
			}
			_, _ = io.WriteString(w, `[{"id":"b-1","venueId":"v-1","startDate":"2024-03-10","endDate":"2024-03-12","numberOfGuests":40,"totalAmount":1250.5,"status":"pending"}]`)
		case r.Method == http.MethodPatch && r.URL.Path == "/bookings/b-1/status":
			_ = json.NewDecoder(r.Body).Decode(&saved)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	repo := &BookingRepository{Client: client}

	list, err := repo.ListByVenue(context.Background(), "v-1")
	if err != nil {
		t.Fatalf("ListByVenue: %v", err)
	}
	if len(list) != 1 || list[0].TotalAmount != "1250.5" || list[0].Guests != 40 {
		t.Fatalf("unexpected bookings %+v", list)
	}
	list[0].Status = domainbooking.StatusConfirmed
	if err := repo.Save(context.Background(), list[0]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved["status"] != "confirmed" {
		t.Fatalf("saved status = %v", saved)
	}
}

func TestFactoryRequiresClient(t *testing.T) {
	if _, err := (Factory{}).Begin(context.Background(), uow.TxOptions{ReadOnly: true}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
