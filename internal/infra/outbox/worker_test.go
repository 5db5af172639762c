package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	queue  []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (s *fakeStore) Claim(context.Context, string) (*EventDocument, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	doc := s.queue[0]
	s.queue = s.queue[1:]
	return doc, nil
}

func (s *fakeStore) MarkSent(_ context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if s.failed == nil {
		s.failed = map[string]time.Time{}
	}
	s.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	msgs    []published
	failFor string
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if key == p.failFor {
		return errors.New("broker unavailable")
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestWorkerDrainPublishesCloudEvents(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{
		{ID: "e1", Name: "availability.dates_blocked", Aggregate: "venue-1", Payload: []byte(`{"venue_id":"venue-1","days":3}`)},
		{ID: "e2", Name: "booking.status_changed", Aggregate: "booking-1", Payload: []byte(`{"to":"confirmed"}`)},
	}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "dev.", ID: "w1"}

	n, err := w.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Drain() = %d, want 2", n)
	}
	if got := producer.msgs[0].topic; got != "dev.availability.events.v1" {
		t.Errorf("topic = %q, want dev.availability.events.v1", got)
	}
	if got := producer.msgs[1].topic; got != "dev.booking.events.v1" {
		t.Errorf("topic = %q, want dev.booking.events.v1", got)
	}
	var evt map[string]any
	if err := json.Unmarshal(producer.msgs[0].payload, &evt); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if evt["type"] != "availability.dates_blocked.v1" || evt["id"] != "e1" || evt["subject"] != "venue-1" {
		t.Errorf("unexpected envelope %v", evt)
	}
	if producer.msgs[0].headers["content-type"] != "application/cloudevents+json" {
		t.Errorf("content-type header = %q", producer.msgs[0].headers["content-type"])
	}
	if len(store.sent) != 2 {
		t.Errorf("sent = %v, want both records", store.sent)
	}
}

func TestWorkerMarksFailedAndContinues(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{queue: []*EventDocument{
		{ID: "e1", Name: "availability.dates_unblocked", Aggregate: "venue-bad", Payload: []byte(`{}`), Attempts: 1},
		{ID: "e2", Name: "availability.dates_blocked", Aggregate: "venue-ok", Payload: []byte(`{}`)},
	}}
	w := &Worker{
		Store:    store,
		Producer: &fakeProducer{failFor: "venue-bad"},
		Backoff:  []time.Duration{time.Second, 30 * time.Second},
		Now:      func() time.Time { return now },
	}

	if _, err := w.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	next, ok := store.failed["e1"]
	if !ok {
		t.Fatal("e1 not marked failed")
	}
	if want := now.Add(30 * time.Second); !next.Equal(want) {
		t.Errorf("next attempt = %v, want %v", next, want)
	}
	if len(store.sent) != 1 || store.sent[0] != "e2" {
		t.Errorf("sent = %v, want [e2]", store.sent)
	}
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	w := &Worker{}
	if err := w.Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Errorf("Run() error = %v, want ErrWorkerNotConfigured", err)
	}
}
