package memory

import (
	"context"
	"sync"

	appoutbox "venuedash/internal/app/outbox"
	"venuedash/internal/app/uow"
)

// maxFlushed bounds the records kept for inspection.
const maxFlushed = 1024

// Outbox buffers records until Flush and keeps the latest committed ones for
// inspection. Nothing is relayed.
type Outbox struct {
	mu      sync.Mutex
	pending []appoutbox.EventRecord
	flushed []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

// Flush takes the pending records and publishes them once the unit of work
// in ctx commits. They are dropped if it does not.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	return uow.AfterCommit(ctx, func(context.Context) error {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.flushed = append(o.flushed, batch...)
		if n := len(o.flushed); n > maxFlushed {
			o.flushed = append([]appoutbox.EventRecord(nil), o.flushed[n-maxFlushed:]...)
		}
		return nil
	})
}

// Discard drops the pending records of a failed command.
func (o *Outbox) Discard(context.Context) {
	o.mu.Lock()
	o.pending = nil
	o.mu.Unlock()
}

// Flushed returns a copy of every flushed record in order.
func (o *Outbox) Flushed() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.flushed))
	copy(out, o.flushed)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
