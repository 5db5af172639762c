package uow

import (
	"context"
	"errors"
	"sync"
)

// ErrCommitFailed wraps the error of a unit of work that could not commit.
var ErrCommitFailed = errors.New("uow: commit failed")

// Hooks collects callbacks that run once the unit of work of a command has
// settled. The transaction middleware installs one set per unit.
type Hooks struct {
	mu        sync.Mutex
	committed []func(context.Context) error
	failed    []func(context.Context, error) error
}

type hooksKey struct{}

func ContextWithHooks(ctx context.Context) (context.Context, *Hooks) {
	h := &Hooks{}
	return context.WithValue(ctx, hooksKey{}, h), h
}

func hooksFromContext(ctx context.Context) (*Hooks, bool) {
	h, ok := ctx.Value(hooksKey{}).(*Hooks)
	return h, ok && h != nil
}

// AfterCommit runs fn once the unit of work in ctx has committed. Without
// hooks in ctx nothing is pending, so fn runs right away and its error is
// returned.
func AfterCommit(ctx context.Context, fn func(context.Context) error) error {
	h, ok := hooksFromContext(ctx)
	if !ok {
		return fn(ctx)
	}
	h.mu.Lock()
	h.committed = append(h.committed, fn)
	h.mu.Unlock()
	return nil
}

// OnFailure runs fn when the unit of work in ctx is rolled back or fails to
// commit. fn receives the error about to be returned and may replace it;
// returning nil keeps it. Without hooks in ctx fn is never called.
func OnFailure(ctx context.Context, fn func(context.Context, error) error) {
	h, ok := hooksFromContext(ctx)
	if !ok {
		return
	}
	h.mu.Lock()
	h.failed = append(h.failed, fn)
	h.mu.Unlock()
}

// Committed runs the after-commit callbacks in registration order and joins
// their errors.
func (h *Hooks) Committed(ctx context.Context) error {
	h.mu.Lock()
	fns := append([]func(context.Context) error(nil), h.committed...)
	h.mu.Unlock()
	var errs []error
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Failed runs the failure callbacks in registration order, threading err
// through them, and returns the final error.
func (h *Hooks) Failed(ctx context.Context, err error) error {
	h.mu.Lock()
	fns := append([]func(context.Context, error) error(nil), h.failed...)
	h.mu.Unlock()
	for _, fn := range fns {
		if next := fn(ctx, err); next != nil {
			err = next
		}
	}
	return err
}
