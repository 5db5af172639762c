package middleware

import (
	"context"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/outbox"
)

// discarder is implemented by outboxes that buffer records outside the unit
// of work and must drop them when the command fails.
type discarder interface {
	Discard(ctx context.Context)
}

// OutboxFlush hands the records buffered by a command to the outbox once the
// handler succeeded. Records of a failed command are discarded so they never
// leave with the next one.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				if d, ok := box.(discarder); ok {
					d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
