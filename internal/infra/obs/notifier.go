package obs

import (
	"context"
	"log/slog"

	"venuedash/internal/app/policies"
)

// LogNotifier delivers operator notifications to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, msg policies.Notification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if msg.Level == policies.LevelError {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "notification",
		"operator_id", msg.OperatorID,
		"venue_id", msg.VenueID,
		"level", msg.Level,
		"message", msg.Message,
		"request_id", RequestIDFromContext(ctx),
	)
	return nil
}

var _ policies.Notifier = LogNotifier{}
