package policies

import "context"

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification is the operator-facing outcome of an action.
type Notification struct {
	OperatorID string
	VenueID    string
	Level      NotificationLevel
	Message    string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error { return nil }
