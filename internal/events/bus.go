package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event describes something that happened to a bill session.
type Event struct {
	Topic      string
	SessionID  string
	BillID     string
	Detail     string
	Items      int
	OccurredAt time.Time
}

// Notifier reacts to emitted events (logging, metrics, etc.).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans emitted events out to the configured notifiers. Emission never
// affects the user action that triggered it; notifier failures are joined and
// returned for the caller to log.
type Bus struct {
	Notifiers []Notifier
}

// Emit stamps and dispatches the event to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, event Event) error {
	if b == nil {
		return nil
	}
	if strings.TrimSpace(event.Topic) == "" {
		return errors.New("events: topic is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return joined
}
