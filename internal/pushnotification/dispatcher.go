package pushnotification

import (
	"context"
	"log/slog"

	"github.com/tugaskita/tugasboard/internal/eventbus"
)

// Notifier is anything that can deliver a payload; Sender in production.
type Notifier interface {
	SendToAll(ctx context.Context, payload *NotificationPayload) int
}

type Dispatcher struct {
	eventBus *eventbus.Bus
	notifier Notifier
}

func NewDispatcher(eventBus *eventbus.Bus, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		notifier: notifier,
	}
}

// Start forwards store events as notifications until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.InfoContext(ctx, "push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, ok := FromEvent(event)
			if !ok {
				continue
			}
			d.notifier.SendToAll(ctx, payload)
		}
	}
}
