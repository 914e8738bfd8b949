// Package notify forwards hub events to out-of-band channels such as
// connected MCP clients.
package notify

import (
	"context"
	"log/slog"

	"github.com/btouchard/beacon/internal/hub"
)

// Notifier receives hub events.
type Notifier interface {
	Notify(event hub.Event)
}

// Forward passes every event from events to each notifier, in order, until
// the channel closes or ctx is cancelled.
func Forward(ctx context.Context, events <-chan hub.Event, notifiers ...Notifier) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				slog.Debug("notify: event stream closed")
				return
			}
			for _, n := range notifiers {
				n.Notify(ev)
			}
		case <-ctx.Done():
			return
		}
	}
}
