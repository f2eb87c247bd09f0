// Package broadcast propagates change notifications between processes
// sharing the same persisted store. Receivers treat a notification as a
// cache-invalidation signal only: they re-read the full persisted state
// rather than merging payloads. When no broadcast medium is available the
// system keeps working within a single process; cross-process sync
// degrades to a no-op, never to a failure.
package broadcast

import (
	"context"

	"github.com/wnt/pollhub/internal/models"
)

// Channel is the broadcast topic shared by all processes of one store.
const Channel = "polls"

// Broadcaster publishes change notifications and hands out subscriptions.
// Subscribe's channel is closed when ctx is cancelled.
type Broadcaster interface {
	Publish(ctx context.Context, change models.Change) error
	Subscribe(ctx context.Context) (<-chan models.Change, error)
}

// Noop discards every publish and delivers nothing. It is the degraded
// mode for environments without a broadcast medium.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, models.Change) error { return nil }

// Subscribe returns a channel that never delivers and closes with ctx.
func (Noop) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	ch := make(chan models.Change)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
