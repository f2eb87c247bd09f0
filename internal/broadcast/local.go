package broadcast

import (
	"context"
	"sync"

	"github.com/wnt/pollhub/internal/models"
)

// subscriberBuffer bounds how many undelivered changes a slow subscriber
// may accumulate before further notifications are dropped. Dropping is
// safe: receivers re-read the whole state on any notification, so one
// delivered change supersedes all the dropped ones.
const subscriberBuffer = 16

// Local fans changes out to subscribers within the same process. It backs
// single-process deployments and tests.
type Local struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan models.Change
}

// NewLocal returns an empty in-process broadcaster.
func NewLocal() *Local {
	return &Local{subscribers: make(map[int]chan models.Change)}
}

// Publish delivers the change to every current subscriber without
// blocking; subscribers that have fallen behind miss it.
func (l *Local) Publish(_ context.Context, change models.Change) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, ch := range l.subscribers {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber. The returned channel closes when
// ctx is cancelled.
func (l *Local) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	ch := make(chan models.Change, subscriberBuffer)

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subscribers[id] = ch
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}
