package messaging

import (
	"context"
	"sync"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

const defaultSubscriberBuffer = 64

// Broker fans events out to in-process subscribers such as SSE clients.
// Slow subscribers miss events instead of blocking the publisher.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan domain.Event
	next   int
	buffer int
}

// NewBroker creates a broker whose subscriber channels hold buffer events
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broker{
		subs:   make(map[int]chan domain.Event),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber. The channel is closed when ctx ends.
func (b *Broker) Subscribe(ctx context.Context) <-chan domain.Event {
	ch := make(chan domain.Event, b.buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Notify sends the events to every subscriber without blocking
func (b *Broker) Notify(_ context.Context, events ...domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		for _, e := range events {
			select {
			case ch <- e:
			default:
			}
		}
	}
	return nil
}

// Subscribers returns the number of active subscribers
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
