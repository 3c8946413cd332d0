package messaging

import (
	"context"
	"errors"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
)

// Notifier delivers committed marketplace events to observers
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Notifier=MockNotifier,Publisher=MockPublisher
type Notifier interface {
	// Notify publishes events in order. Delivery is best effort.
	Notify(ctx context.Context, events ...domain.Event) error
}

// Publisher is a Notifier backed by an external broker connection
type Publisher interface {
	Notifier
	// Close closes the connection
	Close()
}

// Fanout forwards every event to each of its notifiers
type Fanout []Notifier

// NewFanout creates a fanout over the non-nil notifiers
func NewFanout(notifiers ...Notifier) Fanout {
	out := make(Fanout, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Notify calls every notifier even when one fails and joins the errors
func (f Fanout) Notify(ctx context.Context, events ...domain.Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
