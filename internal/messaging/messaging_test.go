package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-marketplace-ledger/internal/domain"
	"github.com/feral-file/ff-marketplace-ledger/internal/messaging"
	"github.com/feral-file/ff-marketplace-ledger/internal/mocks"
)

func testEvents() []domain.Event {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Event{
		domain.NewEvent(domain.EventArtworkListed, 1, now, map[string]string{"price": "100"}),
		domain.NewEvent(domain.EventArtworkSold, 1, now, map[string]string{"price": "100"}),
	}
}

func TestFanout_Notify(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockNotifier(ctrl)
	second := mocks.NewMockNotifier(ctrl)
	events := testEvents()

	// a failing notifier does not stop the others
	first.EXPECT().Notify(gomock.Any(), events[0], events[1]).Return(errors.New("broker down"))
	second.EXPECT().Notify(gomock.Any(), events[0], events[1]).Return(nil)

	fanout := messaging.NewFanout(first, nil, second)
	assert.Len(t, fanout, 2)

	err := fanout.Notify(context.Background(), events...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestFanout_WithPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broker := messaging.NewBroker(4)
	publisher := mocks.NewMockPublisher(ctrl)
	events := testEvents()

	publisher.EXPECT().Notify(gomock.Any(), events[0], events[1]).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	fanout := messaging.NewFanout(broker, publisher)
	require.NoError(t, fanout.Notify(context.Background(), events...))

	assert.Equal(t, events[0].ID, (<-ch).ID)
	assert.Equal(t, events[1].ID, (<-ch).ID)
}

func TestFanout_Empty(t *testing.T) {
	fanout := messaging.NewFanout()
	assert.NoError(t, fanout.Notify(context.Background(), testEvents()...))
}

func TestBroker_DeliversToSubscribers(t *testing.T) {
	broker := messaging.NewBroker(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := broker.Subscribe(ctx)
	b := broker.Subscribe(ctx)
	assert.Equal(t, 2, broker.Subscribers())

	events := testEvents()
	require.NoError(t, broker.Notify(ctx, events...))

	for _, ch := range []<-chan domain.Event{a, b} {
		for _, want := range events {
			select {
			case got := <-ch:
				assert.Equal(t, want.ID, got.ID)
				assert.Equal(t, want.Type, got.Type)
			case <-time.After(time.Second):
				t.Fatal("event not delivered")
			}
		}
	}
}

func TestBroker_SlowSubscriberDropsEvents(t *testing.T) {
	broker := messaging.NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)

	// the second event does not fit the buffer and must not block
	done := make(chan struct{})
	go func() {
		_ = broker.Notify(ctx, testEvents()...)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a full subscriber")
	}

	got := <-ch
	assert.Equal(t, domain.EventArtworkListed, got.Type)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.Type)
	default:
	}
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	broker := messaging.NewBroker(0)
	ctx, cancel := context.WithCancel(context.Background())

	ch := broker.Subscribe(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		return broker.Subscribers() == 0
	}, time.Second, 10*time.Millisecond)

	_, open := <-ch
	assert.False(t, open)

	// notifying after the subscriber left is a no-op
	assert.NoError(t, broker.Notify(context.Background(), testEvents()...))
}
