package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var count atomic.Int32
	d.Subscribe(EventTicketCreated, func(ctx context.Context, ev MutationEvent) {
		count.Add(1)
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, ev MutationEvent) {
		count.Add(1)
	})
	d.Subscribe(EventTicketDeleted, func(ctx context.Context, ev MutationEvent) {
		count.Add(100)
	})

	d.Publish(context.Background(), MutationEvent{Type: EventTicketCreated})
	d.Drain()

	assert.Equal(t, int32(2), count.Load())
}

func TestPublishSurvivesRequestCancellation(t *testing.T) {
	d := NewInMemoryDispatcher()

	delivered := make(chan struct{})
	d.Subscribe(EventTicketUpdated, func(ctx context.Context, ev MutationEvent) {
		assert.NoError(t, ctx.Err())
		close(delivered)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Publish(ctx, MutationEvent{Type: EventTicketUpdated})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
	d.Drain()
}

func TestPublishWithNoSubscribersIsNoOp(t *testing.T) {
	d := NewInMemoryDispatcher()
	d.Publish(context.Background(), MutationEvent{Type: EventUserDeleted})
	d.Drain()
}
