package signal_test

import (
	"context"
	"testing"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/signal"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

func TestMemoryBusPublishDelivers(t *testing.T) {
	bus := signal.NewMemoryBus()
	ctx := context.Background()

	samples, unsubscribe, err := bus.Subscribe(ctx, "vehicle/gear")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer unsubscribe()

	bus.Publish(contracts.Sample{Topic: "vehicle/gear", Payload: []byte(`{"gear":"P"}`)})

	select {
	case s := <-samples:
		if string(s.Payload) != `{"gear":"P"}` {
			t.Errorf("received payload = %s, want gear P", s.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published sample")
	}
}

func TestMemoryBusFanOutToMultipleSubscribers(t *testing.T) {
	bus := signal.NewMemoryBus()
	ctx := context.Background()

	s1, unsub1, _ := bus.Subscribe(ctx, "vehicle/speed")
	s2, unsub2, _ := bus.Subscribe(ctx, "vehicle/speed")
	defer unsub1()
	defer unsub2()

	bus.Publish(contracts.Sample{Topic: "vehicle/speed", Payload: []byte("60")})

	for _, ch := range []<-chan contracts.Sample{s1, s2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("a subscriber did not receive the fanned-out sample")
		}
	}
}

func TestMemoryBusTopicCountTracksSubscriptions(t *testing.T) {
	bus := signal.NewMemoryBus()
	ctx := context.Background()

	if got := bus.TopicCount(); got != 0 {
		t.Fatalf("TopicCount() = %d, want 0 before any subscribe", got)
	}

	_, unsub, _ := bus.Subscribe(ctx, "vehicle/gear")
	if got := bus.TopicCount(); got != 1 {
		t.Errorf("TopicCount() = %d, want 1 after subscribe", got)
	}

	unsub()
	if got := bus.TopicCount(); got != 0 {
		t.Errorf("TopicCount() = %d, want 0 after the only subscriber unsubscribes", got)
	}
}

func TestMemoryBusPublishWithNoSubscribersIsNoop(t *testing.T) {
	bus := signal.NewMemoryBus()
	bus.Publish(contracts.Sample{Topic: "vehicle/unused", Payload: []byte("x")})
	// No panic, no deadlock: success.
}

func TestMemoryBusDropsOnFullBuffer(t *testing.T) {
	bus := signal.NewMemoryBus()
	ctx := context.Background()

	samples, unsubscribe, _ := bus.Subscribe(ctx, "vehicle/flood")
	defer unsubscribe()

	// Publish far more than the channel's buffer without ever reading;
	// Publish must not block the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.Publish(contracts.Sample{Topic: "vehicle/flood", Payload: []byte("x")})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer instead of dropping")
	}
	<-samples
}
