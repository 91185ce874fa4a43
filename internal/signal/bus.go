package signal

import (
	"context"
	"sync"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

// MemoryBus is an in-process contracts.SignalBus used by the all-in-one
// binary and by tests that need to publish samples without a real DDS
// deployment. It fans out each Publish call to every active subscriber
// on the topic, mirroring mcpgw.Gateway's per-kitchen channel fan-out
// (internal/mcpgw/gateway.go Subscribe/Unsubscribe).
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]chan contracts.Sample
}

// NewMemoryBus creates an empty in-process signal bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]chan contracts.Sample)}
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (<-chan contracts.Sample, func(), error) {
	ch := make(chan contracts.Sample, 32)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		chans := b.subs[topic]
		for i, c := range chans {
			if c == ch {
				b.subs[topic] = append(chans[:i], chans[i+1:]...)
				close(ch)
				break
			}
		}
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
	}

	return ch, unsubscribe, nil
}

// Publish delivers sample to every current subscriber of its topic.
// Non-blocking: a subscriber with a full buffer drops the sample rather
// than stalling the publisher, since in-flight signal values have no
// persistence guarantee.
func (b *MemoryBus) Publish(sample contracts.Sample) {
	b.mu.Lock()
	chans := append([]chan contracts.Sample(nil), b.subs[sample.Topic]...)
	b.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- sample:
		default:
		}
	}
}

// TopicCount returns the number of distinct topics with at least one
// active subscriber.
func (b *MemoryBus) TopicCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
