package filter

import (
	"context"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

// topicSub is one underlying SignalBus subscription shared by every filter
// whose condition reads the same topic, mirroring mcpgw.Gateway's
// per-kitchen channel fan-out (internal/mcpgw/gateway.go Subscribe) but
// reference-counted so the last detaching filter tears the subscription
// down.
type topicSub struct {
	cancel  func()
	members map[string]*filterEntry // keyed by scenario name
}

// topicTable owns the refcounted topic → subscription map and the
// goroutine reading each one. It is always accessed under Engine's mu.
type topicTable struct {
	bus   contracts.SignalBus
	subs  map[string]*topicSub
	onMsg func(topic string, sample contracts.Sample)
}

func newTopicTable(bus contracts.SignalBus, onMsg func(string, contracts.Sample)) *topicTable {
	return &topicTable{bus: bus, subs: map[string]*topicSub{}, onMsg: onMsg}
}

// attach joins f to topic's subscription, opening it on first attach.
func (t *topicTable) attach(ctx context.Context, topic string, f *filterEntry) error {
	sub, ok := t.subs[topic]
	if !ok {
		samples, unsubscribe, err := t.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		sub = &topicSub{cancel: unsubscribe, members: map[string]*filterEntry{}}
		t.subs[topic] = sub

		go func() {
			for sample := range samples {
				t.onMsg(topic, sample)
			}
		}()
	}
	sub.members[f.scenario] = f
	return nil
}

// detach removes f from topic's subscription, closing it once empty.
func (t *topicTable) detach(topic string, scenarioName string) {
	sub, ok := t.subs[topic]
	if !ok {
		return
	}
	delete(sub.members, scenarioName)
	if len(sub.members) == 0 {
		sub.cancel()
		delete(t.subs, topic)
	}
}

// snapshot returns the filters currently attached to topic, sorted by
// scenario name.
func (t *topicTable) snapshot(topic string) []*filterEntry {
	sub, ok := t.subs[topic]
	if !ok {
		return nil
	}
	out := make([]*filterEntry, 0, len(sub.members))
	for _, f := range sub.members {
		out = append(out, f)
	}
	sortFiltersByScenario(out)
	return out
}

func (t *topicTable) count() int {
	return len(t.subs)
}

func sortFiltersByScenario(fs []*filterEntry) {
	for i := 1; i < len(fs); i++ {
		for j := i; j > 0 && fs[j].scenario < fs[j-1].scenario; j-- {
			fs[j], fs[j-1] = fs[j-1], fs[j]
		}
	}
}
