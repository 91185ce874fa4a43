// Package filter implements FilterGateway's condition engine: it owns one
// filter instance per applied Scenario, subscribes to the signal topics its
// conditions reference, evaluates them as samples arrive, and dispatches
// TriggerAction to ActionController on a Waiting→Fired transition.
package filter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/signal"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
)

// State is a filter instance's position in the §4.2 state machine.
type State string

const (
	StateWaiting State = "Waiting"
	StateFired   State = "Fired"
	StatePaused  State = "Paused"
	StateRemoved State = "Removed"
)

// TriggerClient is the seam to ActionController.TriggerAction.
type TriggerClient interface {
	TriggerAction(ctx context.Context, scenarioName string) (status models.Status, desc string, err error)
}

// filterEntry is one scenario's live filter instance.
type filterEntry struct {
	scenario  string
	condition *models.Condition
	lifecycle models.Lifecycle
	program   *vm.Program // nil for an unconditional scenario
	state     State
}

// Engine owns every applied scenario's filter instance and the
// reference-counted topic subscriptions that back them.
type Engine struct {
	mu      sync.Mutex
	bus     contracts.SignalBus
	trigger TriggerClient
	topics  *topicTable
	filters map[string]*filterEntry

	backoffBase time.Duration
	backoffCap  time.Duration
	maxAttempts uint64
}

// NewEngine constructs an Engine driving samples from bus to trigger.
func NewEngine(bus contracts.SignalBus, trigger TriggerClient) *Engine {
	e := &Engine{
		bus:         bus,
		trigger:     trigger,
		filters:     map[string]*filterEntry{},
		backoffBase: 100 * time.Millisecond,
		backoffCap:  5 * time.Second,
		maxAttempts: 6,
	}
	e.topics = newTopicTable(bus, e.handleSample)
	return e
}

// Apply creates (or idempotently re-attaches) the filter for s.
// Re-applying an identical scenario is a no-op on the existing filter
// rather than a duplicate attach.
func (e *Engine) Apply(ctx context.Context, s *models.Scenario) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.filters[s.Name]; ok && existing.state != StateRemoved {
		return nil
	}

	f := &filterEntry{
		scenario:  s.Name,
		condition: s.Condition,
		lifecycle: s.EffectiveLifecycle(),
		state:     StateWaiting,
	}

	if s.Condition != nil {
		prog, err := compileProgram(s.Condition)
		if err != nil {
			return err
		}
		f.program = prog
		if err := e.topics.attach(ctx, s.Condition.Operand.Topic, f); err != nil {
			return err
		}
	}

	e.filters[s.Name] = f

	if s.Condition == nil {
		// Unconditional: fires immediately on apply.
		e.fire(ctx, f)
	}

	return nil
}

// Withdraw detaches scenarioName's filter and transitions it to Removed.
func (e *Engine) Withdraw(ctx context.Context, scenarioName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.filters[scenarioName]
	if !ok {
		return
	}
	if f.condition != nil {
		e.topics.detach(f.condition.Operand.Topic, scenarioName)
	}
	f.state = StateRemoved
	delete(e.filters, scenarioName)
}

// Pause moves scenarioName's filter to Paused; samples are still delivered
// to its topic subscription but ignored until Resume.
func (e *Engine) Pause(scenarioName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f, ok := e.filters[scenarioName]; ok && f.state != StateRemoved {
		f.state = StatePaused
	}
}

// Resume moves a Paused filter back to Waiting.
func (e *Engine) Resume(scenarioName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f, ok := e.filters[scenarioName]; ok && f.state == StatePaused {
		f.state = StateWaiting
	}
}

// State returns scenarioName's current filter state (for status queries
// and tests), and whether a filter exists at all.
func (e *Engine) State(scenarioName string) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.filters[scenarioName]
	if !ok {
		return "", false
	}
	return f.state, true
}

// TopicCount exposes the underlying subscription multiplexer's live topic
// count, used to assert refcounting in tests.
func (e *Engine) TopicCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.topics.count()
}

// handleSample runs on the per-topic goroutine started by topicTable.attach.
func (e *Engine) handleSample(topic string, sample contracts.Sample) {
	e.mu.Lock()
	candidates := e.topics.snapshot(topic)
	e.mu.Unlock()

	// Decode once per sample; every candidate filter on this topic reads
	// the same decoded value.
	var decoded map[string]interface{}
	for _, f := range candidates {
		if decoded == nil {
			adapter := signal.ForKind(f.condition.Operand.Kind)
			d, err := adapter.Decode(sample.Payload)
			if err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("signal decode failed")
				return
			}
			decoded = d
		}

		e.mu.Lock()
		if f.state != StateWaiting {
			e.mu.Unlock()
			continue
		}
		match, err := evaluate(f.program, f.condition, decoded)
		e.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("scenario", f.scenario).Msg("predicate evaluation failed")
			continue
		}
		if !match {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		e.mu.Lock()
		e.fire(ctx, f)
		e.mu.Unlock()
		cancel()
	}
}

// fire transitions f to Fired and dispatches TriggerAction with retry.
// Called with e.mu held; it releases and re-acquires the lock around
// the outbound RPC so a slow trigger doesn't stall sample delivery to
// other filters.
func (e *Engine) fire(ctx context.Context, f *filterEntry) {
	f.state = StateFired
	topic := ""
	if f.condition != nil {
		topic = f.condition.Operand.Topic
	}
	scenario := f.scenario
	lifecycle := f.lifecycle

	e.mu.Unlock()
	err := e.dispatchTrigger(ctx, scenario)
	e.mu.Lock()

	// f may have been withdrawn while the trigger was in flight.
	current, ok := e.filters[scenario]
	if !ok || current != f {
		return
	}

	if err != nil {
		log.Warn().Err(err).Str("scenario", scenario).Msg("trigger exhausted retries, returning to waiting")
		f.state = StateWaiting
		return
	}

	if lifecycle == models.LifecycleRecurring {
		f.state = StateWaiting
		return
	}

	// oneTime: terminal.
	f.state = StateRemoved
	delete(e.filters, scenario)
	if topic != "" {
		e.topics.detach(topic, scenario)
	}
}

// dispatchTrigger sends TriggerAction with exponential backoff (base
// 100ms, cap 5s, ±25% jitter), bounded to maxAttempts.
func (e *Engine) dispatchTrigger(ctx context.Context, scenario string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.backoffBase
	b.MaxInterval = e.backoffCap
	b.RandomizationFactor = 0.25
	retries := e.maxAttempts
	if retries > 0 {
		retries-- // the first call is not a retry
	}
	bounded := backoff.WithMaxRetries(b, retries)

	return backoff.Retry(func() error {
		_, _, err := e.trigger.TriggerAction(ctx, scenario)
		return err
	}, backoff.WithContext(bounded, ctx))
}

// ScenarioNames returns every scenario with a live (non-Removed) filter,
// sorted, for diagnostics and tests.
func (e *Engine) ScenarioNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.filters))
	for name := range e.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
