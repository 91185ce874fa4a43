// Package state implements StateManager: it owns the WorkloadInstance
// table and runs the single reconciliation loop that drives `current`
// toward `desired` by calling ActionController.Reconcile,
// using the same ticker-loop shape as the rest of the control plane's
// background workers (Start/runCycle).
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/rs/zerolog/log"
)

const statePrefix = "state/"

// ReconcileClient is the seam to ActionController.Reconcile.
type ReconcileClient interface {
	Reconcile(ctx context.Context, id models.InstanceID, current, desired models.Status, restartToken string) (models.Status, string, error)
}

// Manager owns every WorkloadInstance and the background loop that
// reconciles them.
type Manager struct {
	kv         contracts.KVStore
	reconciler ReconcileClient

	interval       time.Duration
	unhealthyAfter time.Duration

	mu        sync.Mutex
	instances map[string]*models.WorkloadInstance
	lastSeen  map[string]time.Time
	inFlight  map[string]bool

	wake chan struct{}
}

// NewManager constructs a Manager. interval is T_reconcile (default 2s),
// unhealthyAfter is T_unhealthy (default 30s).
func NewManager(kv contracts.KVStore, reconciler ReconcileClient, interval, unhealthyAfter time.Duration) *Manager {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if unhealthyAfter <= 0 {
		unhealthyAfter = 30 * time.Second
	}
	return &Manager{
		kv:             kv,
		reconciler:     reconciler,
		interval:       interval,
		unhealthyAfter: unhealthyAfter,
		instances:      map[string]*models.WorkloadInstance{},
		lastSeen:       map[string]time.Time{},
		inFlight:       map[string]bool{},
		wake:           make(chan struct{}, 1),
	}
}

func stateKey(id models.InstanceID) string {
	return statePrefix + id.Key()
}

// ApplyDesired merges ActionController's desired-state diff into the
// instance table. New instances are created with
// current=NONE; existing instances only have Desired (and, for restart,
// RestartToken) overwritten — current is never touched here, it is only
// ever set by ReportStatus.
func (m *Manager) ApplyDesired(ctx context.Context, diff []models.WorkloadInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range diff {
		key := d.ID.Key()
		inst, ok := m.instances[key]
		if !ok {
			inst = &models.WorkloadInstance{ID: d.ID, Current: models.StatusNone}
			m.instances[key] = inst
		}
		inst.Desired = d.Desired
		if d.RestartToken != "" {
			inst.RestartToken = d.RestartToken
		}
		inst.LastTransitionTS = time.Now()
		if err := m.persist(ctx, inst); err != nil {
			return err
		}
	}

	m.signalWake()
	return nil
}

// ReportStatus applies NodeAgent's best-effort status push. current is
// the only field a non-StateManager component is ever allowed to set.
func (m *Manager) ReportStatus(ctx context.Context, id models.InstanceID, current models.Status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.Key()
	inst, ok := m.instances[key]
	if !ok {
		inst = &models.WorkloadInstance{ID: id}
		m.instances[key] = inst
	}
	inst.Current = current
	inst.LastError = errMsg
	inst.LastTransitionTS = time.Now()
	if current == inst.Desired {
		inst.RestartToken = ""
		inst.Backoff = 0
	}
	m.lastSeen[key] = time.Now()

	return m.persist(ctx, inst)
}

// Query returns every instance matching scenario and/or pkg (either may be
// empty to mean "any"), sorted by key.
func (m *Manager) Query(scenario, pkg string) []models.WorkloadInstance {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.WorkloadInstance, 0, len(m.instances))
	for _, inst := range m.instances {
		if scenario != "" && inst.ID.Scenario != scenario {
			continue
		}
		if pkg != "" && inst.ID.Package != pkg {
			continue
		}
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Key() < out[j].ID.Key() })
	return out
}

func (m *Manager) persist(ctx context.Context, inst *models.WorkloadInstance) error {
	raw, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("marshal workload instance: %w", err)
	}
	return m.kv.Put(ctx, stateKey(inst.ID), raw)
}

func (m *Manager) signalWake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Start runs the reconciliation loop until ctx is canceled.
func (m *Manager) Start(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("state manager reconcile loop started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("state manager reconcile loop stopped")
			return
		case <-ticker.C:
			m.runCycle(ctx)
		case <-m.wake:
			m.runCycle(ctx)
		}
	}
}

// runCycle reconciles every instance due for an attempt and marks instances
// unreachable for unhealthyAfter as current=UNKNOWN.
func (m *Manager) runCycle(ctx context.Context) {
	now := time.Now()

	m.mu.Lock()
	due := make([]*models.WorkloadInstance, 0)
	for key, inst := range m.instances {
		// Checked ahead of Converged(): a steady-state running instance
		// (current==desired) still needs to flip to UNKNOWN once its
		// NodeAgent stops reporting, even though nothing else about it
		// looks due for reconciliation.
		if last, ok := m.lastSeen[key]; ok && now.Sub(last) > m.unhealthyAfter && inst.Current != models.StatusUnknown {
			inst.Current = models.StatusUnknown
			inst.LastTransitionTS = now
			_ = m.persist(ctx, inst)
			log.Warn().Str("instance", key).Msg("node agent unresponsive, marking instance unknown")
		}
		if inst.Converged() {
			continue
		}
		if m.inFlight[key] {
			continue
		}
		if !inst.LastAttempt.IsZero() && inst.LastAttempt.Add(inst.Backoff).After(now) {
			continue
		}
		m.inFlight[key] = true
		due = append(due, inst)
	}
	m.mu.Unlock()

	for _, inst := range due {
		go m.reconcileOne(ctx, inst)
	}
}

func (m *Manager) reconcileOne(ctx context.Context, inst *models.WorkloadInstance) {
	key := inst.ID.Key()
	defer func() {
		m.mu.Lock()
		delete(m.inFlight, key)
		m.mu.Unlock()
	}()

	m.mu.Lock()
	current, desired, restartToken := inst.Current, inst.Desired, inst.RestartToken
	m.mu.Unlock()

	_, _, err := m.reconciler.Reconcile(ctx, inst.ID, current, desired, restartToken)

	m.mu.Lock()
	defer m.mu.Unlock()
	inst.LastAttempt = time.Now()
	if err != nil {
		inst.Backoff = nextBackoff(inst.Backoff)
		inst.LastError = err.Error()
		log.Warn().Err(err).Str("instance", key).Dur("backoff", inst.Backoff).Msg("reconcile failed")
		_ = m.persist(ctx, inst)
		return
	}
	inst.Backoff = 0
	inst.LastError = ""

	if inst.Terminal && inst.Current == models.StatusDone {
		delete(m.instances, key)
		delete(m.lastSeen, key)
		_ = m.kv.Delete(ctx, stateKey(inst.ID))
		return
	}
	_ = m.persist(ctx, inst)
}

const maxBackoff = 30 * time.Second

func nextBackoff(cur time.Duration) time.Duration {
	if cur <= 0 {
		return 500 * time.Millisecond
	}
	next := cur * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
