package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

type fakeReconciler struct {
	status models.Status
	desc   string
	err    error
	calls  []models.InstanceID
}

func (f *fakeReconciler) Reconcile(_ context.Context, id models.InstanceID, current, desired models.Status, restartToken string) (models.Status, string, error) {
	f.calls = append(f.calls, id)
	return f.status, f.desc, f.err
}

func TestApplyDesiredCreatesNewInstance(t *testing.T) {
	store := kv.NewMemoryStore()
	m := NewManager(store, &fakeReconciler{}, time.Second, time.Minute)

	id := models.InstanceID{Scenario: "low-speed", Model: "nav", Node: "host"}
	err := m.ApplyDesired(context.Background(), []models.WorkloadInstance{{ID: id, Desired: models.StatusRunning}})
	if err != nil {
		t.Fatalf("ApplyDesired() error = %v", err)
	}

	instances := m.Query("low-speed", "")
	if len(instances) != 1 {
		t.Fatalf("Query() = %d instances, want 1", len(instances))
	}
	if instances[0].Current != models.StatusNone {
		t.Errorf("new instance Current = %v, want StatusNone", instances[0].Current)
	}
	if instances[0].Desired != models.StatusRunning {
		t.Errorf("Desired = %v, want StatusRunning", instances[0].Desired)
	}

	raw, _, err := store.Get(context.Background(), stateKey(id))
	if err != nil {
		t.Fatalf("expected ApplyDesired to persist to KV: %v", err)
	}
	if len(raw) == 0 {
		t.Error("persisted instance payload is empty")
	}
}

func TestApplyDesiredDoesNotTouchCurrent(t *testing.T) {
	store := kv.NewMemoryStore()
	m := NewManager(store, &fakeReconciler{}, time.Second, time.Minute)
	id := models.InstanceID{Scenario: "s", Model: "m", Node: "n"}

	m.ApplyDesired(context.Background(), []models.WorkloadInstance{{ID: id, Desired: models.StatusRunning}})
	m.ReportStatus(context.Background(), id, models.StatusRunning, "")
	m.ApplyDesired(context.Background(), []models.WorkloadInstance{{ID: id, Desired: models.StatusDone}})

	instances := m.Query("s", "")
	if instances[0].Current != models.StatusRunning {
		t.Errorf("Current = %v, want StatusRunning to survive a later ApplyDesired call", instances[0].Current)
	}
	if instances[0].Desired != models.StatusDone {
		t.Errorf("Desired = %v, want StatusDone", instances[0].Desired)
	}
}

func TestReportStatusClearsRestartTokenWhenConverged(t *testing.T) {
	store := kv.NewMemoryStore()
	m := NewManager(store, &fakeReconciler{}, time.Second, time.Minute)
	id := models.InstanceID{Scenario: "s", Model: "m", Node: "n"}

	m.ApplyDesired(context.Background(), []models.WorkloadInstance{{ID: id, Desired: models.StatusRunning, RestartToken: "tok-1"}})
	m.ReportStatus(context.Background(), id, models.StatusRunning, "")

	instances := m.Query("s", "")
	if instances[0].RestartToken != "" {
		t.Errorf("RestartToken = %q, want cleared once current converges on desired", instances[0].RestartToken)
	}
}

func TestQueryFiltersByScenarioAndPackage(t *testing.T) {
	store := kv.NewMemoryStore()
	m := NewManager(store, &fakeReconciler{}, time.Second, time.Minute)

	m.ApplyDesired(context.Background(), []models.WorkloadInstance{
		{ID: models.InstanceID{Scenario: "a", Package: "p1", Model: "m", Node: "n"}, Desired: models.StatusRunning},
		{ID: models.InstanceID{Scenario: "b", Package: "p2", Model: "m", Node: "n"}, Desired: models.StatusRunning},
	})

	if got := m.Query("a", ""); len(got) != 1 {
		t.Errorf("Query(a,\"\") = %d, want 1", len(got))
	}
	if got := m.Query("", "p2"); len(got) != 1 {
		t.Errorf("Query(\"\",p2) = %d, want 1", len(got))
	}
	if got := m.Query("", ""); len(got) != 2 {
		t.Errorf("Query(\"\",\"\") = %d, want 2", len(got))
	}
}

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	cases := []struct {
		cur  time.Duration
		want time.Duration
	}{
		{0, 500 * time.Millisecond},
		{500 * time.Millisecond, time.Second},
		{20 * time.Second, 30 * time.Second},
		{30 * time.Second, 30 * time.Second},
	}
	for _, c := range cases {
		if got := nextBackoff(c.cur); got != c.want {
			t.Errorf("nextBackoff(%v) = %v, want %v", c.cur, got, c.want)
		}
	}
}

func TestReconcileOneOnFailureAppliesBackoff(t *testing.T) {
	store := kv.NewMemoryStore()
	reconciler := &fakeReconciler{err: errors.New("node agent unreachable")}
	m := NewManager(store, reconciler, time.Second, time.Minute)

	inst := &models.WorkloadInstance{ID: models.InstanceID{Scenario: "s", Model: "m", Node: "n"}, Desired: models.StatusRunning}
	m.mu.Lock()
	m.instances[inst.ID.Key()] = inst
	m.mu.Unlock()

	m.reconcileOne(context.Background(), inst)

	if inst.Backoff != 500*time.Millisecond {
		t.Errorf("Backoff = %v, want 500ms after the first failure", inst.Backoff)
	}
	if inst.LastError == "" {
		t.Error("LastError should be set after a failed reconcile")
	}
}

func TestReconcileOneTerminalDoneDeletesInstance(t *testing.T) {
	store := kv.NewMemoryStore()
	reconciler := &fakeReconciler{status: models.StatusDone}
	m := NewManager(store, reconciler, time.Second, time.Minute)

	id := models.InstanceID{Scenario: "s", Model: "m", Node: "n"}
	inst := &models.WorkloadInstance{ID: id, Desired: models.StatusDone, Current: models.StatusDone, Terminal: true}
	m.mu.Lock()
	m.instances[id.Key()] = inst
	m.mu.Unlock()
	store.Put(context.Background(), stateKey(id), []byte(`{}`))

	m.reconcileOne(context.Background(), inst)

	if len(m.Query("s", "")) != 0 {
		t.Error("a converged terminal instance should be removed from the instance table")
	}
	if _, _, err := store.Get(context.Background(), stateKey(id)); err == nil {
		t.Error("a converged terminal instance should be removed from KV")
	}
}

func TestRunCycleMarksUnhealthyAfterTimeoutThenReconvergesOnRecovery(t *testing.T) {
	store := kv.NewMemoryStore()
	reconciler := &fakeReconciler{err: errors.New("node agent unreachable")}
	m := NewManager(store, reconciler, time.Hour, 10*time.Millisecond)

	id := models.InstanceID{Scenario: "s", Model: "m", Node: "n"}
	inst := &models.WorkloadInstance{ID: id, Desired: models.StatusRunning, Current: models.StatusRunning}
	m.mu.Lock()
	m.instances[id.Key()] = inst
	m.lastSeen[id.Key()] = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	m.runCycle(context.Background())

	m.mu.Lock()
	current := inst.Current
	m.mu.Unlock()
	if current != models.StatusUnknown {
		t.Fatalf("Current = %v, want StatusUnknown once lastSeen exceeds unhealthyAfter", current)
	}

	// Wait for the in-flight reconcileOne goroutine runCycle spawned to
	// finish, so it can't race with the recovery report below.
	for i := 0; i < 100; i++ {
		m.mu.Lock()
		inFlight := m.inFlight[id.Key()]
		m.mu.Unlock()
		if !inFlight {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Recovery: NodeAgent reports in again.
	if err := m.ReportStatus(context.Background(), id, models.StatusRunning, ""); err != nil {
		t.Fatalf("ReportStatus() error = %v", err)
	}

	m.runCycle(context.Background())

	instances := m.Query("s", "")
	if len(instances) != 1 {
		t.Fatalf("Query() = %d instances, want 1", len(instances))
	}
	if instances[0].Current != models.StatusRunning {
		t.Errorf("Current = %v, want StatusRunning after recovery", instances[0].Current)
	}
}

func TestReconcileOneNonTerminalDoneIsKept(t *testing.T) {
	store := kv.NewMemoryStore()
	reconciler := &fakeReconciler{status: models.StatusDone}
	m := NewManager(store, reconciler, time.Second, time.Minute)

	id := models.InstanceID{Scenario: "s", Model: "m", Node: "n"}
	inst := &models.WorkloadInstance{ID: id, Desired: models.StatusDone, Current: models.StatusDone, Terminal: false}
	m.mu.Lock()
	m.instances[id.Key()] = inst
	m.mu.Unlock()

	m.reconcileOne(context.Background(), inst)

	if len(m.Query("s", "")) != 1 {
		t.Error("a converged, non-terminal (stopped) instance should stay in the table")
	}
}
