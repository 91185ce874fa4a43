package action

import (
	"context"
	"testing"

	"github.com/agentoven/agentoven/control-plane/internal/kv"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		current, desired models.Status
		want              contracts.NodeAction
		wantOK            bool
	}{
		{models.StatusNone, models.StatusRunning, contracts.NodeActionStart, true},
		{models.StatusDone, models.StatusRunning, contracts.NodeActionStart, true},
		{models.StatusFailed, models.StatusRunning, contracts.NodeActionStart, true},
		{models.StatusUnknown, models.StatusRunning, contracts.NodeActionStart, true},
		{models.StatusReady, models.StatusRunning, contracts.NodeActionChange, true},
		{models.StatusNone, models.StatusReady, contracts.NodeActionStart, true},
		{models.StatusRunning, models.StatusDone, contracts.NodeActionStop, true},
		{models.StatusRunning, models.StatusUnknown, 0, false},
	}
	for _, c := range cases {
		got, ok := transition(c.current, c.desired)
		if ok != c.wantOK {
			t.Fatalf("transition(%v,%v) ok = %v, want %v", c.current, c.desired, ok, c.wantOK)
		}
		if ok && got != c.want {
			t.Errorf("transition(%v,%v) = %v, want %v", c.current, c.desired, got, c.want)
		}
	}
}

func TestReconcileNoOpWhenConverged(t *testing.T) {
	c := NewController(nil, nil, &fakeRouter{}, nil, nil)
	status, desc, err := c.Reconcile(context.Background(), models.InstanceID{}, models.StatusRunning, models.StatusRunning, "")
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if status != models.StatusRunning || desc != "no-op" {
		t.Errorf("Reconcile() = %v, %q, want StatusRunning, no-op", status, desc)
	}
}

func TestReconcileForcedRestartIssuesChange(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "Model/nav-model", []byte(testModel))

	router := &fakeRouter{known: map[string]contracts.NodeEndpoint{"host": {Name: "host"}}}
	nodes := &fakeNodeCaller{status: models.StatusRunning, desc: "restarted"}
	c := NewController(store, nil, router, nil, nodes)

	id := models.InstanceID{Scenario: "s", Model: "nav-model", Node: "host"}
	status, desc, err := c.Reconcile(ctx, id, models.StatusRunning, models.StatusRunning, "restart-token-1")
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if status != models.StatusRunning || desc != "restarted" {
		t.Errorf("Reconcile() = %v, %q", status, desc)
	}
}

func TestReconcileUnknownNode(t *testing.T) {
	store := kv.NewMemoryStore()
	router := &fakeRouter{known: map[string]contracts.NodeEndpoint{}}
	c := NewController(store, nil, router, nil, &fakeNodeCaller{})

	id := models.InstanceID{Scenario: "s", Model: "m", Node: "ghost-node"}
	_, _, err := c.Reconcile(context.Background(), id, models.StatusNone, models.StatusRunning, "")
	if err == nil {
		t.Error("Reconcile() with an unresolved node should error")
	}
}

func TestReconcileNoTransitionDefined(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "Model/nav-model", []byte(testModel))
	router := &fakeRouter{known: map[string]contracts.NodeEndpoint{"host": {Name: "host"}}}
	c := NewController(store, nil, router, nil, &fakeNodeCaller{})

	id := models.InstanceID{Scenario: "s", Model: "nav-model", Node: "host"}
	status, desc, err := c.Reconcile(ctx, id, models.StatusRunning, models.StatusUnknown, "")
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if status != models.StatusRunning || desc != "no transition defined" {
		t.Errorf("Reconcile() = %v, %q", status, desc)
	}
}

func TestBuildUnitNamesUnitAndLoadsModel(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "Model/nav-model", []byte(testModel))
	store.Put(ctx, "Package/nav-package", []byte(testPackage))

	c := NewController(store, nil, &fakeRouter{}, nil, nil)
	id := models.InstanceID{Scenario: "s", Package: "nav-package", Model: "nav-model", Node: "host"}

	unit, err := c.buildUnit(ctx, id)
	if err != nil {
		t.Fatalf("buildUnit() error = %v", err)
	}
	if unit.Name != "s-nav-model-host" {
		t.Errorf("unit.Name = %q, want s-nav-model-host", unit.Name)
	}
	if unit.Model.Name != "nav-model" {
		t.Errorf("unit.Model.Name = %q", unit.Model.Name)
	}
}

func TestBuildUnitWithVolumeAndNetworkRefs(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	store.Put(ctx, "Model/nav-model", []byte(testModel))
	pkgWithRefs := `apiVersion: v1
kind: Package
metadata:
  name: nav-package
spec:
  models:
    - name: nav-model
      node: host
      volume: nav-data
      network: can0
`
	store.Put(ctx, "Package/nav-package", []byte(pkgWithRefs))

	c := NewController(store, nil, &fakeRouter{}, nil, nil)
	id := models.InstanceID{Scenario: "s", Package: "nav-package", Model: "nav-model", Node: "host"}

	unit, err := c.buildUnit(ctx, id)
	if err != nil {
		t.Fatalf("buildUnit() error = %v", err)
	}
	if len(unit.VolumeRefs) != 1 || unit.VolumeRefs[0] != "nav-data" {
		t.Errorf("VolumeRefs = %v, want [nav-data]", unit.VolumeRefs)
	}
	if len(unit.NetworkRefs) != 1 || unit.NetworkRefs[0] != "can0" {
		t.Errorf("NetworkRefs = %v, want [can0]", unit.NetworkRefs)
	}
}
