package models_test

import (
	"testing"
	"time"

	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

func TestValidKind(t *testing.T) {
	valid := []models.Kind{models.KindScenario, models.KindPackage, models.KindModel, models.KindVolume, models.KindNetwork}
	for _, k := range valid {
		if !models.ValidKind(k) {
			t.Errorf("ValidKind(%q) = false, want true", k)
		}
	}
	if models.ValidKind(models.Kind("Bogus")) {
		t.Error("ValidKind(\"Bogus\") = true, want false")
	}
}

func TestActionCanonical(t *testing.T) {
	if got := models.ActionLaunch.Canonical(); got != models.ActionUpdate {
		t.Errorf("ActionLaunch.Canonical() = %q, want %q", got, models.ActionUpdate)
	}
	for _, a := range []models.Action{models.ActionUpdate, models.ActionStop, models.ActionRestart, models.ActionRollback} {
		if got := a.Canonical(); got != a {
			t.Errorf("%s.Canonical() = %q, want unchanged %q", a, got, a)
		}
	}
}

func TestScenarioEffectiveLifecycle(t *testing.T) {
	s := &models.Scenario{Name: "s1"}
	if got := s.EffectiveLifecycle(); got != models.LifecycleOneTime {
		t.Errorf("EffectiveLifecycle() on unset = %q, want %q", got, models.LifecycleOneTime)
	}

	s.Lifecycle = models.LifecycleRecurring
	if got := s.EffectiveLifecycle(); got != models.LifecycleRecurring {
		t.Errorf("EffectiveLifecycle() = %q, want %q", got, models.LifecycleRecurring)
	}
}

func TestInstanceIDKey(t *testing.T) {
	id := models.InstanceID{Scenario: "scen", Package: "pkg", Model: "mdl", Node: "nodeA"}
	want := "scen/mdl/nodeA"
	if got := id.Key(); got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestWorkloadInstanceConverged(t *testing.T) {
	w := &models.WorkloadInstance{Current: models.StatusRunning, Desired: models.StatusRunning}
	if !w.Converged() {
		t.Error("Converged() = false, want true for matching current/desired with no restart token")
	}

	w.RestartToken = "tok-1"
	if w.Converged() {
		t.Error("Converged() = true, want false when a restart token is pending")
	}

	w2 := &models.WorkloadInstance{Current: models.StatusDone, Desired: models.StatusRunning, LastTransitionTS: time.Now()}
	if w2.Converged() {
		t.Error("Converged() = true, want false when current != desired")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[models.Status]string{
		models.StatusNone:    "NONE",
		models.StatusInit:    "INIT",
		models.StatusReady:   "READY",
		models.StatusRunning: "RUNNING",
		models.StatusDone:    "DONE",
		models.StatusFailed:  "FAILED",
		models.StatusUnknown: "UNKNOWN",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
	if got := models.Status(99).String(); got != "INVALID" {
		t.Errorf("Status(99).String() = %q, want %q", got, "INVALID")
	}
}
