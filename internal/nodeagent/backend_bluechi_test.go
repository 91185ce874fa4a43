package nodeagent

import (
	"context"
	"strings"
	"testing"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

func TestNewBluechiBackend(t *testing.T) {
	b := NewBluechiBackend("vehicle-host-1")
	if b.Kind() != "bluechi" {
		t.Errorf("Kind() = %q, want bluechi", b.Kind())
	}
	if b.node != "vehicle-host-1" {
		t.Errorf("node = %q, want vehicle-host-1", b.node)
	}
}

func TestUnitName(t *testing.T) {
	if got := unitName("low-speed-nav-host"); got != "low-speed-nav-host.container" {
		t.Errorf("unitName() = %q", got)
	}
}

func TestRestartOrDefault(t *testing.T) {
	if got := restartOrDefault(""); got != "on-failure" {
		t.Errorf("restartOrDefault(\"\") = %q, want on-failure", got)
	}
	if got := restartOrDefault("always"); got != "always" {
		t.Errorf("restartOrDefault(always) = %q, want always", got)
	}
}

func TestBuildUnitFile(t *testing.T) {
	b := NewBluechiBackend("vehicle-host-1")
	unit := contracts.WorkloadUnit{
		Name:        "nav-unit",
		VolumeRefs:  []string{"data:/data"},
		NetworkRefs: []string{"can0"},
		Model: models.Model{
			Containers: []models.Container{{Name: "nav", Image: "registry.local/nav:1.0", Env: map[string]string{"LOG_LEVEL": "info"}}},
		},
	}
	unitFile := b.buildUnitFile(unit, "registry.local/nav:1.0")

	for _, want := range []string{
		"Description=nav-unit",
		"Image=registry.local/nav:1.0",
		"Volume=data:/data",
		"Network=can0",
		"Environment=LOG_LEVEL=info",
		"Restart=on-failure",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(unitFile, want) {
			t.Errorf("buildUnitFile() missing %q in:\n%s", want, unitFile)
		}
	}
}

func TestBluechiBackendStartMissingBluechictl(t *testing.T) {
	b := NewBluechiBackend("vehicle-host-1")
	unit := contracts.WorkloadUnit{
		Name:  "test-unit",
		Model: models.Model{Containers: []models.Container{{Image: "registry.local/nav:1.0"}}},
	}
	// bluechictl is not installed in the test environment, so Start must
	// fail on the exec.LookPath check before ever shelling out.
	if err := b.Start(context.Background(), unit); err == nil {
		t.Error("Start() without bluechictl on PATH should error")
	}
}

func TestBluechiBackendObserveUnreachableReturnsStatusNone(t *testing.T) {
	b := NewBluechiBackend("vehicle-host-1")
	status, err := b.Observe(context.Background(), "nonexistent-unit")
	if err != nil {
		t.Fatalf("Observe() error = %v, want nil (unreachable backend reports StatusNone)", err)
	}
	if status != models.StatusNone {
		t.Errorf("Observe() = %v, want StatusNone when bluechictl can't run", status)
	}
}
