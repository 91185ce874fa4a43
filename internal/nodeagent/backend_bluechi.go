package nodeagent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/rs/zerolog/log"
)

// BluechiBackend drives workloads through a bluechi-managed systemd unit on
// the node, using a manifest-apply-via-stdin pattern: a unit file is
// generated and handed to bluechictl instead of kubectl. Selected when
// the node's settings entry
// advertises a bluechi controller node name.
type BluechiBackend struct {
	node string // bluechi-side node name this backend targets
}

func NewBluechiBackend(node string) *BluechiBackend {
	return &BluechiBackend{node: node}
}

func (b *BluechiBackend) Kind() string { return "bluechi" }

func (b *BluechiBackend) Start(ctx context.Context, unit contracts.WorkloadUnit) error {
	if _, err := exec.LookPath("bluechictl"); err != nil {
		return fmt.Errorf("bluechictl not found in PATH — install it to use bluechi execution mode")
	}

	image := firstImage(unit.Model)
	if image == "" {
		return fmt.Errorf("model %s has no container image", unit.Model.Name)
	}

	unitFile := b.buildUnitFile(unit, image)
	name := unitName(unit.Name)

	log.Info().Str("unit", name).Str("node", b.node).Str("image", image).Msg("starting workload via bluechi")

	cmd := exec.CommandContext(ctx, "bluechictl", "apply", "-n", b.node, "-")
	cmd.Stdin = bytes.NewBufferString(unitFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("bluechictl apply failed: %s: %w", stderr.String(), err)
	}

	startCmd := exec.CommandContext(ctx, "bluechictl", "start", "-n", b.node, name)
	return startCmd.Run()
}

func (b *BluechiBackend) Stop(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, "bluechictl", "stop", "-n", b.node, unitName(name))
	if err := cmd.Run(); err != nil {
		log.Warn().Err(err).Str("unit", name).Msg("bluechi stop failed, continuing with unit removal")
	}
	rm := exec.CommandContext(ctx, "bluechictl", "remove", "-n", b.node, unitName(name))
	_ = rm.Run()
	return nil
}

// Change re-applies the unit file in place; bluechi restarts the unit when
// its definition changes, avoiding the stop-then-start window the direct
// dialect requires.
func (b *BluechiBackend) Change(ctx context.Context, unit contracts.WorkloadUnit) error {
	image := firstImage(unit.Model)
	if image == "" {
		return fmt.Errorf("model %s has no container image", unit.Model.Name)
	}
	unitFile := b.buildUnitFile(unit, image)

	cmd := exec.CommandContext(ctx, "bluechictl", "apply", "-n", b.node, "-")
	cmd.Stdin = bytes.NewBufferString(unitFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("bluechictl apply failed: %s: %w", stderr.String(), err)
	}
	return nil
}

func (b *BluechiBackend) Observe(ctx context.Context, name string) (models.Status, error) {
	cmd := exec.CommandContext(ctx, "bluechictl", "status", "-n", b.node, unitName(name))
	out, err := cmd.Output()
	if err != nil {
		return models.StatusNone, nil
	}
	switch strings.TrimSpace(string(out)) {
	case "active", "running":
		return models.StatusRunning, nil
	case "inactive", "dead":
		return models.StatusDone, nil
	case "activating":
		return models.StatusReady, nil
	case "failed":
		return models.StatusFailed, nil
	default:
		return models.StatusUnknown, nil
	}
}

func (b *BluechiBackend) buildUnitFile(unit contracts.WorkloadUnit, image string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Unit]\nDescription=%s\n\n", unit.Name)
	fmt.Fprintf(&sb, "[Container]\nImage=%s\n", image)
	for _, v := range unit.VolumeRefs {
		fmt.Fprintf(&sb, "Volume=%s\n", v)
	}
	for _, n := range unit.NetworkRefs {
		fmt.Fprintf(&sb, "Network=%s\n", n)
	}
	for _, c := range unit.Model.Containers {
		for k, v := range c.Env {
			fmt.Fprintf(&sb, "Environment=%s=%s\n", k, v)
		}
	}
	fmt.Fprintf(&sb, "\n[Service]\nRestart=%s\n", restartOrDefault(unit.Model.RestartPolicy))
	fmt.Fprintf(&sb, "\n[Install]\nWantedBy=multi-user.target\n")
	return sb.String()
}

func restartOrDefault(policy string) string {
	if policy == "" {
		return "on-failure"
	}
	return policy
}

func unitName(name string) string {
	return name + ".container"
}
