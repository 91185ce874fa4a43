package nodeagent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/rs/zerolog/log"
)

// DirectBackend runs workloads as plain containers via a local container
// runtime CLI (podman by default, docker if configured). Selected for
// nodes with no bluechi manager present.
type DirectBackend struct {
	mu      sync.Mutex
	runtime string // "podman" or "docker"
	units   map[string]string // unit name -> container ID
}

func NewDirectBackend(runtime string) *DirectBackend {
	if runtime == "" {
		runtime = "podman"
	}
	return &DirectBackend{runtime: runtime, units: make(map[string]string)}
}

func (b *DirectBackend) Kind() string { return "direct" }

func (b *DirectBackend) Start(ctx context.Context, unit contracts.WorkloadUnit) error {
	if _, err := exec.LookPath(b.runtime); err != nil {
		return fmt.Errorf("%s not found in PATH — install it to use direct execution mode", b.runtime)
	}
	if status, _ := b.Observe(ctx, unit.Name); status == models.StatusRunning {
		return nil
	}

	image := firstImage(unit.Model)
	if image == "" {
		return fmt.Errorf("model %s has no container image", unit.Model.Name)
	}

	args := []string{"run", "-d", "--name", containerName(unit.Name)}
	for _, v := range unit.VolumeRefs {
		args = append(args, "-v", v)
	}
	for _, n := range unit.NetworkRefs {
		args = append(args, "--network", n)
	}
	for _, c := range unit.Model.Containers {
		for k, v := range c.Env {
			args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
		}
	}
	args = append(args, image)

	log.Info().Str("unit", unit.Name).Str("image", image).Str("runtime", b.runtime).Msg("starting workload container")

	cmd := exec.CommandContext(ctx, b.runtime, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s run failed: %s: %w", b.runtime, stderr.String(), err)
	}

	id := strings.TrimSpace(stdout.String())
	b.mu.Lock()
	b.units[unit.Name] = id
	b.mu.Unlock()
	return nil
}

func (b *DirectBackend) Stop(ctx context.Context, name string) error {
	b.mu.Lock()
	_, known := b.units[name]
	delete(b.units, name)
	b.mu.Unlock()

	ref := containerName(name)
	cmd := exec.CommandContext(ctx, b.runtime, "stop", "-t", "5", ref)
	if err := cmd.Run(); err != nil && known {
		log.Warn().Err(err).Str("unit", name).Msg("graceful stop failed, forcing removal")
	}
	rm := exec.CommandContext(ctx, b.runtime, "rm", "-f", ref)
	_ = rm.Run()
	return nil
}

// Change stops the old container and starts the new definition. The
// running-container runtimes we target have no atomic in-place swap, so
// this is a best-effort stop-then-start.
func (b *DirectBackend) Change(ctx context.Context, unit contracts.WorkloadUnit) error {
	if err := b.Stop(ctx, unit.Name); err != nil {
		return err
	}
	return b.Start(ctx, unit)
}

func (b *DirectBackend) Observe(ctx context.Context, name string) (models.Status, error) {
	cmd := exec.CommandContext(ctx, b.runtime, "inspect", "-f", "{{.State.Status}}", containerName(name))
	out, err := cmd.Output()
	if err != nil {
		return models.StatusNone, nil
	}
	switch strings.TrimSpace(string(out)) {
	case "running":
		return models.StatusRunning, nil
	case "exited", "dead":
		return models.StatusDone, nil
	case "created":
		return models.StatusReady, nil
	default:
		return models.StatusUnknown, nil
	}
}

func containerName(unitName string) string {
	return "piccolo-node-" + unitName
}

func firstImage(m models.Model) string {
	if len(m.Containers) == 0 {
		return ""
	}
	return m.Containers[0].Image
}
