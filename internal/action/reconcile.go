package action

import (
	"fmt"

	"context"

	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// Reconcile compares current vs desired for one instance and issues the
// smallest HandleWorkload sequence needed to close the gap. Idempotent: current == desired and no pending restart is a
// no-op.
func (c *Controller) Reconcile(ctx context.Context, id models.InstanceID, current, desired models.Status, restartToken string) (models.Status, string, error) {
	forcedRestart := restartToken != "" && current == models.StatusRunning && desired == models.StatusRunning
	if current == desired && !forcedRestart {
		return current, "no-op", nil
	}

	endpoint, ok := c.router.Resolve(id.Node)
	if !ok {
		return models.StatusFailed, "", &ErrUnknownNode{Node: id.Node}
	}

	unit, err := c.buildUnit(ctx, id)
	if err != nil {
		return models.StatusFailed, "", err
	}

	var nodeAction contracts.NodeAction
	if forcedRestart {
		nodeAction = contracts.NodeActionChange
	} else {
		nodeAction, ok = transition(current, desired)
		if !ok {
			return current, "no transition defined", nil
		}
	}

	status, desc, err := c.nodes.HandleWorkload(ctx, endpoint, *unit, nodeAction)
	if err != nil {
		return models.StatusFailed, "", fmt.Errorf("handle workload: %w", err)
	}
	return status, desc, nil
}

// transition picks the single NodeAction that moves current toward
// desired. CHANGE covers any already-running instance whose desired state
// differs from simply stop/start.
func transition(current, desired models.Status) (contracts.NodeAction, bool) {
	switch desired {
	case models.StatusRunning:
		if current == models.StatusNone || current == models.StatusDone || current == models.StatusFailed || current == models.StatusUnknown {
			return contracts.NodeActionStart, true
		}
		return contracts.NodeActionChange, true
	case models.StatusReady:
		return contracts.NodeActionStart, true
	case models.StatusDone:
		return contracts.NodeActionStop, true
	default:
		return 0, false
	}
}

func (c *Controller) buildUnit(ctx context.Context, id models.InstanceID) (*contracts.WorkloadUnit, error) {
	raw, _, err := c.kv.Get(ctx, "Model/"+id.Model)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", id.Model, err)
	}
	model, err := artifact.DecodeModel(string(raw))
	if err != nil {
		return nil, err
	}

	var volumeRefs, networkRefs []string
	if id.Package != "" {
		if pkgRaw, _, err := c.kv.Get(ctx, "Package/"+id.Package); err == nil {
			if pkg, err := artifact.DecodePackage(string(pkgRaw)); err == nil {
				for _, ref := range pkg.Models {
					if ref.Name != id.Model || ref.Node != id.Node {
						continue
					}
					if ref.Volume != "" {
						volumeRefs = append(volumeRefs, ref.Volume)
					}
					if ref.Network != "" {
						networkRefs = append(networkRefs, ref.Network)
					}
				}
			}
		}
	}

	return &contracts.WorkloadUnit{
		ID:          id,
		Name:        id.Scenario + "-" + id.Model + "-" + id.Node,
		Model:       *model,
		VolumeRefs:  volumeRefs,
		NetworkRefs: networkRefs,
	}, nil
}
