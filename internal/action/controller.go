// Package action implements ActionController: it turns a fired Scenario
// into a desired-state diff (TriggerAction) and closes the loop by
// dispatching the minimal HandleWorkload sequence a WorkloadInstance needs
// to converge (Reconcile).
package action

import (
	"context"
	"fmt"

	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StateApplier is the seam to StateManager.ApplyDesired.
type StateApplier interface {
	ApplyDesired(ctx context.Context, diff []models.WorkloadInstance) error
}

// NodeCaller is the seam to a node's NodeAgent.HandleWorkload, resolved
// per (Model, node) by Controller's NodeRouter.
type NodeCaller interface {
	HandleWorkload(ctx context.Context, endpoint contracts.NodeEndpoint, unit contracts.WorkloadUnit, nodeAction contracts.NodeAction) (models.Status, string, error)
}

// Controller is ActionController's core logic, independent of its gRPC
// transport (see server.go).
type Controller struct {
	kv     contracts.KVStore
	policy contracts.PolicyClient
	router contracts.NodeRouter
	state  StateApplier
	nodes  NodeCaller
}

// NewController wires ActionController's collaborators.
func NewController(kv contracts.KVStore, policy contracts.PolicyClient, router contracts.NodeRouter, state StateApplier, nodes NodeCaller) *Controller {
	return &Controller{kv: kv, policy: policy, router: router, state: state, nodes: nodes}
}

// ErrPolicyDenied describes a PolicyManager refusal. TriggerAction does
// not return it: a denied trigger comes back as StatusFailed with a
// "POLICY_DENIED: <reason>" description and a nil error.
type ErrPolicyDenied struct {
	Reason string
}

func (e *ErrPolicyDenied) Error() string { return "policy denied: " + e.Reason }

// ErrUnknownNode aborts a whole trigger atomically: unknown node names
// fail the whole trigger before any write happens.
type ErrUnknownNode struct {
	Node string
}

func (e *ErrUnknownNode) Error() string { return fmt.Sprintf("unknown node %q", e.Node) }

// TriggerAction resolves scenarioName's target Package into its ordered
// Models, maps the scenario's action to a desired-state diff, and writes
// it to StateManager.
func (c *Controller) TriggerAction(ctx context.Context, scenarioName string) (models.Status, string, error) {
	scenario, err := c.loadScenario(ctx, scenarioName)
	if err != nil {
		return models.StatusFailed, "", err
	}

	allowed, reason, err := c.policy.CheckPolicy(ctx, scenarioName)
	if err != nil {
		return models.StatusFailed, "", fmt.Errorf("check policy: %w", err)
	}
	if !allowed {
		log.Info().Str("scenario", scenarioName).Str("reason", reason).Msg("trigger denied by policy")
		return models.StatusFailed, "POLICY_DENIED: " + reason, nil
	}

	pkg, err := c.loadPackage(ctx, scenario.Target)
	if err != nil {
		return models.StatusFailed, "", err
	}

	// Node routing is validated before any write — atomic per scenario.
	for _, ref := range pkg.Models {
		if _, ok := c.router.Resolve(ref.Node); !ok {
			return models.StatusFailed, "", &ErrUnknownNode{Node: ref.Node}
		}
	}

	if scenario.Action.Canonical() == models.ActionRollback {
		if err := c.applyRollback(ctx, pkg); err != nil {
			return models.StatusFailed, "", err
		}
	}

	diff := make([]models.WorkloadInstance, 0, len(pkg.Models))
	for _, ref := range pkg.Models {
		id := models.InstanceID{Scenario: scenarioName, Package: pkg.Name, Model: ref.Name, Node: ref.Node}
		inst := models.WorkloadInstance{ID: id, Desired: desiredStatus(scenario.Action.Canonical())}
		if scenario.Action.Canonical() == models.ActionRestart {
			inst.RestartToken = uuid.NewString()
		}
		if scenario.Action.Canonical() == models.ActionTerminate {
			inst.Terminal = true
		}
		diff = append(diff, inst)
	}

	if err := c.state.ApplyDesired(ctx, diff); err != nil {
		return models.StatusFailed, "", fmt.Errorf("apply desired: %w", err)
	}

	return models.StatusReady, "accepted", nil
}

// desiredStatus maps a canonical Action to the desired Status it drives
// every instance in the target Package toward.
func desiredStatus(action models.Action) models.Status {
	switch action {
	case models.ActionStop, models.ActionTerminate:
		return models.StatusDone
	case models.ActionPause:
		return models.StatusReady
	default: // start, update, restart, rollback
		return models.StatusRunning
	}
}

func (c *Controller) loadScenario(ctx context.Context, name string) (*models.Scenario, error) {
	raw, _, err := c.kv.Get(ctx, "Scenario/"+name)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", name, err)
	}
	return artifact.DecodeScenario(string(raw))
}

func (c *Controller) loadPackage(ctx context.Context, name string) (*models.Package, error) {
	raw, _, err := c.kv.Get(ctx, "Package/"+name)
	if err != nil {
		return nil, fmt.Errorf("load package %s: %w", name, err)
	}
	return artifact.DecodePackage(string(raw))
}

// applyRollback reverts every Model in pkg to its previous generation's
// container image per ModelRuntime history.
func (c *Controller) applyRollback(ctx context.Context, pkg *models.Package) error {
	seen := map[string]bool{}
	for _, ref := range pkg.Models {
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true

		rawBytes, _, err := c.kv.Get(ctx, "Model/"+ref.Name)
		if err != nil {
			return fmt.Errorf("load model %s: %w", ref.Name, err)
		}
		rawText := string(rawBytes)
		model, err := artifact.DecodeModel(rawText)
		if err != nil {
			return err
		}
		rt, err := artifact.LoadModelRuntime(ctx, c.kv, ref.Name)
		if err != nil {
			return err
		}
		if len(rt.History) == 0 {
			return fmt.Errorf("model %s has no prior generation to roll back to", ref.Name)
		}
		if len(model.Containers) == 0 {
			return fmt.Errorf("model %s has no containers", ref.Name)
		}
		model.Containers[0] = rt.History[0]
		rt.History = rt.History[1:]
		if rt.Generation > 0 {
			rt.Generation--
		}

		// Persist both: the reverted spec so future reconciles/Observes see
		// the rolled-back image, and the shrunk history so a second
		// rollback advances further back instead of repeating.
		encoded, err := artifact.EncodeModelDoc(rawText, model)
		if err != nil {
			return err
		}
		if err := c.kv.Put(ctx, "Model/"+ref.Name, []byte(encoded)); err != nil {
			return err
		}
		if err := artifact.SaveModelRuntime(ctx, c.kv, ref.Name, rt); err != nil {
			return err
		}
	}
	return nil
}
