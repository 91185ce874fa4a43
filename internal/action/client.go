package action

import (
	"context"
	"sync"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// RemoteClient adapts an rpc.ActionControllerClient to the narrow
// filter.TriggerClient and state.ReconcileClient interfaces, for the split
// (multi-process) deployment. The all-in-one binary wires Controller
// directly instead, skipping gRPC entirely.
type RemoteClient struct {
	cc rpc.ActionControllerClient
}

func NewRemoteClient(cc rpc.ActionControllerClient) *RemoteClient {
	return &RemoteClient{cc: cc}
}

// TriggerAction implements filter.TriggerClient.
func (r *RemoteClient) TriggerAction(ctx context.Context, scenarioName string) (models.Status, string, error) {
	resp, err := r.cc.TriggerAction(ctx, &rpc.TriggerActionRequest{ScenarioName: scenarioName})
	if err != nil {
		return models.StatusFailed, "", err
	}
	return resp.Status, resp.Desc, nil
}

// Reconcile implements state.ReconcileClient.
func (r *RemoteClient) Reconcile(ctx context.Context, id models.InstanceID, current, desired models.Status, restartToken string) (models.Status, string, error) {
	resp, err := r.cc.Reconcile(ctx, &rpc.ReconcileRequest{
		ScenarioName: id.Scenario,
		Package:      id.Package,
		Model:        id.Model,
		Node:         id.Node,
		Current:      current,
		Desired:      desired,
		RestartToken: restartToken,
	})
	if err != nil {
		return models.StatusFailed, "", err
	}
	return resp.Status, resp.Desc, nil
}

// RemoteStateApplier adapts an rpc.StateManagerClient to StateApplier for
// the split deployment.
type RemoteStateApplier struct {
	cc rpc.StateManagerClient
}

func NewRemoteStateApplier(cc rpc.StateManagerClient) *RemoteStateApplier {
	return &RemoteStateApplier{cc: cc}
}

func (r *RemoteStateApplier) ApplyDesired(ctx context.Context, diff []models.WorkloadInstance) error {
	_, err := r.cc.ApplyDesired(ctx, &rpc.ApplyDesiredRequest{Instances: diff})
	return err
}

// RemoteNodeCaller dials each distinct node endpoint once and reuses the
// connection for subsequent HandleWorkload calls, implementing NodeCaller
// for the split deployment.
type RemoteNodeCaller struct {
	mu      sync.Mutex
	clients map[string]rpc.NodeAgentClient
	dial    func(ctx context.Context, addr string) (rpc.NodeAgentClient, error)
}

// NewRemoteNodeCaller wraps dial, which should open a gRPC connection to
// addr with the JSON codec forced (see internal/rpc.Dial) and return a
// NodeAgent client over it.
func NewRemoteNodeCaller(dial func(ctx context.Context, addr string) (rpc.NodeAgentClient, error)) *RemoteNodeCaller {
	return &RemoteNodeCaller{clients: map[string]rpc.NodeAgentClient{}, dial: dial}
}

func (r *RemoteNodeCaller) clientFor(ctx context.Context, endpoint contracts.NodeEndpoint) (rpc.NodeAgentClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[endpoint.Addr]; ok {
		return c, nil
	}
	c, err := r.dial(ctx, endpoint.Addr)
	if err != nil {
		return nil, err
	}
	r.clients[endpoint.Addr] = c
	return c, nil
}

// HandleWorkload implements NodeCaller.
func (r *RemoteNodeCaller) HandleWorkload(ctx context.Context, endpoint contracts.NodeEndpoint, unit contracts.WorkloadUnit, nodeAction contracts.NodeAction) (models.Status, string, error) {
	client, err := r.clientFor(ctx, endpoint)
	if err != nil {
		return models.StatusFailed, "", err
	}

	req := &rpc.HandleWorkloadRequest{
		WorkloadName: unit.Name,
		Instance:     unit.ID,
		Action:       int32(nodeAction),
		Description:  nodeAction.String() + " " + unit.Name,
	}
	if nodeAction != contracts.NodeActionStop {
		req.Unit = &rpc.WorkloadUnitPayload{
			Name:        unit.Name,
			Model:       unit.Model,
			VolumeRefs:  unit.VolumeRefs,
			NetworkRefs: unit.NetworkRefs,
		}
	}

	resp, err := client.HandleWorkload(ctx, req)
	if err != nil {
		return models.StatusFailed, "", err
	}
	return resp.Status, resp.Desc, nil
}
