// Package policy provides ActionController's seam onto PolicyManager:
// a real gRPC client for the split deployment, and an in-process
// allow-all fake for the all-in-one binary and tests where no external
// policy engine is configured.
package policy

import (
	"context"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
)

// RemoteClient adapts an rpc.PolicyManagerClient to contracts.PolicyClient.
type RemoteClient struct {
	cc rpc.PolicyManagerClient
}

func NewRemoteClient(cc rpc.PolicyManagerClient) *RemoteClient {
	return &RemoteClient{cc: cc}
}

func (r *RemoteClient) CheckPolicy(ctx context.Context, scenarioName string) (bool, string, error) {
	resp, err := r.cc.CheckPolicy(ctx, &rpc.CheckPolicyRequest{ScenarioName: scenarioName})
	if err != nil {
		return false, "", err
	}
	return resp.Allowed, resp.Reason, nil
}

// AllowAll is the in-process contracts.PolicyClient used when no external
// PolicyManager is configured.
type AllowAll struct{}

func (AllowAll) CheckPolicy(ctx context.Context, scenarioName string) (bool, string, error) {
	return true, "no policy manager configured", nil
}
