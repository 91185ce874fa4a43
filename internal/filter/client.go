package filter

import (
	"context"
	"fmt"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
)

// RemoteNotifier adapts an rpc.FilterGatewayClient to artifact.ScenarioNotifier
// for the split deployment.
type RemoteNotifier struct {
	cc rpc.FilterGatewayClient
}

func NewRemoteNotifier(cc rpc.FilterGatewayClient) *RemoteNotifier {
	return &RemoteNotifier{cc: cc}
}

func (r *RemoteNotifier) ApplyScenario(ctx context.Context, name string) error {
	return r.call(ctx, rpc.ScenarioApply, name)
}

func (r *RemoteNotifier) WithdrawScenario(ctx context.Context, name string) error {
	return r.call(ctx, rpc.ScenarioWithdraw, name)
}

func (r *RemoteNotifier) call(ctx context.Context, action rpc.ScenarioRPCAction, name string) error {
	resp, err := r.cc.HandleScenario(ctx, &rpc.HandleScenarioRequest{Action: action, Scenario: name})
	if err != nil {
		return err
	}
	if !resp.Status {
		return fmt.Errorf("filter gateway rejected %s %s: %s", action, name, resp.Desc)
	}
	return nil
}
