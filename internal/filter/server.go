package filter

import (
	"context"
	"fmt"

	"github.com/agentoven/agentoven/control-plane/internal/artifact"
	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

// Server adapts Engine to both rpc.FilterGatewayServer (split deployment)
// and artifact.ScenarioNotifier (all-in-one binary, called directly
// in-process). HandleScenario's wire request only carries the scenario
// name, so Server loads the Scenario document from
// KV itself before calling Engine.Apply/Withdraw.
type Server struct {
	kv     contracts.KVStore
	engine *Engine
}

func NewServer(kv contracts.KVStore, engine *Engine) *Server {
	return &Server{kv: kv, engine: engine}
}

// ApplyScenario implements artifact.ScenarioNotifier.
func (s *Server) ApplyScenario(ctx context.Context, name string) error {
	raw, _, err := s.kv.Get(ctx, "Scenario/"+name)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", name, err)
	}
	scenario, err := artifact.DecodeScenario(string(raw))
	if err != nil {
		return err
	}
	return s.engine.Apply(ctx, scenario)
}

// WithdrawScenario implements artifact.ScenarioNotifier.
func (s *Server) WithdrawScenario(ctx context.Context, name string) error {
	s.engine.Withdraw(ctx, name)
	return nil
}

// HandleScenario implements rpc.FilterGatewayServer for the split
// deployment.
func (s *Server) HandleScenario(ctx context.Context, req *rpc.HandleScenarioRequest) (*rpc.HandleScenarioResponse, error) {
	var err error
	switch req.Action {
	case rpc.ScenarioApply:
		err = s.ApplyScenario(ctx, req.Scenario)
	case rpc.ScenarioWithdraw:
		err = s.WithdrawScenario(ctx, req.Scenario)
	default:
		return nil, fmt.Errorf("unknown scenario action: %s", req.Action)
	}
	if err != nil {
		return &rpc.HandleScenarioResponse{Status: false, Desc: err.Error()}, nil
	}
	return &rpc.HandleScenarioResponse{Status: true, Desc: "ok"}, nil
}
