package action

import (
	"context"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// Server adapts Controller to rpc.ActionControllerServer.
type Server struct {
	ctrl *Controller
}

func NewServer(ctrl *Controller) *Server {
	return &Server{ctrl: ctrl}
}

func (s *Server) TriggerAction(ctx context.Context, req *rpc.TriggerActionRequest) (*rpc.TriggerActionResponse, error) {
	status, desc, err := s.ctrl.TriggerAction(ctx, req.ScenarioName)
	if err != nil {
		return nil, err
	}
	return &rpc.TriggerActionResponse{Status: status, Desc: desc}, nil
}

func (s *Server) Reconcile(ctx context.Context, req *rpc.ReconcileRequest) (*rpc.ReconcileResponse, error) {
	id := models.InstanceID{Scenario: req.ScenarioName, Package: req.Package, Model: req.Model, Node: req.Node}
	status, desc, err := s.ctrl.Reconcile(ctx, id, req.Current, req.Desired, req.RestartToken)
	if err != nil {
		return nil, err
	}
	return &rpc.ReconcileResponse{Status: status, Desc: desc}, nil
}
