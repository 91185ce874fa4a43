package state

import (
	"context"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// Server adapts Manager to rpc.StateManagerServer.
type Server struct {
	mgr *Manager
}

// NewServer wraps mgr for gRPC registration.
func NewServer(mgr *Manager) *Server {
	return &Server{mgr: mgr}
}

func (s *Server) ApplyDesired(ctx context.Context, req *rpc.ApplyDesiredRequest) (*rpc.ApplyDesiredResponse, error) {
	if err := s.mgr.ApplyDesired(ctx, req.Instances); err != nil {
		return nil, err
	}
	return &rpc.ApplyDesiredResponse{Status: true}, nil
}

func (s *Server) ReportStatus(ctx context.Context, req *rpc.ReportStatusRequest) (*rpc.ReportStatusResponse, error) {
	id := models.InstanceID{Scenario: req.Scenario, Model: req.Model, Node: req.Node}
	if err := s.mgr.ReportStatus(ctx, id, req.Current, req.Err); err != nil {
		return nil, err
	}
	return &rpc.ReportStatusResponse{Status: true}, nil
}

func (s *Server) Query(ctx context.Context, req *rpc.QueryRequest) (*rpc.QueryResponse, error) {
	return &rpc.QueryResponse{Instances: s.mgr.Query(req.Scenario, req.Package)}, nil
}
