package nodeagent

import (
	"context"
	"fmt"

	"github.com/agentoven/agentoven/control-plane/internal/rpc"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/agentoven/agentoven/control-plane/pkg/models"
	"github.com/rs/zerolog/log"
)

// StatusReporter is the seam to StateManager.ReportStatus, used for the
// best-effort push: NodeAgent watches the backend and pushes ReportStatus
// to StateManager whenever the observed state changes; pushes are
// best-effort, and the StateManager reconciliation loop remains the
// source of truth for retry.
type StatusReporter interface {
	ReportStatus(ctx context.Context, id models.InstanceID, current models.Status, errMsg string) error
}

// Dispatcher is NodeAgent: it routes HandleWorkload calls to the
// configured Backend and reports the observed outcome back to
// StateManager. It implements action.NodeCaller (all-in-one, called
// directly in-process); Server wraps it as rpc.NodeAgentServer for the
// split deployment.
type Dispatcher struct {
	backend  contracts.Backend
	reporter StatusReporter
	node     string
}

func NewDispatcher(backend contracts.Backend, reporter StatusReporter, node string) *Dispatcher {
	return &Dispatcher{backend: backend, reporter: reporter, node: node}
}

// HandleWorkload implements action.NodeCaller (the in-process seam used by
// the all-in-one binary, and by RemoteNodeCaller's gRPC peer).
func (d *Dispatcher) HandleWorkload(ctx context.Context, endpoint contracts.NodeEndpoint, unit contracts.WorkloadUnit, action contracts.NodeAction) (models.Status, string, error) {
	var err error
	switch action {
	case contracts.NodeActionStart:
		err = d.backend.Start(ctx, unit)
	case contracts.NodeActionStop:
		err = d.backend.Stop(ctx, unit.Name)
	case contracts.NodeActionChange:
		err = d.backend.Change(ctx, unit)
	default:
		return models.StatusFailed, "", fmt.Errorf("unknown node action %v", action)
	}
	if err != nil {
		return models.StatusFailed, err.Error(), err
	}

	status, obsErr := d.backend.Observe(ctx, unit.Name)
	if obsErr != nil {
		status = models.StatusUnknown
	}
	d.pushStatus(ctx, unit.ID, unit.Name, status)
	return status, action.String() + " accepted", nil
}

// Server adapts a Dispatcher to rpc.NodeAgentServer for the split
// deployment. Kept separate from Dispatcher because the RPC and
// in-process seams need distinct HandleWorkload signatures.
type Server struct {
	d *Dispatcher
}

func NewServer(d *Dispatcher) *Server {
	return &Server{d: d}
}

// HandleWorkload implements rpc.NodeAgentServer. It decodes the wire
// request into a Backend call and, on success, best-effort pushes the
// resulting status to StateManager.
func (s *Server) HandleWorkload(ctx context.Context, req *rpc.HandleWorkloadRequest) (*rpc.HandleWorkloadResponse, error) {
	d := s.d
	var unit contracts.WorkloadUnit
	if req.Unit != nil {
		unit = contracts.WorkloadUnit{
			ID:          req.Instance,
			Name:        req.Unit.Name,
			Model:       req.Unit.Model,
			VolumeRefs:  req.Unit.VolumeRefs,
			NetworkRefs: req.Unit.NetworkRefs,
		}
	} else {
		unit = contracts.WorkloadUnit{ID: req.Instance, Name: req.WorkloadName}
	}

	status, desc, err := d.HandleWorkload(ctx, contracts.NodeEndpoint{Name: d.node}, unit, contracts.NodeAction(req.Action))
	if err != nil {
		return nil, err
	}

	return &rpc.HandleWorkloadResponse{Status: status, Desc: desc}, nil
}

// pushStatus best-effort reports the observed status for id back to
// StateManager. id comes from the request's own Instance field, set by
// whoever built the WorkloadUnit (action.Controller.buildUnit) — not
// reverse-parsed from the unit name, which is a display label only.
func (d *Dispatcher) pushStatus(ctx context.Context, id models.InstanceID, unitName string, status models.Status) {
	if d.reporter == nil {
		return
	}
	if id == (models.InstanceID{}) {
		return
	}
	id.Node = d.node
	if err := d.reporter.ReportStatus(ctx, id, status, ""); err != nil {
		log.Warn().Err(err).Str("unit", unitName).Msg("best-effort status push to state manager failed")
	}
}
