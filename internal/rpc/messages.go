package rpc

import "github.com/agentoven/agentoven/control-plane/pkg/models"

// ── APIServer → FilterGateway ────────────────────────────────

// ScenarioRPCAction is HandleScenario's action discriminant.
type ScenarioRPCAction string

const (
	ScenarioApply    ScenarioRPCAction = "APPLY"
	ScenarioWithdraw ScenarioRPCAction = "WITHDRAW"
)

type HandleScenarioRequest struct {
	Action   ScenarioRPCAction `json:"action"`
	Scenario string            `json:"scenario"`
}

type HandleScenarioResponse struct {
	Status bool   `json:"status"`
	Desc   string `json:"desc"`
}

// ── FilterGateway → ActionController ────────────────────────

type TriggerActionRequest struct {
	ScenarioName string `json:"scenario_name"`
}

type TriggerActionResponse struct {
	Status models.Status `json:"status"`
	Desc   string        `json:"desc"`
}

// ── StateManager → ActionController ─────────────────────────

// ReconcileRequest identifies one WorkloadInstance by its full
// (scenario, package, model, node) identity. The wire contract carries
// {scenario_name, current, desired}; Package/Model/Node are
// carried alongside scenario_name since a scenario's target Package may
// fan out to several (Model, node) instances that must be reconciled
// independently.
type ReconcileRequest struct {
	ScenarioName string        `json:"scenario_name"`
	Package      string        `json:"package,omitempty"`
	Model        string        `json:"model,omitempty"`
	Node         string        `json:"node,omitempty"`
	Current      models.Status `json:"current"`
	Desired      models.Status `json:"desired"`
	RestartToken string        `json:"restart_token,omitempty"`
}

type ReconcileResponse struct {
	Status models.Status `json:"status"`
	Desc   string        `json:"desc"`
}

// ── ActionController → NodeAgent ────────────────────────────

// HandleWorkloadRequest identifies the target WorkloadInstance by its full
// InstanceID regardless of action — STOP carries no Unit payload, but
// still needs an identity to report status against.
type HandleWorkloadRequest struct {
	WorkloadName string               `json:"workload_name"`
	Instance     models.InstanceID    `json:"instance"`
	Action       int32                `json:"action"` // START=0|STOP=1|CHANGE=2
	Description  string               `json:"description"`
	Unit         *WorkloadUnitPayload `json:"unit,omitempty"`
}

// WorkloadUnitPayload is the wire form of contracts.WorkloadUnit; START
// and CHANGE carry it, STOP does not.
type WorkloadUnitPayload struct {
	Name        string        `json:"name"`
	Model       models.Model  `json:"model"`
	VolumeRefs  []string      `json:"volume_refs,omitempty"`
	NetworkRefs []string      `json:"network_refs,omitempty"`
}

type HandleWorkloadResponse struct {
	Status models.Status `json:"status"`
	Desc   string        `json:"desc"`
}

// ── ActionController → PolicyManager ────────────────────────

type CheckPolicyRequest struct {
	ScenarioName string `json:"scenario_name"`
}

type CheckPolicyResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// ── ActionController → StateManager ─────────────────────────

// ApplyDesiredRequest carries the desired-state diff ActionController
// computed for TriggerAction step 4. StateManager owns the merge into its
// instance table.
type ApplyDesiredRequest struct {
	Instances []models.WorkloadInstance `json:"instances"`
}

type ApplyDesiredResponse struct {
	Status bool `json:"status"`
}

// QueryRequest looks up WorkloadInstances by scenario or package name.
type QueryRequest struct {
	Scenario string `json:"scenario,omitempty"`
	Package  string `json:"package,omitempty"`
}

type QueryResponse struct {
	Instances []models.WorkloadInstance `json:"instances"`
}

// ── NodeAgent → StateManager (status push) ──────────────────

// ReportStatusRequest is the best-effort push NodeAgent sends StateManager
// after a HandleWorkload call settles. It is StateManager's only source
// of an instance's current status; StateManager never observes a
// backend itself.
type ReportStatusRequest struct {
	Scenario string        `json:"scenario"`
	Model    string        `json:"model"`
	Node     string        `json:"node"`
	Current  models.Status `json:"current"`
	Err      string        `json:"err,omitempty"`
}

type ReportStatusResponse struct {
	Status bool `json:"status"`
}
