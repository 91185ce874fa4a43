// Package models holds the shared data types for the piccolo orchestrator:
// artifacts (Scenario, Package, Model, Volume, Network) submitted by
// operators, and the runtime records (WorkloadInstance) StateManager
// maintains while reconciling desired state against the workload backend.
package models

import "time"

// ── Artifact kinds ───────────────────────────────────────────

// Kind identifies the declared type of an artifact document.
type Kind string

const (
	KindScenario Kind = "Scenario"
	KindPackage  Kind = "Package"
	KindModel    Kind = "Model"
	KindVolume   Kind = "Volume"
	KindNetwork  Kind = "Network"
)

// ValidKind reports whether k is one of the five recognized artifact kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindScenario, KindPackage, KindModel, KindVolume, KindNetwork:
		return true
	}
	return false
}

// Document is one `---`-separated artifact document, parsed but not yet
// validated against the rest of the batch.
type Document struct {
	APIVersion string `json:"apiVersion"`
	Kind       Kind   `json:"kind"`
	Metadata   struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Spec map[string]interface{} `json:"spec"`

	// Raw is the canonical text of this single document, exactly as
	// submitted (minus the leading `---` separator). This is what gets
	// persisted verbatim under "{Kind}/{name}" so Get() round-trips it.
	Raw string `json:"-"`

	// Line is the 1-based line number the document started on, used in
	// diagnostics.
	Line int `json:"-"`
}

// ── Scenario ─────────────────────────────────────────────────

// Action is the tagged-variant action a fired Scenario drives against its target.
type Action string

const (
	ActionLaunch    Action = "launch"
	ActionUpdate    Action = "update"
	ActionRollback  Action = "rollback"
	ActionTerminate Action = "terminate"
	ActionStart     Action = "start"
	ActionStop      Action = "stop"
	ActionRestart   Action = "restart"
	ActionPause     Action = "pause"
)

// Canonical collapses the "launch"/"update" synonym pair
// to a single engine-internal action while preserving the original token
// for status output via Scenario.Action.
func (a Action) Canonical() Action {
	if a == ActionLaunch {
		return ActionUpdate
	}
	return a
}

// Operator is a condition comparison operator.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpLt       Operator = "lt"
	OpLe       Operator = "le"
	OpGt       Operator = "gt"
	OpGe       Operator = "ge"
	OpContains Operator = "contains"
)

// OperandKind distinguishes the transport family a condition's operand reads from.
type OperandKind string

const (
	OperandDDS      OperandKind = "DDS"
	OperandInternal OperandKind = "INTERNAL"
)

// Operand names the subscription (topic) and the dotted path into a
// decoded sample that a Condition evaluates.
type Operand struct {
	Kind        OperandKind `json:"kind" yaml:"kind"`
	Topic       string      `json:"topic" yaml:"topic"`
	PayloadPath string      `json:"payload_path" yaml:"payload_path"`
}

// Condition is a Scenario's predicate. A nil Condition means "unconditional":
// the scenario fires once on apply.
type Condition struct {
	Operator    Operator `json:"operator" yaml:"operator"`
	TargetValue string   `json:"target_value" yaml:"target_value"`
	Operand     Operand  `json:"operand" yaml:"operand"`
}

// Lifecycle controls whether a filter re-arms after firing.
type Lifecycle string

const (
	// LifecycleOneTime is the default: at most one trigger ever.
	LifecycleOneTime  Lifecycle = "oneTime"
	LifecycleRecurring Lifecycle = "recurring"
)

// Scenario is the named (condition, action, target) triple.
type Scenario struct {
	Name      string     `json:"name" yaml:"name"`
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Action    Action     `json:"action" yaml:"action"`
	Target    string     `json:"target" yaml:"target"`
	Lifecycle Lifecycle  `json:"lifecycle,omitempty" yaml:"lifecycle,omitempty"`
}

// EffectiveLifecycle returns the scenario's lifecycle, defaulting to
// oneTime when unset.
func (s *Scenario) EffectiveLifecycle() Lifecycle {
	if s.Lifecycle == "" {
		return LifecycleOneTime
	}
	return s.Lifecycle
}

// ── Package / Model ──────────────────────────────────────────

// ModelRef pins a Model to a node within a Package, with optional
// volume/network attachments.
type ModelRef struct {
	Name    string `json:"name" yaml:"name"`
	Node    string `json:"node" yaml:"node"`
	Volume  string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Network string `json:"network,omitempty" yaml:"network,omitempty"`
}

// Package is a named deployment unit: an ordered set of Models pinned to nodes.
type Package struct {
	Name    string     `json:"name" yaml:"name"`
	Pattern string     `json:"pattern" yaml:"pattern"` // e.g. "plain", "redundant"
	Models  []ModelRef `json:"models" yaml:"models"`
}

// Container is one container within a Model's pod-like spec.
type Container struct {
	Name  string            `json:"name" yaml:"name"`
	Image string            `json:"image" yaml:"image"`
	Env   map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Mounts []string         `json:"mounts,omitempty" yaml:"mounts,omitempty"`
}

// Model is a pod-like workload spec.
type Model struct {
	Name                  string            `json:"name" yaml:"name"`
	Labels                map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations           map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Containers            []Container       `json:"containers" yaml:"containers"`
	RestartPolicy         string            `json:"restart_policy,omitempty" yaml:"restart_policy,omitempty"`
	TerminationGraceSecs  int               `json:"termination_grace_secs,omitempty" yaml:"termination_grace_secs,omitempty"`

	// Generation and History are not maintained on Model: nothing sets
	// them, and they stay at their zero values. The update/rollback
	// bookkeeping lives in artifact.ModelRuntime under "modelgen/{name}".
	Generation int         `json:"generation" yaml:"-"`
	History    []Container `json:"history,omitempty" yaml:"-"`
}

// Volume and Network are opaque named refs a Model may attach to. The
// orchestrator core only validates their existence; the workload backend
// interprets their spec.
type Volume struct {
	Name string                 `json:"name" yaml:"name"`
	Spec map[string]interface{} `json:"spec,omitempty" yaml:"spec,omitempty"`
}

type Network struct {
	Name string                 `json:"name" yaml:"name"`
	Spec map[string]interface{} `json:"spec,omitempty" yaml:"spec,omitempty"`
}

// ── WorkloadInstance / Status ────────────────────────────────

// Status is the lifecycle state of a workload instance on a node. The
// numeric values match the gRPC wire enum used across the control plane.
type Status int32

const (
	StatusNone Status = iota
	StatusInit
	StatusReady
	StatusRunning
	StatusDone
	StatusFailed
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusInit:
		return "INIT"
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusDone:
		return "DONE"
	case StatusFailed:
		return "FAILED"
	case StatusUnknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// InstanceID identifies a WorkloadInstance by its (scenario, model, node) triple.
type InstanceID struct {
	Scenario string `json:"scenario"`
	Package  string `json:"package"`
	Model    string `json:"model"`
	Node     string `json:"node"`
}

// Key returns the flattened KV key suffix "scenario/model/node" used under
// the "state/" prefix.
func (id InstanceID) Key() string {
	return id.Scenario + "/" + id.Model + "/" + id.Node
}

// WorkloadInstance is the runtime record StateManager owns per
// (Package, Model, node).
type WorkloadInstance struct {
	ID InstanceID `json:"id"`

	Desired Status `json:"desired"`
	Current Status `json:"current"`

	// RestartToken forces a stop→start cycle even when Current already
	// equals Desired (the `restart` action).
	RestartToken string `json:"restart_token,omitempty"`

	// Terminal marks an instance for deletion once it converges on DONE
	// (the `terminate` action: desired DONE, then delete instance), as
	// opposed to `stop`, which also converges on DONE but keeps the
	// record for a future start.
	Terminal bool `json:"terminal,omitempty"`

	LastTransitionTS time.Time `json:"last_transition_ts"`
	LastError        string    `json:"last_error,omitempty"`

	// Reconciliation bookkeeping, owned exclusively by StateManager's loop.
	LastAttempt time.Time     `json:"last_attempt,omitempty"`
	Backoff     time.Duration `json:"backoff,omitempty"`
}

// Converged reports whether this instance needs no further reconciliation.
func (w *WorkloadInstance) Converged() bool {
	return w.Current == w.Desired && w.RestartToken == ""
}

// ── Diagnostics ──────────────────────────────────────────────

// ErrorKind is a coarse diagnostic taxonomy — a classification, not a Go
// error type hierarchy; callers type-switch on it via Diagnostic.Kind.
type ErrorKind string

const (
	ErrKindParse      ErrorKind = "Parse"
	ErrKindValidation ErrorKind = "Validation"
	ErrKindTransient  ErrorKind = "Transient"
	ErrKindPolicy     ErrorKind = "Policy"
	ErrKindInvariant  ErrorKind = "Invariant"
)

// Diagnostic is a single structured parse/validation failure, reported
// with enough context (line, kind, name) to locate the offending document.
type Diagnostic struct {
	Kind   ErrorKind `json:"kind"`
	Line   int       `json:"line,omitempty"`
	DocKind string   `json:"doc_kind,omitempty"`
	Name   string    `json:"name,omitempty"`
	Reason string    `json:"reason"`
}

// DocResult is the per-document outcome returned from apply/withdraw.
type DocResult struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Status string `json:"status"` // "created" | "updated" | "deleted" | "error"
	Reason string `json:"reason,omitempty"`
}

// ApplyResult is the response body for POST /api/artifact.
type ApplyResult struct {
	Status      string       `json:"status"` // "ok" | "error"
	Results     []DocResult  `json:"results,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
