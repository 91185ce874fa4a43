// Package contracts defines the service interfaces that sit at each
// component boundary in the piccolo orchestrator.
//
// Each of the five components (APIServer, FilterGateway, ActionController,
// StateManager, NodeAgent) is built against these interfaces rather than
// concrete structs, so the all-in-one binary can wire them together with
// plain Go function calls while the split deployment wires the same
// interfaces to internal/rpc gRPC clients.
package contracts

import (
	"context"
	"time"

	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// ── KV store ─────────────────────────────────────────────────

// KVStore is the opaque, ordered, prefix-scannable key-value store
// treated as an external collaborator. get/put/delete/
// prefix-scan only — no transactions beyond optional CAS-on-create.
type KVStore interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) (value []byte, revision int64, err error)

	// Put writes value at key unconditionally (update semantics).
	Put(ctx context.Context, key string, value []byte) error

	// CreateOnly writes value at key only if it does not already exist.
	// Returns ErrAlreadyExists if the key is present.
	CreateOnly(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// PrefixScan returns every key/value pair whose key starts with prefix,
	// sorted lexicographically by key.
	PrefixScan(ctx context.Context, prefix string) ([]KVEntry, error)

	// Close releases resources held by the store.
	Close() error
}

// KVEntry is one key/value pair returned from a prefix scan.
type KVEntry struct {
	Key      string
	Value    []byte
	Revision int64
}

// ErrNotFound is returned by KVStore.Get for an absent key.
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string { return "key not found: " + e.Key }

// ErrAlreadyExists is returned by KVStore.CreateOnly for a present key.
type ErrAlreadyExists struct {
	Key string
}

func (e *ErrAlreadyExists) Error() string { return "key already exists: " + e.Key }

// ── Signal bus ───────────────────────────────────────────────

// Sample is one opaque record delivered on a topic subscription. Decoding
// into a generic value is the job of a signal.Adapter; the filter engine
// never sees the transport-specific wire format.
type Sample struct {
	Topic     string
	Payload   []byte
	Timestamp time.Time
}

// SignalBus is the external vehicle signal transport (DDS or equivalent).
// We specify only the subscription contract.
type SignalBus interface {
	// Subscribe opens (or reuses) a subscription to topic and returns a
	// channel of samples plus an unsubscribe func. Implementations must be
	// safe to call concurrently with Unsubscribe on other topics.
	Subscribe(ctx context.Context, topic string) (samples <-chan Sample, unsubscribe func(), err error)
}

// ── Node backend dispatch (NodeAgent) ───────────────────────

// NodeAction is the imperative verb NodeAgent asks a Backend to perform.
type NodeAction int32

const (
	NodeActionStart NodeAction = iota
	NodeActionStop
	NodeActionChange
)

func (a NodeAction) String() string {
	switch a {
	case NodeActionStart:
		return "START"
	case NodeActionStop:
		return "STOP"
	case NodeActionChange:
		return "CHANGE"
	default:
		return "UNKNOWN"
	}
}

// WorkloadUnit is the materialized pod/service definition a Backend starts
// or changes, derived from a Model by NodeAgent. ID identifies which
// WorkloadInstance this unit belongs to, so a status observation can be
// reported back to StateManager without reverse-parsing Name.
type WorkloadUnit struct {
	ID          models.InstanceID
	Name        string
	Model       models.Model
	VolumeRefs  []string
	NetworkRefs []string
}

// Backend is the dynamic-dispatch seam across node execution dialects,
// selected once at configuration load time.
type Backend interface {
	// Kind identifies this backend's dialect, e.g. "bluechi" or "direct".
	Kind() string

	// Start materializes and starts unit. Idempotent: already-running is success.
	Start(ctx context.Context, unit WorkloadUnit) error

	// Stop stops (and where applicable removes) the named unit. Idempotent.
	Stop(ctx context.Context, name string) error

	// Change atomically swaps the running unit for a new definition.
	Change(ctx context.Context, unit WorkloadUnit) error

	// Observe returns the backend's current view of a unit's status.
	Observe(ctx context.Context, name string) (models.Status, error)
}

// ── Policy ───────────────────────────────────────────────────

// PolicyClient consults the external PolicyManager before ActionController
// dispatches a triggered action.
type PolicyClient interface {
	CheckPolicy(ctx context.Context, scenarioName string) (allowed bool, reason string, err error)
}

// ── Node routing ─────────────────────────────────────────────

// NodeEndpoint is one entry of the static host/guest map loaded from the
// settings document.
type NodeEndpoint struct {
	Name string
	Addr string
	Type string // "bluechi" | "nodeagent"
}

// NodeRouter resolves a node name to the gRPC endpoint of the NodeAgent
// that owns it.
type NodeRouter interface {
	Resolve(node string) (NodeEndpoint, bool)
}
