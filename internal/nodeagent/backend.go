package nodeagent

import (
	"fmt"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

// NewBackend selects a Backend for this node's configured dialect,
// using a one-field mode dispatch (local/docker/k8s style). The settings
// document writes this as `type ∈ {bluechi, nodeagent}`; "nodeagent"
// (and the empty default) means NodeAgent drives
// the container runtime directly, without bluechi as an intermediary. A
// full pluggable Registry is unneeded beyond this switch since only two
// dialects exist — Registry still exists for the case a NodeAgent process
// is configured to front more than one node (internal/nodeagent/registry.go).
func NewBackend(kind, node, runtime string) (contracts.Backend, error) {
	switch kind {
	case "bluechi":
		return NewBluechiBackend(node), nil
	case "nodeagent", "direct", "":
		return NewDirectBackend(runtime), nil
	default:
		return nil, fmt.Errorf("unknown node backend dialect: %s", kind)
	}
}
