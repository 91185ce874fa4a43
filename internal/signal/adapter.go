// Package signal adapts transport-specific sample payloads into the
// generic decoded value the filter engine's predicate evaluates a dotted
// payload_path against.
package signal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentoven/agentoven/control-plane/pkg/models"
)

// Adapter decodes a contracts.Sample's opaque payload into a generic
// map[string]any, one implementation per signal family.
type Adapter interface {
	Decode(payload []byte) (map[string]interface{}, error)
}

// ForKind returns the adapter registered for an Operand.Kind.
func ForKind(kind models.OperandKind) Adapter {
	switch kind {
	case models.OperandInternal:
		return InternalAdapter{}
	default:
		return DDSAdapter{}
	}
}

// DDSAdapter decodes the JSON-over-DDS convention used by the vehicle
// signal bus: each DDS sample is published as a flat or nested JSON
// object whose fields match the IDL struct's field names.
type DDSAdapter struct{}

func (DDSAdapter) Decode(payload []byte) (map[string]interface{}, error) {
	var v map[string]interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("dds decode: %w", err)
	}
	return v, nil
}

// InternalAdapter decodes same-process event payloads, which are already
// JSON-encoded maps emitted by other orchestrator components (e.g. a
// Reconcile status change republished as a signal).
type InternalAdapter struct{}

func (InternalAdapter) Decode(payload []byte) (map[string]interface{}, error) {
	var v map[string]interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("internal decode: %w", err)
	}
	return v, nil
}

// ExtractPath walks a dotted path (e.g. "gear" or "wheel.front_left.psi")
// through a decoded sample, returning the leaf value.
func ExtractPath(decoded map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = decoded
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
