// Package nodeagent implements NodeAgent: it dispatches HandleWorkload to
// a pluggable contracts.Backend and pushes best-effort status reports back to
// StateManager.
package nodeagent

import (
	"fmt"
	"sync"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/rs/zerolog/log"
)

// Registry holds named Backend drivers, mirroring vectorstore.Registry's
// driver-registry shape (internal/vectorstore/registry.go).
type Registry struct {
	mu       sync.RWMutex
	backends map[string]contracts.Backend
}

func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]contracts.Backend)}
}

func (r *Registry) Register(backend contracts.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[backend.Kind()] = backend
	log.Info().Str("kind", backend.Kind()).Msg("node backend registered")
}

func (r *Registry) Get(kind string) (contracts.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[kind]
	if !ok {
		return nil, fmt.Errorf("node backend not found: %s", kind)
	}
	return b, nil
}
