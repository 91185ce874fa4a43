// Package kv provides the coordination KV store abstraction used by
// APIServer, FilterGateway, ActionController, and StateManager. The
// MemoryStore implementation is used for local development, the
// all-in-one binary, and tests; PostgresStore is the production-grade
// option described in SPEC_FULL.md's domain stack.
package kv

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/rs/zerolog/log"
)

// MemoryStore implements contracts.KVStore with a single guarded map.
// Keys are sortable strings; PrefixScan returns results
// sorted lexicographically to match the real KV store's iteration order.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	revision map[string]int64
	nextRev  int64
}

// NewMemoryStore creates an empty in-memory KV store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		revision: make(map[string]int64),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, 0, &contracts.ErrNotFound{Key: key}
	}
	// Return a copy so callers can't mutate stored bytes in place.
	out := make([]byte, len(v))
	copy(out, v)
	return out, m.revision[key], nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRev++
	m.data[key] = append([]byte(nil), value...)
	m.revision[key] = m.nextRev
	return nil
}

func (m *MemoryStore) CreateOnly(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return &contracts.ErrAlreadyExists{Key: key}
	}
	m.nextRev++
	m.data[key] = append([]byte(nil), value...)
	m.revision[key] = m.nextRev
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.revision, key)
	return nil
}

func (m *MemoryStore) PrefixScan(_ context.Context, prefix string) ([]contracts.KVEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]contracts.KVEntry, 0, len(keys))
	for _, k := range keys {
		v := make([]byte, len(m.data[k]))
		copy(v, m.data[k])
		out = append(out, contracts.KVEntry{Key: k, Value: v, Revision: m.revision[k]})
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	log.Debug().Msg("in-memory KV store closed")
	return nil
}
