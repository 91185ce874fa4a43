package kv

import (
	"context"
	"fmt"

	"github.com/agentoven/agentoven/control-plane/internal/config"
	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
)

// Open selects a contracts.KVStore implementation per cfg.KVBackend,
// using the same one-field mode-dispatch style as the rest of the
// control plane's backend selection.
func Open(ctx context.Context, cfg *config.Config) (contracts.KVStore, error) {
	switch cfg.KVBackend {
	case "postgres":
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("PICCOLO_KV_BACKEND=postgres requires PICCOLO_POSTGRES_URL")
		}
		return NewPostgresStore(ctx, cfg.PostgresURL)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend: %s", cfg.KVBackend)
	}
}
