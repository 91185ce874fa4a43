package kv

import (
	"context"
	"fmt"

	"github.com/agentoven/agentoven/control-plane/pkg/contracts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore implements contracts.KVStore on top of a single table,
// giving the coordination store durability across APIServer restarts
// without requiring an external etcd/Zookeeper deployment. Keys map
// 1:1 onto the "{Kind}/{name}" and "state/{scenario}/{model}/{node}"
// layout; there is no relational structure to exploit, so a plain
// key/value/revision table is sufficient.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connURL and ensures the kv table exists.
func NewPostgresStore(ctx context.Context, connURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connURL)
	if err != nil {
		return nil, fmt.Errorf("kv: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kv: ping: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("kv: migrate: %w", err)
	}
	log.Info().Msg("postgres-backed KV store initialized")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS piccolo_kv (
			key      TEXT PRIMARY KEY,
			value    BYTEA NOT NULL,
			revision BIGINT NOT NULL
		);
		CREATE SEQUENCE IF NOT EXISTS piccolo_kv_revision_seq;
	`)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var value []byte
	var revision int64
	err := s.pool.QueryRow(ctx, `SELECT value, revision FROM piccolo_kv WHERE key = $1`, key).Scan(&value, &revision)
	if err == pgx.ErrNoRows {
		return nil, 0, &contracts.ErrNotFound{Key: key}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, revision, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO piccolo_kv (key, value, revision)
		VALUES ($1, $2, nextval('piccolo_kv_revision_seq'))
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, revision = nextval('piccolo_kv_revision_seq')
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) CreateOnly(ctx context.Context, key string, value []byte) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO piccolo_kv (key, value, revision)
		VALUES ($1, $2, nextval('piccolo_kv_revision_seq'))
		ON CONFLICT (key) DO NOTHING
	`, key, value)
	if err != nil {
		return fmt.Errorf("kv create %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return &contracts.ErrAlreadyExists{Key: key}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM piccolo_kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) PrefixScan(ctx context.Context, prefix string) ([]contracts.KVEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT key, value, revision FROM piccolo_kv
		WHERE key LIKE $1
		ORDER BY key ASC
	`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("kv prefix scan %q: %w", prefix, err)
	}
	defer rows.Close()

	var out []contracts.KVEntry
	for rows.Next() {
		var e contracts.KVEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.Revision); err != nil {
			return nil, fmt.Errorf("kv prefix scan %q: %w", prefix, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
