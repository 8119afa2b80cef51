package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema embutido no código para o bootstrap local e os testes de
// integração. Em produção a migração roda fora do processo.
const DDL = `
CREATE TABLE IF NOT EXISTS entity_events (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	state      TEXT NOT NULL CHECK (state IN ('created', 'updated', 'deleted')),
	kind       TEXT NOT NULL CHECK (kind IN ('node', 'edge')),
	node_id    TEXT,
	source_id  TEXT,
	target_id  TEXT,
	edge_type  TEXT,
	payload    JSONB NOT NULL DEFAULT '{}'::jsonb,
	username   TEXT NOT NULL,
	CHECK (
		(kind = 'node' AND node_id IS NOT NULL AND source_id IS NULL AND target_id IS NULL AND edge_type IS NULL)
		OR
		(kind = 'edge' AND node_id IS NULL AND source_id IS NOT NULL AND target_id IS NOT NULL AND edge_type IS NOT NULL)
	)
);

CREATE INDEX IF NOT EXISTS idx_entity_events_node ON entity_events (node_id, ts, id) WHERE kind = 'node';
CREATE INDEX IF NOT EXISTS idx_entity_events_edge ON entity_events (source_id, target_id, edge_type, ts, id) WHERE kind = 'edge';
CREATE INDEX IF NOT EXISTS idx_entity_events_payload ON entity_events USING GIN (payload);

CREATE TABLE IF NOT EXISTS rating_events (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	kind       TEXT NOT NULL CHECK (kind IN ('node', 'edge')),
	node_id    TEXT,
	source_id  TEXT,
	target_id  TEXT,
	edge_type  TEXT,
	poll       TEXT NOT NULL,
	value      TEXT NOT NULL,
	username   TEXT NOT NULL,
	CHECK (
		(kind = 'node' AND node_id IS NOT NULL AND source_id IS NULL AND target_id IS NULL AND edge_type IS NULL)
		OR
		(kind = 'edge' AND node_id IS NULL AND source_id IS NOT NULL AND target_id IS NOT NULL AND edge_type IS NOT NULL)
	)
);

CREATE INDEX IF NOT EXISTS idx_rating_events_node ON rating_events (node_id, poll, username, ts, id) WHERE kind = 'node';
CREATE INDEX IF NOT EXISTS idx_rating_events_edge ON rating_events (source_id, target_id, edge_type, poll, username, ts, id) WHERE kind = 'edge';

CREATE TABLE IF NOT EXISTS schema_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	version     TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	config      JSONB NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_by  TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_schema_snapshots_active ON schema_snapshots (active) WHERE active;

CREATE TABLE IF NOT EXISTS schema_migrations (
	id           BIGSERIAL PRIMARY KEY,
	from_version TEXT NOT NULL,
	to_version   TEXT NOT NULL,
	changes      JSONB NOT NULL DEFAULT '[]'::jsonb,
	warnings     JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	username     TEXT NOT NULL
);
`

// EnsureSchema aplica o DDL embutido. Idempotente.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, DDL); err != nil {
		return fmt.Errorf("postgres.EnsureSchema - failed to apply DDL: %w", err)
	}
	return nil
}
