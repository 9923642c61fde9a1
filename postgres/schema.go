package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sankey_diagrams (
    id         TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL,
    name       TEXT NOT NULL,
    nodes      JSONB NOT NULL DEFAULT '[]',
    links      JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (owner_id, name)
);

CREATE INDEX IF NOT EXISTS idx_sankey_diagrams_owner ON sankey_diagrams(owner_id, created_at DESC);
`

// CreateSchema creates the sankey_diagrams table if it doesn't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the sankey_diagrams table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS sankey_diagrams CASCADE;`)
	return err
}
