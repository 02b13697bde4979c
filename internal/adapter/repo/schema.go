package repo

import "context"

// journalSchema is the DDL for the render journal. EnsureSchema applies
// it at startup so a fresh database needs no separate migration step.
const journalSchema = `
CREATE TABLE IF NOT EXISTS render_journal (
    id            UUID PRIMARY KEY,
    key           TEXT NOT NULL,
    generation    BIGINT NOT NULL,
    state         TEXT NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    byte_size     BIGINT NOT NULL DEFAULT 0,
    duration_ms   BIGINT NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS render_journal_created_at_idx
    ON render_journal (created_at);
`

// EnsureSchema creates the journal table and index when missing.
func (r *RenderJournalPG) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, journalSchema)
	return err
}
