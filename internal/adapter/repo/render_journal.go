package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"texd/internal/domain"
)

// RenderJournalPG implements domain.RenderJournal on PostgreSQL.
type RenderJournalPG struct {
	pool *pgxpool.Pool
}

// NewRenderJournal creates a journal backed by the given pool.
func NewRenderJournal(pool *pgxpool.Pool) *RenderJournalPG {
	return &RenderJournalPG{pool: pool}
}

// Record inserts a terminal render outcome.
func (r *RenderJournalPG) Record(ctx context.Context, rec *domain.RenderRecord) error {
	query := `
INSERT INTO render_journal (id, key, generation, state, error_message, byte_size, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Key,
		rec.Generation,
		rec.State,
		rec.ErrorMessage,
		rec.ByteSize,
		rec.Duration.Milliseconds(),
	)
	return err
}

// GetByID fetches one journal row.
func (r *RenderJournalPG) GetByID(ctx context.Context, id string) (*domain.RenderRecord, error) {
	query := `
SELECT id, key, generation, state, error_message, byte_size, duration_ms, created_at
FROM render_journal
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var rec domain.RenderRecord
	var durationMS int64
	if err := row.Scan(
		&rec.ID,
		&rec.Key,
		&rec.Generation,
		&rec.State,
		&rec.ErrorMessage,
		&rec.ByteSize,
		&durationMS,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Duration = millisecondsToDuration(durationMS)
	return &rec, nil
}

// StateCounts24h returns how many jobs reached each terminal state in
// the last 24 hours.
func (r *RenderJournalPG) StateCounts24h(ctx context.Context) (map[domain.JobState]int64, error) {
	query := `
SELECT state, COUNT(*)
FROM render_journal
WHERE created_at > NOW() - INTERVAL '24 hours'
GROUP BY state;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.JobState]int64)
	for rows.Next() {
		var state domain.JobState
		var n int64
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

func millisecondsToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
