/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps one row per meeting in the donut_meetings table, with the
// names ordered so that a < b.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(ctx context.Context, databaseURL string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PgStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *PgStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS donut_meetings (
			a TEXT NOT NULL,
			b TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (a, b)
		);
		CREATE TABLE IF NOT EXISTS donut_runs (
			id BIGSERIAL PRIMARY KEY,
			run_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (s *PgStore) Load(ctx context.Context) (*History, error) {
	h := New()

	rows, err := s.pool.Query(ctx, `SELECT a, b FROM donut_meetings`)
	if err != nil {
		return nil, fmt.Errorf("history.load: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("history.load: %w", err)
		}
		h.Record(a, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history.load: %w", err)
	}

	var updated *time.Time
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), MAX(run_at) FROM donut_runs`).Scan(&h.Runs, &updated)
	if err != nil {
		return nil, fmt.Errorf("history.load: %w", err)
	}
	if updated != nil {
		h.Updated = updated.UTC()
	}

	return h, nil
}

// Save inserts every meeting in h that is not stored yet and records a run
// if h has more runs than the database.
func (s *PgStore) Save(ctx context.Context, h *History) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("history.save: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, pair := range h.Pairs() {
		batch.Queue(`INSERT INTO donut_meetings (a, b) VALUES ($1, $2)
			ON CONFLICT (a, b) DO NOTHING`, pair[0], pair[1])
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("history.save: %w", err)
		}
	}

	var runs int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM donut_runs`).Scan(&runs); err != nil {
		return fmt.Errorf("history.save: %w", err)
	}
	updated := h.Updated
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	for ; runs < h.Runs; runs++ {
		if _, err := tx.Exec(ctx, `INSERT INTO donut_runs (run_at) VALUES ($1)`,
			updated); err != nil {
			return fmt.Errorf("history.save: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) Close() {
	s.pool.Close()
}
