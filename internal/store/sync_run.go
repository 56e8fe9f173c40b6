package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type SyncRunStore struct {
	db *sqlx.DB
}

func (sr *SyncRunStore) Insert(ctx context.Context, run *SyncRun) error {
	query := `INSERT INTO sync_runs (
		source,
		status,
		triggered_by,
		started_at,
		metrics
	) VALUES (
		:source,
		:status,
		:triggered_by,
		:started_at,
		:metrics
	) RETURNING id`

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	if run.Metrics == nil {
		run.Metrics = []byte("{}")
	}

	rows, err := sr.db.NamedQueryContext(ctx, query, run)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&run.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (sr *SyncRunStore) Finish(ctx context.Context, id int64, status string, metrics []byte) error {
	query := `UPDATE sync_runs
		SET status = $1, finished_at = $2, metrics = $3
		WHERE id = $4`

	if metrics == nil {
		metrics = []byte("{}")
	}
	_, err := sr.db.ExecContext(ctx, query, status, time.Now(), metrics, id)
	return err
}

func (sr *SyncRunStore) GetLatest(ctx context.Context, limit int) ([]SyncRun, error) {
	query := `SELECT id, source, status, triggered_by, started_at, finished_at, metrics
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1`

	var runs []SyncRun
	if err := sr.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

func (sr *SyncRunStore) GetByID(ctx context.Context, id int64) (*SyncRun, error) {
	query := `SELECT id, source, status, triggered_by, started_at, finished_at, metrics
		FROM sync_runs
		WHERE id = $1`

	var run SyncRun
	err := sr.db.GetContext(ctx, &run, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}
