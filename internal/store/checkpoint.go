package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type CheckpointStore struct {
	db *sqlx.DB
}

func (cs *CheckpointStore) Get(ctx context.Context, developmentID int64) (*SyncCheckpoint, error) {
	query := `SELECT development_id, last_financial_sync_at
		FROM sync_checkpoints
		WHERE development_id = $1`

	var cp SyncCheckpoint
	err := cs.db.GetContext(ctx, &cp, query, developmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

func (cs *CheckpointStore) Set(ctx context.Context, developmentID int64, at time.Time) error {
	query := `INSERT INTO sync_checkpoints (development_id, last_financial_sync_at)
		VALUES ($1, $2)
		ON CONFLICT (development_id) DO UPDATE SET
		last_financial_sync_at = EXCLUDED.last_financial_sync_at`

	_, err := cs.db.ExecContext(ctx, query, developmentID, at)
	return err
}

type InflationIndexStore struct {
	db *sqlx.DB
}

func (is *InflationIndexStore) GetRange(ctx context.Context, fromMonth, toMonth string) ([]InflationIndex, error) {
	query := `SELECT month, factor
		FROM inflation_indexes
		WHERE month >= $1 AND month <= $2
		ORDER BY month`

	var indexes []InflationIndex
	if err := is.db.SelectContext(ctx, &indexes, query, fromMonth, toMonth); err != nil {
		return nil, err
	}
	return indexes, nil
}
