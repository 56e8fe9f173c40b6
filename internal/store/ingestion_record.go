package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type IngestionRecordStore struct {
	db *sqlx.DB
}

func (is *IngestionRecordStore) Exists(ctx context.Context, source string, execDate time.Time, payloadHash string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM ingestion_records
		WHERE source = $1 AND exec_date = $2 AND payload_hash = $3
	)`

	var exists bool
	err := is.db.GetContext(ctx, &exists, query, source, execDate.Format("2006-01-02"), payloadHash)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (is *IngestionRecordStore) Insert(ctx context.Context, record *IngestionRecord) error {
	query := `INSERT INTO ingestion_records (
		source,
		exec_date,
		entity_key,
		payload_hash,
		processed_at
	) VALUES (
		:source,
		:exec_date,
		:entity_key,
		:payload_hash,
		:processed_at
	)
		ON CONFLICT (source, exec_date, payload_hash) DO NOTHING
		RETURNING id`

	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now()
	}

	rows, err := is.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&record.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}
