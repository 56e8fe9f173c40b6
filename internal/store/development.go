package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type DevelopmentStore struct {
	db *sqlx.DB
}

func (ds *DevelopmentStore) Upsert(ctx context.Context, dev *Development) error {
	query := `INSERT INTO developments (
		external_id,
		source,
		name,
		is_active,
		inserted_at,
		updated_at
	) VALUES (
		:external_id,
		:source,
		:name,
		:is_active,
		:inserted_at,
		:updated_at
	)
		ON CONFLICT (external_id, source) DO UPDATE SET
		name = EXCLUDED.name,
		is_active = EXCLUDED.is_active,
		updated_at = EXCLUDED.updated_at
		RETURNING id`

	now := time.Now()
	if dev.InsertedAt.IsZero() {
		dev.InsertedAt = now
	}
	dev.UpdatedAt = now

	rows, err := ds.db.NamedQueryContext(ctx, query, dev)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&dev.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (ds *DevelopmentStore) GetByExternalID(ctx context.Context, source, externalID string) (*Development, error) {
	query := `SELECT id, external_id, source, name, is_active, inserted_at, updated_at
		FROM developments
		WHERE source = $1 AND external_id = $2`

	var dev Development
	err := ds.db.GetContext(ctx, &dev, query, source, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dev, nil
}

func (ds *DevelopmentStore) List(ctx context.Context, source string) ([]Development, error) {
	query := `SELECT id, external_id, source, name, is_active, inserted_at, updated_at
		FROM developments
		WHERE source = $1
		ORDER BY external_id`

	var devs []Development
	if err := ds.db.SelectContext(ctx, &devs, query, source); err != nil {
		return nil, err
	}
	return devs, nil
}

func (ds *DevelopmentStore) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE developments SET is_active = $1, updated_at = $2 WHERE id = $3`

	_, err := ds.db.ExecContext(ctx, query, active, time.Now(), id)
	return err
}
