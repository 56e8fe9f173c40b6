package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type SnapshotStore struct {
	db *sqlx.DB
}

func (ss *SnapshotStore) Upsert(ctx context.Context, snap *PortfolioSnapshot) error {
	query := `INSERT INTO portfolio_snapshots (
		development_id,
		month,
		source,
		present_value,
		ltv_percent,
		weighted_term_months,
		duration_years,
		total_contracts,
		active_contracts,
		inserted_at,
		updated_at
	) VALUES (
		:development_id,
		:month,
		:source,
		:present_value,
		:ltv_percent,
		:weighted_term_months,
		:duration_years,
		:total_contracts,
		:active_contracts,
		:inserted_at,
		:updated_at
	)
		ON CONFLICT (development_id, month, source) DO UPDATE SET
		present_value = EXCLUDED.present_value,
		ltv_percent = EXCLUDED.ltv_percent,
		weighted_term_months = EXCLUDED.weighted_term_months,
		duration_years = EXCLUDED.duration_years,
		total_contracts = EXCLUDED.total_contracts,
		active_contracts = EXCLUDED.active_contracts,
		updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if snap.InsertedAt.IsZero() {
		snap.InsertedAt = now
	}
	snap.UpdatedAt = now

	_, err := ss.db.NamedExecContext(ctx, query, snap)
	return err
}

func (ss *SnapshotStore) Get(ctx context.Context, developmentID int64, month string) (*PortfolioSnapshot, error) {
	query := `SELECT id, development_id, month, source, present_value, ltv_percent,
		weighted_term_months, duration_years, total_contracts, active_contracts,
		inserted_at, updated_at
		FROM portfolio_snapshots
		WHERE development_id = $1 AND month = $2`

	var snap PortfolioSnapshot
	err := ss.db.GetContext(ctx, &snap, query, developmentID, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}

type DelinquencyStore struct {
	db *sqlx.DB
}

func (ds *DelinquencyStore) Upsert(ctx context.Context, report *DelinquencyReport) error {
	query := `INSERT INTO delinquency_reports (
		development_id,
		month,
		source,
		up_to_30_value,
		days_31_to_60_value,
		days_61_to_90_value,
		days_91_to_180_value,
		over_180_value,
		up_to_30_count,
		days_31_to_60_count,
		days_61_to_90_count,
		days_91_to_180_count,
		over_180_count,
		total,
		inserted_at,
		updated_at
	) VALUES (
		:development_id,
		:month,
		:source,
		:up_to_30_value,
		:days_31_to_60_value,
		:days_61_to_90_value,
		:days_91_to_180_value,
		:over_180_value,
		:up_to_30_count,
		:days_31_to_60_count,
		:days_61_to_90_count,
		:days_91_to_180_count,
		:over_180_count,
		:total,
		:inserted_at,
		:updated_at
	)
		ON CONFLICT (development_id, month, source) DO UPDATE SET
		up_to_30_value = EXCLUDED.up_to_30_value,
		days_31_to_60_value = EXCLUDED.days_31_to_60_value,
		days_61_to_90_value = EXCLUDED.days_61_to_90_value,
		days_91_to_180_value = EXCLUDED.days_91_to_180_value,
		over_180_value = EXCLUDED.over_180_value,
		up_to_30_count = EXCLUDED.up_to_30_count,
		days_31_to_60_count = EXCLUDED.days_31_to_60_count,
		days_61_to_90_count = EXCLUDED.days_61_to_90_count,
		days_91_to_180_count = EXCLUDED.days_91_to_180_count,
		over_180_count = EXCLUDED.over_180_count,
		total = EXCLUDED.total,
		updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if report.InsertedAt.IsZero() {
		report.InsertedAt = now
	}
	report.UpdatedAt = now

	_, err := ds.db.NamedExecContext(ctx, query, report)
	return err
}

func (ds *DelinquencyStore) Get(ctx context.Context, developmentID int64, month string) (*DelinquencyReport, error) {
	query := `SELECT id, development_id, month, source, up_to_30_value, days_31_to_60_value,
		days_61_to_90_value, days_91_to_180_value, over_180_value, up_to_30_count,
		days_31_to_60_count, days_61_to_90_count, days_91_to_180_count, over_180_count,
		total, inserted_at, updated_at
		FROM delinquency_reports
		WHERE development_id = $1 AND month = $2`

	var report DelinquencyReport
	err := ds.db.GetContext(ctx, &report, query, developmentID, month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}
