package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type CashInStore struct {
	db *sqlx.DB
}

func (cs *CashInStore) Upsert(ctx context.Context, row *MonthlyCashIn) error {
	query := `INSERT INTO monthly_cash_in (
		development_id,
		month,
		category,
		source,
		forecast,
		actual,
		inserted_at,
		updated_at
	) VALUES (
		:development_id,
		:month,
		:category,
		:source,
		:forecast,
		:actual,
		:inserted_at,
		:updated_at
	)
		ON CONFLICT (development_id, month, category, source) DO UPDATE SET
		forecast = EXCLUDED.forecast,
		actual = EXCLUDED.actual,
		updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if row.InsertedAt.IsZero() {
		row.InsertedAt = now
	}
	row.UpdatedAt = now

	_, err := cs.db.NamedExecContext(ctx, query, row)
	return err
}

// DeleteMonths clears every category row of the given months so a sync pass
// can rewrite a window without leaving stale categories behind.
func (cs *CashInStore) DeleteMonths(ctx context.Context, developmentID int64, source string, months []string) error {
	if len(months) == 0 {
		return nil
	}
	query := `DELETE FROM monthly_cash_in
		WHERE development_id = $1 AND source = $2 AND month = ANY($3)`

	_, err := cs.db.ExecContext(ctx, query, developmentID, source, pq.Array(months))
	return err
}

func (cs *CashInStore) ListForDevelopment(ctx context.Context, developmentID int64, fromMonth, toMonth string) ([]MonthlyCashIn, error) {
	query := `SELECT id, development_id, month, category, source, forecast, actual, inserted_at, updated_at
		FROM monthly_cash_in
		WHERE development_id = $1 AND month >= $2 AND month <= $3
		ORDER BY month, category`

	var rows []MonthlyCashIn
	if err := cs.db.SelectContext(ctx, &rows, query, developmentID, fromMonth, toMonth); err != nil {
		return nil, err
	}
	return rows, nil
}

type CashOutStore struct {
	db *sqlx.DB
}

func (cs *CashOutStore) Upsert(ctx context.Context, row *MonthlyCashOut) error {
	query := `INSERT INTO monthly_cash_out (
		branch_id,
		month,
		category,
		source,
		budget,
		actual,
		inserted_at,
		updated_at
	) VALUES (
		:branch_id,
		:month,
		:category,
		:source,
		:budget,
		:actual,
		:inserted_at,
		:updated_at
	)
		ON CONFLICT (branch_id, month, category, source) DO UPDATE SET
		budget = EXCLUDED.budget,
		actual = EXCLUDED.actual,
		updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if row.InsertedAt.IsZero() {
		row.InsertedAt = now
	}
	row.UpdatedAt = now

	_, err := cs.db.NamedExecContext(ctx, query, row)
	return err
}

func (cs *CashOutStore) DeleteMonths(ctx context.Context, branchID int64, source string, months []string) error {
	if len(months) == 0 {
		return nil
	}
	query := `DELETE FROM monthly_cash_out
		WHERE branch_id = $1 AND source = $2 AND month = ANY($3)`

	_, err := cs.db.ExecContext(ctx, query, branchID, source, pq.Array(months))
	return err
}
