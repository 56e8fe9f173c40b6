package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ContractStore struct {
	db *sqlx.DB
}

// ReplaceForDevelopment deletes every contract of the development and
// reinserts the freshly fetched set, so the local rows always mirror
// upstream exactly (renegotiated or removed contracts cannot linger).
func (cs *ContractStore) ReplaceForDevelopment(ctx context.Context, developmentID int64, source string, contracts []Contract) error {
	tx, err := cs.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM contracts WHERE development_id = $1 AND source = $2`,
		developmentID, source)
	if err != nil {
		return err
	}

	insert := `INSERT INTO contracts (
		cod_contract,
		variant_key,
		source,
		development_id,
		customer_code,
		status,
		signed_value,
		inflation_adjusted_value,
		signing_date,
		term_months,
		inserted_at,
		updated_at
	) VALUES (
		:cod_contract,
		:variant_key,
		:source,
		:development_id,
		:customer_code,
		:status,
		:signed_value,
		:inflation_adjusted_value,
		:signing_date,
		:term_months,
		:inserted_at,
		:updated_at
	)`

	now := time.Now()
	for i := range contracts {
		contracts[i].DevelopmentID = developmentID
		contracts[i].Source = source
		contracts[i].InsertedAt = now
		contracts[i].UpdatedAt = now

		if _, err := tx.NamedExecContext(ctx, insert, &contracts[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (cs *ContractStore) ListByDevelopment(ctx context.Context, developmentID int64) ([]Contract, error) {
	query := `SELECT id, cod_contract, variant_key, source, development_id, customer_code,
		status, signed_value, inflation_adjusted_value, signing_date, term_months,
		inserted_at, updated_at
		FROM contracts
		WHERE development_id = $1
		ORDER BY cod_contract, variant_key`

	var contracts []Contract
	if err := cs.db.SelectContext(ctx, &contracts, query, developmentID); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (cs *ContractStore) UpdateInflationAdjustedValue(ctx context.Context, id int64, value decimal.Decimal) error {
	query := `UPDATE contracts SET inflation_adjusted_value = $1, updated_at = $2 WHERE id = $3`

	_, err := cs.db.ExecContext(ctx, query, value, time.Now(), id)
	return err
}
