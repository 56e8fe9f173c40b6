package store

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by lookups for rows that do not exist. It is an
// expected condition, distinct from storage failures.
var ErrNotFound = errors.New("record not found")

type Storage struct {
	Developments interface {
		Upsert(ctx context.Context, dev *Development) error
		GetByExternalID(ctx context.Context, source, externalID string) (*Development, error)
		List(ctx context.Context, source string) ([]Development, error)
		SetActive(ctx context.Context, id int64, active bool) error
	}

	Contracts interface {
		ReplaceForDevelopment(ctx context.Context, developmentID int64, source string, contracts []Contract) error
		ListByDevelopment(ctx context.Context, developmentID int64) ([]Contract, error)
		UpdateInflationAdjustedValue(ctx context.Context, id int64, value decimal.Decimal) error
	}

	CashIn interface {
		Upsert(ctx context.Context, row *MonthlyCashIn) error
		DeleteMonths(ctx context.Context, developmentID int64, source string, months []string) error
		ListForDevelopment(ctx context.Context, developmentID int64, fromMonth, toMonth string) ([]MonthlyCashIn, error)
	}

	CashOut interface {
		Upsert(ctx context.Context, row *MonthlyCashOut) error
		DeleteMonths(ctx context.Context, branchID int64, source string, months []string) error
	}

	Snapshots interface {
		Upsert(ctx context.Context, snap *PortfolioSnapshot) error
		Get(ctx context.Context, developmentID int64, month string) (*PortfolioSnapshot, error)
	}

	Delinquency interface {
		Upsert(ctx context.Context, report *DelinquencyReport) error
		Get(ctx context.Context, developmentID int64, month string) (*DelinquencyReport, error)
	}

	IngestionRecords interface {
		Exists(ctx context.Context, source string, execDate time.Time, payloadHash string) (bool, error)
		Insert(ctx context.Context, record *IngestionRecord) error
	}

	SyncRuns interface {
		Insert(ctx context.Context, run *SyncRun) error
		Finish(ctx context.Context, id int64, status string, metrics []byte) error
		GetLatest(ctx context.Context, limit int) ([]SyncRun, error)
		GetByID(ctx context.Context, id int64) (*SyncRun, error)
	}

	Checkpoints interface {
		Get(ctx context.Context, developmentID int64) (*SyncCheckpoint, error)
		Set(ctx context.Context, developmentID int64, at time.Time) error
	}

	InflationIndexes interface {
		GetRange(ctx context.Context, fromMonth, toMonth string) ([]InflationIndex, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Developments:     &DevelopmentStore{db: db},
		Contracts:        &ContractStore{db: db},
		CashIn:           &CashInStore{db: db},
		CashOut:          &CashOutStore{db: db},
		Snapshots:        &SnapshotStore{db: db},
		Delinquency:      &DelinquencyStore{db: db},
		IngestionRecords: &IngestionRecordStore{db: db},
		SyncRuns:         &SyncRunStore{db: db},
		Checkpoints:      &CheckpointStore{db: db},
		InflationIndexes: &InflationIndexStore{db: db},
	}
}
