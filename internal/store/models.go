package store

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Development represents the 'developments' table. One row per real-estate
// project per source; the same physical project ingested from both ERPs
// yields two rows keyed by (external_id, source).
type Development struct {
	ID         int64     `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	Source     string    `db:"source" json:"source"`
	Name       string    `db:"name" json:"name"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	InsertedAt time.Time `db:"inserted_at" json:"inserted_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Contract represents the 'contracts' table. VariantKey disambiguates
// renegotiated or resold units that reuse the upstream contract code.
type Contract struct {
	ID                     int64               `db:"id" json:"id"`
	CodContract            string              `db:"cod_contract" json:"cod_contract"`
	VariantKey             string              `db:"variant_key" json:"variant_key"`
	Source                 string              `db:"source" json:"source"`
	DevelopmentID          int64               `db:"development_id" json:"development_id"`
	CustomerCode           string              `db:"customer_code" json:"customer_code"`
	Status                 string              `db:"status" json:"status"`
	SignedValue            decimal.Decimal     `db:"signed_value" json:"signed_value"`
	InflationAdjustedValue decimal.NullDecimal `db:"inflation_adjusted_value" json:"inflation_adjusted_value"`
	SigningDate            *time.Time          `db:"signing_date" json:"signing_date"`
	TermMonths             int                 `db:"term_months" json:"term_months"`
	InsertedAt             time.Time           `db:"inserted_at" json:"inserted_at"`
	UpdatedAt              time.Time           `db:"updated_at" json:"updated_at"`
}

// MonthlyCashIn represents the 'monthly_cash_in' table, the per-development
// inflow aggregate keyed by (development_id, month, category, source).
type MonthlyCashIn struct {
	ID            int64           `db:"id" json:"id"`
	DevelopmentID int64           `db:"development_id" json:"development_id"`
	Month         string          `db:"month" json:"month"`
	Category      string          `db:"category" json:"category"`
	Source        string          `db:"source" json:"source"`
	Forecast      decimal.Decimal `db:"forecast" json:"forecast"`
	Actual        decimal.Decimal `db:"actual" json:"actual"`
	InsertedAt    time.Time       `db:"inserted_at" json:"inserted_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// MonthlyCashOut represents the 'monthly_cash_out' table. Outflows are
// aggregated per company branch, not per development, because upstream
// expense invoices are emitted at branch level.
type MonthlyCashOut struct {
	ID         int64           `db:"id" json:"id"`
	BranchID   int64           `db:"branch_id" json:"branch_id"`
	Month      string          `db:"month" json:"month"`
	Category   string          `db:"category" json:"category"`
	Source     string          `db:"source" json:"source"`
	Budget     decimal.Decimal `db:"budget" json:"budget"`
	Actual     decimal.Decimal `db:"actual" json:"actual"`
	InsertedAt time.Time       `db:"inserted_at" json:"inserted_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// PortfolioSnapshot represents the 'portfolio_snapshots' table.
type PortfolioSnapshot struct {
	ID                 int64           `db:"id" json:"id"`
	DevelopmentID      int64           `db:"development_id" json:"development_id"`
	Month              string          `db:"month" json:"month"`
	Source             string          `db:"source" json:"source"`
	PresentValue       decimal.Decimal `db:"present_value" json:"present_value"`
	LTVPercent         float64         `db:"ltv_percent" json:"ltv_percent"`
	WeightedTermMonths float64         `db:"weighted_term_months" json:"weighted_term_months"`
	DurationYears      float64         `db:"duration_years" json:"duration_years"`
	TotalContracts     int             `db:"total_contracts" json:"total_contracts"`
	ActiveContracts    int             `db:"active_contracts" json:"active_contracts"`
	InsertedAt         time.Time       `db:"inserted_at" json:"inserted_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// DelinquencyReport represents the 'delinquency_reports' table. Buckets only
// hold amounts overdue beyond the bank-clearing grace period; Total is always
// the sum of the five bucket values.
type DelinquencyReport struct {
	ID               int64           `db:"id" json:"id"`
	DevelopmentID    int64           `db:"development_id" json:"development_id"`
	Month            string          `db:"month" json:"month"`
	Source           string          `db:"source" json:"source"`
	UpTo30Value      decimal.Decimal `db:"up_to_30_value" json:"up_to_30_value"`
	Days31To60Value  decimal.Decimal `db:"days_31_to_60_value" json:"days_31_to_60_value"`
	Days61To90Value  decimal.Decimal `db:"days_61_to_90_value" json:"days_61_to_90_value"`
	Days91To180Value decimal.Decimal `db:"days_91_to_180_value" json:"days_91_to_180_value"`
	Over180Value     decimal.Decimal `db:"over_180_value" json:"over_180_value"`
	UpTo30Count      int             `db:"up_to_30_count" json:"up_to_30_count"`
	Days31To60Count  int             `db:"days_31_to_60_count" json:"days_31_to_60_count"`
	Days61To90Count  int             `db:"days_61_to_90_count" json:"days_61_to_90_count"`
	Days91To180Count int             `db:"days_91_to_180_count" json:"days_91_to_180_count"`
	Over180Count     int             `db:"over_180_count" json:"over_180_count"`
	Total            decimal.Decimal `db:"total" json:"total"`
	InsertedAt       time.Time       `db:"inserted_at" json:"inserted_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// IngestionRecord represents the 'ingestion_records' table, the idempotency
// ledger. Unique on (source, exec_date, payload_hash).
type IngestionRecord struct {
	ID          int64     `db:"id"`
	Source      string    `db:"source"`
	ExecDate    time.Time `db:"exec_date"`
	EntityKey   string    `db:"entity_key"`
	PayloadHash string    `db:"payload_hash"`
	ProcessedAt time.Time `db:"processed_at"`
}

// SyncRun represents the 'sync_runs' table.
type SyncRun struct {
	ID          int64          `db:"id" json:"id"`
	Source      string         `db:"source" json:"source"`
	Status      string         `db:"status" json:"status"`
	TriggeredBy string         `db:"triggered_by" json:"triggered_by"`
	StartedAt   time.Time      `db:"started_at" json:"started_at"`
	FinishedAt  *time.Time     `db:"finished_at" json:"finished_at"`
	Metrics     types.JSONText `db:"metrics" json:"metrics"`
}

// SyncCheckpoint represents the 'sync_checkpoints' table, one row per
// development holding the last successful financial sync timestamp.
type SyncCheckpoint struct {
	DevelopmentID       int64     `db:"development_id"`
	LastFinancialSyncAt time.Time `db:"last_financial_sync_at"`
}

// InflationIndex represents the 'inflation_indexes' table: one monthly
// compounding factor per "YYYY-MM" month (e.g. 1.0042 for 0.42%).
type InflationIndex struct {
	Month  string          `db:"month"`
	Factor decimal.Decimal `db:"factor"`
}

var (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

var (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
)

// ContractStatusActive is the only status that counts toward canonical
// metrics and toward a development's is_active flag.
var ContractStatusActive = "active"
