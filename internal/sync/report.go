package sync

import (
	"encoding/json"
	"time"
)

// DevelopmentError is one isolated per-development failure collected during
// a run.
type DevelopmentError struct {
	DevelopmentID int64  `json:"development_id"`
	ExternalID    string `json:"external_id"`
	Stage         string `json:"stage"`
	Err           string `json:"error"`
}

// RunReport is the outcome of one orchestrator run. Partial success is
// expressed through the counters and error list, never as a raised error.
type RunReport struct {
	RunID       int64     `json:"run_id"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	TriggeredBy string    `json:"triggered_by"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	DevelopmentsTotal   int `json:"developments_total"`
	DevelopmentsSynced  int `json:"developments_synced"`
	DevelopmentsSkipped int `json:"developments_skipped"`
	DevelopmentsNoOp    int `json:"developments_unchanged"`
	DevelopmentsFailed  int `json:"developments_failed"`

	ContractsUpserted int        `json:"contracts_upserted"`
	InvoicesMatched   int        `json:"invoices_matched"`
	RecordsSkipped    int        `json:"records_skipped"`
	Installments      FetchStats `json:"installment_fetch"`

	Errors []DevelopmentError `json:"errors,omitempty"`
}

func (r *RunReport) fail(developmentID int64, externalID, stage string, err error) {
	r.DevelopmentsFailed++
	r.Errors = append(r.Errors, DevelopmentError{
		DevelopmentID: developmentID,
		ExternalID:    externalID,
		Stage:         stage,
		Err:           err.Error(),
	})
}

func (r *RunReport) metricsJSON() []byte {
	raw, err := json.Marshal(r)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
