package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// Ledger is the idempotency ledger: a content hash per (source, execution
// date, logical entity) that makes repeated ingestion of unchanged upstream
// data a business-level no-op. Hash collisions are an accepted risk.
type Ledger struct {
	storage *store.Storage
	log     *logger.Logger
}

func NewLedger(storage *store.Storage, log *logger.Logger) *Ledger {
	return &Ledger{storage: storage, log: log}
}

// Hash computes the canonical content hash of a payload. Serialization is
// stable: encoding/json emits map keys in sorted order and struct fields in
// declaration order, so equal payloads always hash equal.
func Hash(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalizing payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// AlreadyProcessed reports whether this exact payload was already ingested
// for the source on the execution date.
func (l *Ledger) AlreadyProcessed(ctx context.Context, source string, execDate time.Time, payloadHash string) (bool, error) {
	return l.storage.IngestionRecords.Exists(ctx, source, execDate, payloadHash)
}

// Record marks the payload as processed. Recording the same payload twice
// is a no-op at the storage level (conflict on the unique hash key).
func (l *Ledger) Record(ctx context.Context, source string, execDate time.Time, entityKey, payloadHash string) error {
	record := &store.IngestionRecord{
		Source:      source,
		ExecDate:    execDate,
		EntityKey:   entityKey,
		PayloadHash: payloadHash,
	}
	if err := l.storage.IngestionRecords.Insert(ctx, record); err != nil {
		return fmt.Errorf("recording ingestion of %s: %w", entityKey, err)
	}
	return nil
}
