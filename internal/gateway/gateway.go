// Package gateway defines the remote-data boundary toward the upstream ERP
// systems. Each source adapter turns its wire format into flat RawRecord
// maps; all field-name interpretation happens later, in the per-source
// mappers of the transform package.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Source names. These are also the values stored in the 'source' column of
// every persisted row.
const (
	SourceUAU    = "uau"
	SourceSienge = "sienge"
)

var (
	// ErrRateLimited signals an upstream 429; callers back off in ~30s
	// increments before retrying.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrServerError signals an upstream 5xx; callers retry with
	// exponential backoff.
	ErrServerError = errors.New("upstream server error")

	// ErrUnauthorized signals a failed or expired authentication. A single
	// re-login is attempted by the adapter; if it persists the whole run
	// aborts.
	ErrUnauthorized = errors.New("upstream authentication failed")
)

// RawRecord is one upstream record flattened to string fields. Numeric and
// boolean JSON values are stringified so CSV-born and JSON-born records look
// identical downstream.
type RawRecord map[string]string

// Gateway is implemented once per source. FetchContracts receives every
// development of interest at once so adapters with a bulk endpoint can
// retrieve the whole set in one sweep and partition locally instead of
// issuing one remote call per development.
type Gateway interface {
	Source() string
	FetchDevelopments(ctx context.Context) ([]RawRecord, error)
	FetchContracts(ctx context.Context, developmentExternalIDs []string) (map[string][]RawRecord, error)
	FetchInstallments(ctx context.Context, contractKey string) ([]RawRecord, error)
	FetchExpenseInvoices(ctx context.Context, from, to time.Time) ([]RawRecord, error)
}

// RecordsFromJSON decodes a JSON array of objects into flat RawRecords.
func RecordsFromJSON(body []byte) ([]RawRecord, error) {
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decoding upstream payload: %w", err)
	}

	records := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(RawRecord, len(row))
		for key, val := range row {
			rec[key] = stringify(val)
		}
		records = append(records, rec)
	}
	return records, nil
}

func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
