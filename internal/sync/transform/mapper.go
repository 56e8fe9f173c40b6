// Package transform maps source-specific raw records into canonical
// entities and classifies cash flows into forecast/actual categories.
package transform

import (
	"errors"
	"fmt"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/gateway"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// ErrMalformedRecord marks a record missing a required date or amount. The
// caller skips and counts it; it never aborts a batch.
var ErrMalformedRecord = errors.New("malformed upstream record")

// RawRecordMapper turns one source's raw records into canonical structs.
// All field-name guessing and value normalization is confined here.
type RawRecordMapper interface {
	Source() string
	MapDevelopment(rec gateway.RawRecord) (store.Development, error)
	MapContract(rec gateway.RawRecord) (store.Contract, error)
	MapInstallment(rec gateway.RawRecord) (receivable.Installment, error)
	MapInvoice(rec gateway.RawRecord) (receivable.Invoice, error)
}

// MapperFor returns the adapter for a source name.
func MapperFor(source string) (RawRecordMapper, error) {
	switch source {
	case gateway.SourceUAU:
		return UAUMapper{}, nil
	case gateway.SourceSienge:
		return SiengeMapper{}, nil
	default:
		return nil, fmt.Errorf("no record mapper for source %q", source)
	}
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing or invalid %s", ErrMalformedRecord, field)
}
