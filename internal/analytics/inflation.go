package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// AdjustedValue compounds the monthly inflation index over a contract's
// signed value, from the month after signing through the as-of month.
// Months without a published factor compound as 1. The result is rounded to
// cents. Callers only invoke this for active contracts with a signing date.
func AdjustedValue(signedValue decimal.Decimal, signingDate, asOf time.Time, indexes []store.InflationIndex) decimal.Decimal {
	firstAfterSigning := time.Date(signingDate.Year(), signingDate.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	fromMonth := receivable.MonthOf(firstAfterSigning)
	toMonth := receivable.MonthOf(asOf)
	if fromMonth > toMonth {
		return signedValue
	}

	factor := decimal.NewFromInt(1)
	for _, idx := range indexes {
		if idx.Month < fromMonth || idx.Month > toMonth {
			continue
		}
		if !idx.Factor.IsPositive() {
			continue
		}
		factor = factor.Mul(idx.Factor)
	}
	return signedValue.Mul(factor).Round(2)
}
