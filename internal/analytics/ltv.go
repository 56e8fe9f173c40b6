package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// LTV returns the present value as a percentage of the total contracted
// sales value of active contracts, preferring the inflation-adjusted value
// when one was computed. Returns 0 when the denominator is 0.
func (e Engine) LTV(presentValue decimal.Decimal, contracts []store.Contract) float64 {
	denominator := decimal.Zero
	for _, c := range contracts {
		if c.Status != store.ContractStatusActive {
			continue
		}
		if c.InflationAdjustedValue.Valid {
			denominator = denominator.Add(c.InflationAdjustedValue.Decimal)
		} else {
			denominator = denominator.Add(c.SignedValue)
		}
	}

	if !denominator.IsPositive() {
		return 0
	}
	ratio, _ := presentValue.Div(denominator).Mul(decimal.NewFromInt(100)).Round(4).Float64()
	return ratio
}
