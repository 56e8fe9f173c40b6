package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// PresentValue sums the outstanding balance of every active, qualifying,
// unpaid installment.
func (e Engine) PresentValue(installments []receivable.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range installments {
		if !countsTowardPV(inst) {
			continue
		}
		total = total.Add(inst.Balance)
	}
	return total
}

// DiscountedPresentValue is the discounted variant: each qualifying balance
// is brought back from its due date to the reference date at the engine's
// annual rate. The result is rounded to cents.
func (e Engine) DiscountedPresentValue(installments []receivable.Installment, ref time.Time) decimal.Decimal {
	var total float64
	for _, inst := range installments {
		if !countsTowardPV(inst) {
			continue
		}
		years := inst.DueDate.Sub(ref).Hours() / 24 / daysPerYear
		if years <= 0 {
			total += inst.Balance.InexactFloat64()
			continue
		}
		total += inst.Balance.InexactFloat64() / math.Pow(1+e.AnnualDiscountRate, years)
	}
	return decimal.NewFromFloat(total).Round(2)
}

// PresentValueFromContracts is the fallback when installment-level data is
// unavailable: the sum of the original values of active contracts.
func (e Engine) PresentValueFromContracts(contracts []store.Contract) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contracts {
		if c.Status != store.ContractStatusActive {
			continue
		}
		total = total.Add(c.SignedValue)
	}
	return total
}

func countsTowardPV(inst receivable.Installment) bool {
	return inst.Status == receivable.StatusActive &&
		inst.QualifyingOrigin() &&
		!inst.Paid() &&
		inst.Balance.IsPositive()
}
