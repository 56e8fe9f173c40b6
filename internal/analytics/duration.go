package analytics

import (
	"math"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
)

// MacaulayDuration returns the value-weighted average time in years until
// the discounted outstanding cash flows are received:
//
//	Σ(t_i · PV_i) / Σ(PV_i), PV_i = balance_i / (1+r)^t_i
//
// Installments due sooner than MinLeadDays from the reference date, and
// installments with a non-positive balance, are excluded. Returns 0 when no
// cash flow qualifies.
func (e Engine) MacaulayDuration(installments []receivable.Installment, ref time.Time) float64 {
	threshold := ref.AddDate(0, 0, e.MinLeadDays)

	var sumPV, sumWeighted float64
	for _, inst := range installments {
		if inst.Status != receivable.StatusActive || !inst.QualifyingOrigin() || inst.Paid() {
			continue
		}
		if !inst.Balance.IsPositive() {
			continue
		}
		if inst.DueDate.Before(threshold) {
			continue
		}

		t := inst.DueDate.Sub(ref).Hours() / 24 / daysPerYear
		pv := inst.Balance.InexactFloat64() / math.Pow(1+e.AnnualDiscountRate, t)

		sumPV += pv
		sumWeighted += t * pv
	}

	if sumPV == 0 {
		return 0
	}
	return sumWeighted / sumPV
}
