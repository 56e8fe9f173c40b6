package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// WeightedAverageTerm returns the signed-value-weighted mean term in months
// across active contracts. Contracts without an explicit term fall back to
// the installment plan: the largest "sequence/total" denominator among
// regular installments, so a lone down payment never defines the term.
func (e Engine) WeightedAverageTerm(contracts []store.Contract, installmentsByContract map[string][]receivable.Installment) float64 {
	var terms, weights []float64

	for _, c := range contracts {
		if c.Status != store.ContractStatusActive {
			continue
		}

		term := c.TermMonths
		if term == 0 {
			term = termFromInstallments(installmentsByContract[c.CodContract])
		}
		if term == 0 {
			continue
		}

		weight := c.SignedValue.InexactFloat64()
		if weight <= 0 {
			continue
		}

		terms = append(terms, float64(term))
		weights = append(weights, weight)
	}

	if len(terms) == 0 {
		return 0
	}
	return stat.Mean(terms, weights)
}

func termFromInstallments(installments []receivable.Installment) int {
	max := 0
	for _, inst := range installments {
		if inst.Kind != receivable.KindRegular {
			continue
		}
		if inst.SequenceTotal > max {
			max = inst.SequenceTotal
		}
	}
	return max
}
