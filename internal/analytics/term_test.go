package analytics

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

func TestWeightedAverageTerm_ValueWeighted(t *testing.T) {
	e := NewEngine(0.10)

	contracts := []store.Contract{
		{Status: store.ContractStatusActive, CodContract: "A", SignedValue: decimal.NewFromInt(100000), TermMonths: 120},
		{Status: store.ContractStatusActive, CodContract: "B", SignedValue: decimal.NewFromInt(50000), TermMonths: 60},
		{Status: "canceled", CodContract: "C", SignedValue: decimal.NewFromInt(900000), TermMonths: 240},
	}

	got := e.WeightedAverageTerm(contracts, nil)
	// (120*100000 + 60*50000) / 150000
	if got != 100.0 {
		t.Fatalf("weighted term=%f want=100.0", got)
	}
}

func TestWeightedAverageTerm_FallsBackToInstallmentPlan(t *testing.T) {
	e := NewEngine(0.10)

	contracts := []store.Contract{
		{Status: store.ContractStatusActive, CodContract: "A", SignedValue: decimal.NewFromInt(100000)},
	}
	installments := map[string][]receivable.Installment{
		"A": {
			{Kind: receivable.KindDownPayment, SequenceTotal: 1},
			{Kind: receivable.KindRegular, Sequence: 3, SequenceTotal: 24},
			{Kind: receivable.KindRegular, Sequence: 4, SequenceTotal: 24},
			{Kind: receivable.KindBalloon, SequenceTotal: 48},
		},
	}

	got := e.WeightedAverageTerm(contracts, installments)
	if got != 24.0 {
		t.Fatalf("weighted term=%f want=24.0, only regular installments define the plan", got)
	}
}

func TestWeightedAverageTerm_NoUsableContracts(t *testing.T) {
	e := NewEngine(0.10)

	contracts := []store.Contract{
		// No term and no installment plan.
		{Status: store.ContractStatusActive, CodContract: "A", SignedValue: decimal.NewFromInt(100000)},
		// Zero signed value cannot be weighted.
		{Status: store.ContractStatusActive, CodContract: "B", SignedValue: decimal.Zero, TermMonths: 60},
	}

	if got := e.WeightedAverageTerm(contracts, nil); got != 0 {
		t.Fatalf("weighted term=%f want=0", got)
	}
}
