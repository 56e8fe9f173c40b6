package transform

import (
	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
)

// Cash-flow categories. "current" is the default bucket for qualifying
// origins; early payments and late recoveries are split out on the actual
// side; everything non-qualifying lands in "other".
const (
	CategoryCurrent      = "current"
	CategoryEarlyPayment = "early_payment"
	CategoryRecovered    = "recovered"
	CategoryOther        = "other"
)

// CashFlow is one aggregate contribution: an amount destined for the
// (month, category) cell of either the forecast or the actual column.
type CashFlow struct {
	Month    string
	Category string
	Forecast decimal.Decimal
	Actual   decimal.Decimal
}

// CashInEntries classifies one installment. A single installment can yield
// both a forecast entry (keyed by due month) and an actual entry (keyed by
// payment month); the two accumulate independently and may land in
// different months.
func CashInEntries(inst receivable.Installment) []CashFlow {
	if inst.Status != receivable.StatusActive {
		return nil
	}

	entries := make([]CashFlow, 0, 2)

	forecastCategory := CategoryCurrent
	if !inst.QualifyingOrigin() {
		forecastCategory = CategoryOther
	}
	entries = append(entries, CashFlow{
		Month:    receivable.MonthOf(inst.DueDate),
		Category: forecastCategory,
		Forecast: inst.OriginalValue,
	})

	if inst.PaymentDate != nil && inst.Paid() {
		entries = append(entries, CashFlow{
			Month:    receivable.MonthOf(*inst.PaymentDate),
			Category: actualCategory(inst),
			Actual:   inst.PaidValue,
		})
	}
	return entries
}

// actualCategory compares payment timing against the due month: earlier
// months mean anticipation, later months mean recovery of an overdue
// installment, the same month is ordinary collection.
func actualCategory(inst receivable.Installment) string {
	if !inst.QualifyingOrigin() {
		return CategoryOther
	}

	payment := *inst.PaymentDate
	payYM := payment.Year()*12 + int(payment.Month())
	dueYM := inst.DueDate.Year()*12 + int(inst.DueDate.Month())

	switch {
	case payYM < dueYM:
		return CategoryEarlyPayment
	case payYM > dueYM:
		return CategoryRecovered
	default:
		return CategoryCurrent
	}
}
