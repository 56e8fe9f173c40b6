package transform

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestCashInEntries_UnpaidInstallment(t *testing.T) {
	inst := receivable.Installment{
		Status:        receivable.StatusActive,
		OriginType:    receivable.OriginDirectSale,
		DueDate:       date(2025, 3, 10),
		OriginalValue: decimal.NewFromInt(1000),
	}

	entries := CashInEntries(inst)
	if len(entries) != 1 {
		t.Fatalf("entries=%d want=1", len(entries))
	}
	if entries[0].Month != "2025-03" || entries[0].Category != CategoryCurrent {
		t.Fatalf("forecast entry=%+v want month=2025-03 category=current", entries[0])
	}
	if entries[0].Forecast.Cmp(decimal.NewFromInt(1000)) != 0 {
		t.Fatalf("forecast=%s want=1000", entries[0].Forecast)
	}
	if !entries[0].Actual.IsZero() {
		t.Fatalf("actual=%s want=0 for an unpaid installment", entries[0].Actual)
	}
}

func TestCashInEntries_SameMonthEarlyPaymentIsCurrent(t *testing.T) {
	// Paid one day before due, but in the same calendar month: ordinary
	// collection, not anticipation.
	inst := receivable.Installment{
		Status:           receivable.StatusActive,
		OriginType:       receivable.OriginDirectSale,
		SettlementStatus: receivable.SettlementPaid,
		DueDate:          date(2025, 1, 10),
		PaymentDate:      datePtr(2025, 1, 9),
		OriginalValue:    decimal.NewFromInt(1000),
		PaidValue:        decimal.NewFromInt(1000),
	}

	entries := CashInEntries(inst)
	if len(entries) != 2 {
		t.Fatalf("entries=%d want=2", len(entries))
	}
	if entries[1].Month != "2025-01" || entries[1].Category != CategoryCurrent {
		t.Fatalf("actual entry=%+v want month=2025-01 category=current", entries[1])
	}
}

func TestCashInEntries_EarlyPayment(t *testing.T) {
	inst := receivable.Installment{
		Status:           receivable.StatusActive,
		OriginType:       receivable.OriginAmortizationTable,
		SettlementStatus: receivable.SettlementPaid,
		DueDate:          date(2025, 2, 10),
		PaymentDate:      datePtr(2025, 1, 30),
		OriginalValue:    decimal.NewFromInt(1000),
		PaidValue:        decimal.NewFromFloat(980.50),
	}

	entries := CashInEntries(inst)
	if len(entries) != 2 {
		t.Fatalf("entries=%d want=2", len(entries))
	}
	// Forecast stays in the due month.
	if entries[0].Month != "2025-02" || entries[0].Category != CategoryCurrent {
		t.Fatalf("forecast entry=%+v want month=2025-02 category=current", entries[0])
	}
	// Actual lands in the payment month as anticipation.
	if entries[1].Month != "2025-01" || entries[1].Category != CategoryEarlyPayment {
		t.Fatalf("actual entry=%+v want month=2025-01 category=early_payment", entries[1])
	}
	if entries[1].Actual.Cmp(decimal.NewFromFloat(980.50)) != 0 {
		t.Fatalf("actual=%s want=980.50", entries[1].Actual)
	}
}

func TestCashInEntries_RecoveredPayment(t *testing.T) {
	inst := receivable.Installment{
		Status:           receivable.StatusActive,
		OriginType:       receivable.OriginDirectSale,
		SettlementStatus: receivable.SettlementSettled,
		DueDate:          date(2025, 1, 10),
		PaymentDate:      datePtr(2025, 4, 2),
		OriginalValue:    decimal.NewFromInt(1000),
		PaidValue:        decimal.NewFromInt(1050),
	}

	entries := CashInEntries(inst)
	if len(entries) != 2 {
		t.Fatalf("entries=%d want=2", len(entries))
	}
	if entries[1].Month != "2025-04" || entries[1].Category != CategoryRecovered {
		t.Fatalf("actual entry=%+v want month=2025-04 category=recovered", entries[1])
	}
}

func TestCashInEntries_NonQualifyingOrigin(t *testing.T) {
	inst := receivable.Installment{
		Status:           receivable.StatusActive,
		OriginType:       receivable.OriginRenegotiation,
		SettlementStatus: receivable.SettlementPaid,
		DueDate:          date(2025, 1, 10),
		PaymentDate:      datePtr(2025, 3, 1),
		OriginalValue:    decimal.NewFromInt(1000),
		PaidValue:        decimal.NewFromInt(1000),
	}

	entries := CashInEntries(inst)
	if len(entries) != 2 {
		t.Fatalf("entries=%d want=2", len(entries))
	}
	if entries[0].Category != CategoryOther || entries[1].Category != CategoryOther {
		t.Fatalf("categories=%s/%s want other/other", entries[0].Category, entries[1].Category)
	}
}

func TestCashInEntries_InactiveInstallmentContributesNothing(t *testing.T) {
	for _, status := range []string{receivable.StatusCanceled, receivable.StatusInactive} {
		inst := receivable.Installment{
			Status:        status,
			OriginType:    receivable.OriginDirectSale,
			DueDate:       date(2025, 1, 10),
			OriginalValue: decimal.NewFromInt(1000),
		}
		if entries := CashInEntries(inst); entries != nil {
			t.Fatalf("status=%s entries=%v want=nil", status, entries)
		}
	}
}

func TestCashInEntries_PaymentDateWithoutSettlement(t *testing.T) {
	// A payment date alone is not enough; the settlement status decides.
	inst := receivable.Installment{
		Status:           receivable.StatusActive,
		OriginType:       receivable.OriginDirectSale,
		SettlementStatus: receivable.SettlementOpen,
		DueDate:          date(2025, 1, 10),
		PaymentDate:      datePtr(2025, 1, 8),
		OriginalValue:    decimal.NewFromInt(1000),
	}

	entries := CashInEntries(inst)
	if len(entries) != 1 {
		t.Fatalf("entries=%d want=1, open installment must not produce an actual", len(entries))
	}
}
