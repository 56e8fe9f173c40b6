package transform

import (
	"strings"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
)

// CashOutEntry is one outflow contribution, keyed by branch rather than
// development because expense invoices are emitted at branch level.
type CashOutEntry struct {
	BranchID int64
	CashFlow
}

// CashOutEntries buckets one invoice by its upstream document type. The
// budget column always carries the full invoice amount for its due month;
// actual carries the already-paid portion (amount minus outstanding). When
// upstream flags the invoice as paid, the paid flag wins over the balance
// column, which lags on both ERPs after settlement.
// Callers must pre-filter invoices to counterparties with an active contract
// of the target development.
func CashOutEntries(inv receivable.Invoice) []CashOutEntry {
	category := strings.TrimSpace(strings.ToLower(inv.DocumentType))
	if category == "" {
		category = CategoryOther
	}

	actual := inv.Amount.Sub(inv.Outstanding)
	if inv.Paid {
		actual = inv.Amount
	}

	entry := CashOutEntry{
		BranchID: inv.BranchID,
		CashFlow: CashFlow{
			Month:    receivable.MonthOf(inv.DueDate),
			Category: category,
			Forecast: inv.Amount,
			Actual:   actual,
		},
	}
	return []CashOutEntry{entry}
}
