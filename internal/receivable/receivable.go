// Package receivable holds the canonical in-memory representation of the
// cash-flow records fetched from the upstream ERPs. Nothing here is ever
// persisted: installments and invoices are materialized per development
// during a sync, aggregated, and discarded.
package receivable

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical installment statuses after source mapping.
const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusInactive = "inactive"
)

// Canonical origin types. Only direct sales and amortization-table
// installments count toward present value and the main cash-in categories;
// everything else lands in the catch-all category.
const (
	OriginDirectSale        = "direct_sale"
	OriginAmortizationTable = "amortization_table"
	OriginRenegotiation     = "renegotiation"
	OriginOther             = "other"
)

// Canonical settlement statuses.
const (
	SettlementOpen    = "open"
	SettlementPaid    = "paid"
	SettlementSettled = "settled"
)

// Installment kinds. Term derivation only counts regular installments so a
// lone down payment never becomes the basis of a contract's term.
const (
	KindRegular     = "regular"
	KindDownPayment = "down_payment"
	KindBalloon     = "balloon"
	KindOther       = "other"
)

// Installment is one unit of receivable cash flow belonging to a contract.
type Installment struct {
	ContractKey      string
	DueDate          time.Time
	PaymentDate      *time.Time
	OriginalValue    decimal.Decimal
	PaidValue        decimal.Decimal
	Balance          decimal.Decimal
	OriginType       string
	Status           string
	SettlementStatus string
	Kind             string
	Sequence         int
	SequenceTotal    int
}

// Paid reports whether the installment has been settled.
func (i Installment) Paid() bool {
	return i.SettlementStatus == SettlementPaid || i.SettlementStatus == SettlementSettled
}

// QualifyingOrigin reports whether the origin type counts toward canonical
// metrics (present value, current/early/recovered categories).
func (i Installment) QualifyingOrigin() bool {
	return i.OriginType == OriginDirectSale || i.OriginType == OriginAmortizationTable
}

// Invoice is one expense document fetched from upstream. Invoices are not
// natively scoped to a development; CounterpartyCode is matched against
// active contract customers to attribute them.
type Invoice struct {
	DocumentType     string
	CounterpartyCode string
	BranchID         int64
	DueDate          time.Time
	PaymentDate      *time.Time
	Amount           decimal.Decimal
	Outstanding      decimal.Decimal
	Paid             bool
}

// MonthOf formats a time as the canonical "YYYY-MM" aggregate key.
func MonthOf(t time.Time) string {
	return t.Format("2006-01")
}

// SameMonth reports whether two dates fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthsBetween returns every "YYYY-MM" key from the month of from through
// the month of to, inclusive. Returns nil when to precedes from.
func MonthsBetween(from, to time.Time) []string {
	if to.Before(from) && !SameMonth(from, to) {
		return nil
	}
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	var months []string
	for !cur.After(end) {
		months = append(months, cur.Format("2006-01"))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// EndOfMonth returns the last day of the month named by a "YYYY-MM" key.
func EndOfMonth(month string) (time.Time, error) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, err
	}
	return first.AddDate(0, 1, -1), nil
}
