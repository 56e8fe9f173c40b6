package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/receivable"
	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/store"
)

// AgingItem is the minimal view of an installment or invoice the aging
// computation needs.
type AgingItem struct {
	DueDate     time.Time
	PaymentDate *time.Time
	Amount      decimal.Decimal
}

// Bucket accumulates overdue value and record count for one day range.
type Bucket struct {
	Value decimal.Decimal
	Count int
}

// AgingBook holds the five delinquency buckets.
type AgingBook struct {
	UpTo30      Bucket
	Days31To60  Bucket
	Days61To90  Bucket
	Days91To180 Bucket
	Over180     Bucket
}

// Total is always the sum of the five bucket values.
func (b AgingBook) Total() decimal.Decimal {
	return b.UpTo30.Value.
		Add(b.Days31To60.Value).
		Add(b.Days61To90.Value).
		Add(b.Days91To180.Value).
		Add(b.Over180.Value)
}

// Aging classifies every overdue item relative to the reference date. A
// reference date in the future is capped to now, so installments are never
// reported overdue before they are due. Items within the grace period are
// skipped; day counts beyond the sanity cap are rejected as data-quality
// anomalies, not late payments.
//
// A payment dated after the reference date still counts as delinquent at the
// reference date, using the reference-based day count. That is a documented
// business decision, not an accident: the report answers "what was overdue
// as of this date", and a later settlement does not rewrite that history.
func (e Engine) Aging(items []AgingItem, ref time.Time, now time.Time) AgingBook {
	if ref.After(now) {
		ref = now
	}

	book := AgingBook{}
	for _, item := range items {
		days, ok := e.daysOverdue(item, ref)
		if !ok {
			continue
		}
		bucket := book.bucketFor(days)
		bucket.Value = bucket.Value.Add(item.Amount)
		bucket.Count++
	}
	return book
}

func (e Engine) daysOverdue(item AgingItem, ref time.Time) (int, bool) {
	var days int
	switch {
	case item.PaymentDate == nil:
		days = daysBetween(item.DueDate, ref)
	case item.PaymentDate.After(ref):
		days = daysBetween(item.DueDate, ref)
	default:
		days = daysBetween(item.DueDate, *item.PaymentDate)
	}

	if days <= e.GraceDays {
		return 0, false
	}
	if days > e.MaxOverdueDays {
		return 0, false
	}
	return days, true
}

func (b *AgingBook) bucketFor(days int) *Bucket {
	switch {
	case days <= 30:
		return &b.UpTo30
	case days <= 60:
		return &b.Days31To60
	case days <= 90:
		return &b.Days61To90
	case days <= 180:
		return &b.Days91To180
	default:
		return &b.Over180
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Report flattens a book into the persisted row shape.
func (b AgingBook) Report(developmentID int64, month, source string) store.DelinquencyReport {
	return store.DelinquencyReport{
		DevelopmentID:    developmentID,
		Month:            month,
		Source:           source,
		UpTo30Value:      b.UpTo30.Value,
		Days31To60Value:  b.Days31To60.Value,
		Days61To90Value:  b.Days61To90.Value,
		Days91To180Value: b.Days91To180.Value,
		Over180Value:     b.Over180.Value,
		UpTo30Count:      b.UpTo30.Count,
		Days31To60Count:  b.Days31To60.Count,
		Days61To90Count:  b.Days61To90.Count,
		Days91To180Count: b.Days91To180.Count,
		Over180Count:     b.Over180.Count,
		Total:            b.Total(),
	}
}

// AgingItemsFromInstallments projects active, qualifying installments into
// aging items: unpaid installments carry their outstanding balance, paid
// ones the value actually paid.
func AgingItemsFromInstallments(installments []receivable.Installment) []AgingItem {
	items := make([]AgingItem, 0, len(installments))
	for _, inst := range installments {
		if inst.Status != receivable.StatusActive || !inst.QualifyingOrigin() {
			continue
		}
		amount := inst.Balance
		if inst.Paid() {
			amount = inst.PaidValue
		}
		items = append(items, AgingItem{
			DueDate:     inst.DueDate,
			PaymentDate: inst.PaymentDate,
			Amount:      amount,
		})
	}
	return items
}
