// Package analytics derives portfolio-risk metrics from the canonical
// receivable records: present value, weighted term, Macaulay duration,
// loan-to-value and delinquency aging.
package analytics

// Engine evaluates portfolio metrics under a fixed parameter set. All
// methods are pure; the engine carries no connections and is safe to share.
type Engine struct {
	// AnnualDiscountRate is the rate used to discount future cash flows,
	// e.g. 0.12 for 12% a year.
	AnnualDiscountRate float64

	// GraceDays is the bank-clearing window: a payment this many days late
	// is not delinquent.
	GraceDays int

	// MaxOverdueDays rejects aging beyond this as a data-quality anomaly
	// rather than a late payment.
	MaxOverdueDays int

	// MinLeadDays excludes installments due sooner than this from the
	// duration computation.
	MinLeadDays int
}

// NewEngine returns an engine with the production defaults.
func NewEngine(annualDiscountRate float64) Engine {
	return Engine{
		AnnualDiscountRate: annualDiscountRate,
		GraceDays:          3,
		MaxOverdueDays:     3650,
		MinLeadDays:        30,
	}
}

const daysPerYear = 365.25
