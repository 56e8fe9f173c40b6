package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ParseDate accepts the date spellings both ERPs emit. Returns the zero time
// when the value is empty or unparseable; required-field enforcement is the
// mapper's job.
func ParseDate(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseDecimal parses a monetary value in either plain ("1234.56") or pt-BR
// ("1.234,56") notation.
func ParseDecimal(valStr string) (decimal.Decimal, bool) {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return decimal.Zero, false
	}
	if strings.Contains(valStr, ",") {
		valStr = strings.ReplaceAll(valStr, ".", "")
		valStr = strings.ReplaceAll(valStr, ",", ".")
	}
	val, err := decimal.NewFromString(valStr)
	if err != nil {
		return decimal.Zero, false
	}
	return val, true
}

func ParseInt(valStr string) int {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return 0
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0
	}
	return val
}

func ParseInt64(valStr string) int64 {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return 0
	}
	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// ParseSequence splits an installment "sequence/total" field like "3/24".
// A bare number is treated as a sequence with unknown total.
func ParseSequence(valStr string) (seq, total int) {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return 0, 0
	}
	parts := strings.SplitN(valStr, "/", 2)
	seq = ParseInt(parts[0])
	if len(parts) == 2 {
		total = ParseInt(parts[1])
	}
	return seq, total
}

// pick returns the first non-empty value among the candidate field names.
// Every key-spelling fallback between ERP API versions lives here, inside
// the adapters, never downstream.
func pick(rec map[string]string, keys ...string) string {
	for _, key := range keys {
		if val, ok := rec[key]; ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
