package main

import "time"

func parseDateOrDefault(dateStr, defaultStr string) string {
	if dateStr == "" {
		return defaultStr
	}
	return dateStr
}

func parseTime(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// parseMonthOrNow validates a YYYY-MM query parameter, falling back to the
// current month when it is empty.
func parseMonthOrNow(month string) (string, bool) {
	if month == "" {
		return time.Now().UTC().Format("2006-01"), true
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return "", false
	}
	return month, true
}
