package calendar

import (
	"fmt"
	"strings"
)

// PeriodSeparator joins the two ends of a displayed or legacy period string.
const PeriodSeparator = "～"

// Overlaps tests two closed intervals. Touching endpoints overlap.
func Overlaps(startA, endA, startB, endB Date) bool {
	return !startA.After(endB) && !endA.Before(startB)
}

// FormatPeriod renders "start ～ end".
func FormatPeriod(start, end string) string {
	return fmt.Sprintf("%s %s %s", start, PeriodSeparator, end)
}

// SplitPeriod breaks a legacy "start ～ end" string into its trimmed halves.
// Text without the separator yields two empty strings.
func SplitPeriod(period string) (start, end string) {
	if !strings.Contains(period, PeriodSeparator) {
		return "", ""
	}
	parts := strings.Split(period, PeriodSeparator)
	start = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		end = strings.TrimSpace(parts[1])
	}
	return start, end
}
