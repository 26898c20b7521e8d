package utils

import "time"

// ISODate is the date-only layout used everywhere warranty dates appear.
const ISODate = "2006-01-02"

// AddMonths adds n calendar months. Day-of-month overflow follows Go's
// native normalization (Jan 31 + 1 month rolls into early March).
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// ToISODate truncates a timestamp to its YYYY-MM-DD portion. A nil input
// yields nil so absent dates stay absent.
func ToISODate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(ISODate)
	return &s
}

// ReminderDates subtracts each day-offset from base and drops results that
// are already in the past. Output preserves the input offset order; callers
// rely on that, so no sorting here.
func ReminderDates(base time.Time, offsetsDays []int) []time.Time {
	now := time.Now()
	out := make([]time.Time, 0, len(offsetsDays))
	for _, offset := range offsetsDays {
		target := base.AddDate(0, 0, -offset)
		if target.After(now) {
			out = append(out, target)
		}
	}
	return out
}
