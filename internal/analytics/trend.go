package analytics

import "time"

// MonthLabelLayout formats a trend bucket label, for example "Jan 2025".
const MonthLabelLayout = "Jan 2006"

// calendarDate places the year, month and day of t at midnight in loc. Dates
// arrive from the store as calendar dates, so their wall-clock fields are
// authoritative regardless of the location they were parsed in.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfMonth returns midnight on the first day of now's month.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// StartOfWeek returns midnight on the Monday of now's week.
func StartOfWeek(now time.Time) time.Time {
	day := calendarDate(now, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// AppliedSince counts records whose application date falls on or after from.
// Records without an application date are skipped.
func AppliedSince(records []Record, from time.Time) int {
	count := 0
	for _, r := range records {
		if r.DateApplied.IsZero() {
			continue
		}
		if !calendarDate(r.DateApplied, from.Location()).Before(from) {
			count++
		}
	}
	return count
}

// MonthlyTrend returns TrendMonths buckets, oldest first, ending with now's
// month. Each bucket covers [first of month, first of next month).
func MonthlyTrend(records []Record, now time.Time) []MonthCount {
	loc := now.Location()
	current := StartOfMonth(now)

	trend := make([]MonthCount, 0, TrendMonths)
	for i := TrendMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		trend = append(trend, MonthCount{
			Label: start.Format(MonthLabelLayout),
			Start: start,
		})
	}

	for _, r := range records {
		if r.DateApplied.IsZero() {
			continue
		}
		applied := calendarDate(r.DateApplied, loc)
		for i := range trend {
			end := trend[i].Start.AddDate(0, 1, 0)
			if !applied.Before(trend[i].Start) && applied.Before(end) {
				trend[i].Count++
				break
			}
		}
	}
	return trend
}
