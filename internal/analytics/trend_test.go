package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyTrend_AlwaysSixBuckets(t *testing.T) {
	now := time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC)

	trend := MonthlyTrend(nil, now)

	require.Len(t, trend, TrendMonths)
	labels := make([]string, 0, len(trend))
	for _, m := range trend {
		labels = append(labels, m.Label)
	}
	assert.Equal(t, []string{"Oct 2024", "Nov 2024", "Dec 2024", "Jan 2025", "Feb 2025", "Mar 2025"}, labels)
}

func TestMonthlyTrend_HalfOpenBuckets(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{DateApplied: date("2024-06-01")},
		{DateApplied: date("2024-05-31")},
		{DateApplied: date("2024-01-01")},
		{DateApplied: date("2023-12-31")},
		{DateApplied: date("2024-07-01")},
		{DateApplied: time.Time{}},
	}

	trend := MonthlyTrend(records, now)

	counts := map[string]int{}
	for _, m := range trend {
		counts[m.Label] = m.Count
	}
	assert.Equal(t, 1, counts["Jun 2024"])
	assert.Equal(t, 1, counts["May 2024"])
	assert.Equal(t, 1, counts["Jan 2024"])
	_, present := counts["Dec 2023"]
	assert.False(t, present)
}

func TestMonthlyTrend_CalendarDatesUseNowLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, time.February, 1, 0, 30, 0, 0, loc)
	records := []Record{
		{DateApplied: date("2024-02-01")},
		{DateApplied: date("2024-01-31")},
	}

	trend := MonthlyTrend(records, now)

	require.Len(t, trend, TrendMonths)
	assert.Equal(t, "Feb 2024", trend[5].Label)
	assert.Equal(t, 1, trend[5].Count)
	assert.Equal(t, 1, trend[4].Count)
}

func TestStartOfWeek_Monday(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "sunday belongs to previous monday",
			now:  time.Date(2024, time.June, 16, 18, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday is its own start",
			now:  time.Date(2024, time.June, 17, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "across a month boundary",
			now:  time.Date(2024, time.May, 2, 8, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.April, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(StartOfWeek(tt.now)))
		})
	}
}

func TestAppliedSince(t *testing.T) {
	now := time.Date(2024, time.June, 19, 10, 0, 0, 0, time.UTC)
	records := []Record{
		{DateApplied: date("2024-06-17")},
		{DateApplied: date("2024-06-16")},
		{DateApplied: date("2024-06-01")},
		{DateApplied: date("2024-05-31")},
		{},
	}

	assert.Equal(t, 1, AppliedSince(records, StartOfWeek(now)))
	assert.Equal(t, 3, AppliedSince(records, StartOfMonth(now)))
}
