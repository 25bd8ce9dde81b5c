package analytics

import (
	"math"
	"sort"
	"time"
)

// DefaultTopN is the length of every ranking in a Result.
const DefaultTopN = 5

// TrendMonths is the number of calendar months in a monthly trend.
const TrendMonths = 6

// KeyCount is one row of a ranking.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthCount is the number of applications in one calendar month.
type MonthCount struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// CTCStats summarises every parseable compensation value.
type CTCStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Result is the full set of aggregates computed from one record snapshot.
type Result struct {
	Total             int            `json:"total"`
	AppliedThisWeek   int            `json:"applied_this_week"`
	AppliedThisMonth  int            `json:"applied_this_month"`
	StatusCounts      map[Status]int `json:"status_counts"`
	MonthlyTrend      []MonthCount   `json:"monthly_trend"`
	TopCompanies      []KeyCount     `json:"top_companies"`
	TopRoles          []KeyCount     `json:"top_roles"`
	LocationBreakdown []KeyCount     `json:"location_breakdown"`
	TechFrequency     map[string]int `json:"tech_frequency"`
	TopTechnologies   []KeyCount     `json:"top_technologies"`
	CTCStats          *CTCStats      `json:"ctc_stats"`
	CTCRangeCounts    map[string]int `json:"ctc_range_counts"`
}

// Compute builds every aggregate for records as seen at now. The same input
// and the same now always produce an identical Result.
func Compute(records []Record, now time.Time) *Result {
	ctcValues := ParsedCTCValues(records)
	techFreq, techOrder := techFrequency(records)

	return &Result{
		Total:             len(records),
		AppliedThisWeek:   AppliedSince(records, StartOfWeek(now)),
		AppliedThisMonth:  AppliedSince(records, StartOfMonth(now)),
		StatusCounts:      CountByStatus(records),
		MonthlyTrend:      MonthlyTrend(records, now),
		TopCompanies:      TopN(records, func(r Record) string { return r.CompanyName }, DefaultTopN),
		TopRoles:          TopN(records, func(r Record) string { return r.Role }, DefaultTopN),
		LocationBreakdown: TopN(records, Record.LocationKey, DefaultTopN),
		TechFrequency:     techFreq,
		TopTechnologies:   rank(techOrder, techFreq, DefaultTopN),
		CTCStats:          summarize(ctcValues),
		CTCRangeCounts:    CTCRangeCounts(ctcValues),
	}
}

// CountByStatus counts records per known status. All known statuses are
// present in the result; records with any other status are not counted.
func CountByStatus(records []Record) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, r := range records {
		if _, ok := counts[r.Status]; ok {
			counts[r.Status]++
		}
	}
	return counts
}

// TopN groups records by keyFn and returns the n most frequent keys, count
// descending. Keys with equal counts keep the order in which they were first
// seen in records. Both record sources list jobs newest first (created_at
// descending, then id), so a tie goes to the key whose latest job was added
// most recently.
func TopN(records []Record, keyFn func(Record) string, n int) []KeyCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		key := keyFn(r)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	return rank(order, counts, n)
}

func rank(order []string, counts map[string]int, n int) []KeyCount {
	ranked := make([]KeyCount, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, KeyCount{Key: key, Count: counts[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TechFrequency counts every non-empty technology tag across all records.
func TechFrequency(records []Record) map[string]int {
	freq, _ := techFrequency(records)
	return freq
}

func techFrequency(records []Record) (map[string]int, []string) {
	freq := make(map[string]int)
	var order []string
	for _, r := range records {
		for _, tech := range r.Techstacks {
			if tech == "" {
				continue
			}
			if _, seen := freq[tech]; !seen {
				order = append(order, tech)
			}
			freq[tech]++
		}
	}
	return freq, order
}

// ParsedCTCValues returns the compensation of every record that has one, in
// record order.
func ParsedCTCValues(records []Record) []float64 {
	var values []float64
	for _, r := range records {
		if r.CTC.Valid && !math.IsNaN(r.CTC.Value) && !math.IsInf(r.CTC.Value, 0) {
			values = append(values, r.CTC.Value)
		}
	}
	return values
}

// CTCSummary returns the mean, minimum and maximum compensation, or nil when
// no record carries a parseable value.
func CTCSummary(records []Record) *CTCStats {
	return summarize(ParsedCTCValues(records))
}

func summarize(values []float64) *CTCStats {
	if len(values) == 0 {
		return nil
	}
	stats := &CTCStats{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	stats.Avg = sum / float64(len(values))
	return stats
}

// CTCBand is one compensation range. A value belongs to the first band whose
// Upper bound it is strictly below; the last band has no upper bound.
type CTCBand struct {
	Label string
	Upper float64
}

// CTCBands lists the compensation ranges in ascending order.
var CTCBands = []CTCBand{
	{Label: "0-5", Upper: 5},
	{Label: "5-10", Upper: 10},
	{Label: "10-15", Upper: 15},
	{Label: "15-20", Upper: 20},
	{Label: "20-25", Upper: 25},
	{Label: "25+", Upper: math.Inf(1)},
}

// CTCRangeCounts assigns every value to exactly one band. All band labels are
// present in the result.
func CTCRangeCounts(values []float64) map[string]int {
	counts := make(map[string]int, len(CTCBands))
	for _, band := range CTCBands {
		counts[band.Label] = 0
	}
	for _, v := range values {
		counts[bandFor(v)]++
	}
	return counts
}

func bandFor(v float64) string {
	last := CTCBands[len(CTCBands)-1]
	for _, band := range CTCBands[:len(CTCBands)-1] {
		if v < band.Upper {
			return band.Label
		}
	}
	return last.Label
}
