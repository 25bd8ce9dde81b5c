package analytics

import (
	"sort"
	"strings"
	"time"
)

// RecentLimit is the number of records shown in the recent list.
const RecentLimit = 3

// Dashboard is the home screen summary.
type Dashboard struct {
	Total            int      `json:"total"`
	AppliedThisWeek  int      `json:"applied_this_week"`
	AppliedThisMonth int      `json:"applied_this_month"`
	Recent           []Record `json:"recent"`
	Upcoming         []Record `json:"upcoming"`
}

// BuildDashboard summarises records as seen at now.
func BuildDashboard(records []Record, now time.Time) *Dashboard {
	return &Dashboard{
		Total:            len(records),
		AppliedThisWeek:  AppliedSince(records, StartOfWeek(now)),
		AppliedThisMonth: AppliedSince(records, StartOfMonth(now)),
		Recent:           RecentRecords(records, RecentLimit),
		Upcoming:         UpcomingRecords(records),
	}
}

// RecentRecords returns up to n records, newest CreatedAt first.
func RecentRecords(records []Record, n int) []Record {
	recent := make([]Record, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// UpcomingRecords returns the records that need attention: those carrying a
// tag and those not yet applied to. They are ordered by their key date,
// earliest first, with undated records last.
func UpcomingRecords(records []Record) []Record {
	upcoming := make([]Record, 0)
	for _, r := range records {
		if strings.TrimSpace(r.Tag) != "" || r.Status == StatusYetToApply {
			upcoming = append(upcoming, r)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := KeyDate(upcoming[i]), KeyDate(upcoming[j])
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
	return upcoming
}

// KeyDate is the application deadline for records not yet applied to, and
// the important date for everything else.
func KeyDate(r Record) time.Time {
	if r.Status == StatusYetToApply {
		return r.ApplicationDeadline
	}
	return r.ImportantDate
}
