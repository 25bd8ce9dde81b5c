package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/types"
)

// Card is one headline figure.
type Card struct {
	Label string
	Value string
}

// Cards lays out headline figures side by side.
func Cards(cards ...Card) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, cardStyle.Render(
			lipgloss.JoinVertical(lipgloss.Center, cardValueStyle.Render(c.Value), dimStyle.Render(c.Label)),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Analytics renders every aggregate of res.
func Analytics(res *analytics.Result, width int) string {
	sections := []string{
		headerStyle.Render("Application Analytics"),
		Cards(
			Card{Label: "Applied This Week", Value: strconv.Itoa(res.AppliedThisWeek)},
			Card{Label: "Applied This Month", Value: strconv.Itoa(res.AppliedThisMonth)},
			Card{Label: "Total Applications", Value: strconv.Itoa(res.Total)},
		),
	}

	trend := make([]Bar, 0, len(res.MonthlyTrend))
	for _, m := range res.MonthlyTrend {
		trend = append(trend, Bar{Label: m.Label, Value: float64(m.Count)})
	}
	sections = append(sections,
		BarChart("Monthly Application Trend", trend, width, false),
		BarChart("Top 5 Companies Applied To", keyCountBars(res.TopCompanies), width, false),
		BarChart("Top 5 Roles Applied To", keyCountBars(res.TopRoles), width, false),
		BarChart("Application Status", statusBars(res.StatusCounts), width, false),
		BarChart("Top 5 Technology Frequency", keyCountBars(res.TopTechnologies), width, false),
		ctcSection(res, width),
		BarChart("Top 5 Applications by Location", keyCountBars(res.LocationBreakdown), width, false),
	)
	return lipgloss.JoinVertical(lipgloss.Left, spaced(sections)...)
}

func ctcSection(res *analytics.Result, width int) string {
	title := sectionTitleStyle.Render("CTC Statistics (LPA)")
	if res.CTCStats == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, dimStyle.Render("No CTC data"))
	}
	s := res.CTCStats
	summary := fmt.Sprintf("Avg: %s, Min: %s, Max: %s", Number(s.Avg), Number(s.Min), Number(s.Max))
	stats := BarChart("CTC Summary", []Bar{
		{Label: "Min", Value: s.Min, Color: ColorGray},
		{Label: "Average", Value: s.Avg, Color: ColorBlue},
		{Label: "Max", Value: s.Max, Color: ColorGreen},
	}, width, true)

	var bands []Bar
	for _, band := range analytics.CTCBands {
		if n := res.CTCRangeCounts[band.Label]; n > 0 {
			bands = append(bands, Bar{Label: band.Label, Value: float64(n)})
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, summary, "", stats, "",
		BarChart("CTC Distribution (LPA)", bands, width, false))
}

func keyCountBars(counts []analytics.KeyCount) []Bar {
	bars := make([]Bar, 0, len(counts))
	for _, kc := range counts {
		bars = append(bars, Bar{Label: kc.Key, Value: float64(kc.Count)})
	}
	return bars
}

func statusBars(counts map[analytics.Status]int) []Bar {
	bars := make([]Bar, 0, len(analytics.Statuses))
	for _, st := range analytics.Statuses {
		bars = append(bars, Bar{Label: string(st), Value: float64(counts[st]), Color: StatusColor(st)})
	}
	return bars
}

// Dashboard renders the home screen for user.
func Dashboard(d *analytics.Dashboard, user *types.User) string {
	greeting := "Welcome back"
	if user != nil && user.Name != "" {
		greeting = "Welcome back, " + user.Name
	}
	sections := []string{
		headerStyle.Render(greeting),
		Cards(
			Card{Label: "Total Applications", Value: strconv.Itoa(d.Total)},
			Card{Label: "Applied This Week", Value: strconv.Itoa(d.AppliedThisWeek)},
			Card{Label: "Applied This Month", Value: strconv.Itoa(d.AppliedThisMonth)},
		),
		sectionTitleStyle.Render("Recent Applications"),
		recordList(d.Recent, func(r analytics.Record) string {
			return formatDate(r.DateApplied)
		}, "No applications yet"),
		sectionTitleStyle.Render("Upcoming"),
		recordList(d.Upcoming, func(r analytics.Record) string {
			return formatDate(analytics.KeyDate(r))
		}, "Nothing upcoming"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, spaced(sections)...)
}

func recordList(records []analytics.Record, date func(analytics.Record) string, empty string) string {
	if len(records) == 0 {
		return dimStyle.Render(empty)
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		status := lipgloss.NewStyle().Foreground(StatusColor(r.Status)).Render(string(r.Status))
		rows = append(rows, []string{r.CompanyName, r.Role, status, date(r), r.Tag})
	}
	return newTable([]string{"Company", "Role", "Status", "Date", "Tag"}, rows)
}

func spaced(sections []string) []string {
	out := make([]string, 0, len(sections)*2)
	for i, s := range sections {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, s)
	}
	return out
}
