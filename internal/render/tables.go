package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jonathan/job-tracker/internal/analytics"
	"github.com/jonathan/job-tracker/internal/types"
)

func newTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(analytics.DateLayout)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Jobs renders a job listing.
func Jobs(jobs []types.Job) string {
	if len(jobs) == 0 {
		return dimStyle.Render("No jobs found")
	}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		ctc := "-"
		if j.CTC.Valid {
			ctc = Number(j.CTC.Value)
		}
		status := lipgloss.NewStyle().Foreground(StatusColor(j.Status)).Render(string(j.Status))
		rows = append(rows, []string{
			j.ID.String()[:8],
			j.CompanyName,
			j.Role,
			status,
			orDash(j.DateApplied),
			ctc,
			orDash(j.Location),
			strings.Join(j.Techstacks, ", "),
			orDash(j.Tag),
		})
	}
	return newTable([]string{"ID", "Company", "Role", "Status", "Applied", "CTC", "Location", "Tech", "Tag"}, rows)
}

// Job renders one job with every field.
func Job(j *types.Job) string {
	ctc := "-"
	if j.CTC.Valid {
		ctc = Number(j.CTC.Value)
	}
	items := []Card{
		{"ID", j.ID.String()},
		{"Company", j.CompanyName},
		{"Role", j.Role},
		{"Status", string(j.Status)},
		{"Date applied", orDash(j.DateApplied)},
		{"CTC (LPA)", ctc},
		{"Location", orDash(j.Location)},
		{"Tech", strings.Join(j.Techstacks, ", ")},
		{"Resume", orDash(j.ResumeLink)},
		{"Bond (months)", optionalInt(j.BondDuration)},
		{"Bond fine", optionalFloat(j.BondFine)},
		{"Stipend", optionalFloat(j.Stipend)},
		{"Internship (months)", optionalInt(j.InternDuration)},
		{"Deadline", orDash(j.ApplicationDeadline)},
		{"Important date", orDash(j.ImportantDate)},
		{"Tag", orDash(j.Tag)},
		{"Notes", orDash(j.Notes)},
	}
	return keyValues(items)
}

// Contacts renders a contact listing.
func Contacts(contacts []types.Contact) string {
	if len(contacts) == 0 {
		return dimStyle.Render("No contacts found")
	}
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			c.ID.String()[:8],
			c.Name,
			c.Email,
			orDash(c.PhoneNumber),
			orDash(c.Company),
		})
	}
	return newTable([]string{"ID", "Name", "Email", "Phone", "Company"}, rows)
}

// Profile renders the user's profile.
func Profile(u *types.User) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(u.Name),
		keyValues([]Card{
			{"Email", u.Email},
			{"Job title", orDash(u.JobTitle)},
			{"Location", orDash(u.Location)},
			{"Experience (years)", optionalInt(u.Experience)},
			{"Skills", orDash(strings.Join(u.Skills, ", "))},
			{"Member since", formatDate(u.CreatedAt)},
		}),
	)
}

func keyValues(items []Card) string {
	width := 0
	for _, item := range items {
		if n := lipgloss.Width(item.Label); n > width {
			width = n
		}
	}
	keyStyle := lipgloss.NewStyle().Foreground(ColorGray).Width(width + 3)

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, keyStyle.Render(item.Label+":")+item.Value)
	}
	return strings.Join(lines, "\n")
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return Number(*v)
}
