// Package render draws jobtrack data for the terminal.
package render

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/job-tracker/internal/analytics"
)

// Color palette
var (
	ColorBlue   = lipgloss.Color("39")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorGray   = lipgloss.Color("244")
	ColorWhite  = lipgloss.Color("7")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	sectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorWhite).
				Bold(true).
				Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 2).
			Align(lipgloss.Center)

	cardValueStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(ColorGray)

	legendKeyStyle = lipgloss.NewStyle().Bold(true)
)

var statusColors = map[analytics.Status]lipgloss.Color{
	analytics.StatusYetToApply:          ColorGray,
	analytics.StatusApplied:             ColorBlue,
	analytics.StatusShortlisted:         lipgloss.Color("45"),
	analytics.StatusAssessmentCompleted: lipgloss.Color("141"),
	analytics.StatusInterviewScheduled:  ColorYellow,
	analytics.StatusInterviewing:        ColorOrange,
	analytics.StatusOffered:             ColorGreen,
	analytics.StatusAccepted:            lipgloss.Color("46"),
	analytics.StatusRejected:            ColorRed,
	analytics.StatusWithdrawn:           lipgloss.Color("240"),
}

// StatusColor returns the color used for status in charts and tables.
func StatusColor(status analytics.Status) lipgloss.Color {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return ColorWhite
}

// MaxLabelRunes is the longest label drawn in full under a chart.
const MaxLabelRunes = 13

// TruncateLabel shortens labels longer than MaxLabelRunes to their first
// MaxLabelRunes runes followed by "...".
func TruncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= MaxLabelRunes {
		return label
	}
	return string(runes[:MaxLabelRunes]) + "..."
}

// Number formats v with two decimals.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
