package render

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

const (
	chartHeight    = 8
	minChartWidth  = 20
	maxBarWidth    = 6
	labelColumnPad = 2
)

// Bar is one value in a bar chart.
type Bar struct {
	Label string
	Value float64
	Color lipgloss.Color
}

// BarChart draws bars with their labels and values listed below, and a
// legend for labels that had to be truncated. decimals selects count (0)
// or two-decimal value formatting.
func BarChart(title string, bars []Bar, width int, decimals bool) string {
	sections := []string{sectionTitleStyle.Render(title)}
	if len(bars) == 0 {
		sections = append(sections, dimStyle.Render("No data available"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if maxValue(bars) > 0 {
		sections = append(sections, drawBars(bars, width))
	}
	sections = append(sections, barKey(bars, decimals))
	if legend := truncationLegend(bars); legend != "" {
		sections = append(sections, legend)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func maxValue(bars []Bar) float64 {
	var m float64
	for _, b := range bars {
		if b.Value > m {
			m = b.Value
		}
	}
	return m
}

func drawBars(bars []Bar, width int) string {
	if width < minChartWidth {
		width = minChartWidth
	}
	gap := 1
	barWidth := (width - gap*(len(bars)-1)) / len(bars)
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < 1 {
		barWidth = 1
	}
	chartWidth := barWidth*len(bars) + gap*(len(bars)-1)

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(gap),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for _, b := range bars {
		color := b.Color
		if color == "" {
			color = ColorBlue
		}
		bc.Push(barchart.BarData{
			Label: b.Label,
			Values: []barchart.BarValue{{
				Name:  b.Label,
				Value: b.Value,
				Style: lipgloss.NewStyle().Foreground(color).Background(color),
			}},
		})
	}
	bc.Draw()
	return bc.View()
}

func barKey(bars []Bar, decimals bool) string {
	labelWidth := 0
	for _, b := range bars {
		if n := lipgloss.Width(TruncateLabel(b.Label)); n > labelWidth {
			labelWidth = n
		}
	}
	labelStyle := lipgloss.NewStyle().Width(labelWidth + labelColumnPad)

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		color := b.Color
		if color == "" {
			color = ColorBlue
		}
		swatch := lipgloss.NewStyle().Foreground(color).Render("■")
		value := fmt.Sprintf("%d", int(b.Value))
		if decimals {
			value = Number(b.Value)
		}
		lines = append(lines, fmt.Sprintf("%s %s%s", swatch, labelStyle.Render(TruncateLabel(b.Label)), value))
	}
	return strings.Join(lines, "\n")
}

func truncationLegend(bars []Bar) string {
	var lines []string
	for _, b := range bars {
		short := TruncateLabel(b.Label)
		if short == b.Label {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", legendKeyStyle.Render(short), b.Label))
	}
	if len(lines) == 0 {
		return ""
	}
	return dimStyle.Render("Legend") + "\n" + strings.Join(lines, "\n")
}
