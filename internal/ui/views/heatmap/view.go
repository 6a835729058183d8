// Package heatmap renders the consistency grid: one column per week, one row
// per weekday, Sunday on top.
package heatmap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	progressdto "commutecast/internal/modules/progress/dto"
	"commutecast/internal/ui/theme"
)

const cell = "■"

var dayLabels = [7]string{"Sun", "   ", "Tue", "   ", "Thu", "   ", "Sat"}

// Render draws the grid. Future days inside the last week are left blank.
func Render(grid progressdto.HeatmapOutput) string {
	if len(grid.Weeks) == 0 {
		return theme.Muted.Render("no history yet")
	}
	var sb strings.Builder
	sb.WriteString("    " + monthHeader(grid) + "\n")
	for d := range 7 {
		sb.WriteString(theme.Muted.Render(dayLabels[d]) + " ")
		for _, week := range grid.Weeks {
			if d >= len(week) {
				continue
			}
			sb.WriteString(renderCell(week[d], grid.Today) + " ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(Legend())
	return sb.String()
}

func Legend() string {
	return theme.Muted.Render("Less ") +
		lipgloss.JoinHorizontal(lipgloss.Top,
			theme.CellEmpty.Render(cell)+" ",
			theme.CellLow.Render(cell)+" ",
			theme.CellMedium.Render(cell)+" ",
			theme.CellFull.Render(cell),
		) + theme.Muted.Render(" More")
}

func renderCell(day progressdto.DayOutput, today string) string {
	switch {
	case day.Date > today:
		return " "
	case day.Date == today && day.Bucket == "empty":
		return theme.CellToday.Render("□")
	}
	return StyleFor(day.Bucket).Render(cell)
}

// StyleFor maps a bucket name to its shade.
func StyleFor(bucket string) lipgloss.Style {
	switch bucket {
	case "low":
		return theme.CellLow
	case "medium":
		return theme.CellMedium
	case "full":
		return theme.CellFull
	default:
		return theme.CellEmpty
	}
}

// monthHeader labels the first week of each month above its column,
// skipping labels that would overlap the previous one.
func monthHeader(grid progressdto.HeatmapOutput) string {
	var sb strings.Builder
	last := ""
	for w, week := range grid.Weeks {
		if len(week) == 0 || len(week[0].Date) < 7 {
			continue
		}
		month := week[0].Date[5:7]
		if month == last || sb.Len() > w*2 {
			continue
		}
		last = month
		sb.WriteString(strings.Repeat(" ", w*2-sb.Len()))
		sb.WriteString(monthName(month))
	}
	return theme.Muted.Render(sb.String())
}

func monthName(mm string) string {
	var n int
	if _, err := fmt.Sscanf(mm, "%d", &n); err != nil || n < 1 || n > 12 {
		return mm
	}
	return [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}[n-1]
}
