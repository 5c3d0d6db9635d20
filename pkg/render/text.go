package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)
)

// ColorEnabled reports whether fd is an interactive terminal
func ColorEnabled(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Summary is the one-line description of a view
func Summary(view *models.MapView) string {
	return fmt.Sprintf("%.2f° %s to %s (%s, %s)",
		view.Bearing, view.Compass, view.TargetName, view.Mode, FormatDistance(view.DistanceMeters))
}

// FormatDistance prints meters below 10 km and kilometers above
func FormatDistance(meters float64) string {
	if meters < 10_000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// Text renders a boxed multi-line summary; color=false gives plain text
func Text(view *models.MapView, color bool) string {
	paint := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	origin := view.Label
	if origin == "" {
		origin = "Origin"
	}

	rows := [][2]string{
		{"From", fmt.Sprintf("%s %s", origin, view.Origin)},
		{"To", fmt.Sprintf("%s %s", view.TargetName, view.Target)},
		{"Mode", string(view.Mode)},
		{"Bearing", fmt.Sprintf("%.2f° (%s)", view.Bearing, view.Compass)},
		{"Distance", FormatDistance(view.DistanceMeters)},
		{"Ray end", fmt.Sprintf("%s after %s", view.Line[1], FormatDistance(view.LineLength))},
	}

	var b strings.Builder
	b.WriteString(paint(titleStyle, "Bearing to "+view.TargetName))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(paint(labelStyle, fmt.Sprintf("%-9s", r[0])))
		b.WriteString(paint(valueStyle, r[1]))
	}

	if !color {
		return b.String()
	}
	return boxStyle.Render(b.String())
}
