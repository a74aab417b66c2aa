package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// Bar renders a horizontal progress bar with an optional trailing
// current/target readout.
func Bar(percent float64, width int, readout string) string {
	if width < 4 {
		width = 4
	}
	filled := int(float64(width) * percent)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStr := lipgloss.NewStyle().
		Background(Success).
		Render(strings.Repeat(" ", filled))
	emptyStr := lipgloss.NewStyle().
		Background(Border).
		Render(strings.Repeat(" ", width-filled))

	bar := filledStr + emptyStr
	if readout != "" {
		bar += " " + Subtitle.Render(readout)
	}
	return bar
}

// RankBadge renders the rank name on its interpolated color. hex is a
// "#RRGGBB" string.
func RankBadge(rank, hex string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color("#0F172A")).
		Bold(true).
		Padding(0, 1).
		Render(rank)
}

// XPReadout formats the level progress fraction shown next to the bar.
func XPReadout(xp, required int) string {
	return fmt.Sprintf("%d / %d XP", xp, required)
}
