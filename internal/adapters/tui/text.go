package tui

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// sanitize makes server or user supplied text safe to print: escape sequences are
// removed and control characters become spaces. Everything else, including characters
// such as < and &, is kept as typed.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// clip sanitizes s and truncates it to width cells.
func clip(s string, width int) string {
	s = sanitize(s)
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// renderBar draws value (0..1) as a fixed-width gauge.
func renderBar(value float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampUnit(value)))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreColor fades from grey at 0 to bright white at 1 on the 256-color greyscale ramp.
func scoreColor(value float64) lipgloss.Color {
	const base, target = 240.0, 255.0
	return lipgloss.Color(fmt.Sprintf("%d", int(base+(target-base)*clampUnit(value))))
}

func riskStyle(level string, s styles) lipgloss.Style {
	switch level {
	case "high":
		return s.warning
	case "medium":
		return s.dirty
	default:
		return s.meta
	}
}
