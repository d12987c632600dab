package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#667EEA") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#10B981") // Emerald
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Difficulty colors, easy to hard.
var (
	Easy   = lipgloss.Color("#22C55E")
	Medium = lipgloss.Color("#EAB308")
	Hard   = lipgloss.Color("#EF4444")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// DifficultyColor maps a difficulty label to its color. Unknown labels
// get the medium color.
func DifficultyColor(label string) color.Color {
	switch label {
	case "easy":
		return Easy
	case "hard":
		return Hard
	default:
		return Medium
	}
}

// Badge renders a difficulty label as a colored tag.
func Badge(label string) string {
	return lipgloss.NewStyle().
		Foreground(BgDark).
		Background(DifficultyColor(label)).
		Bold(true).
		Padding(0, 1).
		Render(label)
}

// AccuracyColor picks green at 80% and above, amber from 50%, else red.
func AccuracyColor(pct float64) color.Color {
	switch {
	case pct >= 80:
		return Success
	case pct >= 50:
		return Accent
	default:
		return Error
	}
}
