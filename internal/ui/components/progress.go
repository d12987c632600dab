package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartquiz/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a 0-1 fraction. The fill
// color follows the accuracy thresholds unless Color is set.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	LabelWidth  int
	Color       color.Color
	Detail      string
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		labelStyle := lipgloss.NewStyle().Foreground(theme.Text)
		if p.LabelWidth > 0 {
			labelStyle = labelStyle.Width(p.LabelWidth).MaxWidth(p.LabelWidth)
		}
		result += labelStyle.Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}
	percentWidth += lipgloss.Width(p.Detail)

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := p.Color
	if fill == nil {
		fill = theme.AccuracyColor(p.Percent * 100)
	}
	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %3d%%", int(p.Percent*100+0.5)))
	}
	if p.Detail != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Detail)
	}

	return result
}
