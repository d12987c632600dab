package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(40, 30) {
		t.Error("40 columns should be too small")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("minimum size should fit")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Quiz", "3/10", 80)
	for _, want := range []string{"SmartQuiz", "Quiz", "3/10"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
	if lipgloss.Height(h) != HeaderHeight {
		t.Errorf("header height = %d, want %d", lipgloss.Height(h), HeaderHeight)
	}
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "Enter", Description: "Submit"}}, 80)
	if !strings.Contains(f, "Enter") || !strings.Contains(f, "Submit") {
		t.Errorf("footer missing hint: %q", f)
	}
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("t", "", 80)
	footer := RenderFooter(nil, 80)
	frame := RenderFrame(header, "body", footer, 80, 24)
	if lipgloss.Height(frame) != 24 {
		t.Errorf("frame height = %d, want 24", lipgloss.Height(frame))
	}
}
