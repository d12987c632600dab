package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/quiz"
)

func newSourceCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addSourceFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestLoadContent_Text(t *testing.T) {
	c := newSourceCmd(t, "--text", "  Photosynthesis   converts light into energy.  ")
	got, err := loadContent(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Photosynthesis converts light into energy." {
		t.Errorf("content = %q", got)
	}
}

func TestLoadContent_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Mitochondria produce ATP."), 0o644); err != nil {
		t.Fatal(err)
	}
	c := newSourceCmd(t, "--file", path)
	got, err := loadContent(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Mitochondria produce ATP." {
		t.Errorf("content = %q", got)
	}
}

func TestLoadContent_RequiresExactlyOneSource(t *testing.T) {
	if _, err := loadContent(newSourceCmd(t)); err == nil {
		t.Error("expected error with no source")
	}
	if _, err := loadContent(newSourceCmd(t, "--text", "a", "--url", "https://example.com")); err == nil {
		t.Error("expected error with two sources")
	}
}

func TestLoadContent_EmptyText(t *testing.T) {
	if _, err := loadContent(newSourceCmd(t, "--text", "   ")); err == nil {
		t.Error("expected error for blank material")
	}
}

func TestGenerateInput(t *testing.T) {
	c := newSourceCmd(t, "-n", "4", "--types", "mcq,fill_blank")
	in, err := generateInput(c, "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Count != 4 {
		t.Errorf("count = %d, want 4", in.Count)
	}
	want := []quiz.Type{quiz.TypeMultipleChoice, quiz.TypeFillBlank}
	if len(in.Types) != len(want) || in.Types[0] != want[0] || in.Types[1] != want[1] {
		t.Errorf("types = %v, want %v", in.Types, want)
	}

	if _, err := generateInput(newSourceCmd(t, "--types", "essay"), "content"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestSelectTier(t *testing.T) {
	qs := []quiz.Question{
		{Text: "a", Difficulty: quiz.TierEasy},
		{Text: "b", Difficulty: quiz.TierHard},
		{Text: "c", Difficulty: quiz.TierEasy},
	}
	got := selectTier(qs, "easy")
	if len(got) != 2 || got[0].Text != "a" || got[1].Text != "c" {
		t.Errorf("easy = %v, want a and c", got)
	}
	if got := selectTier(qs, "medium"); len(got) != len(qs) {
		t.Errorf("medium should fall back to all %d questions, got %d", len(qs), len(got))
	}
}
