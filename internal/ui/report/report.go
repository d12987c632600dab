// Package report renders quiz results, recommendations and history as
// styled text for the terminal screens and the CLI.
package report

import (
	"fmt"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartquiz/internal/quiz"
	"github.com/abhisek/smartquiz/internal/ui/components"
	"github.com/abhisek/smartquiz/internal/ui/theme"
)

const labelWidth = 18

var (
	heading = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	dim     = lipgloss.NewStyle().Foreground(theme.TextDim)
	body    = lipgloss.NewStyle().Foreground(theme.Text)
)

// Score renders the headline score line, e.g. "7/10 correct (70%)".
func Score(res quiz.Results) string {
	pct := lipgloss.NewStyle().
		Foreground(theme.AccuracyColor(float64(res.AccuracyPercent))).
		Bold(true).
		Render(fmt.Sprintf("%d%%", res.AccuracyPercent))
	return body.Render(fmt.Sprintf("%d/%d correct ", res.Correct, res.Total)) + pct
}

// Grade returns a one-line verdict for an accuracy percentage.
func Grade(pct int) string {
	switch {
	case pct >= 90:
		return "Outstanding!"
	case pct >= 70:
		return "Great job!"
	case pct >= 50:
		return "Good effort, keep practicing."
	default:
		return "Keep studying, you will get there."
	}
}

// Results renders the score, timing and per-topic and per-difficulty
// breakdowns within width columns.
func Results(res quiz.Results, width int) string {
	var b strings.Builder

	b.WriteString(heading.Render("Score"))
	b.WriteString("\n  ")
	b.WriteString(Score(res))
	b.WriteString("\n  ")
	b.WriteString(dim.Render(Grade(res.AccuracyPercent)))
	b.WriteString("\n  ")
	b.WriteString(dim.Render(fmt.Sprintf("Average response time: %.1fs", res.AverageResponseTime)))
	b.WriteString("\n")

	if len(res.TopicAccuracy) > 0 {
		b.WriteString("\n")
		b.WriteString(heading.Render("By topic"))
		b.WriteString("\n")
		for _, topic := range sortedTopics(res.TopicAccuracy) {
			b.WriteString(tallyBar(topic, res.TopicAccuracy[topic], width))
			b.WriteString("\n")
		}
	}

	if len(res.DifficultyAccuracy) > 0 {
		b.WriteString("\n")
		b.WriteString(heading.Render("By difficulty"))
		b.WriteString("\n")
		for _, tier := range quiz.AllTiers {
			t, ok := res.DifficultyAccuracy[tier]
			if !ok {
				continue
			}
			bar := components.NewProgressBar(tier.String(), t.Accuracy()/100, true, barWidth(width))
			bar.LabelWidth = labelWidth
			bar.Color = theme.DifficultyColor(tier.String())
			bar.Detail = fmt.Sprintf("  %d/%d", t.Correct, t.Total)
			b.WriteString("  " + bar.View())
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Recommendations renders study suggestions, strengths first.
func Recommendations(recs []quiz.Recommendation) string {
	if len(recs) == 0 {
		return dim.Render("  No recommendations yet. Answer a few more questions.")
	}

	var b strings.Builder
	b.WriteString(heading.Render("Recommendations"))
	for _, r := range recs {
		marker := lipgloss.NewStyle().Foreground(theme.Success).Render("+")
		if r.Kind == quiz.KindWeakness {
			marker = lipgloss.NewStyle().Foreground(theme.Error).Render("!")
		}
		b.WriteString("\n  ")
		b.WriteString(marker + " " + body.Render(r.Message))
	}
	return b.String()
}

// Review lists every answer with its verdict.
func Review(answers []quiz.AnswerRecord) string {
	var b strings.Builder
	b.WriteString(heading.Render("Answers"))
	for i, a := range answers {
		mark := theme.Correct.Render("✓")
		if !a.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("\n  %s %2d. %s", mark, i+1, body.Render(a.Question)))
		b.WriteString("\n       " + dim.Render("your answer: "+displayAnswer(a.UserAnswer)))
		if !a.IsCorrect {
			b.WriteString(dim.Render("   correct: " + a.ExpectedAnswer))
		}
	}
	return b.String()
}

// History renders one line per attempt, newest first as given.
func History(entries []quiz.HistoryEntry) string {
	if len(entries) == 0 {
		return dim.Render("No quiz history yet.")
	}

	var b strings.Builder
	b.WriteString(dim.Render(fmt.Sprintf("%-17s  %8s  %5s  %8s  %s", "WHEN", "SCORE", "ACC", "TIME", "TOPICS")))
	for _, e := range entries {
		acc := lipgloss.NewStyle().
			Foreground(theme.AccuracyColor(float64(e.Results.AccuracyPercent))).
			Render(fmt.Sprintf("%4d%%", e.Results.AccuracyPercent))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-17s  %8s  %s  %7.1fs  %s",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d/%d", e.Results.Correct, e.Results.Total),
			acc,
			e.TotalTime(),
			strings.Join(sortedTopics(e.Results.TopicAccuracy), ", "),
		))
	}
	return b.String()
}

// Stats renders aggregate history statistics with per-topic bars.
func Stats(entries []quiz.HistoryEntry, width int) string {
	st := quiz.SummarizeHistory(entries)
	if st.TotalQuizzes == 0 {
		return dim.Render("No quiz history yet.")
	}

	var b strings.Builder
	b.WriteString(heading.Render("Overview"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Quizzes taken:     %d\n", st.TotalQuizzes))
	b.WriteString(fmt.Sprintf("  Questions:         %d\n", st.TotalQuestions))
	b.WriteString(fmt.Sprintf("  Average accuracy:  %.1f%%\n", st.AvgAccuracy))
	b.WriteString(fmt.Sprintf("  Best accuracy:     %d%%\n", st.BestAccuracy))
	b.WriteString(fmt.Sprintf("  Time answering:    %.1fs\n", st.TotalTime))
	b.WriteString("  Trend:             " + Trend(chronological(entries)) + "\n")

	topics := quiz.TopicPerformance(entries)
	if len(topics) > 0 {
		b.WriteString("\n")
		b.WriteString(heading.Render("Topics"))
		b.WriteString("\n")
		names := make([]string, 0, len(topics))
		for name := range topics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ts := topics[name]
			b.WriteString(tallyBar(name, quiz.Tally{Correct: ts.Correct, Total: ts.Total}, width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Trend describes the accuracy slope of entries given oldest first.
func Trend(entries []quiz.HistoryEntry) string {
	if len(entries) < 3 {
		return dim.Render("not enough attempts")
	}
	slope := quiz.AccuracyTrend(entries)
	switch {
	case slope > 0.5:
		return lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("improving (+%.1f pts/quiz)", slope))
	case slope < -0.5:
		return lipgloss.NewStyle().Foreground(theme.Error).Render(fmt.Sprintf("declining (%.1f pts/quiz)", slope))
	default:
		return dim.Render("steady")
	}
}

func tallyBar(label string, t quiz.Tally, width int) string {
	bar := components.NewProgressBar(label, t.Accuracy()/100, true, barWidth(width))
	bar.LabelWidth = labelWidth
	bar.Detail = fmt.Sprintf("  %d/%d", t.Correct, t.Total)
	return "  " + bar.View()
}

func barWidth(width int) int {
	return max(min(width-4, 70), 30)
}

func sortedTopics(m map[string]quiz.Tally) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// chronological returns entries oldest first. History repositories return
// newest first.
func chronological(entries []quiz.HistoryEntry) []quiz.HistoryEntry {
	out := make([]quiz.HistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func displayAnswer(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(blank)"
	}
	return s
}
