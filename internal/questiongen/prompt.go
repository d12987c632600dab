package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/smartquiz/internal/quiz"
)

const systemPrompt = `You are a quiz generator. You write clear, self-contained quiz questions that test understanding of the supplied study material.

Rules:
- Every question must be answerable from the material alone.
- For mcq questions, provide exactly 3 wrong but plausible distractors. Distractors must differ from the answer.
- For true_false questions, the answer is exactly "True" or "False" and distractors is empty.
- For fill_blank questions, mark the blank with ___ and give the missing word or phrase as the answer.
- For short_answer questions, the answer is a short reference answer of a few words.
- Spread the questions across easy, medium, and hard difficulty.
- Do not repeat a question.
- Return only valid JSON.`

var typeInstructions = map[quiz.Type]string{
	quiz.TypeMultipleChoice: "multiple choice questions with 4 options",
	quiz.TypeTrueFalse:      "true/false questions",
	quiz.TypeFillBlank:      "fill in the blank questions (use ___ for the blank)",
	quiz.TypeShortAnswer:    "short answer questions",
}

// buildUserMessage constructs the user message from GenerateInput and
// Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	types := input.types()
	mix := make([]string, 0, len(types))
	for _, t := range types {
		if s, ok := typeInstructions[t]; ok {
			mix = append(mix, s)
		} else {
			mix = append(mix, string(t))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following content and generate %d quiz questions.\n", input.count())
	fmt.Fprintf(&b, "Generate a mix of: %s\n", strings.Join(mix, ", "))
	b.WriteString("\nFor each question, provide:\n")
	b.WriteString("- question: The question text (for fill in the blank, use ___ to indicate the blank)\n")
	b.WriteString("- answer: The correct answer\n")
	b.WriteString("- distractors: For mcq, 3 wrong but plausible options. Empty array for other types.\n")
	b.WriteString("- difficulty: easy, medium, or hard\n")
	b.WriteString("- topic: The main topic/concept being tested\n")
	b.WriteString("- type: mcq, true_false, fill_blank, or short_answer\n")
	b.WriteString("\nContent to analyze:\n")
	b.WriteString(truncate(input.Content, cfg.MaxContentChars))
	return b.String()
}

// truncate cuts s to at most max runes. A non-positive max disables it.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
