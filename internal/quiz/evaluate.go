package quiz

import "strings"

// MinTokenOverlap is the fraction of expected-answer tokens that must appear
// in a free-text answer for it to count as correct.
const MinTokenOverlap = 0.70

// CheckAnswer reports whether userAnswer matches expected for a question of
// type t.
//
// Both sides are trimmed and lower-cased. Multiple choice and true/false
// answers must match exactly. Fill-in-the-blank and short answers are
// matched leniently, in order:
//   - exact match
//   - either string contains the other
//   - at least 70% of the expected tokens appear in the answer
//
// An empty answer or expected value never matches.
func CheckAnswer(userAnswer, expected string, t Type) bool {
	user := normalizeAnswer(userAnswer)
	want := normalizeAnswer(expected)
	if user == "" || want == "" {
		return false
	}

	if !t.IsFreeText() {
		return user == want
	}

	if user == want {
		return true
	}
	if strings.Contains(want, user) || strings.Contains(user, want) {
		return true
	}
	return tokenOverlap(user, want) >= MinTokenOverlap
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenOverlap returns |tokens(user) ∩ tokens(want)| / |tokens(want)|,
// or 0 when want has no tokens.
func tokenOverlap(user, want string) float64 {
	wantTokens := tokenSet(want)
	if len(wantTokens) == 0 {
		return 0
	}
	userTokens := tokenSet(user)

	shared := 0
	for tok := range wantTokens {
		if _, ok := userTokens[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(wantTokens))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
