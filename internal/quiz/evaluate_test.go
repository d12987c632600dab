package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAnswer_ClosedTypes(t *testing.T) {
	for _, typ := range []Type{TypeMultipleChoice, TypeTrueFalse} {
		tests := []struct {
			user, expected string
			want           bool
		}{
			{"Paris", "Paris", true},
			{"  paris ", "PARIS", true},
			{"True", "true", true},
			{"Par", "Paris", false},
			{"Paris, France", "Paris", false},
			{"", "Paris", false},
			{"Paris", "", false},
			{"   ", "   ", false},
		}
		for _, tc := range tests {
			got := CheckAnswer(tc.user, tc.expected, typ)
			assert.Equal(t, tc.want, got, "CheckAnswer(%q, %q, %s)", tc.user, tc.expected, typ)
		}
	}
}

func TestCheckAnswer_FreeText(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expected string
		want     bool
	}{
		{"exact", "Mitochondria", "mitochondria", true},
		{"user contains expected", "the cat sat", "cat", true},
		{"expected contains user", "cat", "the cat sat", true},
		{"overlap far below threshold", "alpha beta gamma zeta", "alpha beta gamma delta epsilon zeta eta theta iota kappa", false},
		{"overlap above threshold", "conversion of light energy process", "light energy conversion process", true},
		{"overlap below threshold",
			"photosynthesis converts light to energy",
			"light energy conversion process", false},
		{"empty user", "", "cat", false},
		{"whitespace user", "  ", "cat", false},
		{"no overlap", "dog", "feline", false},
	}

	for _, typ := range []Type{TypeFillBlank, TypeShortAnswer} {
		for _, tc := range tests {
			t.Run(string(typ)+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, CheckAnswer(tc.user, tc.expected, typ))
			})
		}
	}
}

func TestCheckAnswer_OverlapExactlySeventyPercent(t *testing.T) {
	// 7 of 10 expected tokens present.
	expected := "a1 a2 a3 a4 a5 a6 a7 a8 a9 a10"
	user := "a1 a2 a3 a4 a5 a6 a7 zz"
	assert.True(t, CheckAnswer(user, expected, TypeShortAnswer))

	user = "a1 a2 a3 a4 a5 a6 zz"
	assert.False(t, CheckAnswer(user, expected, TypeShortAnswer))
}

func TestCheckAnswer_UnknownTypeIsStrict(t *testing.T) {
	assert.False(t, CheckAnswer("the cat sat", "cat", Type("essay")))
	assert.True(t, CheckAnswer("cat", "CAT", Type("essay")))
}

func TestTokenOverlap_EmptyExpected(t *testing.T) {
	assert.Equal(t, 0.0, tokenOverlap("anything", ""))
}
