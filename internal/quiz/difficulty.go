package quiz

const (
	// RecentWindowSize is the number of trailing answers handed to NextTier.
	RecentWindowSize = 5

	// coldStartThreshold is the window length below which only the last
	// answer drives tier changes.
	coldStartThreshold = 3
)

// NextTier decides the tier for the next question.
//
// With fewer than three answers in the window, the tier follows the most
// recent outcome: one step up when correct, one step down when not. Once
// three or more answers exist, only the last three count: three correct
// promotes, at most one correct demotes, and two correct holds.
//
// Transitions are always a single step and clamp at easy and hard.
func NextTier(current Tier, lastCorrect bool, window []AnswerRecord) Tier {
	current = current.OrDefault()
	if len(window) < coldStartThreshold {
		if lastCorrect {
			return current.up()
		}
		return current.down()
	}

	correct := 0
	for _, a := range window[len(window)-coldStartThreshold:] {
		if a.IsCorrect {
			correct++
		}
	}

	switch {
	case correct >= 3 && current != TierHard:
		return current.up()
	case correct <= 1 && current != TierEasy:
		return current.down()
	}
	return current
}

// FilterByTier returns the questions at the given tier. When no question
// matches, the full list is returned so a quiz never runs dry.
func FilterByTier(questions []Question, tier Tier) []Question {
	tier = tier.OrDefault()
	var matching []Question
	for _, q := range questions {
		if q.Difficulty.OrDefault() == tier {
			matching = append(matching, q)
		}
	}
	if len(matching) == 0 {
		return questions
	}
	return matching
}
