package quiz

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(topic string, tier Tier, correct bool, secs float64) AnswerRecord {
	return AnswerRecord{Topic: topic, Difficulty: tier, IsCorrect: correct, ResponseTimeSeconds: secs}
}

func TestComputeResults_Empty(t *testing.T) {
	r := ComputeResults(nil)
	assert.Equal(t, 0, r.Total)
	assert.Equal(t, 0, r.Correct)
	assert.Equal(t, 0, r.Incorrect)
	assert.Equal(t, 0, r.AccuracyPercent)
	assert.Equal(t, 0.0, r.AverageResponseTime)
	assert.Empty(t, r.TopicAccuracy)
	assert.Empty(t, r.DifficultyAccuracy)
}

func TestComputeResults(t *testing.T) {
	answers := []AnswerRecord{
		rec("Math", TierEasy, true, 2),
		rec("Math", TierMedium, false, 4),
		rec("Science", TierMedium, true, 6),
		rec("", TierHard, false, 8),
	}

	r := ComputeResults(answers)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Correct)
	assert.Equal(t, 2, r.Incorrect)
	assert.Equal(t, 50, r.AccuracyPercent)
	assert.Equal(t, 5.0, r.AverageResponseTime)

	assert.Equal(t, Tally{Correct: 1, Total: 2}, r.TopicAccuracy["Math"])
	assert.Equal(t, Tally{Correct: 1, Total: 1}, r.TopicAccuracy["Science"])
	assert.Equal(t, Tally{Correct: 0, Total: 1}, r.TopicAccuracy[DefaultTopic])

	assert.Equal(t, Tally{Correct: 1, Total: 1}, r.DifficultyAccuracy[TierEasy])
	assert.Equal(t, Tally{Correct: 1, Total: 2}, r.DifficultyAccuracy[TierMedium])
	assert.Equal(t, Tally{Correct: 0, Total: 1}, r.DifficultyAccuracy[TierHard])
}

func TestComputeResults_AccuracyRounds(t *testing.T) {
	// 2 of 3 = 66.67% rounds to 67.
	r := ComputeResults([]AnswerRecord{rec("a", TierEasy, true, 0), rec("a", TierEasy, true, 0), rec("a", TierEasy, false, 0)})
	assert.Equal(t, 67, r.AccuracyPercent)

	// 1 of 3 = 33.33% rounds to 33.
	r = ComputeResults([]AnswerRecord{rec("a", TierEasy, true, 0), rec("a", TierEasy, false, 0), rec("a", TierEasy, false, 0)})
	assert.Equal(t, 33, r.AccuracyPercent)
}

func TestResults_JSONShape(t *testing.T) {
	r := ComputeResults([]AnswerRecord{rec("Math", TierHard, true, 1)})
	b, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.EqualValues(t, 100, m["accuracy"])
	diff, ok := m["difficulty_performance"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, diff, "hard")

	var back Results
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)
}

func TestGenerateRecommendations_Empty(t *testing.T) {
	assert.Empty(t, GenerateRecommendations(nil))
}

func TestGenerateRecommendations_AllCorrectOneTopic(t *testing.T) {
	answers := []AnswerRecord{rec("History", TierEasy, true, 1), rec("History", TierHard, true, 1)}
	recs := GenerateRecommendations(answers)

	require.Len(t, recs, 2)
	assert.Equal(t, KindStrength, recs[0].Kind)
	assert.Equal(t, "History", recs[0].Topic)
	assert.Equal(t, "Excellent performance in History! (100% accuracy)", recs[0].Message)
	assert.Equal(t, KindStrength, recs[1].Kind)
	assert.Equal(t, OverallTopic, recs[1].Topic)
}

func TestGenerateRecommendations_Mixed(t *testing.T) {
	answers := []AnswerRecord{
		rec("Chem", TierEasy, false, 1), // Chem 1/3 → weakness
		rec("Bio", TierEasy, true, 1),   // Bio 4/5 → strength
		rec("Chem", TierEasy, true, 1),
		rec("Bio", TierEasy, true, 1),
		rec("Phys", TierEasy, true, 1), // Phys 1/2 → none
		rec("Bio", TierEasy, true, 1),
		rec("Chem", TierEasy, false, 1),
		rec("Bio", TierEasy, false, 1),
		rec("Phys", TierEasy, false, 1),
		rec("Bio", TierEasy, true, 1),
	}
	// Overall 6/10 = 60% → no overall recommendation.
	recs := GenerateRecommendations(answers)

	require.Len(t, recs, 2)
	assert.Equal(t, Recommendation{Kind: KindWeakness, Topic: "Chem", Message: "Consider reviewing Chem - current accuracy is 33%"}, recs[0])
	assert.Equal(t, KindStrength, recs[1].Kind)
	assert.Equal(t, "Bio", recs[1].Topic)
}

func TestGenerateRecommendations_OverallWeakness(t *testing.T) {
	answers := []AnswerRecord{rec("A", TierEasy, false, 1), rec("A", TierEasy, true, 1), rec("B", TierEasy, true, 1), rec("B", TierEasy, false, 1), rec("C", TierEasy, false, 1)}
	recs := GenerateRecommendations(answers)

	last := recs[len(recs)-1]
	assert.Equal(t, KindWeakness, last.Kind)
	assert.Equal(t, OverallTopic, last.Topic)
	// A and B sit at 50%: no per-topic entry. C at 0% is a weakness.
	require.Len(t, recs, 2)
	assert.Equal(t, "C", recs[0].Topic)
}

func TestSummarizeHistory(t *testing.T) {
	assert.Equal(t, UserStats{}, SummarizeHistory(nil))

	entries := []HistoryEntry{
		{Results: Results{AccuracyPercent: 50}, Answers: []AnswerRecord{rec("a", TierEasy, true, 1.25), rec("a", TierEasy, false, 2)}},
		{Results: Results{AccuracyPercent: 75}, Answers: []AnswerRecord{rec("a", TierEasy, true, 3)}},
		{Results: Results{AccuracyPercent: 100}, Answers: nil},
	}
	st := SummarizeHistory(entries)
	assert.Equal(t, 3, st.TotalQuizzes)
	assert.Equal(t, 3, st.TotalQuestions)
	assert.Equal(t, 75.0, st.AvgAccuracy)
	assert.Equal(t, 100, st.BestAccuracy)
	assert.Equal(t, 6.3, st.TotalTime)
}

func TestTopicPerformance(t *testing.T) {
	entries := []HistoryEntry{
		{Answers: []AnswerRecord{rec("Math", TierEasy, true, 0), rec("Math", TierEasy, false, 0)}},
		{Answers: []AnswerRecord{rec("Math", TierEasy, true, 0), rec("", TierEasy, true, 0)}},
	}
	perf := TopicPerformance(entries)
	assert.Equal(t, TopicStat{Correct: 2, Total: 3, Accuracy: 66.7}, perf["Math"])
	assert.Equal(t, TopicStat{Correct: 1, Total: 1, Accuracy: 100}, perf[DefaultTopic])
}

func TestAccuracyTrend(t *testing.T) {
	mk := func(accs ...int) []HistoryEntry {
		out := make([]HistoryEntry, len(accs))
		for i, a := range accs {
			out[i] = HistoryEntry{Timestamp: time.Unix(int64(i), 0), Results: Results{AccuracyPercent: a}}
		}
		return out
	}
	assert.Equal(t, 0.0, AccuracyTrend(mk(10, 90)))
	assert.InDelta(t, 10.0, AccuracyTrend(mk(50, 60, 70)), 1e-9)
	assert.InDelta(t, -20.0, AccuracyTrend(mk(100, 80, 60, 40)), 1e-9)
	assert.Equal(t, 0.0, AccuracyTrend(mk(70, 70, 70)))
}

func TestComputeResults_UnsetDifficultyCountsAsMedium(t *testing.T) {
	var stored []AnswerRecord
	require.NoError(t, json.Unmarshal([]byte(`[
		{"question":"Capital of Peru?","correct_answer":"Lima","user_answer":"Lima","is_correct":true,"topic":"Geography"},
		{"question":"Capital of Chile?","correct_answer":"Santiago","user_answer":"","is_correct":false,"difficulty":null}
	]`), &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, TierMedium, stored[0].Difficulty)
	assert.Equal(t, TierMedium, stored[1].Difficulty)

	r := ComputeResults(append(stored, rec("Geography", Tier(0), true, 1)))
	assert.Equal(t, map[Tier]Tally{TierMedium: {Correct: 2, Total: 3}}, r.DifficultyAccuracy)
}

func TestNextTier_UnsetCurrentStartsAtMedium(t *testing.T) {
	assert.Equal(t, TierHard, NextTier(Tier(0), true, nil))
	assert.Equal(t, TierEasy, NextTier(Tier(0), false, nil))
}
