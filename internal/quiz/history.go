package quiz

import (
	"math"
	"time"
)

// HistoryEntry is a persisted quiz attempt.
type HistoryEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	Results   Results        `json:"results"`
	Answers   []AnswerRecord `json:"answers"`
}

// TotalTime returns the summed response time of the attempt in seconds.
func (h HistoryEntry) TotalTime() float64 {
	var t float64
	for _, a := range h.Answers {
		t += a.ResponseTimeSeconds
	}
	return t
}

// UserStats aggregates a user's history.
type UserStats struct {
	TotalQuizzes   int     `json:"total_quizzes"`
	TotalQuestions int     `json:"total_questions"`
	AvgAccuracy    float64 `json:"avg_accuracy"`
	BestAccuracy   int     `json:"best_accuracy"`
	TotalTime      float64 `json:"total_time"`
}

// SummarizeHistory computes UserStats over entries. Averages are rounded to
// one decimal place.
func SummarizeHistory(entries []HistoryEntry) UserStats {
	var st UserStats
	if len(entries) == 0 {
		return st
	}

	var accSum int
	var totalTime float64
	for _, e := range entries {
		st.TotalQuestions += len(e.Answers)
		accSum += e.Results.AccuracyPercent
		if e.Results.AccuracyPercent > st.BestAccuracy {
			st.BestAccuracy = e.Results.AccuracyPercent
		}
		totalTime += e.TotalTime()
	}
	st.TotalQuizzes = len(entries)
	st.AvgAccuracy = round1(float64(accSum) / float64(len(entries)))
	st.TotalTime = round1(totalTime)
	return st
}

// TopicStat is per-topic performance across attempts.
type TopicStat struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// TopicPerformance breaks down every recorded answer by topic.
func TopicPerformance(entries []HistoryEntry) map[string]TopicStat {
	tallies := make(map[string]Tally)
	for _, e := range entries {
		for _, a := range e.Answers {
			topic := a.Topic
			if topic == "" {
				topic = DefaultTopic
			}
			tallies[topic] = tallies[topic].add(a.IsCorrect)
		}
	}

	out := make(map[string]TopicStat, len(tallies))
	for topic, t := range tallies {
		out[topic] = TopicStat{
			Correct:  t.Correct,
			Total:    t.Total,
			Accuracy: round1(t.Accuracy()),
		}
	}
	return out
}

// AccuracyTrend returns the least-squares slope of accuracy (percentage
// points per attempt) over entries in chronological order. It returns 0
// for fewer than three entries.
func AccuracyTrend(entries []HistoryEntry) float64 {
	n := len(entries)
	if n < 3 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, e := range entries {
		x := float64(i + 1)
		y := float64(e.Results.AccuracyPercent)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
