package quiz

import (
	"fmt"
	"math"
)

// Tally counts correct answers out of a total.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns the tally as a percentage, or 0 when empty.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total) * 100
}

// Results summarizes a set of answers.
type Results struct {
	Total               int              `json:"total"`
	Correct             int              `json:"correct"`
	Incorrect           int              `json:"incorrect"`
	AccuracyPercent     int              `json:"accuracy"`
	AverageResponseTime float64          `json:"avg_response_time"`
	TopicAccuracy       map[string]Tally `json:"topic_performance"`
	DifficultyAccuracy  map[Tier]Tally   `json:"difficulty_performance"`
}

// ComputeResults aggregates answers. It never fails; an empty input yields
// zeroed results with empty maps.
func ComputeResults(answers []AnswerRecord) Results {
	r := Results{
		Total:              len(answers),
		TopicAccuracy:      make(map[string]Tally),
		DifficultyAccuracy: make(map[Tier]Tally),
	}
	if len(answers) == 0 {
		return r
	}

	var totalTime float64
	for _, a := range answers {
		totalTime += a.ResponseTimeSeconds
		if a.IsCorrect {
			r.Correct++
		}

		topic := a.Topic
		if topic == "" {
			topic = DefaultTopic
		}
		r.TopicAccuracy[topic] = r.TopicAccuracy[topic].add(a.IsCorrect)
		tier := a.Difficulty.OrDefault()
		r.DifficultyAccuracy[tier] = r.DifficultyAccuracy[tier].add(a.IsCorrect)
	}

	r.Incorrect = r.Total - r.Correct
	r.AccuracyPercent = int(math.Round(float64(r.Correct) / float64(r.Total) * 100))
	r.AverageResponseTime = totalTime / float64(r.Total)
	return r
}

func (t Tally) add(correct bool) Tally {
	t.Total++
	if correct {
		t.Correct++
	}
	return t
}

// RecommendationKind classifies a recommendation.
type RecommendationKind string

const (
	KindStrength RecommendationKind = "strength"
	KindWeakness RecommendationKind = "weakness"
)

// OverallTopic labels the whole-quiz recommendation.
const OverallTopic = "Overall"

// Recommendation is a study suggestion derived from answers.
type Recommendation struct {
	Kind    RecommendationKind `json:"type"`
	Topic   string             `json:"topic"`
	Message string             `json:"message"`
}

// GenerateRecommendations returns one recommendation per topic at or above
// 80% (strength) or below 50% (weakness), in the order topics first appear,
// followed by an overall recommendation when total accuracy is at least 90%
// or below 60%.
func GenerateRecommendations(answers []AnswerRecord) []Recommendation {
	if len(answers) == 0 {
		return nil
	}

	var order []string
	tallies := make(map[string]Tally)
	total := Tally{}
	for _, a := range answers {
		topic := a.Topic
		if topic == "" {
			topic = DefaultTopic
		}
		if _, seen := tallies[topic]; !seen {
			order = append(order, topic)
		}
		tallies[topic] = tallies[topic].add(a.IsCorrect)
		total = total.add(a.IsCorrect)
	}

	var recs []Recommendation
	for _, topic := range order {
		acc := tallies[topic].Accuracy()
		switch {
		case acc >= 80:
			recs = append(recs, Recommendation{
				Kind:    KindStrength,
				Topic:   topic,
				Message: fmt.Sprintf("Excellent performance in %s! (%.0f%% accuracy)", topic, acc),
			})
		case acc < 50:
			recs = append(recs, Recommendation{
				Kind:    KindWeakness,
				Topic:   topic,
				Message: fmt.Sprintf("Consider reviewing %s - current accuracy is %.0f%%", topic, acc),
			})
		}
	}

	switch overall := total.Accuracy(); {
	case overall >= 90:
		recs = append(recs, Recommendation{
			Kind:    KindStrength,
			Topic:   OverallTopic,
			Message: "Outstanding performance! Consider trying harder difficulty levels.",
		})
	case overall < 60:
		recs = append(recs, Recommendation{
			Kind:    KindWeakness,
			Topic:   OverallTopic,
			Message: "Focus on understanding core concepts before attempting more questions.",
		})
	}
	return recs
}
