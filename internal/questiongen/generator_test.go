package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abhisek/smartquiz/internal/llm"
	"github.com/abhisek/smartquiz/internal/quiz"
)

const photosynthesis = "Photosynthesis is the process by which Plants convert light energy into chemical energy. " +
	"Chlorophyll absorbs light, and Carbon dioxide and water become glucose and oxygen."

func questionsJSON() json.RawMessage {
	return json.RawMessage(`{"questions":[
		{"question":"What pigment absorbs light?","answer":"Chlorophyll","distractors":["Keratin","Melanin","Hemoglobin"],"difficulty":"easy","topic":"Photosynthesis","type":"mcq"},
		{"question":"Photosynthesis produces oxygen.","answer":"True","distractors":[],"difficulty":"medium","topic":"Photosynthesis","type":"true_false"},
		{"question":"Plants convert light energy into ___ energy.","answer":"chemical","distractors":["ignored"],"difficulty":"hard","topic":"","type":"fill_blank"}
	]}`)
}

func TestGenerate_ParsesAndNormalizes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionsJSON()})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis, Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}

	if qs[0].Type != quiz.TypeMultipleChoice {
		t.Errorf("expected mcq to map to multiple_choice, got %q", qs[0].Type)
	}
	if len(qs[0].Distractors) != 3 {
		t.Errorf("expected 3 distractors, got %v", qs[0].Distractors)
	}
	if qs[0].Difficulty != quiz.TierEasy {
		t.Errorf("expected easy, got %v", qs[0].Difficulty)
	}
	if qs[1].Type != quiz.TypeTrueFalse || qs[1].Difficulty != quiz.TierMedium {
		t.Errorf("unexpected second question: %+v", qs[1])
	}
	if qs[2].Distractors != nil {
		t.Errorf("expected fill_blank distractors to be cleared, got %v", qs[2].Distractors)
	}
	if qs[2].Topic != quiz.DefaultTopic {
		t.Errorf("expected default topic, got %q", qs[2].Topic)
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionsJSON()})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != QuestionsSchema {
		t.Error("expected the questions schema")
	}
	if req.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", req.Temperature)
	}
	if req.System != systemPrompt {
		t.Error("expected the quiz generator system prompt")
	}
}

func TestGenerate_CapsAtCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionsJSON()})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis, Count: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
}

func TestGenerate_DropsInvalidQuestions(t *testing.T) {
	raw := json.RawMessage(`{"questions":[
		{"question":"","answer":"x","distractors":[],"difficulty":"easy","topic":"T","type":"short_answer"},
		{"question":"Is water wet?","answer":"Maybe","distractors":[],"difficulty":"easy","topic":"T","type":"true_false"},
		{"question":"Name the gas plants release.","answer":"Oxygen","distractors":[],"difficulty":"easy","topic":"T","type":"short_answer"}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 1 || qs[0].ExpectedAnswer != "Oxygen" {
		t.Fatalf("expected only the valid question, got %+v", qs)
	}
}

func TestGenerate_AllInvalid(t *testing.T) {
	raw := json.RawMessage(`{"questions":[
		{"question":"Pick one","answer":"A","distractors":["a","B"],"difficulty":"easy","topic":"T","type":"mcq"}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis})
	if !errors.Is(err, ErrNoValidQuestions) {
		t.Fatalf("expected ErrNoValidQuestions, got %v", err)
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError in chain, got %T", err)
	}
	if valErr.Validator != "choice" {
		t.Errorf("expected choice validator, got %q", valErr.Validator)
	}
}

func TestGenerate_EmptyList(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis})
	if !errors.Is(err, ErrNoValidQuestions) {
		t.Fatalf("expected ErrNoValidQuestions, got %v", err)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis})
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), GenerateInput{Content: photosynthesis}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGenerator_Name(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())
	if gen.Name() != llm.ProviderMock {
		t.Errorf("expected %q, got %q", llm.ProviderMock, gen.Name())
	}
}
