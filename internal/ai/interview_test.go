package ai

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractEvaluation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		score   float64
		err     error
	}{
		{"bare object", `{"score": 70, "continue": false}`, 70, nil},
		{"surrounded by prose", "Here you go: {\"score\": 55.5, \"strengths\": [\"a\"]} hope it helps", 55.5, nil},
		{"nested braces", `{"score": 90, "suggestions": "use {braces} carefully"}`, 90, nil},
		{"negative clamps", `{"score": -3}`, 0, nil},
		{"above range clamps", `{"score": 1000}`, 100, nil},
		{"no object", "no json here", 0, ErrExtraction},
		{"reversed braces", "} oops {", 0, ErrExtraction},
		{"malformed", `{"score": eighty}`, 0, ErrParse},
		{"two objects", `{"score": 1} and {"score": 2}`, 0, ErrParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractEvaluation(tc.content)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Score != tc.score {
				t.Fatalf("score = %v, want %v", got.Score, tc.score)
			}
		})
	}
}

func TestBuildQuestionPrompt(t *testing.T) {
	first := BuildQuestionPrompt(QuestionRequest{Role: "前端工程师", Company: "某公司", Language: "zh"})
	if !strings.Contains(first, "前端工程师") || strings.Contains(first, "问题1") {
		t.Fatalf("unexpected first prompt: %q", first)
	}

	follow := BuildQuestionPrompt(QuestionRequest{
		Role: "backend", Company: "Acme", Language: "en", Difficulty: 4,
		History: []QA{{Question: "Why Go?", Answer: "Concurrency."}},
	})
	for _, want := range []string{"Acme", "Question 1: Why Go?", "Answer 1: Concurrency.", "difficulty level 4"} {
		if !strings.Contains(follow, want) {
			t.Errorf("prompt missing %q:\n%s", want, follow)
		}
	}
}

func TestBuildEvaluationPrompt_Language(t *testing.T) {
	zh := BuildEvaluationPrompt(EvaluationRequest{Question: "q", Answer: "a", Role: "r"})
	if !strings.Contains(zh, "候选人回答：a") {
		t.Fatalf("empty language should default to chinese: %q", zh)
	}
	en := BuildEvaluationPrompt(EvaluationRequest{Question: "q", Answer: "a", Role: "r", Language: "en"})
	if !strings.Contains(en, "Candidate's answer: a") {
		t.Fatalf("unexpected english prompt: %q", en)
	}
}

func TestFailureReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{ErrNotConfigured, "config_missing"},
		{ErrEmptyResponse, "response"},
		{ErrExtraction, "response"},
		{errors.New("dial tcp: connection refused"), "transport"},
	}
	for _, tc := range cases {
		if got := FailureReason(tc.err); got != tc.want {
			t.Errorf("FailureReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
