package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// QuestionRequest describes the context of the next question.
type QuestionRequest struct {
	Role       string
	Company    string
	Language   string
	History    []QA
	Difficulty int // 1-5, 0 means unspecified
}

// EvaluationRequest is one question/answer pair to assess.
type EvaluationRequest struct {
	Question string
	Answer   string
	Role     string
	Language string
}

// Evaluation is the model's assessment of a single answer.
type Evaluation struct {
	Score       float64  `json:"score"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions string   `json:"suggestions"`
	Continue    bool     `json:"continue"`
}

// SummaryRequest covers every answered question of an interview.
type SummaryRequest struct {
	Role     string
	Company  string
	Language string
	Turns    []QA
}

// Summary is the overall assessment of an interview.
type Summary struct {
	Score       float64  `json:"score"`
	Summary     string   `json:"summary"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions string   `json:"suggestions"`
}

// GenerateQuestion returns the model's text as the next question. The output
// is not validated beyond being non-empty.
func (c *Client) GenerateQuestion(ctx context.Context, req QuestionRequest) (string, error) {
	content, err := c.complete(ctx, "question", BuildQuestionPrompt(req))
	if err != nil {
		return "", err
	}
	c.log.Info("question generated", zap.Int("history", len(req.History)), zap.Int("length", len(content)))
	return content, nil
}

// EvaluateAnswer asks the model for a JSON assessment and extracts it from
// the free-form reply.
func (c *Client) EvaluateAnswer(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	content, err := c.complete(ctx, "evaluate", BuildEvaluationPrompt(req))
	if err != nil {
		return nil, err
	}
	eval, err := ExtractEvaluation(content)
	if err != nil {
		c.log.Warn("could not read evaluation", zap.Error(err))
		return nil, err
	}
	return eval, nil
}

// SummarizeInterview asks the model for an overall assessment of all turns.
func (c *Client) SummarizeInterview(ctx context.Context, req SummaryRequest) (*Summary, error) {
	content, err := c.complete(ctx, "summary", BuildSummaryPrompt(req))
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := decodeEmbedded(content, &s); err != nil {
		c.log.Warn("could not read summary", zap.Error(err))
		return nil, err
	}
	s.Score = clampScore(s.Score)
	return &s, nil
}

// ExtractEvaluation parses the brace-delimited JSON object embedded in content.
func ExtractEvaluation(content string) (*Evaluation, error) {
	var e Evaluation
	if err := decodeEmbedded(content, &e); err != nil {
		return nil, err
	}
	e.Score = clampScore(e.Score)
	return &e, nil
}

// ExtractJSONObject returns the span from the first '{' to the last '}'.
func ExtractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

func decodeEmbedded(content string, v any) error {
	raw, ok := ExtractJSONObject(content)
	if !ok {
		return ErrExtraction
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

func clampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}
