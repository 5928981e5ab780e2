package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"interviewgw/internal/metrics"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "deepseek-chat",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func newLLMServer(t *testing.T, handler func(t *testing.T, req chatRequest) (int, any)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		status, body := handler(t, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestLLM(srvURL string, cfg Config) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	cfg.BaseURL = srvURL + "/v1"
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg, zap.NewNop())
}

func TestGenerateQuestion(t *testing.T) {
	srv, _ := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		if req.Model != "deepseek-chat" || req.MaxTokens != 2000 {
			t.Errorf("unexpected model params %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected one user message, got %+v", req.Messages)
		} else if !strings.Contains(req.Messages[0].Content, "Acme") {
			t.Errorf("prompt does not mention company: %q", req.Messages[0].Content)
		}
		return http.StatusOK, completion("  请介绍一下你最近的项目。\n")
	})

	c := newTestLLM(srv.URL, Config{})
	q, err := c.GenerateQuestion(context.Background(), QuestionRequest{Role: "backend", Company: "Acme", Language: "zh"})
	if err != nil {
		t.Fatalf("GenerateQuestion: %v", err)
	}
	if q != "请介绍一下你最近的项目。" {
		t.Fatalf("unexpected question %q", q)
	}
}

func TestGenerateQuestion_NotConfigured(t *testing.T) {
	srv, hits := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		return http.StatusOK, completion("unused")
	})
	c := NewClient(Config{BaseURL: srv.URL + "/v1"}, zap.NewNop())
	if c.Configured() {
		t.Fatal("client without key reports configured")
	}
	_, err := c.GenerateQuestion(context.Background(), QuestionRequest{Role: "backend"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatal("no upstream call expected without a key")
	}
}

func TestGenerateQuestion_EmptyChoices(t *testing.T) {
	srv, _ := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		body := completion("")
		body["choices"] = []any{}
		return http.StatusOK, body
	})
	_, err := newTestLLM(srv.URL, Config{}).GenerateQuestion(context.Background(), QuestionRequest{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestComplete_RejectedDoesNotTripBreaker(t *testing.T) {
	srv, hits := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		return http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "authentication_error"},
		}
	})
	c := newTestLLM(srv.URL, Config{BreakerFailures: 1, BreakerOpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		if _, err := c.GenerateQuestion(context.Background(), QuestionRequest{}); err == nil {
			t.Fatal("expected error for 401")
		}
	}
	if n := hits.Load(); n != 3 {
		t.Fatalf("expected every call to reach upstream, got %d", n)
	}
}

func TestComplete_ServerErrorOpensBreaker(t *testing.T) {
	srv, hits := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		return http.StatusServiceUnavailable, map[string]any{
			"error": map[string]any{"message": "overloaded", "type": "server_error"},
		}
	})
	c := newTestLLM(srv.URL, Config{BreakerFailures: 1, BreakerOpenTimeout: time.Minute})

	vendor := metrics.UpstreamRequests.WithLabelValues("deepseek", "question", "vendor")
	transport := metrics.UpstreamRequests.WithLabelValues("deepseek", "question", "transport")
	vendorBefore, transportBefore := testutil.ToFloat64(vendor), testutil.ToFloat64(transport)

	var reasons []string
	for i := 0; i < 3; i++ {
		_, err := c.GenerateQuestion(context.Background(), QuestionRequest{})
		if err == nil {
			t.Fatal("expected error for 503")
		}
		reasons = append(reasons, FailureReason(err))
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected breaker to stop after the first failure, got %d hits", n)
	}
	if reasons[0] != "vendor" || reasons[1] != "transport" || reasons[2] != "transport" {
		t.Fatalf("unexpected failure reasons %v", reasons)
	}

	// metrics use the same labels as FailureReason
	if d := testutil.ToFloat64(vendor) - vendorBefore; d != 1 {
		t.Fatalf("expected one vendor outcome, got %v", d)
	}
	if d := testutil.ToFloat64(transport) - transportBefore; d != 2 {
		t.Fatalf("expected two transport outcomes, got %v", d)
	}
}

func TestEvaluateAnswer(t *testing.T) {
	reply := "好的，以下是评估：\n```json\n" +
		`{"score": 82, "strengths": ["结构清晰"], "weaknesses": ["缺少数据"], "suggestions": "补充量化结果", "continue": true}` +
		"\n```"
	srv, _ := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		if len(req.Messages) == 1 && !strings.Contains(req.Messages[0].Content, "我做过缓存优化") {
			t.Errorf("answer missing from prompt")
		}
		return http.StatusOK, completion(reply)
	})

	eval, err := newTestLLM(srv.URL, Config{}).EvaluateAnswer(context.Background(), EvaluationRequest{
		Question: "介绍一个项目", Answer: "我做过缓存优化", Role: "backend", Language: "zh",
	})
	if err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}
	if eval.Score != 82 || !eval.Continue || eval.Suggestions != "补充量化结果" {
		t.Fatalf("unexpected evaluation %+v", eval)
	}
	if len(eval.Strengths) != 1 || eval.Strengths[0] != "结构清晰" {
		t.Fatalf("unexpected strengths %v", eval.Strengths)
	}
}

func TestEvaluateAnswer_NoJSON(t *testing.T) {
	srv, _ := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		return http.StatusOK, completion("The answer was fine.")
	})
	_, err := newTestLLM(srv.URL, Config{}).EvaluateAnswer(context.Background(), EvaluationRequest{Question: "q", Answer: "a"})
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestSummarizeInterview(t *testing.T) {
	srv, _ := newLLMServer(t, func(t *testing.T, req chatRequest) (int, any) {
		p := req.Messages[0].Content
		if !strings.Contains(p, "Question 2: q2") || !strings.Contains(p, "Answer 2: a2") {
			t.Errorf("transcript missing from prompt: %q", p)
		}
		return http.StatusOK, completion(`{"score": 140, "summary": "solid", "strengths": ["depth"], "weaknesses": [], "suggestions": "practice"}`)
	})

	s, err := newTestLLM(srv.URL, Config{}).SummarizeInterview(context.Background(), SummaryRequest{
		Role: "backend", Company: "Acme", Language: "en",
		Turns: []QA{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}},
	})
	if err != nil {
		t.Fatalf("SummarizeInterview: %v", err)
	}
	if s.Score != 100 || s.Summary != "solid" {
		t.Fatalf("unexpected summary %+v", s)
	}
}
