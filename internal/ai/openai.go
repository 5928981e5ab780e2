package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"interviewgw/internal/breaker"
	"interviewgw/internal/logger"
	"interviewgw/internal/metrics"
)

const vendorDeepSeek = "deepseek"

var (
	ErrNotConfigured = errors.New("llm api key not configured")
	ErrEmptyResponse = errors.New("llm returned no choices")
	ErrExtraction    = errors.New("extraction failed")
	ErrParse         = errors.New("parse failed")
)

// Config configures the chat-completion client. BaseURL points at any
// OpenAI-compatible API (DeepSeek by default).
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

// Client generates interview questions and evaluates answers.
type Client struct {
	cfg     Config
	api     *openai.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewClient creates a new LLM client. A missing API key is reported on each
// call as ErrNotConfigured.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "deepseek-chat"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log = log.Named("llm")

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		cfg: cfg,
		api: openai.NewClientWithConfig(oc),
		breaker: breaker.New(breaker.Settings{
			Name:             "deepseek-chat",
			FailureThreshold: cfg.BreakerFailures,
			OpenTimeout:      cfg.BreakerOpenTimeout,
		}, log),
		log: log,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// FailureReason maps an error returned by the client to the outcome labels
// used by metrics and fallback payloads.
func FailureReason(err error) string {
	var apiErr *openai.APIError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrNotConfigured):
		return metrics.OutcomeConfigMissing
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrExtraction), errors.Is(err, ErrParse):
		return metrics.OutcomeResponse
	case errors.As(err, &apiErr):
		return metrics.OutcomeVendor
	default:
		return metrics.OutcomeTransport
	}
}

// rejected wraps a 4xx API error so it passes the breaker as a success.
type rejected struct{ err error }

// complete sends prompt as a single user message and returns the raw content.
func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	started := time.Now()
	if !c.Configured() {
		metrics.ObserveUpstream(vendorDeepSeek, op, metrics.OutcomeConfigMissing, started)
		return "", ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	c.log.Info("chat completion request",
		zap.String("operation", op),
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_len", len(prompt)),
	)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode < http.StatusInternalServerError {
			return rejected{err: err}, nil
		}
		return resp, err
	})
	if err != nil {
		c.log.Error("chat completion failed", zap.String("operation", op), zap.Error(err))
		metrics.ObserveUpstream(vendorDeepSeek, op, FailureReason(err), started)
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if r, ok := out.(rejected); ok {
		c.log.Error("chat completion rejected", zap.String("operation", op), zap.Error(r.err))
		metrics.ObserveUpstream(vendorDeepSeek, op, metrics.OutcomeVendor, started)
		return "", fmt.Errorf("llm request rejected: %w", r.err)
	}

	resp := out.(openai.ChatCompletionResponse)
	c.log.Info("chat completion received",
		zap.String("operation", op),
		zap.Int("choices", len(resp.Choices)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(started)),
	)

	if len(resp.Choices) == 0 {
		metrics.ObserveUpstream(vendorDeepSeek, op, metrics.OutcomeResponse, started)
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.log.Debug("chat completion content", zap.String("operation", op), zap.String("preview", logger.Preview(content, 500)))
	if content == "" {
		metrics.ObserveUpstream(vendorDeepSeek, op, metrics.OutcomeResponse, started)
		return "", ErrEmptyResponse
	}

	metrics.ObserveUpstream(vendorDeepSeek, op, metrics.OutcomeSuccess, started)
	return content, nil
}
