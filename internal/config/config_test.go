package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "XFYUN_APP_ID", "XFYUN_API_KEY", "XFYUN_API_SECRET",
		"XFYUN_TTS_URL", "DEEPSEEK_API_KEY", "DEEPSEEK_MODEL", "UPSTREAM_TIMEOUT", "SESSION_TTL",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.XfyunTTSURL != "https://tts-api.xfyun.cn/v2/tts" {
		t.Errorf("unexpected tts url %q", cfg.XfyunTTSURL)
	}
	if cfg.DeepSeekModel != "deepseek-chat" {
		t.Errorf("unexpected model %q", cfg.DeepSeekModel)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("unexpected timeout %s", cfg.UpstreamTimeout)
	}
	if cfg.SpeechConfigured() {
		t.Error("speech should not be configured without credentials")
	}
	if cfg.LLMConfigured() {
		t.Error("llm should not be configured without a key")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("XFYUN_APP_ID", "app")
	t.Setenv("XFYUN_API_KEY", " key ")
	t.Setenv("XFYUN_API_SECRET", "secret")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("DEEPSEEK_BASE_URL", "http://localhost:1234/v1/")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.XfyunAPIKey != "key" {
		t.Errorf("expected trimmed api key, got %q", cfg.XfyunAPIKey)
	}
	if cfg.DeepSeekBaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected trailing slash stripped, got %q", cfg.DeepSeekBaseURL)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Errorf("expected 15m ttl, got %s", cfg.SessionTTL)
	}
	if !cfg.SpeechConfigured() || !cfg.LLMConfigured() {
		t.Error("expected both upstreams configured")
	}
}

func TestLoad_RejectsBadFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}
