package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs. It is built once at startup and
// handed to each component; nothing reads the environment after Load returns.
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	XfyunAppID     string
	XfyunAPIKey    string
	XfyunAPISecret string
	XfyunTTSURL    string
	XfyunASRURL    string

	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	LLMTemperature  float32
	LLMMaxTokens    int

	UpstreamTimeout time.Duration

	RedisURL   string
	SessionTTL time.Duration

	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration

	MaxAudioBytes int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:      v.GetString("PORT"),
		GinMode:   v.GetString("GIN_MODE"),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		XfyunAppID:     strings.TrimSpace(v.GetString("XFYUN_APP_ID")),
		XfyunAPIKey:    strings.TrimSpace(v.GetString("XFYUN_API_KEY")),
		XfyunAPISecret: strings.TrimSpace(v.GetString("XFYUN_API_SECRET")),
		XfyunTTSURL:    v.GetString("XFYUN_TTS_URL"),
		XfyunASRURL:    v.GetString("XFYUN_ASR_URL"),

		DeepSeekAPIKey:  strings.TrimSpace(v.GetString("DEEPSEEK_API_KEY")),
		DeepSeekBaseURL: strings.TrimRight(v.GetString("DEEPSEEK_BASE_URL"), "/"),
		DeepSeekModel:   v.GetString("DEEPSEEK_MODEL"),
		LLMTemperature:  float32(v.GetFloat64("LLM_TEMPERATURE")),
		LLMMaxTokens:    v.GetInt("LLM_MAX_TOKENS"),

		UpstreamTimeout: v.GetDuration("UPSTREAM_TIMEOUT"),

		RedisURL:   v.GetString("REDIS_URL"),
		SessionTTL: v.GetDuration("SESSION_TTL"),

		BreakerFailures:    v.GetUint32("BREAKER_FAILURES"),
		BreakerOpenTimeout: v.GetDuration("BREAKER_OPEN_TIMEOUT"),

		MaxAudioBytes: v.GetInt64("MAX_AUDIO_BYTES"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("XFYUN_TTS_URL", "https://tts-api.xfyun.cn/v2/tts")
	v.SetDefault("XFYUN_ASR_URL", "https://iat-api.xfyun.cn/v2/iat")
	v.SetDefault("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1")
	v.SetDefault("DEEPSEEK_MODEL", "deepseek-chat")
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_TOKENS", 2000)
	v.SetDefault("UPSTREAM_TIMEOUT", 30*time.Second)
	v.SetDefault("SESSION_TTL", 2*time.Hour)
	v.SetDefault("BREAKER_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	v.SetDefault("MAX_AUDIO_BYTES", 10<<20)
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens)
	}
	if c.MaxAudioBytes <= 0 {
		return fmt.Errorf("MAX_AUDIO_BYTES must be positive, got %d", c.MaxAudioBytes)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// SpeechConfigured reports whether all three speech credentials are present.
func (c *Config) SpeechConfigured() bool {
	return c.XfyunAppID != "" && c.XfyunAPIKey != "" && c.XfyunAPISecret != ""
}

// LLMConfigured reports whether the chat-completion key is present.
func (c *Config) LLMConfigured() bool {
	return c.DeepSeekAPIKey != ""
}
