package speech

import (
	"go.uber.org/zap"

	"interviewgw/internal/config"
)

// NewFromConfig creates the speech client from application configuration
func NewFromConfig(cfg *config.Config, log *zap.Logger) *XfyunClient {
	if !cfg.SpeechConfigured() {
		log.Warn("XFYUN_APP_ID, XFYUN_API_KEY or XFYUN_API_SECRET not set; speech endpoints will serve mock data")
	} else {
		log.Info("creating xfyun speech client",
			zap.String("tts_url", cfg.XfyunTTSURL),
			zap.String("asr_url", cfg.XfyunASRURL),
		)
	}

	return NewXfyunClient(XfyunConfig{
		AppID:              cfg.XfyunAppID,
		APIKey:             cfg.XfyunAPIKey,
		APISecret:          cfg.XfyunAPISecret,
		TTSURL:             cfg.XfyunTTSURL,
		ASRURL:             cfg.XfyunASRURL,
		Timeout:            cfg.UpstreamTimeout,
		BreakerFailures:    cfg.BreakerFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, log)
}
