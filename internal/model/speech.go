package model

// TTSPayload is the payload of POST /api/speech/tts. Audio is base64.
type TTSPayload struct {
	Audio          string  `json:"audio"`
	Format         string  `json:"format"`
	Duration       float64 `json:"duration"`
	Source         string  `json:"source"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
}

// ASRPayload is the payload of POST /api/speech/asr.
type ASRPayload struct {
	Text           string  `json:"text"`
	Confidence     float64 `json:"confidence"`
	Language       string  `json:"language"`
	Source         string  `json:"source"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
}

// ASRStreamInfo describes the streaming recognition endpoint.
type ASRStreamInfo struct {
	WebsocketURL     string   `json:"websocket_url"`
	Protocol         string   `json:"protocol"`
	SupportedFormats []string `json:"supported_formats"`
}
