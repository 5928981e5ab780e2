package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"interviewgw/internal/metrics"
)

type ttsBody struct {
	Common   commonParams `json:"common"`
	Business ttsBusiness  `json:"business"`
	Data     ttsData      `json:"data"`
}

type commonParams struct {
	AppID string `json:"app_id"`
}

type ttsBusiness struct {
	Aue    string `json:"aue"`
	Sfl    int    `json:"sfl"`
	Auf    string `json:"auf"`
	Vcn    string `json:"vcn"`
	Speed  int    `json:"speed"`
	Volume int    `json:"volume"`
	Pitch  int    `json:"pitch"`
	Tte    string `json:"tte"`
}

type ttsData struct {
	Text   string `json:"text"`
	Status int    `json:"status"`
}

type ttsResponseData struct {
	Audio  string `json:"audio"`
	Status int    `json:"status"`
	Ced    string `json:"ced"`
}

// Synthesize converts req.Text to raw 16 kHz PCM, returned base64 encoded.
func (c *XfyunClient) Synthesize(ctx context.Context, req TTSRequest) *Result {
	started := time.Now()
	req = req.withDefaults()
	c.log.Info("tts request", zap.Int("text_len", len(req.Text)), zap.String("voice", req.Voice))

	body := ttsBody{
		Common: commonParams{AppID: c.cfg.AppID},
		Business: ttsBusiness{
			Aue:    "raw",
			Sfl:    1,
			Auf:    "audio/L16;rate=16000",
			Vcn:    req.Voice,
			Speed:  req.Speed,
			Volume: req.Volume,
			Pitch:  req.Pitch,
			Tte:    "UTF8",
		},
		Data: ttsData{
			Text:   base64.StdEncoding.EncodeToString([]byte(req.Text)),
			Status: 2,
		},
	}

	// The vendor signs TTS with a GET request line even though the body is POSTed.
	data, failed := c.call(ctx, "tts", c.ttsBreaker, c.cfg.TTSURL, http.MethodGet, body, started)
	if failed != nil {
		return failed
	}

	var out ttsResponseData
	if err := json.Unmarshal(data, &out); err != nil {
		metrics.ObserveUpstream(providerXfyun, "tts", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, fmt.Sprintf("failed to parse tts data: %v", err))
	}
	if out.Audio == "" {
		metrics.ObserveUpstream(providerXfyun, "tts", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, "no audio in tts response")
	}

	audio, err := base64.StdEncoding.DecodeString(out.Audio)
	if err != nil {
		metrics.ObserveUpstream(providerXfyun, "tts", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, fmt.Sprintf("tts audio is not valid base64: %v", err))
	}

	metrics.ObserveUpstream(providerXfyun, "tts", metrics.OutcomeSuccess, started)
	c.log.Info("tts successful", zap.Int("audio_bytes", len(audio)), zap.Duration("duration", time.Since(started)))

	return &Result{
		Success:  true,
		Audio:    base64.StdEncoding.EncodeToString(audio),
		Provider: providerXfyun,
	}
}
