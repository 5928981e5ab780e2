package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"interviewgw/internal/metrics"
)

type asrBody struct {
	Common   commonParams `json:"common"`
	Business asrBusiness  `json:"business"`
	Data     asrData      `json:"data"`
}

type asrBusiness struct {
	Language string `json:"language"`
	Domain   string `json:"domain"`
	Accent   string `json:"accent"`
	VadEOS   int    `json:"vad_eos"`
}

type asrData struct {
	Status   int    `json:"status"`
	Format   string `json:"format"`
	Encoding string `json:"encoding"`
	Audio    string `json:"audio"`
}

// asrResponseData mirrors the vendor's nested word-segment layout:
// result.ws[] is a list of segments, each with candidate words cw[].
type asrResponseData struct {
	Result *struct {
		Sn int  `json:"sn"`
		Ls bool `json:"ls"`
		Ws []struct {
			Bg int `json:"bg"`
			Cw []struct {
				W  string  `json:"w"`
				Sc float64 `json:"sc"`
			} `json:"cw"`
		} `json:"ws"`
	} `json:"result"`
	Status int `json:"status"`
}

// Transcript concatenates every word of every segment in order.
func (d asrResponseData) Transcript() string {
	if d.Result == nil {
		return ""
	}
	var b strings.Builder
	for _, seg := range d.Result.Ws {
		for _, word := range seg.Cw {
			b.WriteString(word.W)
		}
	}
	return b.String()
}

// Recognize transcribes req.Audio.
func (c *XfyunClient) Recognize(ctx context.Context, req ASRRequest) *Result {
	started := time.Now()
	lang := MapLanguage(req.Language)
	c.log.Info("asr request", zap.Int("audio_bytes", len(req.Audio)), zap.String("language", lang))

	// call reports missing credentials ahead of any request check.
	if len(req.Audio) == 0 && c.cfg.configured() {
		metrics.ObserveUpstream(providerXfyun, "asr", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, "audio is empty")
	}

	body := asrBody{
		Common: commonParams{AppID: c.cfg.AppID},
		Business: asrBusiness{
			Language: lang,
			Domain:   "iat",
			Accent:   "mandarin",
			VadEOS:   3000,
		},
		Data: asrData{
			Status:   2,
			Format:   "audio/L16;rate=16000",
			Encoding: "raw",
			Audio:    base64.StdEncoding.EncodeToString(req.Audio),
		},
	}

	data, failed := c.call(ctx, "asr", c.asrBreaker, c.cfg.ASRURL, http.MethodPost, body, started)
	if failed != nil {
		return failed
	}

	var out asrResponseData
	if err := json.Unmarshal(data, &out); err != nil {
		metrics.ObserveUpstream(providerXfyun, "asr", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, fmt.Sprintf("failed to parse asr data: %v", err))
	}
	if out.Result == nil {
		metrics.ObserveUpstream(providerXfyun, "asr", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, "no recognition result in asr response")
	}

	text := out.Transcript()
	if strings.TrimSpace(text) == "" {
		c.log.Warn("empty transcript returned")
		metrics.ObserveUpstream(providerXfyun, "asr", metrics.OutcomeResponse, started)
		return failure(providerXfyun, KindResponse, "empty transcript returned")
	}

	metrics.ObserveUpstream(providerXfyun, "asr", metrics.OutcomeSuccess, started)
	c.log.Info("asr successful", zap.Int("length", len(text)), zap.Duration("duration", time.Since(started)))

	return &Result{
		Success:  true,
		Text:     text,
		Provider: providerXfyun,
	}
}
