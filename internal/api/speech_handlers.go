package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interviewgw/internal/model"
	"interviewgw/internal/speech"
	"interviewgw/internal/utils"
)

// asrConfidence is reported for every transcript; the vendor's REST reply
// carries no usable score.
const asrConfidence = 0.95

// pcmBytesPerSecond for 16 kHz 16-bit mono, the format requested from the vendor.
const pcmBytesPerSecond = 16000 * 2

// Speed, Volume and Pitch are forwarded unchecked; the vendor rejects
// out-of-range values and the route falls back to mock audio.
type ttsRequest struct {
	Text     string `json:"text" binding:"required"`
	Voice    string `json:"voice"`
	Speed    *int   `json:"speed"`
	Volume   *int   `json:"volume"`
	Pitch    *int   `json:"pitch"`
	Language string `json:"language"`
}

func level(v *int) int {
	if v == nil {
		return speech.DefaultLevel
	}
	return *v
}

func (h *Handler) textToSpeech(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "text is required")
		return
	}

	res := h.tts.Synthesize(c.Request.Context(), speech.TTSRequest{
		Text:   req.Text,
		Voice:  req.Voice,
		Speed:  level(req.Speed),
		Volume: level(req.Volume),
		Pitch:  level(req.Pitch),
	})
	if !res.Success {
		utils.Success(c, mockTTS(h.fallback(c, "tts", string(res.Kind), errors.New(res.Error))))
		return
	}

	utils.Success(c, model.TTSPayload{
		Audio:    res.Audio,
		Format:   "pcm",
		Duration: pcmDuration(res.Audio),
		Source:   res.Provider,
	})
}

func (h *Handler) speechToText(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "audio file is required")
		return
	}
	if fh.Size > h.maxAudioBytes {
		utils.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("audio file exceeds %d bytes", h.maxAudioBytes))
		return
	}
	language := c.DefaultPostForm("language", "zh")

	f, err := fh.Open()
	if err != nil {
		h.log.Error("failed to open uploaded audio", zap.Error(err))
		utils.Error(c, http.StatusBadRequest, "failed to read audio file")
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(io.LimitReader(f, h.maxAudioBytes))
	if err != nil {
		h.log.Error("failed to read uploaded audio", zap.Error(err))
		utils.Error(c, http.StatusBadRequest, "failed to read audio file")
		return
	}

	h.log.Info("recognizing audio",
		zap.String("filename", fh.Filename),
		zap.Int("bytes", len(audio)),
		zap.String("language", language),
	)

	res := h.asr.Recognize(c.Request.Context(), speech.ASRRequest{Audio: audio, Language: language})
	if !res.Success {
		utils.Success(c, mockASR(language, h.fallback(c, "asr", string(res.Kind), errors.New(res.Error))))
		return
	}

	utils.Success(c, model.ASRPayload{
		Text:       res.Text,
		Confidence: asrConfidence,
		Language:   language,
		Source:     res.Provider,
	})
}

func (h *Handler) asrStreamInfo(c *gin.Context) {
	scheme := "ws"
	if c.Request.TLS != nil {
		scheme = "wss"
	}
	utils.Success(c, model.ASRStreamInfo{
		WebsocketURL:     scheme + "://" + c.Request.Host + "/api/speech/ws",
		Protocol:         "xf-asr-1.0",
		SupportedFormats: []string{"wav", "pcm"},
	})
}

func pcmDuration(audio string) float64 {
	n := base64.StdEncoding.DecodedLen(len(audio))
	if len(audio) >= 2 {
		for _, ch := range audio[len(audio)-2:] {
			if ch == '=' {
				n--
			}
		}
	}
	return float64(n) / pcmBytesPerSecond
}
