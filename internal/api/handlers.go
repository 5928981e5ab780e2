package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"interviewgw/internal/ai"
	"interviewgw/internal/model"
	"interviewgw/internal/session"
	"interviewgw/internal/speech"
	"interviewgw/internal/utils"
)

const serviceName = "interviewgw"

// Interviewer generates questions and assessments. *ai.Client implements it.
type Interviewer interface {
	Configured() bool
	GenerateQuestion(ctx context.Context, req ai.QuestionRequest) (string, error)
	EvaluateAnswer(ctx context.Context, req ai.EvaluationRequest) (*ai.Evaluation, error)
	SummarizeInterview(ctx context.Context, req ai.SummaryRequest) (*ai.Summary, error)
}

// Handler serves the REST surface. Vendor failures never surface as errors:
// every route that calls a vendor answers with mock data instead.
type Handler struct {
	tts           speech.Synthesizer
	asr           speech.Recognizer
	llm           Interviewer
	sessions      session.Store
	log           *zap.Logger
	maxAudioBytes int64

	newID func() string
	now   func() time.Time
}

// Deps are the collaborators of a Handler.
type Deps struct {
	TTS           speech.Synthesizer
	ASR           speech.Recognizer
	LLM           Interviewer
	Sessions      session.Store
	Logger        *zap.Logger
	MaxAudioBytes int64
}

func NewHandler(d Deps) *Handler {
	if d.MaxAudioBytes <= 0 {
		d.MaxAudioBytes = 10 << 20
	}
	return &Handler{
		tts:           d.TTS,
		asr:           d.ASR,
		llm:           d.LLM,
		sessions:      d.Sessions,
		log:           d.Logger.Named("api"),
		maxAudioBytes: d.MaxAudioBytes,
		newID:         uuid.NewString,
		now:           time.Now,
	}
}

// NewRouter builds the gin engine with middlewares and all routes.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(log))
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.healthCheck)

		interview := api.Group("/interview")
		interview.GET("/types", h.listInterviewTypes)
		interview.POST("/start", h.startInterview)
		interview.GET("/question", h.getQuestion)
		interview.POST("/answer", h.submitAnswer)
		interview.GET("/evaluate", h.evaluateInterview)

		sp := api.Group("/speech")
		sp.POST("/tts", h.textToSpeech)
		sp.POST("/asr", h.speechToText)
		sp.GET("/asr/websocket", h.asrStreamInfo)
	}
}

type configurable interface {
	Configured() bool
}

func isConfigured(v any) bool {
	c, ok := v.(configurable)
	return ok && c.Configured()
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	store := "ok"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.sessions.Ping(ctx); err != nil {
		h.log.Warn("session store ping failed", zap.Error(err))
		store = "unavailable"
	}

	utils.Success(c, gin.H{
		"service":           serviceName,
		"message":           "AI面试模拟系统API服务正常运行",
		"speech_configured": isConfigured(h.tts) && isConfigured(h.asr),
		"llm_configured":    h.llm.Configured(),
		"session_store":     store,
	})
}

func (h *Handler) listInterviewTypes(c *gin.Context) {
	utils.Success(c, model.InterviewTypes)
}

// storeError writes 404 for a missing interview or question and 500 otherwise.
func (h *Handler) storeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		utils.Error(c, http.StatusNotFound, "interview not found")
	case errors.Is(err, session.ErrQuestionNotFound):
		utils.Error(c, http.StatusNotFound, "question not found")
	default:
		h.log.Error(msg, zap.Error(err), zap.String("request_id", RequestIDFrom(c)))
		utils.Error(c, http.StatusInternalServerError, msg)
	}
}
