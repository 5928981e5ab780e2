package api

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interviewgw/internal/metrics"
	"interviewgw/internal/model"
)

// Fallback reasons beyond the upstream outcome labels.
const (
	reasonMLDisabled = "ml_disabled"
	reasonNoAnswers  = "no_answers"
)

// DummyAudio is the base64 placeholder served when synthesis is unavailable.
var DummyAudio = base64.StdEncoding.EncodeToString([]byte("DUMMY_AUDIO_DATA"))

var mockQuestions = []string{
	"请简单介绍一下你自己以及你的技术背景。",
	"请描述一个你参与过的最有挑战性的项目，以及你在其中承担的角色。",
	"遇到技术分歧时，你通常如何与团队成员沟通并达成一致？",
	"你最近在学习什么新技术？为什么选择它？",
	"你对这个职位有什么期望？未来三年的职业规划是什么？",
}

// fallback records that endpoint is answering with mock data and returns reason.
func (h *Handler) fallback(c *gin.Context, endpoint, reason string, err error) string {
	metrics.FallbackResponses.WithLabelValues(endpoint, reason).Inc()
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.String("reason", reason),
		zap.String("request_id", RequestIDFrom(c)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	h.log.Warn("serving mock response", fields...)
	return reason
}

// mockQuestion cycles through the fixed questions by turn index.
func mockQuestion(turn int) string {
	return mockQuestions[turn%len(mockQuestions)]
}

func mockFeedback(questionID, reason string) *model.AnswerFeedback {
	return &model.AnswerFeedback{
		QuestionID:     questionID,
		Score:          80,
		Quality:        0.8,
		Feedback:       "回答完整，展示了相关经验，但可以更具体地列举项目案例。",
		Strengths:      []string{"回答完整", "表达清晰"},
		Weaknesses:     []string{"缺少具体的项目案例"},
		Suggestions:    "回答完整，展示了相关经验，但可以更具体地列举项目案例。",
		NextQuestion:   true,
		Source:         model.SourceMock,
		FallbackReason: reason,
	}
}

func mockEvaluation(interviewID string, answered int, reason string) model.InterviewEvaluation {
	return model.InterviewEvaluation{
		InterviewID:    interviewID,
		Score:          85,
		Summary:        "面试表现良好，技术基础扎实，沟通流畅。可以更好地展示项目经验和解决问题的能力。",
		Strengths:      []string{"技术知识全面", "表达清晰", "逻辑思维好"},
		Weaknesses:     []string{"项目经验描述不够具体", "对某些技术细节掌握不够深入"},
		Suggestions:    "建议在回答中加入更多具体的项目案例和数据，展示解决复杂问题的能力。",
		Answered:       answered,
		Source:         model.SourceMock,
		FallbackReason: reason,
	}
}

func mockTTS(reason string) model.TTSPayload {
	return model.TTSPayload{
		Audio:          DummyAudio,
		Format:         "wav",
		Duration:       2.5,
		Source:         model.SourceMock,
		FallbackReason: reason,
	}
}

func mockASR(language, reason string) model.ASRPayload {
	return model.ASRPayload{
		Text:           "这是一个模拟的语音识别结果",
		Confidence:     asrConfidence,
		Language:       language,
		Source:         model.SourceMock,
		FallbackReason: reason,
	}
}
