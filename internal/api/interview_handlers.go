package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interviewgw/internal/ai"
	"interviewgw/internal/model"
	"interviewgw/internal/session"
	"interviewgw/internal/utils"
)

// Type and Answer must be present but may be empty.
type startRequest struct {
	Type     *string `json:"type" binding:"required"`
	Company  string  `json:"company"`
	Language string  `json:"language"`
	UseML    *bool   `json:"use_ml"`
}

type answerRequest struct {
	InterviewID string  `json:"interview_id" binding:"required"`
	QuestionID  string  `json:"question_id" binding:"required"`
	Answer      *string `json:"answer" binding:"required"`
}

func (h *Handler) startInterview(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "type is required")
		return
	}
	if req.Language == "" {
		req.Language = "zh"
	}
	useML := true
	if req.UseML != nil {
		useML = *req.UseML
	}

	iv := &session.Interview{
		ID:        h.newID(),
		Type:      *req.Type,
		Role:      model.RoleLabel(*req.Type),
		Company:   req.Company,
		Language:  req.Language,
		UseML:     useML,
		StartTime: h.now(),
	}
	if err := h.sessions.Create(c.Request.Context(), iv); err != nil {
		h.storeError(c, err, "failed to create interview")
		return
	}

	h.log.Info("interview started",
		zap.String("interview_id", iv.ID),
		zap.String("type", iv.Type),
		zap.Bool("use_ml", iv.UseML),
	)
	utils.Success(c, gin.H{
		"interview_id": iv.ID,
		"type":         iv.Type,
		"role":         iv.Role,
		"company":      iv.Company,
		"language":     iv.Language,
		"use_ml":       iv.UseML,
		"start_time":   float64(iv.StartTime.UnixMilli()) / 1000,
	})
}

func (h *Handler) getQuestion(c *gin.Context) {
	id := c.Query("interview_id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "interview_id is required")
		return
	}
	difficulty := 0
	if s := c.Query("difficulty"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil || d < 1 || d > 5 {
			utils.Error(c, http.StatusBadRequest, "difficulty must be an integer between 1 and 5")
			return
		}
		difficulty = d
	}

	ctx := c.Request.Context()
	iv, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.storeError(c, err, "failed to load interview")
		return
	}

	turn := len(iv.Turns)
	q := model.Question{
		Type:       "open",
		Difficulty: difficulty,
		Source:     model.SourceDeepSeek,
	}
	if q.Difficulty == 0 {
		q.Difficulty = 1
	}

	if !iv.UseML {
		q.Content = mockQuestion(turn)
		q.Source = model.SourceMock
		q.FallbackReason = h.fallback(c, "question", reasonMLDisabled, nil)
	} else {
		content, err := h.llm.GenerateQuestion(ctx, ai.QuestionRequest{
			Role:       iv.Role,
			Company:    iv.Company,
			Language:   iv.Language,
			History:    history(iv),
			Difficulty: difficulty,
		})
		if err != nil {
			q.Content = mockQuestion(turn)
			q.Source = model.SourceMock
			q.FallbackReason = h.fallback(c, "question", ai.FailureReason(err), err)
		} else {
			q.Content = content
		}
	}

	// The store numbers the question so overlapping requests get distinct ids.
	q.ID, err = h.sessions.AppendQuestion(ctx, id, session.Turn{
		Question:   q.Content,
		Difficulty: q.Difficulty,
		AskedAt:    h.now(),
	})
	if err != nil {
		h.storeError(c, err, "failed to store question")
		return
	}

	utils.Success(c, q)
}

func (h *Handler) submitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "interview_id, question_id and answer are required")
		return
	}

	ctx := c.Request.Context()
	iv, err := h.sessions.Get(ctx, req.InterviewID)
	if err != nil {
		h.storeError(c, err, "failed to load interview")
		return
	}
	turn, ok := iv.Turn(req.QuestionID)
	if !ok {
		utils.Error(c, http.StatusNotFound, "question not found")
		return
	}

	var fb *model.AnswerFeedback
	if !iv.UseML {
		fb = mockFeedback(req.QuestionID, h.fallback(c, "answer", reasonMLDisabled, nil))
	} else {
		eval, err := h.llm.EvaluateAnswer(ctx, ai.EvaluationRequest{
			Question: turn.Question,
			Answer:   *req.Answer,
			Role:     iv.Role,
			Language: iv.Language,
		})
		if err != nil {
			fb = mockFeedback(req.QuestionID, h.fallback(c, "answer", ai.FailureReason(err), err))
		} else {
			fb = feedbackFrom(req.QuestionID, eval)
		}
	}

	if err := h.sessions.RecordAnswer(ctx, req.InterviewID, req.QuestionID, *req.Answer, fb); err != nil {
		h.storeError(c, err, "failed to store answer")
		return
	}

	utils.Success(c, fb)
}

func (h *Handler) evaluateInterview(c *gin.Context) {
	id := c.Query("interview_id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "interview_id is required")
		return
	}

	ctx := c.Request.Context()
	iv, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.storeError(c, err, "failed to load interview")
		return
	}

	qa := history(iv)
	switch {
	case len(qa) == 0:
		utils.Success(c, mockEvaluation(id, 0, h.fallback(c, "evaluate", reasonNoAnswers, nil)))
		return
	case !iv.UseML:
		utils.Success(c, mockEvaluation(id, len(qa), h.fallback(c, "evaluate", reasonMLDisabled, nil)))
		return
	}

	s, err := h.llm.SummarizeInterview(ctx, ai.SummaryRequest{
		Role:     iv.Role,
		Company:  iv.Company,
		Language: iv.Language,
		Turns:    qa,
	})
	if err != nil {
		utils.Success(c, mockEvaluation(id, len(qa), h.fallback(c, "evaluate", ai.FailureReason(err), err)))
		return
	}

	utils.Success(c, model.InterviewEvaluation{
		InterviewID: id,
		Score:       s.Score,
		Summary:     s.Summary,
		Strengths:   s.Strengths,
		Weaknesses:  s.Weaknesses,
		Suggestions: s.Suggestions,
		Answered:    len(qa),
		Source:      model.SourceDeepSeek,
	})
}

// history returns the answered turns as question/answer pairs.
func history(iv *session.Interview) []ai.QA {
	turns := iv.AnsweredTurns()
	out := make([]ai.QA, 0, len(turns))
	for _, t := range turns {
		out = append(out, ai.QA{Question: t.Question, Answer: t.Answer})
	}
	return out
}

func feedbackFrom(questionID string, e *ai.Evaluation) *model.AnswerFeedback {
	return &model.AnswerFeedback{
		QuestionID:   questionID,
		Score:        e.Score,
		Quality:      e.Score / 100,
		Feedback:     e.Suggestions,
		Strengths:    e.Strengths,
		Weaknesses:   e.Weaknesses,
		Suggestions:  e.Suggestions,
		NextQuestion: e.Continue,
		Source:       model.SourceDeepSeek,
	}
}
