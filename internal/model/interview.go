package model

// Sources reported in every payload so clients can tell live results from mocks.
const (
	SourceMock     = "mock"
	SourceXfyun    = "xfyun"
	SourceDeepSeek = "deepseek"
)

// InterviewTypes maps an interview type id to its display label.
var InterviewTypes = map[string]string{
	"software_engineer":  "软件工程师",
	"product_manager":    "产品经理",
	"data_scientist":     "数据科学家",
	"frontend_developer": "前端开发工程师",
	"backend_developer":  "后端开发工程师",
}

// RoleLabel returns the display label for an interview type, or the type
// itself when it is not in the catalog.
func RoleLabel(interviewType string) string {
	if label, ok := InterviewTypes[interviewType]; ok {
		return label
	}
	return interviewType
}

// Question is the payload of GET /api/interview/question.
type Question struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	Difficulty     int    `json:"difficulty"`
	Source         string `json:"source"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// AnswerFeedback is the evaluation of one answer. Quality, Feedback and
// NextQuestion are derived from the detailed fields.
type AnswerFeedback struct {
	QuestionID     string   `json:"question_id"`
	Score          float64  `json:"score"`
	Quality        float64  `json:"quality"`
	Feedback       string   `json:"feedback"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Suggestions    string   `json:"suggestions"`
	NextQuestion   bool     `json:"next_question"`
	Source         string   `json:"source"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
}

// InterviewEvaluation is the overall assessment of an interview.
type InterviewEvaluation struct {
	InterviewID    string   `json:"interview_id"`
	Score          float64  `json:"score"`
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Suggestions    string   `json:"suggestions"`
	Answered       int      `json:"answered"`
	Source         string   `json:"source"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
}
