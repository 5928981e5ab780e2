package ai

import (
	"fmt"
	"strings"
)

// QA is one answered question of an interview.
type QA struct {
	Question string
	Answer   string
}

func isChinese(language string) bool {
	return language == "" || language == "zh" || strings.HasPrefix(language, "zh")
}

// BuildQuestionPrompt builds the instruction for the next interview question.
func BuildQuestionPrompt(req QuestionRequest) string {
	var b strings.Builder
	if isChinese(req.Language) {
		fmt.Fprintf(&b, "你是%s公司的面试官，正在面试一位%s职位的候选人。", req.Company, req.Role)
		if len(req.History) > 0 {
			b.WriteString("请根据候选人之前的回答，提出下一个面试问题。\n\n")
			for i, qa := range req.History {
				fmt.Fprintf(&b, "问题%d: %s\n回答%d: %s\n\n", i+1, qa.Question, i+1, qa.Answer)
			}
		} else {
			b.WriteString("请提出一个合适的面试问题。")
		}
		if req.Difficulty > 0 {
			fmt.Fprintf(&b, "\n问题难度为%d（1-5）。", req.Difficulty)
		}
		b.WriteString("\n只输出问题本身，不要附加解释。")
		return b.String()
	}

	fmt.Fprintf(&b, "You are an interviewer from %s, interviewing a candidate for the %s position. ", req.Company, req.Role)
	if len(req.History) > 0 {
		b.WriteString("Based on the candidate's previous answers, ask the next interview question.\n\n")
		for i, qa := range req.History {
			fmt.Fprintf(&b, "Question %d: %s\nAnswer %d: %s\n\n", i+1, qa.Question, i+1, qa.Answer)
		}
	} else {
		b.WriteString("Ask an appropriate interview question.")
	}
	if req.Difficulty > 0 {
		fmt.Fprintf(&b, "\nThe question should have difficulty level %d (1-5).", req.Difficulty)
	}
	b.WriteString("\nReply with the question only, without explanation.")
	return b.String()
}

// BuildEvaluationPrompt asks for a JSON assessment of one answer.
func BuildEvaluationPrompt(req EvaluationRequest) string {
	if isChinese(req.Language) {
		return fmt.Sprintf(`你是一位经验丰富的%s面试官。请评估下面这组面试问答：

问题：%s

候选人回答：%s

请给出：
1. 回答质量（0-100分）
2. 优点
3. 不足
4. 改进建议
5. 是否建议继续面试

请只返回如下格式的JSON：
{
  "score": 分数,
  "strengths": ["优点1", "优点2"],
  "weaknesses": ["不足1", "不足2"],
  "suggestions": "改进建议",
  "continue": true
}`, req.Role, req.Question, req.Answer)
	}

	return fmt.Sprintf(`You are an experienced %s interviewer. Evaluate the following interview exchange:

Question: %s

Candidate's answer: %s

Provide:
1. Answer quality (0-100)
2. Strengths
3. Weaknesses
4. Suggestions for improvement
5. Whether the interview should continue

Return only JSON in this format:
{
  "score": 0,
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"],
  "suggestions": "suggestions",
  "continue": true
}`, req.Role, req.Question, req.Answer)
}

// BuildSummaryPrompt asks for an overall assessment of a finished interview.
func BuildSummaryPrompt(req SummaryRequest) string {
	var transcript strings.Builder
	zh := isChinese(req.Language)
	for i, qa := range req.Turns {
		if zh {
			fmt.Fprintf(&transcript, "问题%d: %s\n回答%d: %s\n\n", i+1, qa.Question, i+1, qa.Answer)
		} else {
			fmt.Fprintf(&transcript, "Question %d: %s\nAnswer %d: %s\n\n", i+1, qa.Question, i+1, qa.Answer)
		}
	}

	if zh {
		return fmt.Sprintf(`你是%s公司的%s职位面试官。以下是一场完整面试的问答记录：

%s请对候选人的整体表现做出评估，只返回如下格式的JSON：
{
  "score": 总分(0-100),
  "summary": "总体评价",
  "strengths": ["优点1", "优点2"],
  "weaknesses": ["不足1", "不足2"],
  "suggestions": "改进建议"
}`, req.Company, req.Role, transcript.String())
	}

	return fmt.Sprintf(`You are an interviewer from %s for the %s position. Below is the transcript of a complete interview:

%sAssess the candidate's overall performance and return only JSON in this format:
{
  "score": 0,
  "summary": "overall assessment",
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"],
  "suggestions": "suggestions"
}`, req.Company, req.Role, transcript.String())
}
