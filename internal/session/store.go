package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"interviewgw/internal/model"
)

var (
	ErrNotFound         = errors.New("interview not found")
	ErrQuestionNotFound = errors.New("question not found in interview")
)

// Interview is the state kept between the calls of one interview.
type Interview struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Company   string    `json:"company"`
	Language  string    `json:"language"`
	UseML     bool      `json:"use_ml"`
	StartTime time.Time `json:"start_time"`
	Turns     []Turn    `json:"turns"`
}

// Turn is one asked question and, once submitted, its answer.
type Turn struct {
	QuestionID string                `json:"question_id"`
	Question   string                `json:"question"`
	Difficulty int                   `json:"difficulty"`
	AskedAt    time.Time             `json:"asked_at"`
	Answer     string                `json:"answer,omitempty"`
	AnsweredAt *time.Time            `json:"answered_at,omitempty"`
	Feedback   *model.AnswerFeedback `json:"feedback,omitempty"`
}

// Answered reports whether an answer was recorded for the turn.
func (t Turn) Answered() bool {
	return t.AnsweredAt != nil
}

// AnsweredTurns returns the turns that have an answer, in order.
func (iv *Interview) AnsweredTurns() []Turn {
	var out []Turn
	for _, t := range iv.Turns {
		if t.Answered() {
			out = append(out, t)
		}
	}
	return out
}

// Turn returns the turn with the given question id.
func (iv *Interview) Turn(questionID string) (Turn, bool) {
	for _, t := range iv.Turns {
		if t.QuestionID == questionID {
			return t, true
		}
	}
	return Turn{}, false
}

func (iv *Interview) clone() *Interview {
	cp := *iv
	cp.Turns = make([]Turn, len(iv.Turns))
	copy(cp.Turns, iv.Turns)
	return &cp
}

// appendTurn numbers the turn q1, q2, ... in ask order and stores it.
func (iv *Interview) appendTurn(turn Turn) string {
	turn.QuestionID = fmt.Sprintf("q%d", len(iv.Turns)+1)
	iv.Turns = append(iv.Turns, turn)
	return turn.QuestionID
}

func (iv *Interview) recordAnswer(questionID, answer string, fb *model.AnswerFeedback, at time.Time) error {
	for i := range iv.Turns {
		if iv.Turns[i].QuestionID != questionID {
			continue
		}
		iv.Turns[i].Answer = answer
		iv.Turns[i].AnsweredAt = &at
		iv.Turns[i].Feedback = fb
		return nil
	}
	return ErrQuestionNotFound
}

// Store keeps interview sessions. Implementations are safe for concurrent use.
type Store interface {
	// Create stores a new interview.
	Create(ctx context.Context, iv *Interview) error

	// Get returns a copy of the interview or ErrNotFound.
	Get(ctx context.Context, id string) (*Interview, error)

	// AppendQuestion adds an asked question to the interview and returns the
	// question id it assigned. Any QuestionID set on turn is replaced.
	AppendQuestion(ctx context.Context, id string, turn Turn) (string, error)

	// RecordAnswer stores the answer and its feedback on an asked question.
	RecordAnswer(ctx context.Context, id, questionID, answer string, fb *model.AnswerFeedback) error

	Ping(ctx context.Context) error
	Close() error
}

// Open returns a Redis-backed store when redisURL is set and reachable,
// otherwise an in-memory store.
func Open(ctx context.Context, redisURL string, ttl time.Duration, log *zap.Logger) Store {
	if redisURL == "" {
		log.Info("using in-memory session store", zap.Duration("ttl", ttl))
		return NewMemoryStore(ttl)
	}
	rs, err := NewRedisStore(ctx, redisURL, ttl, log)
	if err != nil {
		log.Warn("redis unavailable, using in-memory session store", zap.Error(err))
		return NewMemoryStore(ttl)
	}
	return rs
}
