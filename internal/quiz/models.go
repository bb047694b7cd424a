package quiz

import (
	"encoding/json"
	"errors"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadySubmitted   = errors.New("attempt already submitted")
	ErrNotSubmitted       = errors.New("attempt not submitted yet")
	ErrUnknownQuestion    = errors.New("question is not part of this attempt")
	ErrNotManuallyGraded  = errors.New("question is not manually graded")
	ErrInvalidManualGrade = errors.New("manual grade needs points or rubric criteria")
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusGraded     Status = "graded"
)

type Quiz struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	PassingScore float64             `json:"passing_score"` // percent
	Questions    []question.Question `json:"questions"`
	CreatedAt    int64               `json:"created_at,omitempty"`
}

// ForLearner returns the quiz without answer keys or grading aids.
func (q Quiz) ForLearner() Quiz {
	out := q
	out.Questions = make([]question.Question, len(q.Questions))
	for i, qq := range q.Questions {
		out.Questions[i] = qq.StripAnswers()
	}
	return out
}

type Summary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	QuestionCount int     `json:"question_count"`
	TotalPoints   float64 `json:"total_points"`
	CreatedAt     int64   `json:"created_at"`
}

func summarize(q Quiz) Summary {
	s := Summary{ID: q.ID, Title: q.Title, QuestionCount: len(q.Questions), CreatedAt: q.CreatedAt}
	for _, qq := range q.Questions {
		s.TotalPoints += qq.MaxPoints()
	}
	return s
}

// AttemptItem is the per-question outcome of a submitted attempt.
type AttemptItem struct {
	QuestionID    string        `json:"question_id"`
	Type          question.Type `json:"question_type"`
	Answered      bool          `json:"answered"`
	IsCorrect     bool          `json:"is_correct"`
	PointsEarned  float64       `json:"points_earned"`
	MaxPoints     float64       `json:"max_points"`
	PendingManual bool          `json:"pending_manual,omitempty"`
	Comment       string        `json:"comment,omitempty"`
	GradedBy      string        `json:"graded_by,omitempty"`
	Notes         []string      `json:"notes,omitempty"`
}

type Attempt struct {
	ID           string  `json:"id"`
	QuizID       string  `json:"quiz_id"`
	UserID       string  `json:"user_id"`
	Status       Status  `json:"status"`
	PassingScore float64 `json:"passing_score"`
	// Snapshot is the frozen copy of the quiz questions taken when the attempt started.
	Snapshot  []question.Question        `json:"-"`
	Responses map[string]json.RawMessage `json:"responses"` // questionID -> raw answer
	Items     []AttemptItem              `json:"items,omitempty"`

	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	Percentage    float64 `json:"percentage"`
	Passed        bool    `json:"passed"`
	PendingManual int     `json:"pending_manual"`

	StartedAt   int64  `json:"started_at"`
	SubmittedAt *int64 `json:"submitted_at,omitempty"`
}

type ManualGradeInput struct {
	Points   *float64           `json:"points,omitempty"`
	Criteria map[string]float64 `json:"criteria,omitempty"`
	Comment  string             `json:"comment,omitempty"`
}

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

func (o ListOpts) normalized() ListOpts {
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
