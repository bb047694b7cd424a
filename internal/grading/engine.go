package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// ErrCorruptAnswerKey marks a stored correct answer that could not be interpreted.
var ErrCorruptAnswerKey = errors.New("stored correct answer is unreadable")

// ErrNoStrategy is reported for a question type without a scoring strategy.
var ErrNoStrategy = errors.New("no scoring strategy for question type")

// Result is the outcome of scoring a single submitted answer.
type Result struct {
	IsCorrect    bool    `json:"isCorrect"`
	PointsEarned float64 `json:"pointsEarned"`
	MaxPoints    float64 `json:"maxPoints"`
	// Provisional is set for essays; their points wait for manual grading.
	Provisional bool `json:"provisional,omitempty"`
	// Fault is an integrity signal for operators, never shown to learners.
	// When set, IsCorrect is false.
	Fault error `json:"-"`
}

// Strategy scores one question type.
type Strategy interface {
	Score(q question.Question, submitted question.Answer) Result
}

// Scorer routes by question type to the correct Strategy. Score never panics.
type Scorer interface {
	Score(q question.Question, submitted question.Answer) Result
}

type defaultScorer struct {
	strategies map[question.Type]Strategy
}

func (s *defaultScorer) Score(q question.Question, submitted question.Answer) (res Result) {
	st, ok := s.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.MaxPoints(), Fault: fmt.Errorf("%w: %q", ErrNoStrategy, string(q.Type))}
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result{MaxPoints: q.MaxPoints(), Fault: fmt.Errorf("%w: scoring panicked: %v", ErrCorruptAnswerKey, r)}
		}
	}()
	return st.Score(q, submitted)
}

// Scorer options

type Option func(*config)

type config struct {
	MaxEditDistance int // fill_blank typo tolerance; 0 means exact
}

func WithMaxEditDistance(n int) Option { return func(c *config) { c.MaxEditDistance = n } }

// NewDefaultScorer installs a strategy for every question type.
func NewDefaultScorer(opts ...Option) Scorer {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return &defaultScorer{
		strategies: map[question.Type]Strategy{
			question.MultipleChoice: indexSetStrategy{},
			question.SingleChoice:   indexStrategy{},
			question.TrueFalse:      indexStrategy{},
			question.FillBlank:      fillBlankStrategy{maxEdit: cfg.MaxEditDistance},
			question.Essay:          essayStrategy{},
			question.Matching:       matchingStrategy{},
			question.Ordering:       orderingStrategy{},
		},
	}
}

var defaultEngine = NewDefaultScorer()

// Score scores submitted against q with the default strategies.
func Score(q question.Question, submitted question.Answer) Result {
	return defaultEngine.Score(q, submitted)
}

func verdict(q question.Question, correct bool) Result {
	res := Result{IsCorrect: correct, MaxPoints: q.MaxPoints()}
	if correct {
		res.PointsEarned = res.MaxPoints
	}
	return res
}

func fault(q question.Question, err error) Result {
	return Result{MaxPoints: q.MaxPoints(), Fault: err}
}

// --- Strategies ---

// indexStrategy serves single_choice and true_false: exact index equality.
// For true_false, index 0 is True.
type indexStrategy struct{}

func (indexStrategy) Score(q question.Question, submitted question.Answer) Result {
	key, ok := q.CorrectAnswer.(question.IndexAnswer)
	if !ok {
		return fault(q, fmt.Errorf("%w: %s expects an index, got %T", ErrCorruptAnswerKey, q.Type, q.CorrectAnswer))
	}
	resp, ok := submitted.(question.IndexAnswer)
	return verdict(q, ok && resp == key)
}

// indexSetStrategy serves multiple_choice: order-independent set equality.
type indexSetStrategy struct{}

func (indexSetStrategy) Score(q question.Question, submitted question.Answer) Result {
	key, ok := toSet(q.CorrectAnswer)
	if !ok || len(key) == 0 {
		return fault(q, fmt.Errorf("%w: multiple_choice expects option indices, got %T", ErrCorruptAnswerKey, q.CorrectAnswer))
	}
	resp, ok := toSet(submitted)
	return verdict(q, ok && setEqual(key, resp))
}

type fillBlankStrategy struct{ maxEdit int }

func (s fillBlankStrategy) Score(q question.Question, submitted question.Answer) Result {
	want := q.CorrectAnswerText
	if strings.TrimSpace(want) == "" {
		if t, ok := q.CorrectAnswer.(question.TextAnswer); ok {
			want = string(t)
		}
	}
	want = normalize(want)
	if want == "" {
		return fault(q, fmt.Errorf("%w: fill_blank has no expected text", ErrCorruptAnswerKey))
	}
	resp, ok := submitted.(question.TextAnswer)
	if !ok {
		return verdict(q, false)
	}
	got := normalize(string(resp))
	if got == want {
		return verdict(q, true)
	}
	return verdict(q, got != "" && s.maxEdit > 0 && levenshtein(got, want) <= s.maxEdit)
}

// essayStrategy only checks that something was written; the points are provisional.
type essayStrategy struct{}

func (essayStrategy) Score(q question.Question, submitted question.Answer) Result {
	resp, _ := submitted.(question.TextAnswer)
	res := verdict(q, strings.TrimSpace(string(resp)) != "")
	res.Provisional = true
	return res
}

type matchingStrategy struct{}

func (matchingStrategy) Score(q question.Question, submitted question.Answer) Result {
	key, err := question.AsMapping(q.CorrectAnswer)
	if err != nil {
		return fault(q, fmt.Errorf("%w: %v", ErrCorruptAnswerKey, err))
	}
	if len(key) == 0 {
		return fault(q, fmt.Errorf("%w: matching answer is empty", ErrCorruptAnswerKey))
	}
	resp, err := question.AsMapping(submitted)
	if err != nil || len(resp) != len(key) {
		return verdict(q, false)
	}
	for left, right := range key {
		got, ok := resp[left]
		if !ok || got != right {
			return verdict(q, false)
		}
	}
	return verdict(q, true)
}

type orderingStrategy struct{}

func (orderingStrategy) Score(q question.Question, submitted question.Answer) Result {
	key, err := question.AsSequence(q.CorrectAnswer)
	if err != nil {
		return fault(q, fmt.Errorf("%w: %v", ErrCorruptAnswerKey, err))
	}
	if len(key) == 0 {
		return fault(q, fmt.Errorf("%w: ordering answer is empty", ErrCorruptAnswerKey))
	}
	resp, err := question.AsSequence(submitted)
	if err != nil || len(resp) != len(key) {
		return verdict(q, false)
	}
	for i := range key {
		if resp[i] != key[i] {
			return verdict(q, false)
		}
	}
	return verdict(q, true)
}

// helpers

func toSet(a question.Answer) (map[int]struct{}, bool) {
	switch v := a.(type) {
	case question.IndicesAnswer:
		m := make(map[int]struct{}, len(v))
		for _, i := range v {
			m[i] = struct{}{}
		}
		return m, true
	case question.IndexAnswer:
		return map[int]struct{}{int(v): {}}, true
	default:
		return nil, false
	}
}

func setEqual(a, b map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
