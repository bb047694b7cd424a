package validation

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// Validator checks authored questions before a quiz is published.
// It holds only read-only configuration and is safe for concurrent use.
type Validator struct {
	rules       Rules
	limits      Limits
	parallelism int
}

type Option func(*Validator)

// WithRules replaces the per-type bounds table.
func WithRules(r Rules) Option { return func(v *Validator) { v.rules = r } }

func WithLimits(l Limits) Option { return func(v *Validator) { v.limits = l } }

// WithParallelism validates up to n questions of a quiz concurrently.
func WithParallelism(n int) Option { return func(v *Validator) { v.parallelism = n } }

func New(opts ...Option) *Validator {
	v := &Validator{
		rules:       DefaultRules(),
		limits:      DefaultLimits(),
		parallelism: 1,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

var defaultValidator = New()

// ValidateQuestion validates q with the default rules.
func ValidateQuestion(q question.Question) Result { return defaultValidator.ValidateQuestion(q) }

// ValidateQuizForm validates a question set with the default rules.
func ValidateQuizForm(qs []question.Question) Result { return defaultValidator.ValidateQuizForm(qs) }

func (v *Validator) ValidateQuestion(q question.Question) Result {
	return v.diagnose(q).Result()
}

func (v *Validator) diagnose(q question.Question) Diagnostics {
	basic := ValidateBasicFields(q, v.limits)
	if !q.Type.Valid() {
		return basic
	}
	rule, ok := v.rules[q.Type]
	if !ok {
		var d Diagnostics
		d.addError("question_type", CodeUnsupportedType, "no rules configured for %q", string(q.Type))
		return Combine(basic, d)
	}

	var typed Diagnostics
	switch q.Type {
	case question.MultipleChoice, question.SingleChoice:
		typed = ValidateChoiceQuestion(q, rule)
	case question.TrueFalse:
		typed = ValidateTrueFalseQuestion(q, rule)
	case question.FillBlank:
		typed = ValidateFillBlankQuestion(q, rule)
	case question.Essay:
		typed = ValidateEssayQuestion(q, rule)
	case question.Matching:
		typed = Combine(ValidateMatchingQuestion(q, rule), ValidateComplexQuestionStructure(q, rule))
	case question.Ordering:
		typed = Combine(ValidateOrderingQuestion(q, rule), ValidateComplexQuestionStructure(q, rule))
	default:
		typed.addError("question_type", CodeUnsupportedType, "unsupported question type %q", string(q.Type))
	}
	return Combine(basic, typed)
}

// ValidateQuizForm validates every question, nesting its diagnostics under
// question_<n> (1-based), then adds the quiz-level advisories.
func (v *Validator) ValidateQuizForm(qs []question.Question) Result {
	if len(qs) == 0 {
		var d Diagnostics
		d.addError("questions", CodeNoQuestions, "a quiz needs at least one question")
		return d.Result()
	}

	per := make([]Diagnostics, len(qs)+1)
	v.each(len(qs), func(i int) {
		per[i] = v.diagnose(qs[i]).withPrefix(fmt.Sprintf("question_%d", i+1))
	})
	per[len(qs)] = v.quizLevel(qs)
	return Combine(per...).Result()
}

// each runs fn for 0..n-1. Each call writes only its own slot, so no locking is needed.
func (v *Validator) each(n int, fn func(i int)) {
	if v.parallelism <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(v.parallelism)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func (v *Validator) quizLevel(qs []question.Question) Diagnostics {
	var d Diagnostics

	firstSeen := map[string]int{}
	for i, q := range qs {
		key := strings.ToLower(strings.TrimSpace(q.Prompt))
		if key == "" {
			continue
		}
		if first, dup := firstSeen[key]; dup {
			d.addWarning(fmt.Sprintf("question_%d.question", i+1), "Remove or reword the duplicate question",
				"question %d duplicates question %d", i+1, first+1)
			continue
		}
		firstSeen[key] = i
	}

	if len(qs) > v.limits.VarietyThreshold {
		same := true
		for _, q := range qs[1:] {
			if q.Type != qs[0].Type {
				same = false
				break
			}
		}
		if same {
			d.addWarning("questions", "Mix in other question types",
				"all %d questions are %s", len(qs), string(qs[0].Type))
		}
	}

	total := 0.0
	for _, q := range qs {
		total += q.MaxPoints()
	}
	if total > v.limits.MaxTotalPoints {
		d.addWarning("questions", "Lower the points of some questions",
			"total points %g exceed %g", total, v.limits.MaxTotalPoints)
	}

	if len(qs) > v.limits.MaxQuestions {
		d.addWarning("questions", "Split the quiz into smaller quizzes",
			"quiz has %d questions, recommended at most %d", len(qs), v.limits.MaxQuestions)
	}
	return d
}
