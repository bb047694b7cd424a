package validation

import (
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// ValidateChoiceQuestion checks multiple_choice and single_choice questions.
// rule.AllowsMultipleCorrect selects between an index set and a single index.
func ValidateChoiceQuestion(q question.Question, rule Rule) Diagnostics {
	var d Diagnostics
	opts, ok := q.Options.(question.TextOptions)
	if !ok {
		d.addError("options", CodeOptionsArrayRequired, "options must be a list of strings")
		return d
	}
	checkOptionCount(&d, len(opts), rule)

	var empty []int
	seen := make(map[string]int, len(opts))
	for i, o := range opts {
		if strings.TrimSpace(o) == "" {
			empty = append(empty, i+1)
			continue
		}
		if first, dup := seen[o]; dup {
			d.addWarning("options", "Make every option distinct",
				"option %d duplicates option %d (%q)", i+1, first+1, o)
			continue
		}
		seen[o] = i
	}
	if len(empty) > 0 {
		d.addError("options", CodeEmptyOptions, "options must not be empty (positions %s)", joinInts(empty))
	}

	if rule.AllowsMultipleCorrect {
		checkIndexSet(&d, q.CorrectAnswer, len(opts), rule)
	} else {
		checkSingleIndex(&d, q.CorrectAnswer, len(opts), rule)
	}
	return d
}

// ValidateTrueFalseQuestion checks a true_false question. Options must be
// exactly {"True","False"} and the answer 0 (True) or 1 (False).
func ValidateTrueFalseQuestion(q question.Question, rule Rule) Diagnostics {
	var d Diagnostics
	opts, _ := q.Options.(question.TextOptions)
	if !isTrueFalseSet(opts) {
		d.addError("options", CodeInvalidTrueFalseOpts, "true/false options must be exactly %q and %q",
			question.TrueFalseLabels[0], question.TrueFalseLabels[1])
	}

	switch a := q.CorrectAnswer.(type) {
	case nil:
		if rule.RequiresCorrectAnswer {
			d.addError("correct_answer", CodeNoCorrectAnswer, "a correct answer is required")
		}
	case question.IndexAnswer:
		if a != question.TrueFalseTrue && a != question.TrueFalseFalse {
			d.addError("correct_answer", CodeInvalidTrueFalseAns,
				"true/false answer must be %d (True) or %d (False)", question.TrueFalseTrue, question.TrueFalseFalse)
		}
	default:
		d.addError("correct_answer", CodeInvalidTrueFalseAns,
			"true/false answer must be %d (True) or %d (False)", question.TrueFalseTrue, question.TrueFalseFalse)
	}
	return d
}

func isTrueFalseSet(opts question.TextOptions) bool {
	if len(opts) != len(question.TrueFalseLabels) {
		return false
	}
	want := map[string]bool{}
	for _, l := range question.TrueFalseLabels {
		want[l] = true
	}
	for _, o := range opts {
		if !want[o] {
			return false
		}
		delete(want, o)
	}
	return len(want) == 0
}

func checkOptionCount(d *Diagnostics, n int, rule Rule) {
	if n < rule.MinOptions {
		d.addError("options", CodeInsufficientOptions, "at least %d options are required, got %d", rule.MinOptions, n)
	}
	if rule.MaxOptions > 0 && n > rule.MaxOptions {
		d.addError("options", CodeTooManyOptions, "at most %d options are allowed, got %d", rule.MaxOptions, n)
	}
}

func checkIndexSet(d *Diagnostics, a question.Answer, n int, rule Rule) {
	switch v := a.(type) {
	case nil:
		if rule.RequiresCorrectAnswer {
			d.addError("correct_answer", CodeNoCorrectAnswer, "select at least one correct option")
		}
	case question.IndicesAnswer:
		if len(v) == 0 {
			if rule.RequiresCorrectAnswer {
				d.addError("correct_answer", CodeNoCorrectAnswer, "select at least one correct option")
			}
			return
		}
		seen := map[int]bool{}
		for _, i := range v {
			if i < 0 || i >= n {
				d.addError("correct_answer", CodeInvalidAnswerIndex, "correct option %d is out of range [0, %d]", i, n-1)
				continue
			}
			if seen[i] {
				d.addWarning("correct_answer", "List each correct option once", "correct option %d is listed twice", i)
			}
			seen[i] = true
		}
	default:
		d.addError("correct_answer", CodeInvalidCorrectAnswer, "correct answer must be a list of option indices")
	}
}

func checkSingleIndex(d *Diagnostics, a question.Answer, n int, rule Rule) {
	switch v := a.(type) {
	case nil:
		if rule.RequiresCorrectAnswer {
			d.addError("correct_answer", CodeNoCorrectAnswer, "select the correct option")
		}
	case question.IndexAnswer:
		switch {
		case v < 0:
			d.addError("correct_answer", CodeInvalidCorrectAnswer, "correct option must be a non-negative index")
		case int(v) >= n:
			d.addError("correct_answer", CodeInvalidAnswerIndex, "correct option %d is out of range [0, %d]", int(v), n-1)
		}
	default:
		d.addError("correct_answer", CodeInvalidCorrectAnswer, "correct answer must be a single option index")
	}
}
