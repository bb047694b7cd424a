package validation

import (
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// blankMarker also matches the longer "_____" form.
const blankMarker = "___"

// ValidateFillBlankQuestion requires an expected answer text and nudges
// authors to mark the blank in the prompt.
func ValidateFillBlankQuestion(q question.Question, rule Rule) Diagnostics {
	var d Diagnostics
	if rule.RequiresCorrectAnswer && expectedText(q) == "" {
		d.addError("correct_answer", CodeBlankAnswerRequired, "the expected answer for the blank is required")
	}
	if !strings.Contains(q.Prompt, blankMarker) {
		d.addWarning("question", "Mark the blank with ___ so learners see where the answer goes",
			"question text has no blank placeholder")
	}
	warnIgnoredOptions(&d, q, rule)
	return d
}

// ValidateEssayQuestion never blocks on a missing answer; essays are graded by hand.
func ValidateEssayQuestion(q question.Question, rule Rule) Diagnostics {
	var d Diagnostics
	hasRubric := q.Rubric != nil && len(q.Rubric.Criteria) > 0
	if expectedText(q) == "" && strings.TrimSpace(q.SampleAnswer) == "" &&
		strings.TrimSpace(q.Explanation) == "" && !hasRubric {
		d.addWarning("explanation", "Add a sample answer or a grading rubric",
			"essay has no sample answer, explanation or rubric")
	}
	if q.Rubric != nil {
		for i, c := range q.Rubric.Criteria {
			if strings.TrimSpace(c.Key) == "" {
				d.addWarning("rubric.criteria["+strconv.Itoa(i)+"]", "Give every criterion a key",
					"rubric criterion has no key and cannot be graded")
			}
		}
	}
	if rule.RequiresCorrectAnswer && expectedText(q) == "" {
		d.addError("correct_answer", CodeBlankAnswerRequired, "a sample answer is required")
	}
	warnIgnoredOptions(&d, q, rule)
	return d
}

// expectedText prefers correct_answer_text and falls back to a text correct_answer.
func expectedText(q question.Question) string {
	if s := strings.TrimSpace(q.CorrectAnswerText); s != "" {
		return s
	}
	if s, ok := q.CorrectAnswer.(question.TextAnswer); ok {
		return strings.TrimSpace(string(s))
	}
	return ""
}

func warnIgnoredOptions(d *Diagnostics, q question.Question, rule Rule) {
	if rule.MaxOptions == 0 && question.Len(q.Options) > 0 {
		d.addWarning("options", "Remove the options", "options are ignored for %s questions", string(q.Type))
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
