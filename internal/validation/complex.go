package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// ValidateMatchingQuestion checks the pairs of a matching question and the
// left-index to right-index mapping that forms its correct answer.
func ValidateMatchingQuestion(q question.Question, rule Rule) Diagnostics {
	var d Diagnostics
	pairs, ok := q.Options.(question.PairOptions)
	if !ok {
		d.addError("options", CodePairsArrayRequired, "options must be a list of {left, right} pairs")
		return d
	}
	checkOptionCount(&d, len(pairs), rule)

	lefts := map[string]int{}
	rights := map[string]int{}
	for i, p := range pairs {
		l, r := strings.TrimSpace(p.Left), strings.TrimSpace(p.Right)
		if l == "" || r == "" {
			d.addError(fmt.Sprintf("options[%d]", i), CodeInvalidPairs, "pair %d needs both a left and a right value", i+1)
			continue
		}
		if first, dup := lefts[l]; dup {
			d.addWarning(fmt.Sprintf("options[%d].left", i), "Make every left value distinct",
				"left value %q also appears in pair %d", l, first+1)
		} else {
			lefts[l] = i
		}
		if first, dup := rights[r]; dup {
			d.addWarning(fmt.Sprintf("options[%d].right", i), "Make every right value distinct",
				"right value %q also appears in pair %d", r, first+1)
		} else {
			rights[r] = i
		}
	}

	if q.CorrectAnswer == nil {
		if rule.RequiresCorrectAnswer {
			d.addError("correct_answer", CodeMatchingAnswerReq, "a matching answer is required")
		}
		return d
	}
	mapping, err := question.AsMapping(q.CorrectAnswer)
	if err != nil {
		d.addError("correct_answer", CodeInvalidAnswerFormat, "matching answer must map left indices to right indices")
		return d
	}
	if len(mapping) == 0 {
		d.addError("correct_answer", CodeMatchingAnswerReq, "a matching answer is required")
		return d
	}

	n := len(pairs)
	targets := map[int]int{}
	for _, left := range sortedKeys(mapping) {
		right := mapping[left]
		if left < 0 || left >= n || right < 0 || right >= n {
			d.addError("correct_answer", CodeInvalidMatchingIndex,
				"mapping %d -> %d is out of range [0, %d]", left, right, n-1)
			continue
		}
		if other, dup := targets[right]; dup {
			d.addWarning("correct_answer", "Map each left item to a different right item",
				"left items %d and %d both map to right item %d", other, left, right)
		} else {
			targets[right] = left
		}
	}
	if len(mapping) < n {
		d.addWarning("correct_answer", "Map every left item",
			"%d of %d left items have no match", n-len(mapping), n)
	}
	return d
}

// ValidateOrderingQuestion checks the items and requires the correct
// sequence to be a permutation of them.
func ValidateOrderingQuestion(q question.Question, rule Rule) Diagnostics {
	var d Diagnostics
	items, ok := q.Options.(question.TextOptions)
	if !ok {
		d.addError("options", CodeOptionsArrayRequired, "options must be a list of item strings")
		return d
	}
	checkOptionCount(&d, len(items), rule)

	present := make(map[string]bool, len(items))
	for i, it := range items {
		if strings.TrimSpace(it) == "" {
			d.addError(fmt.Sprintf("options[%d]", i), CodeEmptyItems, "item %d is empty", i+1)
			continue
		}
		if present[it] {
			d.addError(fmt.Sprintf("options[%d]", i), CodeDuplicateItems, "item %q appears more than once", it)
			continue
		}
		present[it] = true
	}

	if q.CorrectAnswer == nil {
		if rule.RequiresCorrectAnswer {
			d.addError("correct_answer", CodeSequenceRequired, "the correct order is required")
		}
		return d
	}
	seq, err := question.AsSequence(q.CorrectAnswer)
	if err != nil {
		d.addError("correct_answer", CodeInvalidAnswerFormat, "correct order must be a list of items")
		return d
	}
	if len(seq) == 0 {
		d.addError("correct_answer", CodeSequenceRequired, "the correct order is required")
		return d
	}

	used := map[string]bool{}
	var unknown, repeated []string
	for _, s := range seq {
		if !present[s] {
			unknown = append(unknown, s)
			continue
		}
		if used[s] {
			repeated = append(repeated, s)
			continue
		}
		used[s] = true
	}
	var missing []string
	for _, it := range items {
		if present[it] && !used[it] {
			missing = append(missing, it)
			used[it] = true
		}
	}
	if len(unknown) > 0 {
		d.addError("correct_answer", CodeInvalidSequenceItems, "correct order contains unknown items: %s", quoteAll(unknown))
	}
	if len(missing) > 0 {
		d.addError("correct_answer", CodeIncompleteSequence, "correct order is missing items: %s", quoteAll(missing))
	}
	if len(seq) != len(items) {
		d.addError("correct_answer", CodeSequenceLenMismatch, "correct order has %d items, options have %d", len(seq), len(items))
	}
	if len(repeated) > 0 {
		d.addError("correct_answer", CodeDuplicateSequenceItem, "correct order repeats items: %s", quoteAll(repeated))
	}
	return d
}

// ValidateComplexQuestionStructure adds the advisory checks shared by matching and ordering.
func ValidateComplexQuestionStructure(q question.Question, _ Rule) Diagnostics {
	var d Diagnostics
	if strings.TrimSpace(q.Explanation) == "" {
		d.addWarning("explanation", "Explain the correct answer step by step",
			"%s questions benefit from an explanation", string(q.Type))
	}
	if q.MaxPoints() < 2 {
		d.addWarning("points", "Consider awarding at least 2 points",
			"%s questions are usually worth more than %g point(s)", string(q.Type), q.MaxPoints())
	}
	return d
}

func sortedKeys(m question.MappingAnswer) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func quoteAll(v []string) string {
	parts := make([]string, len(v))
	for i, s := range v {
		parts[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(parts, ", ")
}
