package grading

import (
	"fmt"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// ScoreRubric totals hand-awarded criterion points for an essay. Each award is
// clamped to [0, criterion max] and the total to the rubric max when one is set.
// Keys not in the rubric are ignored.
func ScoreRubric(r question.Rubric, awarded map[string]float64) (float64, []string) {
	total := 0.0
	notes := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		v := awarded[c.Key]
		if v < 0 {
			v = 0
		}
		if v > c.MaxPoints {
			v = c.MaxPoints
		}
		total += v
		notes = append(notes, fmt.Sprintf("%s:%.2f", c.Key, v))
	}
	if r.Max > 0 && total > r.Max {
		total = r.Max
	}
	return total, notes
}
