package validation

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// ValidateBasicFields runs the checks shared by every question type.
// A missing or unknown type yields exactly one type error; the caller
// must then skip the type strategies.
func ValidateBasicFields(q question.Question, lim Limits) Diagnostics {
	var d Diagnostics

	prompt := strings.TrimSpace(q.Prompt)
	if prompt == "" {
		d.addError("question", CodeQuestionRequired, "question text is required")
	} else {
		n := utf8.RuneCountInString(prompt)
		if n < lim.PromptMin {
			d.addWarning("question", "Add more context so the question is unambiguous",
				"question text is short (%d characters, recommended at least %d)", n, lim.PromptMin)
		}
		if n > lim.PromptMax {
			d.addWarning("question", "Split long questions or move detail into the explanation",
				"question text is long (%d characters, recommended at most %d)", n, lim.PromptMax)
		}
	}

	switch {
	case q.Type == "":
		d.addError("question_type", CodeTypeRequired, "question type is required")
	case !q.Type.Valid():
		d.addError("question_type", CodeUnsupportedType, "unsupported question type %q", string(q.Type))
	}

	if q.Points != nil {
		p := *q.Points
		if math.IsNaN(p) || p < lim.PointsMin || p > lim.PointsMax {
			d.addError("points", CodePointsRange, "points must be between %g and %g", lim.PointsMin, lim.PointsMax)
		}
	}

	if strings.TrimSpace(q.MediaURL) != "" && strings.TrimSpace(q.MediaType) == "" {
		d.addError("media_type", CodeMediaTypeRequired, "media type is required when a media url is set")
	}

	if q.Difficulty != "" && !q.Difficulty.Valid() {
		d.addError("difficulty_level", CodeInvalidDifficulty, "difficulty must be easy, medium or hard")
	}
	return d
}
