package validation

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/question"
)

func mcq() question.Question {
	return question.Question{
		Prompt:        "2+2?",
		Type:          question.MultipleChoice,
		Options:       question.TextOptions{"3", "4", "5"},
		CorrectAnswer: question.IndicesAnswer{1},
	}
}

func hasWarningOn(r Result, field string) bool {
	for _, w := range r.Warnings {
		if w.Field == field {
			return true
		}
	}
	return false
}

func TestValidMultipleChoice(t *testing.T) {
	r := ValidateQuestion(mcq())
	if !r.IsValid || len(r.Errors) != 0 {
		t.Fatalf("expected valid, got %+v", r.Errors)
	}
	if r.Errors == nil || r.Warnings == nil {
		t.Fatalf("lists must not be nil")
	}
	if !hasWarningOn(r, "question") {
		t.Fatalf("expected short prompt warning, got %+v", r.Warnings)
	}
}

func TestValidateQuestionIsIdempotent(t *testing.T) {
	q := question.Question{
		Prompt:  "Match capitals to countries",
		Type:    question.Matching,
		Options: question.PairOptions{{Left: "France", Right: "Paris"}, {Left: "Spain", Right: "Madrid"}, {Left: "Italy", Right: "Paris"}},
		CorrectAnswer: question.MappingAnswer{
			2: 0, 0: 0, 1: 9,
		},
	}
	first := ValidateQuestion(q)
	for i := 0; i < 20; i++ {
		if again := ValidateQuestion(q); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestBasicFields(t *testing.T) {
	cases := []struct {
		name string
		edit func(q *question.Question)
		code string
	}{
		{"empty prompt", func(q *question.Question) { q.Prompt = "   " }, CodeQuestionRequired},
		{"points too low", func(q *question.Question) { q.Points = question.Points(0) }, CodePointsRange},
		{"points too high", func(q *question.Question) { q.Points = question.Points(11) }, CodePointsRange},
		{"media without type", func(q *question.Question) { q.MediaURL = "https://cdn/x.png" }, CodeMediaTypeRequired},
		{"bad difficulty", func(q *question.Question) { q.Difficulty = "extreme" }, CodeInvalidDifficulty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := mcq()
			tc.edit(&q)
			r := ValidateQuestion(q)
			if r.IsValid || !r.HasCode(tc.code) {
				t.Fatalf("expected %s, got %+v", tc.code, r.Errors)
			}
		})
	}
}

func TestUnknownTypeShortCircuits(t *testing.T) {
	q := question.Question{Prompt: "What is this question about?", Type: "hotspot", Options: question.RawOptions(`7`)}
	r := ValidateQuestion(q)
	if len(r.Errors) != 1 || r.Errors[0].Code != CodeUnsupportedType {
		t.Fatalf("expected only UNSUPPORTED_TYPE, got %+v", r.Errors)
	}

	q.Type = ""
	r = ValidateQuestion(q)
	if len(r.Errors) != 1 || r.Errors[0].Code != CodeTypeRequired {
		t.Fatalf("expected only TYPE_REQUIRED, got %+v", r.Errors)
	}
}

func TestChoiceQuestion(t *testing.T) {
	cases := []struct {
		name    string
		q       question.Question
		code    string
		noError bool
	}{
		{
			name: "insufficient options",
			q:    question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"only one"}, CorrectAnswer: question.IndexAnswer(0)},
			code: CodeInsufficientOptions,
		},
		{
			name: "too many options",
			q:    question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"a", "b", "c", "d", "e", "f", "g"}, CorrectAnswer: question.IndexAnswer(0)},
			code: CodeTooManyOptions,
		},
		{
			name: "options not strings",
			q:    question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.RawOptions(`"a,b"`), CorrectAnswer: question.IndexAnswer(0)},
			code: CodeOptionsArrayRequired,
		},
		{
			name: "blank option",
			q:    question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"a", "  "}, CorrectAnswer: question.IndexAnswer(0)},
			code: CodeEmptyOptions,
		},
		{
			name: "multiple choice without answer",
			q:    question.Question{Prompt: "Which are right?", Type: question.MultipleChoice, Options: question.TextOptions{"a", "b"}, CorrectAnswer: question.IndicesAnswer{}},
			code: CodeNoCorrectAnswer,
		},
		{
			name: "multiple choice scalar answer",
			q:    question.Question{Prompt: "Which are right?", Type: question.MultipleChoice, Options: question.TextOptions{"a", "b"}, CorrectAnswer: question.IndexAnswer(1)},
			code: CodeInvalidCorrectAnswer,
		},
		{
			name: "multiple choice index out of range",
			q:    question.Question{Prompt: "Which are right?", Type: question.MultipleChoice, Options: question.TextOptions{"a", "b"}, CorrectAnswer: question.IndicesAnswer{0, 2}},
			code: CodeInvalidAnswerIndex,
		},
		{
			name: "single choice negative index",
			q:    question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"a", "b"}, CorrectAnswer: question.IndexAnswer(-1)},
			code: CodeInvalidCorrectAnswer,
		},
		{
			name: "single choice given a list",
			q:    question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"a", "b"}, CorrectAnswer: question.IndicesAnswer{1}},
			code: CodeInvalidCorrectAnswer,
		},
		{
			name:    "duplicate options only warn",
			q:       question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"a", "a"}, CorrectAnswer: question.IndexAnswer(1)},
			noError: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := ValidateQuestion(tc.q)
			if tc.noError {
				if !r.IsValid {
					t.Fatalf("expected valid, got %+v", r.Errors)
				}
				if !hasWarningOn(r, "options") {
					t.Fatalf("expected options warning, got %+v", r.Warnings)
				}
				return
			}
			if !r.HasCode(tc.code) {
				t.Fatalf("expected %s, got %+v", tc.code, r.Errors)
			}
		})
	}
}

func TestTrueFalse(t *testing.T) {
	base := func(a question.Answer) question.Question {
		return question.Question{
			Prompt:        "The earth orbits the sun.",
			Type:          question.TrueFalse,
			Options:       question.TextOptions{"True", "False"},
			CorrectAnswer: a,
		}
	}
	for _, a := range []question.Answer{question.IndexAnswer(0), question.IndexAnswer(1)} {
		if r := ValidateQuestion(base(a)); !r.IsValid {
			t.Fatalf("answer %v should be valid, got %+v", a, r.Errors)
		}
	}
	for _, a := range []question.Answer{question.IndexAnswer(2), question.IndexAnswer(-1), question.TextAnswer("True"), question.IndicesAnswer{0}} {
		if r := ValidateQuestion(base(a)); !r.HasCode(CodeInvalidTrueFalseAns) {
			t.Fatalf("answer %#v should be rejected, got %+v", a, r.Errors)
		}
	}

	reversed := base(question.IndexAnswer(0))
	reversed.Options = question.TextOptions{"False", "True"}
	if r := ValidateQuestion(reversed); !r.IsValid {
		t.Fatalf("option set in any order is accepted, got %+v", r.Errors)
	}

	yesNo := base(question.IndexAnswer(0))
	yesNo.Options = question.TextOptions{"Yes", "No"}
	if r := ValidateQuestion(yesNo); !r.HasCode(CodeInvalidTrueFalseOpts) {
		t.Fatalf("expected INVALID_TRUEFALSE_OPTIONS, got %+v", r.Errors)
	}

	if r := ValidateQuestion(base(nil)); !r.HasCode(CodeNoCorrectAnswer) {
		t.Fatalf("expected NO_CORRECT_ANSWER, got %+v", r.Errors)
	}
}

func TestFillBlank(t *testing.T) {
	q := question.Question{Prompt: "The capital of France is ___.", Type: question.FillBlank, CorrectAnswerText: "Paris"}
	r := ValidateQuestion(q)
	if !r.IsValid || len(r.Warnings) != 0 {
		t.Fatalf("expected clean result, got %+v", r)
	}

	q.CorrectAnswerText = ""
	q.CorrectAnswer = question.TextAnswer("Paris")
	if r := ValidateQuestion(q); !r.IsValid {
		t.Fatalf("text correct_answer should be accepted, got %+v", r.Errors)
	}

	q.CorrectAnswer = nil
	if r := ValidateQuestion(q); !r.HasCode(CodeBlankAnswerRequired) {
		t.Fatalf("expected BLANK_ANSWER_REQUIRED, got %+v", r.Errors)
	}

	noBlank := question.Question{Prompt: "Name the capital of France.", Type: question.FillBlank, CorrectAnswerText: "Paris"}
	r = ValidateQuestion(noBlank)
	if !r.IsValid || !hasWarningOn(r, "question") {
		t.Fatalf("missing placeholder should only warn, got %+v", r)
	}
}

func TestEssay(t *testing.T) {
	q := question.Question{Prompt: "Discuss the causes of the French Revolution.", Type: question.Essay}
	r := ValidateQuestion(q)
	if !r.IsValid {
		t.Fatalf("essay without answer is valid, got %+v", r.Errors)
	}
	if !hasWarningOn(r, "explanation") {
		t.Fatalf("expected rubric nudge, got %+v", r.Warnings)
	}

	q.Rubric = &question.Rubric{Criteria: []question.Criterion{{Key: "thesis", MaxPoints: 2}}}
	if r := ValidateQuestion(q); hasWarningOn(r, "explanation") {
		t.Fatalf("rubric should satisfy the nudge, got %+v", r.Warnings)
	}
}

func TestMatching(t *testing.T) {
	pairs := question.PairOptions{{Left: "H2O", Right: "Water"}, {Left: "NaCl", Right: "Salt"}}
	good := question.Question{
		Prompt:        "Match formulas to names",
		Type:          question.Matching,
		Options:       pairs,
		CorrectAnswer: question.MappingAnswer{0: 0, 1: 1},
		Explanation:   "Water is H2O, salt is NaCl.",
		Points:        question.Points(4),
	}
	if r := ValidateQuestion(good); !r.IsValid || len(r.Warnings) != 0 {
		t.Fatalf("expected clean result, got %+v", r)
	}

	stored := good
	stored.CorrectAnswer = question.TextAnswer(`{"0":0,"1":1}`)
	if r := ValidateQuestion(stored); !r.IsValid {
		t.Fatalf("stored json mapping should be accepted, got %+v", r.Errors)
	}

	cases := []struct {
		name string
		edit func(q *question.Question)
		code string
	}{
		{"not pairs", func(q *question.Question) { q.Options = question.TextOptions{"a", "b"} }, CodePairsArrayRequired},
		{"empty side", func(q *question.Question) { q.Options = question.PairOptions{{Left: "a", Right: ""}, {Left: "b", Right: "c"}} }, CodeInvalidPairs},
		{"no answer", func(q *question.Question) { q.CorrectAnswer = nil }, CodeMatchingAnswerReq},
		{"empty answer", func(q *question.Question) { q.CorrectAnswer = question.MappingAnswer{} }, CodeMatchingAnswerReq},
		{"index out of range", func(q *question.Question) { q.CorrectAnswer = question.MappingAnswer{0: 2, 1: 1} }, CodeInvalidMatchingIndex},
		{"negative key", func(q *question.Question) { q.CorrectAnswer = question.MappingAnswer{-1: 0} }, CodeInvalidMatchingIndex},
		{"corrupt stored answer", func(q *question.Question) { q.CorrectAnswer = question.TextAnswer(`{0:`) }, CodeInvalidAnswerFormat},
		{"too few pairs", func(q *question.Question) {
			q.Options = question.PairOptions{{Left: "a", Right: "b"}}
			q.CorrectAnswer = question.MappingAnswer{0: 0}
		}, CodeInsufficientOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := good.Clone()
			tc.edit(&q)
			if r := ValidateQuestion(q); !r.HasCode(tc.code) {
				t.Fatalf("expected %s, got %+v", tc.code, r.Errors)
			}
		})
	}

	dupes := good.Clone()
	dupes.Options = question.PairOptions{{Left: "a", Right: "x"}, {Left: "a", Right: "x"}}
	r := ValidateQuestion(dupes)
	if !r.IsValid {
		t.Fatalf("duplicate pairs only warn, got %+v", r.Errors)
	}
	if !hasWarningOn(r, "options[1].left") || !hasWarningOn(r, "options[1].right") {
		t.Fatalf("expected duplicate warnings, got %+v", r.Warnings)
	}
}

func TestOrdering(t *testing.T) {
	good := question.Question{
		Prompt:        "Order the planets from the sun",
		Type:          question.Ordering,
		Options:       question.TextOptions{"A", "B", "C"},
		CorrectAnswer: question.SequenceAnswer{"C", "A", "B"},
		Explanation:   "By distance.",
		Points:        question.Points(3),
	}
	if r := ValidateQuestion(good); !r.IsValid || len(r.Warnings) != 0 {
		t.Fatalf("expected clean result, got %+v", r)
	}

	cases := []struct {
		name  string
		edit  func(q *question.Question)
		codes []string
	}{
		{"missing item", func(q *question.Question) { q.CorrectAnswer = question.SequenceAnswer{"A", "B"} },
			[]string{CodeIncompleteSequence, CodeSequenceLenMismatch}},
		{"unknown item", func(q *question.Question) { q.CorrectAnswer = question.SequenceAnswer{"A", "B", "Z"} },
			[]string{CodeInvalidSequenceItems, CodeIncompleteSequence}},
		{"repeated item", func(q *question.Question) { q.CorrectAnswer = question.SequenceAnswer{"A", "A", "B", "C"} },
			[]string{CodeDuplicateSequenceItem, CodeSequenceLenMismatch}},
		{"duplicate options", func(q *question.Question) { q.Options = question.TextOptions{"A", "A", "B"} },
			[]string{CodeDuplicateItems}},
		{"empty option", func(q *question.Question) { q.Options = question.TextOptions{"A", "", "B"} },
			[]string{CodeEmptyItems}},
		{"no sequence", func(q *question.Question) { q.CorrectAnswer = nil },
			[]string{CodeSequenceRequired}},
		{"corrupt stored sequence", func(q *question.Question) { q.CorrectAnswer = question.TextAnswer("A,B,C") },
			[]string{CodeInvalidAnswerFormat}},
		{"options not strings", func(q *question.Question) { q.Options = question.PairOptions{{Left: "A", Right: "B"}} },
			[]string{CodeOptionsArrayRequired}},
		{"too many items", func(q *question.Question) {
			items := question.TextOptions{}
			for i := 0; i < 9; i++ {
				items = append(items, fmt.Sprintf("item %d", i))
			}
			q.Options = items
			q.CorrectAnswer = question.SequenceAnswer(items)
		}, []string{CodeTooManyOptions}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := good.Clone()
			tc.edit(&q)
			r := ValidateQuestion(q)
			for _, c := range tc.codes {
				if !r.HasCode(c) {
					t.Fatalf("expected %s, got %+v", c, r.Errors)
				}
			}
		})
	}
}

func TestComplexStructureWarnings(t *testing.T) {
	q := question.Question{
		Prompt:        "Order the steps of mitosis",
		Type:          question.Ordering,
		Options:       question.TextOptions{"Prophase", "Metaphase"},
		CorrectAnswer: question.SequenceAnswer{"Prophase", "Metaphase"},
	}
	r := ValidateQuestion(q)
	if !r.IsValid {
		t.Fatalf("expected valid, got %+v", r.Errors)
	}
	if !hasWarningOn(r, "explanation") || !hasWarningOn(r, "points") {
		t.Fatalf("expected explanation and points warnings, got %+v", r.Warnings)
	}
}

func TestQuizForm(t *testing.T) {
	r := ValidateQuizForm(nil)
	if r.IsValid || !r.HasCode(CodeNoQuestions) {
		t.Fatalf("expected NO_QUESTIONS, got %+v", r)
	}

	a := mcq()
	a.Prompt = "  What is 2+2?  "
	b := mcq()
	b.Prompt = "what is 2+2?"
	c := question.Question{Prompt: "Pick one", Type: question.SingleChoice, Options: question.TextOptions{"only"}, CorrectAnswer: question.IndexAnswer(0)}

	r = ValidateQuizForm([]question.Question{a, b})
	if !r.IsValid {
		t.Fatalf("duplicates only warn, got %+v", r.Errors)
	}
	if !hasWarningOn(r, "question_2.question") {
		t.Fatalf("expected duplicate warning, got %+v", r.Warnings)
	}

	r = ValidateQuizForm([]question.Question{a, c})
	if r.IsValid {
		t.Fatalf("expected invalid")
	}
	found := false
	for _, e := range r.Errors {
		if e.Field == "question_2.options" && e.Code == CodeInsufficientOptions {
			found = true
		}
		if !strings.HasPrefix(e.Field, "question_") {
			t.Fatalf("field not prefixed: %+v", e)
		}
	}
	if !found {
		t.Fatalf("expected prefixed error, got %+v", r.Errors)
	}
}

func TestQuizLevelAdvisories(t *testing.T) {
	var qs []question.Question
	for i := 0; i < 51; i++ {
		q := mcq()
		q.Prompt = fmt.Sprintf("What is %d + %d?", i, i)
		q.Points = question.Points(2)
		qs = append(qs, q)
	}
	r := ValidateQuizForm(qs)
	if !r.IsValid {
		t.Fatalf("advisories must not block, got %+v", r.Errors)
	}
	var variety, points, count bool
	for _, w := range r.Warnings {
		if w.Field != "questions" {
			continue
		}
		switch {
		case strings.Contains(w.Message, "all 51 questions"):
			variety = true
		case strings.Contains(w.Message, "total points"):
			points = true
		case strings.Contains(w.Message, "51 questions, recommended"):
			count = true
		}
	}
	if !variety || !points || !count {
		t.Fatalf("missing advisories variety=%v points=%v count=%v: %+v", variety, points, count, r.Warnings)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	var qs []question.Question
	for i := 0; i < 30; i++ {
		q := mcq()
		q.Prompt = fmt.Sprintf("Question number %d?", i%7)
		if i%4 == 0 {
			q.Options = question.TextOptions{"x"}
		}
		qs = append(qs, q)
	}
	seq := New().ValidateQuizForm(qs)
	par := New(WithParallelism(8)).ValidateQuizForm(qs)
	if !reflect.DeepEqual(seq, par) {
		t.Fatalf("parallel result differs from sequential")
	}
}

func TestCustomRules(t *testing.T) {
	rules := DefaultRules()
	r := rules[question.SingleChoice]
	r.MaxOptions = 3
	rules[question.SingleChoice] = r
	v := New(WithRules(rules))

	q := question.Question{Prompt: "Which one is right?", Type: question.SingleChoice, Options: question.TextOptions{"a", "b", "c", "d"}, CorrectAnswer: question.IndexAnswer(0)}
	if res := v.ValidateQuestion(q); !res.HasCode(CodeTooManyOptions) {
		t.Fatalf("expected TOO_MANY_OPTIONS with tightened rules, got %+v", res.Errors)
	}
	if res := ValidateQuestion(q); !res.IsValid {
		t.Fatalf("default rules must be unaffected, got %+v", res.Errors)
	}
}

func TestEveryTypeHasARule(t *testing.T) {
	rules := DefaultRules()
	for _, typ := range question.AllTypes() {
		if _, ok := rules[typ]; !ok {
			t.Fatalf("no rule for %s", typ)
		}
	}
}

func TestCombineKeepsDuplicates(t *testing.T) {
	a := Diagnostics{Errors: []Error{NewError("options", CodeEmptyOptions, "x")}}
	got := Combine(a, a)
	if len(got.Errors) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d", len(got.Errors))
	}
}

func TestResultErr(t *testing.T) {
	if err := ValidateQuestion(mcq()).Err(); err != nil {
		t.Fatalf("valid result must not error: %v", err)
	}
	bad := mcq()
	bad.Options = question.TextOptions{"x"}
	err := ValidateQuestion(bad).Err()
	if err == nil || !strings.Contains(err.Error(), CodeInsufficientOptions) {
		t.Fatalf("expected error mentioning code, got %v", err)
	}
}
