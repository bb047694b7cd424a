package question

import "encoding/json"

// Type selects the validation and scoring strategy that governs a question.
type Type string

const (
	MultipleChoice Type = "multiple_choice"
	SingleChoice   Type = "single_choice"
	TrueFalse      Type = "true_false"
	FillBlank      Type = "fill_blank"
	Essay          Type = "essay"
	Matching       Type = "matching"
	Ordering       Type = "ordering"
)

// AllTypes lists every supported question type.
func AllTypes() []Type {
	return []Type{MultipleChoice, SingleChoice, TrueFalse, FillBlank, Essay, Matching, Ordering}
}

// Valid reports whether t is one of the supported types.
func (t Type) Valid() bool {
	for _, k := range AllTypes() {
		if t == k {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// True/false answers are option indices into {"True","False"}.
// True is 0 and False is 1; do not swap these for bool-to-int.
const (
	TrueFalseTrue  = 0
	TrueFalseFalse = 1
)

// TrueFalseLabels are the only accepted options of a true_false question.
var TrueFalseLabels = []string{"True", "False"}

// TrueFalseAnswer encodes a boolean as a true_false answer index.
func TrueFalseAnswer(v bool) IndexAnswer {
	if v {
		return TrueFalseTrue
	}
	return TrueFalseFalse
}

// DefaultPoints is awarded for a correct answer when a question has no points set.
const DefaultPoints = 1.0

// Rubric describes how an essay is graded by hand.
type Rubric struct {
	Criteria []Criterion `json:"criteria"`
	Max      float64     `json:"max_points"`
}

type Criterion struct {
	Key       string  `json:"key"`
	Desc      string  `json:"desc"`
	MaxPoints float64 `json:"max_points"`
}

// Question is an authored question. Options and CorrectAnswer shapes depend on Type.
type Question struct {
	ID                string
	Prompt            string
	Type              Type
	Options           Options
	CorrectAnswer     Answer
	CorrectAnswerText string
	Explanation       string
	Points            *float64
	Difficulty        Difficulty
	MediaURL          string
	MediaType         string
	SampleAnswer      string
	Rubric            *Rubric
}

// Points returns a pointer to v, for building questions in code.
func Points(v float64) *float64 { return &v }

// MaxPoints is what a fully correct answer earns.
func (q Question) MaxPoints() float64 {
	if q.Points == nil {
		return DefaultPoints
	}
	return *q.Points
}

// Clone returns a deep copy so that snapshots are unaffected by later edits.
func (q Question) Clone() Question {
	out := q
	out.Options = cloneOptions(q.Options)
	out.CorrectAnswer = cloneAnswer(q.CorrectAnswer)
	if q.Points != nil {
		out.Points = Points(*q.Points)
	}
	if q.Rubric != nil {
		r := *q.Rubric
		r.Criteria = append([]Criterion(nil), q.Rubric.Criteria...)
		out.Rubric = &r
	}
	return out
}

// StripAnswers removes everything a learner must not see.
func (q Question) StripAnswers() Question {
	out := q.Clone()
	out.CorrectAnswer = nil
	out.CorrectAnswerText = ""
	out.SampleAnswer = ""
	out.Explanation = ""
	out.Rubric = nil
	return out
}

type questionJSON struct {
	ID                string          `json:"id,omitempty"`
	Prompt            string          `json:"question"`
	Type              Type            `json:"question_type"`
	Options           json.RawMessage `json:"options,omitempty"`
	CorrectAnswer     json.RawMessage `json:"correct_answer,omitempty"`
	CorrectAnswerText string          `json:"correct_answer_text,omitempty"`
	Explanation       string          `json:"explanation,omitempty"`
	Points            *float64        `json:"points,omitempty"`
	Difficulty        Difficulty      `json:"difficulty_level,omitempty"`
	MediaURL          string          `json:"media_url,omitempty"`
	MediaType         string          `json:"media_type,omitempty"`
	SampleAnswer      string          `json:"sample_answer,omitempty"`
	Rubric            *Rubric         `json:"rubric,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:                q.ID,
		Prompt:            q.Prompt,
		Type:              q.Type,
		CorrectAnswerText: q.CorrectAnswerText,
		Explanation:       q.Explanation,
		Points:            q.Points,
		Difficulty:        q.Difficulty,
		MediaURL:          q.MediaURL,
		MediaType:         q.MediaType,
		SampleAnswer:      q.SampleAnswer,
		Rubric:            q.Rubric,
	}
	var err error
	if q.Options != nil {
		if out.Options, err = json.Marshal(q.Options); err != nil {
			return nil, err
		}
	}
	if q.CorrectAnswer != nil {
		if out.CorrectAnswer, err = json.Marshal(q.CorrectAnswer); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON never rejects unexpected options or answer shapes; they are kept
// as RawOptions/RawAnswer so validation can report them.
func (q *Question) UnmarshalJSON(b []byte) error {
	var in questionJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*q = Question{
		ID:                in.ID,
		Prompt:            in.Prompt,
		Type:              in.Type,
		Options:           DecodeOptions(in.Type, in.Options),
		CorrectAnswer:     DecodeAnswer(in.Type, in.CorrectAnswer),
		CorrectAnswerText: in.CorrectAnswerText,
		Explanation:       in.Explanation,
		Points:            in.Points,
		Difficulty:        in.Difficulty,
		MediaURL:          in.MediaURL,
		MediaType:         in.MediaType,
		SampleAnswer:      in.SampleAnswer,
		Rubric:            in.Rubric,
	}
	return nil
}
