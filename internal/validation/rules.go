package validation

import "github.com/mind-engage/mindengage-quiz/internal/question"

// AnswerFormat is how a type's correct answer is represented.
type AnswerFormat string

const (
	AnswerIndex AnswerFormat = "index"
	AnswerText  AnswerFormat = "text"
	AnswerJSON  AnswerFormat = "json"
)

// Rule holds the structural bounds of one question type.
type Rule struct {
	MinOptions            int
	MaxOptions            int
	RequiresCorrectAnswer bool
	AllowsMultipleCorrect bool
	AnswerFormat          AnswerFormat
	RequiresPairs         bool
	RequiresSequence      bool
}

// Rules is the per-type table strategies read their bounds from.
type Rules map[question.Type]Rule

// DefaultRules returns a fresh copy of the built-in table.
func DefaultRules() Rules {
	return Rules{
		question.MultipleChoice: {MinOptions: 2, MaxOptions: 6, RequiresCorrectAnswer: true, AllowsMultipleCorrect: true, AnswerFormat: AnswerIndex},
		question.SingleChoice:   {MinOptions: 2, MaxOptions: 6, RequiresCorrectAnswer: true, AnswerFormat: AnswerIndex},
		question.TrueFalse:      {MinOptions: 2, MaxOptions: 2, RequiresCorrectAnswer: true, AnswerFormat: AnswerIndex},
		question.FillBlank:      {RequiresCorrectAnswer: true, AnswerFormat: AnswerText},
		question.Essay:          {AnswerFormat: AnswerText},
		question.Matching:       {MinOptions: 2, MaxOptions: 10, RequiresCorrectAnswer: true, AnswerFormat: AnswerJSON, RequiresPairs: true},
		question.Ordering:       {MinOptions: 2, MaxOptions: 8, RequiresCorrectAnswer: true, AnswerFormat: AnswerJSON, RequiresSequence: true},
	}
}

// Limits are the soft and hard bounds that are not specific to a type.
type Limits struct {
	PromptMin        int
	PromptMax        int
	PointsMin        float64
	PointsMax        float64
	MaxTotalPoints   float64
	MaxQuestions     int
	VarietyThreshold int
}

func DefaultLimits() Limits {
	return Limits{
		PromptMin:        10,
		PromptMax:        500,
		PointsMin:        1,
		PointsMax:        10,
		MaxTotalPoints:   100,
		MaxQuestions:     50,
		VarietyThreshold: 5,
	}
}
