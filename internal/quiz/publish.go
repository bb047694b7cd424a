package quiz

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/validation"
)

// CodeDuplicateQuestionID marks two questions of one quiz sharing an id.
const CodeDuplicateQuestionID = "DUPLICATE_QUESTION_ID"

// PublishError is returned when a quiz fails validation and was not stored.
type PublishError struct {
	Result validation.Result
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("quiz has %d validation error(s)", len(e.Result.Errors))
}

func (e *PublishError) Unwrap() error { return e.Result.Err() }

// Publish validates q and stores it when valid. Warnings never block publishing
// and are returned alongside the stored quiz.
func Publish(ctx context.Context, s Store, v *validation.Validator, q Quiz) (Quiz, validation.Result, error) {
	if v == nil {
		v = validation.New()
	}
	q.Questions = cloneQuestions(q.Questions)
	res := v.ValidateQuizForm(q.Questions)
	checkQuestionIDs(&res, q)
	if !res.IsValid {
		return Quiz{}, res, &PublishError{Result: res}
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if err := s.PutQuiz(ctx, q); err != nil {
		return Quiz{}, res, err
	}
	stored, err := s.GetQuiz(ctx, q.ID)
	if err != nil {
		return Quiz{}, res, err
	}
	return stored, res, nil
}

// checkQuestionIDs assigns "q<n>" to questions without an id and reports duplicates.
// Responses are keyed by question id, so ids must be unique within a quiz.
func checkQuestionIDs(res *validation.Result, q Quiz) {
	seen := make(map[string]int, len(q.Questions))
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = "q" + strconv.Itoa(i+1)
		}
		id := q.Questions[i].ID
		if first, dup := seen[id]; dup {
			res.Errors = append(res.Errors, validation.NewError(
				fmt.Sprintf("question_%d.id", i+1),
				CodeDuplicateQuestionID,
				fmt.Sprintf("Question id %q is already used by question %d", id, first+1),
			))
			res.IsValid = false
			continue
		}
		seen[id] = i
	}
}
