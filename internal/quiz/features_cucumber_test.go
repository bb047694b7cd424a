//go:build cucumber

package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/validation"
)

// TestFeatures runs the validation, scoring and attempt feature scenarios.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz-engine",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "features")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires the step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &scenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a question:$`, state.givenQuestion)
	ctx.Step(`^a quiz with questions:$`, state.givenQuizQuestions)
	ctx.Step(`^I validate the question$`, state.whenValidateQuestion)
	ctx.Step(`^I validate the quiz$`, state.whenValidateQuiz)
	ctx.Step(`^the (?:question|quiz) is valid$`, state.thenValid)
	ctx.Step(`^validation fails with code "([^"]+)"$`, state.thenFailsWithCode)
	ctx.Step(`^there is a warning on "([^"]+)"$`, state.thenWarningOn)

	ctx.Step(`^I score the answer (.+)$`, state.whenScore)
	ctx.Step(`^the answer is correct for (\d+(?:\.\d+)?) points$`, state.thenCorrectFor)
	ctx.Step(`^the answer is incorrect$`, state.thenIncorrect)
	ctx.Step(`^a scoring fault is reported$`, state.thenFault)

	ctx.Step(`^the quiz "([^"]+)" is published with passing score (\d+) and questions:$`, state.givenPublished)
	ctx.Step(`^a learner starts an attempt on "([^"]+)"$`, state.givenAttempt)
	ctx.Step(`^the author changes question "([^"]+)" to have correct answer (.+)$`, state.givenAuthorEdit)
	ctx.Step(`^the learner answers "([^"]+)" with (.+)$`, state.whenAnswer)
	ctx.Step(`^the learner submits$`, state.whenSubmit)
	ctx.Step(`^the attempt score is (\d+(?:\.\d+)?) out of (\d+(?:\.\d+)?)$`, state.thenAttemptScore)
	ctx.Step(`^(\d+) answers? awaits? manual grading$`, state.thenPending)
	ctx.Step(`^the attempt (passed|failed)$`, state.thenPassFail)
}

// scenarioState holds per-scenario values.
type scenarioState struct {
	question  question.Question
	questions []question.Question
	result    validation.Result
	score     grading.Result

	store   Store
	quizID  string
	attempt Attempt
}

func (s *scenarioState) reset() {
	*s = scenarioState{store: NewMemoryStore()}
}

func (s *scenarioState) givenQuestion(doc *godog.DocString) error {
	var q question.Question
	if err := json.Unmarshal([]byte(doc.Content), &q); err != nil {
		return fmt.Errorf("question json: %w", err)
	}
	s.question = q
	return nil
}

func (s *scenarioState) givenQuizQuestions(doc *godog.DocString) error {
	var qs []question.Question
	if err := json.Unmarshal([]byte(doc.Content), &qs); err != nil {
		return fmt.Errorf("questions json: %w", err)
	}
	s.questions = qs
	return nil
}

func (s *scenarioState) whenValidateQuestion() error {
	s.result = validation.ValidateQuestion(s.question)
	return nil
}

func (s *scenarioState) whenValidateQuiz() error {
	s.result = validation.ValidateQuizForm(s.questions)
	return nil
}

func (s *scenarioState) thenValid() error {
	if !s.result.IsValid {
		return fmt.Errorf("expected valid, got errors %+v", s.result.Errors)
	}
	return nil
}

func (s *scenarioState) thenFailsWithCode(code string) error {
	if s.result.IsValid {
		return fmt.Errorf("expected validation to fail")
	}
	if !s.result.HasCode(code) {
		return fmt.Errorf("expected code %s, got %+v", code, s.result.Errors)
	}
	return nil
}

func (s *scenarioState) thenWarningOn(field string) error {
	for _, w := range s.result.Warnings {
		if w.Field == field {
			return nil
		}
	}
	return fmt.Errorf("no warning on %s in %+v", field, s.result.Warnings)
}

func (s *scenarioState) whenScore(answer string) error {
	s.score = grading.Score(s.question, question.DecodeAnswer(s.question.Type, json.RawMessage(answer)))
	return nil
}

func (s *scenarioState) thenCorrectFor(points float64) error {
	if !s.score.IsCorrect || s.score.PointsEarned != points {
		return fmt.Errorf("expected correct for %v points, got %+v", points, s.score)
	}
	return nil
}

func (s *scenarioState) thenIncorrect() error {
	if s.score.IsCorrect || s.score.PointsEarned != 0 {
		return fmt.Errorf("expected incorrect, got %+v", s.score)
	}
	return nil
}

func (s *scenarioState) thenFault() error {
	if !errors.Is(s.score.Fault, grading.ErrCorruptAnswerKey) {
		return fmt.Errorf("expected a corrupt key fault, got %v", s.score.Fault)
	}
	return nil
}

func (s *scenarioState) givenPublished(id string, passing int, doc *godog.DocString) error {
	var qs []question.Question
	if err := json.Unmarshal([]byte(doc.Content), &qs); err != nil {
		return fmt.Errorf("questions json: %w", err)
	}
	_, _, err := Publish(context.Background(), s.store, nil, Quiz{ID: id, Title: id, PassingScore: float64(passing), Questions: qs})
	return err
}

func (s *scenarioState) givenAttempt(quizID string) error {
	a, err := s.store.NewAttempt(context.Background(), quizID, "learner")
	if err != nil {
		return err
	}
	s.quizID, s.attempt = quizID, a
	return nil
}

func (s *scenarioState) givenAuthorEdit(qid, answer string) error {
	ctx := context.Background()
	q, err := s.store.GetQuiz(ctx, s.quizID)
	if err != nil {
		return err
	}
	for i := range q.Questions {
		if q.Questions[i].ID == qid {
			q.Questions[i].CorrectAnswer = question.DecodeAnswer(q.Questions[i].Type, json.RawMessage(answer))
			return s.store.PutQuiz(ctx, q)
		}
	}
	return fmt.Errorf("question %s not found", qid)
}

func (s *scenarioState) whenAnswer(qid, answer string) error {
	a, err := s.store.SaveResponses(context.Background(), s.attempt.ID, map[string]json.RawMessage{qid: json.RawMessage(answer)})
	if err != nil {
		return err
	}
	s.attempt = a
	return nil
}

func (s *scenarioState) whenSubmit() error {
	a, err := s.store.Submit(context.Background(), s.attempt.ID)
	if err != nil {
		return err
	}
	s.attempt = a
	return nil
}

func (s *scenarioState) thenAttemptScore(score, outOf float64) error {
	if s.attempt.Score != score || s.attempt.MaxScore != outOf {
		return fmt.Errorf("expected %v/%v, got %v/%v", score, outOf, s.attempt.Score, s.attempt.MaxScore)
	}
	return nil
}

func (s *scenarioState) thenPending(n int) error {
	if s.attempt.PendingManual != n {
		return fmt.Errorf("expected %d pending, got %d", n, s.attempt.PendingManual)
	}
	return nil
}

func (s *scenarioState) thenPassFail(outcome string) error {
	if want := outcome == "passed"; s.attempt.Passed != want {
		return fmt.Errorf("expected %s at %.1f%%", outcome, s.attempt.Percentage)
	}
	return nil
}
