package http

import (
	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/validation"
)

type Deps struct {
	Store     quiz.Store
	Validator *validation.Validator
	Scorer    grading.Scorer
	Auth      *auth.AuthService
}

// Mount registers the protected API (JWT -> role in context -> RBAC) on r.
func Mount(r chi.Router, d Deps) {
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		// Authoring
		pr.With(rbac.Require(rbac.PermQuizCreate)).
			Post("/questions/validate", ValidateQuestionHandler(d.Validator))
		pr.With(rbac.Require(rbac.PermQuizCreate)).
			Post("/questions/score", ScoreQuestionHandler(d.Scorer))
		pr.With(rbac.Require(rbac.PermQuizCreate)).
			Post("/quizzes/validate", ValidateQuizHandler(d.Validator))
		pr.With(rbac.Require(rbac.PermQuizCreate)).
			Post("/quizzes", PublishQuizHandler(d.Store, d.Validator))

		pr.With(rbac.Require(rbac.PermQuizView)).
			Get("/quizzes", ListQuizzesHandler(d.Store))
		pr.With(rbac.Require(rbac.PermQuizView)).
			Get("/quizzes/{quizID}", GetQuizHandler(d.Store))

		// Learner flow
		pr.With(rbac.Require(rbac.PermAttemptCreate)).
			Post("/attempts", CreateAttemptHandler(d.Store))
		pr.With(rbac.Require(rbac.PermAttemptSave)).
			Post("/attempts/{attemptID}/responses", SaveResponsesHandler(d.Store))
		pr.With(rbac.Require(rbac.PermAttemptSubmit)).
			Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(d.Store))
		pr.With(rbac.RequireAny(rbac.PermAttemptViewOwn, rbac.PermAttemptViewAll)).
			Get("/attempts/{attemptID}", GetAttemptHandler(d.Store))

		// Manual essay grading
		pr.With(rbac.Require(rbac.PermAttemptGrade)).
			Post("/attempts/{attemptID}/grading", ApplyGradingHandler(d.Store))
	})
}
