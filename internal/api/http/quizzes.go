package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
	"github.com/mind-engage/mindengage-quiz/internal/validation"
)

// POST /questions/validate  body: a question
func ValidateQuestionHandler(v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q question.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, v.ValidateQuestion(q))
	}
}

// POST /quizzes/validate  body: {"questions": [...]}
func ValidateQuizHandler(v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Questions []question.Question `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, v.ValidateQuizForm(req.Questions))
	}
}

// POST /questions/score  body: {"question": {...}, "answer": <raw>}
// Lets authors preview how an answer would be scored.
func ScoreQuestionHandler(s grading.Scorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question question.Question `json:"question"`
			Answer   json.RawMessage   `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res := s.Score(req.Question, question.DecodeAnswer(req.Question.Type, req.Answer))
		out := struct {
			grading.Result
			Fault string `json:"fault,omitempty"`
		}{Result: res}
		if res.Fault != nil {
			out.Fault = res.Fault.Error()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /quizzes  publish; 422 with the validation result when invalid
func PublishQuizHandler(store quiz.Store, v *validation.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(q.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		stored, res, err := quiz.Publish(r.Context(), store, v, q)
		var pe *quiz.PublishError
		if errors.As(err, &pe) {
			writeJSON(w, http.StatusUnprocessableEntity, pe.Result)
			return
		}
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, struct {
			Quiz     quiz.Quiz            `json:"quiz"`
			Warnings []validation.Warning `json:"warnings"`
		}{stored, res.Warnings})
	}
}

// GET /quizzes?q=&limit=&offset=
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /quizzes/{quizID}  answer keys only for authors
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			storeError(w, err)
			return
		}
		if !rbac.Can(r.Context(), rbac.PermQuizCreate) {
			q = q.ForLearner()
		}
		writeJSON(w, http.StatusOK, q)
	}
}
