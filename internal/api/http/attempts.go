package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/mindengage-quiz/internal/auth/middleware"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// POST /attempts  body: {"quiz_id": "..."}; the learner is the token subject
func CreateAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuizID string `json:"quiz_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuizID == "" {
			http.Error(w, "quiz_id required", http.StatusBadRequest)
			return
		}
		a, err := store.NewAttempt(r.Context(), req.QuizID, auth.SubjectFromContext(r.Context()))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

// POST /attempts/{attemptID}/responses  body: {"<questionID>": <answer>, ...}
func SaveResponsesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ownAttempt(w, r, store); !ok {
			return
		}
		var resp map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := store.SaveResponses(r.Context(), chi.URLParam(r, "attemptID"), resp)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/submit
func SubmitAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ownAttempt(w, r, store); !ok {
			return
		}
		a, err := store.Submit(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID}  own attempt, or any with attempt:view-all
func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		if a.UserID != auth.SubjectFromContext(r.Context()) && !rbac.Can(r.Context(), rbac.PermAttemptViewAll) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/grading  body: {"grades": {"<questionID>": {"points": 3, "comment": "..."}}}
func ApplyGradingHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Grades map[string]quiz.ManualGradeInput `json:"grades"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Grades) == 0 {
			http.Error(w, "grades required", http.StatusBadRequest)
			return
		}
		a, err := store.ApplyManualGrades(r.Context(), chi.URLParam(r, "attemptID"), req.Grades, auth.SubjectFromContext(r.Context()))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// ownAttempt loads the attempt and writes 404/403 unless the caller owns it.
func ownAttempt(w http.ResponseWriter, r *http.Request, store quiz.Store) (quiz.Attempt, bool) {
	a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		storeError(w, err)
		return quiz.Attempt{}, false
	}
	if a.UserID != auth.SubjectFromContext(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return quiz.Attempt{}, false
	}
	return a, true
}
