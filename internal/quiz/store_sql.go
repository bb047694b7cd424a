package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	agg    aggregator
}

// NewSQLStore persists quizzes and attempts in db. scorer, events and log may be nil.
func NewSQLStore(db *sql.DB, driver string, scorer grading.Scorer, events syncx.Appender, log *logger.Logger) *SQLStore {
	return &SQLStore{db: db, driver: driver, agg: newAggregator(scorer, events, log)}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	created := q.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,passing_score,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, passing_score=EXCLUDED.passing_score, questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.PassingScore, string(qj), created)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,passing_score,questions_json,created_at FROM quizzes WHERE id=$1`, id)
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.Title, &q.PassingScore, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, fmt.Errorf("decode quiz %s: %w", id, err)
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, error) {
	opts = opts.normalized()
	query := `SELECT id,title,passing_score,questions_json,created_at FROM quizzes`
	args := []any{}
	if needle := strings.TrimSpace(opts.Q); needle != "" {
		query += ` WHERE LOWER(title) LIKE $1`
		args = append(args, "%"+strings.ToLower(needle)+"%")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id ASC LIMIT %d OFFSET %d`, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var q Quiz
		var qjson string
		if err := rows.Scan(&q.ID, &q.Title, &q.PassingScore, &qjson, &q.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
			return nil, fmt.Errorf("decode quiz %s: %w", q.ID, err)
		}
		out = append(out, summarize(q))
	}
	return out, rows.Err()
}

func (s *SQLStore) NewAttempt(ctx context.Context, quizID, userID string) (Attempt, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	a := Attempt{
		ID:           uuid.NewString(),
		QuizID:       quizID,
		UserID:       userID,
		Status:       StatusInProgress,
		PassingScore: q.PassingScore,
		Snapshot:     cloneQuestions(q.Questions),
		Responses:    map[string]json.RawMessage{},
		StartedAt:    time.Now().Unix(),
	}
	snap, err := json.Marshal(a.Snapshot)
	if err != nil {
		return Attempt{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,user_id,status,passing_score,snapshot_json,responses_json,started_at)
		VALUES ($1,$2,$3,$4,$5,$6,'{}',$7)`,
		a.ID, a.QuizID, a.UserID, string(a.Status), a.PassingScore, string(snap), a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveResponses(ctx context.Context, attemptID string, resp map[string]json.RawMessage) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if err := mergeResponses(&a, resp); err != nil {
		return Attempt{}, err
	}
	buf, err := json.Marshal(a.Responses)
	if err != nil {
		return Attempt{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE attempts SET responses_json=$1 WHERE id=$2 AND status=$3`,
		string(buf), attemptID, string(StatusInProgress))
	if err != nil {
		return Attempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Attempt{}, ErrAlreadySubmitted
	}
	return a, nil
}

func (s *SQLStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status != StatusInProgress {
		return Attempt{}, ErrAlreadySubmitted
	}
	s.agg.score(ctx, &a)
	now := time.Now().Unix()
	a.SubmittedAt = &now

	// status guard keeps a concurrent submit from scoring twice
	ok, err := s.saveResult(ctx, a, StatusInProgress)
	if err != nil {
		return Attempt{}, err
	}
	if !ok {
		return Attempt{}, ErrAlreadySubmitted
	}
	s.agg.submitted(ctx, a)
	return a, nil
}

func (s *SQLStore) ApplyManualGrades(ctx context.Context, attemptID string, updates map[string]ManualGradeInput, gradedBy string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	prev := a.Status
	if err := applyManualGrades(&a, updates, gradedBy); err != nil {
		return Attempt{}, err
	}
	if _, err := s.saveResult(ctx, a, prev); err != nil {
		return Attempt{}, err
	}
	s.agg.graded(ctx, a, gradedBy)
	return a, nil
}

// saveResult writes the scored fields of a when the stored status still equals from.
func (s *SQLStore) saveResult(ctx context.Context, a Attempt, from Status) (bool, error) {
	items, err := json.Marshal(a.Items)
	if err != nil {
		return false, err
	}
	passed := 0
	if a.Passed {
		passed = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE attempts SET status=$1, items_json=$2, score=$3, max_score=$4,
		percentage=$5, passed=$6, pending_manual=$7, submitted_at=$8 WHERE id=$9 AND status=$10`,
		string(a.Status), string(items), a.Score, a.MaxScore, a.Percentage, passed, a.PendingManual,
		a.SubmittedAt, a.ID, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,status,passing_score,snapshot_json,responses_json,items_json,
		score,max_score,percentage,passed,pending_manual,started_at,submitted_at FROM attempts WHERE id=$1`, id)
	var (
		a                      Attempt
		status                 string
		snap, rjson, itemsJSON string
		passed                 int
		submittedAt            sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &status, &a.PassingScore, &snap, &rjson, &itemsJSON,
		&a.Score, &a.MaxScore, &a.Percentage, &passed, &a.PendingManual, &a.StartedAt, &submittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
		}
		return Attempt{}, err
	}
	a.Status = Status(status)
	a.Passed = passed != 0
	if submittedAt.Valid {
		ts := submittedAt.Int64
		a.SubmittedAt = &ts
	}
	var snapshot []question.Question
	if err := json.Unmarshal([]byte(snap), &snapshot); err != nil {
		return Attempt{}, fmt.Errorf("decode attempt %s snapshot: %w", id, err)
	}
	a.Snapshot = snapshot
	if err := json.Unmarshal([]byte(rjson), &a.Responses); err != nil || a.Responses == nil {
		a.Responses = map[string]json.RawMessage{}
	}
	if err := json.Unmarshal([]byte(itemsJSON), &a.Items); err != nil {
		a.Items = nil
	}
	if len(a.Items) == 0 {
		a.Items = nil
	}
	return a, nil
}
