package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error) // full quiz, answer keys included
	ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, error)

	NewAttempt(ctx context.Context, quizID, userID string) (Attempt, error)
	SaveResponses(ctx context.Context, attemptID string, resp map[string]json.RawMessage) (Attempt, error)
	Submit(ctx context.Context, attemptID string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ApplyManualGrades(ctx context.Context, attemptID string, updates map[string]ManualGradeInput, gradedBy string) (Attempt, error)
}

type StoreOption func(*aggregator)

func WithScorer(s grading.Scorer) StoreOption { return func(g *aggregator) { g.scorer = s } }
func WithEvents(e syncx.Appender) StoreOption { return func(g *aggregator) { g.events = e } }
func WithLogger(l *logger.Logger) StoreOption { return func(g *aggregator) { g.log = l } }

type memoryStore struct {
	agg aggregator

	mu       sync.RWMutex
	quizzes  map[string]Quiz
	attempts map[string]Attempt
}

func NewMemoryStore(opts ...StoreOption) Store {
	agg := newAggregator(nil, nil, nil)
	for _, o := range opts {
		o(&agg)
	}
	agg = newAggregator(agg.scorer, agg.events, agg.log)
	return &memoryStore{
		agg:      agg,
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.quizzes[q.ID]; ok {
		q.CreatedAt = prev.CreatedAt
	} else if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	q.Questions = cloneQuestions(q.Questions)
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	q.Questions = cloneQuestions(q.Questions)
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]Summary, error) {
	opts = opts.normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(opts.Q))
	out := make([]Summary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		if needle != "" && !strings.Contains(strings.ToLower(q.Title), needle) {
			continue
		}
		out = append(out, summarize(q))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	if opts.Offset >= len(out) {
		return []Summary{}, nil
	}
	out = out[opts.Offset:]
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) NewAttempt(_ context.Context, quizID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return Attempt{}, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
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
	m.attempts[a.ID] = a
	return cloneAttempt(a), nil
}

func (m *memoryStore) SaveResponses(_ context.Context, attemptID string, resp map[string]json.RawMessage) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}
	a = cloneAttempt(a)
	if err := mergeResponses(&a, resp); err != nil {
		return Attempt{}, err
	}
	m.attempts[attemptID] = a
	return cloneAttempt(a), nil
}

func (m *memoryStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	a, ok := m.attempts[attemptID]
	if !ok {
		m.mu.Unlock()
		return Attempt{}, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}
	if a.Status != StatusInProgress {
		m.mu.Unlock()
		return Attempt{}, ErrAlreadySubmitted
	}
	a = cloneAttempt(a)
	m.agg.score(ctx, &a)
	now := time.Now().Unix()
	a.SubmittedAt = &now
	m.attempts[attemptID] = a
	m.mu.Unlock()

	m.agg.submitted(ctx, a)
	return cloneAttempt(a), nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return cloneAttempt(a), nil
}

func (m *memoryStore) ApplyManualGrades(ctx context.Context, attemptID string, updates map[string]ManualGradeInput, gradedBy string) (Attempt, error) {
	m.mu.Lock()
	a, ok := m.attempts[attemptID]
	if !ok {
		m.mu.Unlock()
		return Attempt{}, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}
	a = cloneAttempt(a)
	if err := applyManualGrades(&a, updates, gradedBy); err != nil {
		m.mu.Unlock()
		return Attempt{}, err
	}
	m.attempts[attemptID] = a
	m.mu.Unlock()

	m.agg.graded(ctx, a, gradedBy)
	return cloneAttempt(a), nil
}

// mergeResponses adds resp to an in-progress attempt. Keys must name snapshot questions.
func mergeResponses(a *Attempt, resp map[string]json.RawMessage) error {
	if a.Status != StatusInProgress {
		return ErrAlreadySubmitted
	}
	known := make(map[string]struct{}, len(a.Snapshot))
	for _, q := range a.Snapshot {
		known[q.ID] = struct{}{}
	}
	for k := range resp {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, k)
		}
	}
	if a.Responses == nil {
		a.Responses = map[string]json.RawMessage{}
	}
	for k, v := range resp {
		a.Responses[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}
