package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
	"github.com/mind-engage/mindengage-quiz/internal/question"
	syncx "github.com/mind-engage/mindengage-quiz/internal/sync"
)

// aggregator holds the scoring code shared by every Store implementation.
type aggregator struct {
	scorer grading.Scorer
	events syncx.Appender
	log    *logger.Logger
}

func newAggregator(scorer grading.Scorer, events syncx.Appender, log *logger.Logger) aggregator {
	if scorer == nil {
		scorer = grading.NewDefaultScorer()
	}
	if log == nil {
		log = logger.Nop()
	}
	return aggregator{scorer: scorer, events: events, log: log}
}

// score fills a.Items and the totals from the frozen snapshot.
func (g aggregator) score(ctx context.Context, a *Attempt) {
	items := make([]AttemptItem, 0, len(a.Snapshot))
	for _, q := range a.Snapshot {
		raw, answered := a.Responses[q.ID]
		submitted := question.DecodeAnswer(q.Type, raw)
		res := g.scorer.Score(q, submitted)
		if res.Fault != nil {
			g.reportFault(ctx, a, q, res.Fault)
		}
		items = append(items, AttemptItem{
			QuestionID:    q.ID,
			Type:          q.Type,
			Answered:      answered && submitted != nil,
			IsCorrect:     res.IsCorrect,
			PointsEarned:  res.PointsEarned,
			MaxPoints:     res.MaxPoints,
			PendingManual: res.Provisional && submitted != nil,
		})
	}
	a.Items = items
	recomputeTotals(a)
}

func (g aggregator) reportFault(ctx context.Context, a *Attempt, q question.Question, fault error) {
	g.log.Warn("scoring fault",
		"attempt_id", a.ID,
		"quiz_id", a.QuizID,
		"question_id", q.ID,
		"question_type", string(q.Type),
		"error", fault.Error(),
	)
	g.emit(ctx, syncx.TypeScoringFault, a.ID, map[string]any{
		"attempt_id":    a.ID,
		"quiz_id":       a.QuizID,
		"question_id":   q.ID,
		"question_type": q.Type,
		"error":         fault.Error(),
	})
}

func (g aggregator) emit(ctx context.Context, typ, key string, payload any) {
	if g.events == nil {
		return
	}
	e, err := syncx.NewEvent(typ, key, payload)
	if err == nil {
		err = g.events.Append(ctx, e)
	}
	if err != nil {
		g.log.Error("event append failed", "type", typ, "key", key, "error", err)
	}
}

func (g aggregator) submitted(ctx context.Context, a Attempt) {
	g.log.Info("attempt submitted",
		"attempt_id", a.ID, "quiz_id", a.QuizID, "score", a.Score, "max_score", a.MaxScore, "pending_manual", a.PendingManual)
	g.emit(ctx, syncx.TypeAttemptSubmitted, a.ID, map[string]any{
		"attempt_id":     a.ID,
		"quiz_id":        a.QuizID,
		"user_id":        a.UserID,
		"score":          a.Score,
		"max_score":      a.MaxScore,
		"percentage":     a.Percentage,
		"passed":         a.Passed,
		"pending_manual": a.PendingManual,
	})
}

func (g aggregator) graded(ctx context.Context, a Attempt, gradedBy string) {
	g.emit(ctx, syncx.TypeAttemptGraded, a.ID, map[string]any{
		"attempt_id": a.ID,
		"graded_by":  gradedBy,
		"score":      a.Score,
		"status":     a.Status,
	})
}

// recomputeTotals derives score, percentage, pass/fail and status from a.Items.
func recomputeTotals(a *Attempt) {
	a.Score, a.MaxScore, a.PendingManual = 0, 0, 0
	for _, it := range a.Items {
		a.Score += it.PointsEarned
		a.MaxScore += it.MaxPoints
		if it.PendingManual {
			a.PendingManual++
		}
	}
	a.Percentage = 0
	if a.MaxScore > 0 {
		a.Percentage = a.Score / a.MaxScore * 100
	}
	a.Passed = a.Percentage >= a.PassingScore
	if a.PendingManual == 0 {
		a.Status = StatusGraded
	} else {
		a.Status = StatusSubmitted
	}
}

// applyManualGrades sets essay points on a submitted attempt and recomputes totals.
func applyManualGrades(a *Attempt, updates map[string]ManualGradeInput, gradedBy string) error {
	if a.Status == StatusInProgress {
		return ErrNotSubmitted
	}
	byID := make(map[string]question.Question, len(a.Snapshot))
	for _, q := range a.Snapshot {
		byID[q.ID] = q
	}
	ids := make([]string, 0, len(updates))
	for qid := range updates {
		ids = append(ids, qid)
	}
	sort.Strings(ids)
	for _, qid := range ids {
		in := updates[qid]
		q, ok := byID[qid]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, qid)
		}
		if q.Type != question.Essay {
			return fmt.Errorf("%w: %s is %s", ErrNotManuallyGraded, qid, q.Type)
		}
		idx := -1
		for i := range a.Items {
			if a.Items[i].QuestionID == qid {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, qid)
		}
		it := &a.Items[idx]

		var pts float64
		var notes []string
		switch {
		case len(in.Criteria) > 0 && q.Rubric != nil:
			pts, notes = grading.ScoreRubric(*q.Rubric, in.Criteria)
		case in.Points != nil:
			pts = *in.Points
		default:
			return fmt.Errorf("%w: %s", ErrInvalidManualGrade, qid)
		}
		if math.IsNaN(pts) {
			return fmt.Errorf("%w: %s", ErrInvalidManualGrade, qid)
		}
		pts = min(max(pts, 0), it.MaxPoints)

		it.PointsEarned = pts
		it.IsCorrect = pts >= it.MaxPoints
		it.PendingManual = false
		it.Comment = in.Comment
		it.GradedBy = gradedBy
		it.Notes = notes
	}
	recomputeTotals(a)
	return nil
}

func cloneQuestions(qs []question.Question) []question.Question {
	out := make([]question.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// cloneAttempt copies everything a store mutates, so a failed update leaves the stored value intact.
func cloneAttempt(a Attempt) Attempt {
	out := a
	out.Snapshot = cloneQuestions(a.Snapshot)
	out.Responses = make(map[string]json.RawMessage, len(a.Responses))
	for k, v := range a.Responses {
		out.Responses[k] = append(json.RawMessage(nil), v...)
	}
	if a.Items != nil {
		out.Items = make([]AttemptItem, len(a.Items))
		for i, it := range a.Items {
			it.Notes = append([]string(nil), it.Notes...)
			out.Items[i] = it
		}
	}
	if a.SubmittedAt != nil {
		ts := *a.SubmittedAt
		out.SubmittedAt = &ts
	}
	return out
}
