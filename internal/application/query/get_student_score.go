// Package query contains read operations (CQRS - Queries).
// Reads go through the Redis-backed view cache; every write command
// flushes that cache, so a miss falls back to the relational store.
package query

import (
	"context"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT SCORE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentScoreQuery identifies a student.
type GetStudentScoreQuery struct {
	StudentID string
}

// GetStudentScoreHandler serves the score view for a student.
type GetStudentScoreHandler struct {
	students student.Repository
	records  conduct.RecordRepository
	cache    conduct.ViewCache
	cacheTTL time.Duration
	log      *logger.Logger
}

// DefaultScoreViewTTL is how long a cached score view stays fresh when no
// invalidation happens before that.
const DefaultScoreViewTTL = 10 * time.Minute

// NewGetStudentScoreHandler creates a new GetStudentScoreHandler.
// cache may be nil; reads then always hit the relational store.
func NewGetStudentScoreHandler(
	students student.Repository,
	records conduct.RecordRepository,
	cache conduct.ViewCache,
	log *logger.Logger,
) *GetStudentScoreHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetStudentScoreHandler{
		students: students,
		records:  records,
		cache:    cache,
		cacheTTL: DefaultScoreViewTTL,
		log:      log,
	}
}

// Handle returns the student's score view, served from cache when possible.
func (h *GetStudentScoreHandler) Handle(ctx context.Context, q GetStudentScoreQuery) (*conduct.ScoreView, error) {
	if h.cache != nil {
		if view, err := h.cache.GetScoreView(ctx, q.StudentID); err == nil {
			return view, nil
		}
	}

	stud, err := h.students.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	validSum, err := h.records.SumValidChanges(ctx, stud.ID)
	if err != nil {
		return nil, err
	}

	recs, err := h.records.GetByStudent(ctx, stud.ID, conduct.ListOptions{Limit: 1000})
	if err != nil {
		return nil, err
	}

	view := &conduct.ScoreView{
		StudentID:    stud.ID,
		Number:       stud.Number.String(),
		Name:         stud.Name,
		BaseScore:    stud.BaseScore,
		CurrentScore: stud.CurrentScore,
		ValidSum:     validSum,
		RecordCount:  len(recs),
		CachedAt:     time.Now().UTC(),
	}

	if h.cache != nil {
		if err := h.cache.SetScoreView(ctx, view, h.cacheTTL); err != nil {
			h.log.Warn("failed to cache score view", logger.Err(err), logger.String("student_id", stud.ID))
		}
	}

	return view, nil
}
