// Package jobs contains the scheduled jobs of Campus Conduct Hub.
package jobs

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// driftTolerance absorbs numeric noise when comparing NUMERIC sums read
// back as floats.
const driftTolerance = 0.001

// AuditLedgerJob walks all students and verifies the ledger identity:
// current_score must equal base_score plus the sum of valid record
// deltas. Drift means a mutation bypassed the transactional path; the
// job only reports, it never repairs.
type AuditLedgerJob struct {
	students  student.Repository
	records   conduct.RecordRepository
	publisher shared.EventPublisher
	pageSize  int
	log       *logger.Logger
}

// NewAuditLedgerJob creates a new AuditLedgerJob.
func NewAuditLedgerJob(
	students student.Repository,
	records conduct.RecordRepository,
	publisher shared.EventPublisher,
	pageSize int,
	log *logger.Logger,
) *AuditLedgerJob {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if pageSize <= 0 {
		pageSize = 200
	}
	if log == nil {
		log = logger.Default()
	}
	return &AuditLedgerJob{
		students:  students,
		records:   records,
		publisher: publisher,
		pageSize:  pageSize,
		log:       log,
	}
}

// Name implements scheduler.Job.
func (j *AuditLedgerJob) Name() string {
	return "audit_ledger"
}

// Description implements scheduler.Job.
func (j *AuditLedgerJob) Description() string {
	return "verifies that every current score matches base score plus valid record deltas"
}

// Run checks every student page by page.
func (j *AuditLedgerJob) Run(ctx context.Context) error {
	opts := student.DefaultListOptions().WithLimit(j.pageSize).WithInactive()

	checked := 0
	drifted := 0

	for offset := 0; ; offset += j.pageSize {
		page, err := j.students.List(ctx, opts.WithOffset(offset))
		if err != nil {
			return fmt.Errorf("audit: list students: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, stud := range page {
			if err := ctx.Err(); err != nil {
				return err
			}

			validSum, err := j.records.SumValidChanges(ctx, stud.ID)
			if err != nil {
				return fmt.Errorf("audit: sum records for %s: %w", stud.ID, err)
			}

			checked++

			expected := stud.BaseScore + validSum
			if math.Abs(float64(expected-stud.CurrentScore)) <= driftTolerance {
				continue
			}

			drifted++
			j.log.Error("ledger drift detected",
				logger.StudentID(stud.ID),
				logger.Float64("current_score", float64(stud.CurrentScore)),
				logger.Float64("expected_score", float64(expected)),
				logger.Float64("valid_sum", float64(validSum)),
			)

			event := shared.NewBaseEvent(shared.EventAuditDriftFound, stud.ID)
			if err := j.publisher.Publish(driftEvent{
				BaseEvent:     event,
				currentScore:  float64(stud.CurrentScore),
				expectedScore: float64(expected),
			}); err != nil {
				j.log.Warn("failed to publish drift event", logger.Err(err))
			}
		}

		if len(page) < j.pageSize {
			break
		}
	}

	j.log.Info("ledger audit finished",
		logger.Int("students_checked", checked),
		logger.Int("drifted", drifted),
		logger.Time("at", time.Now().UTC()),
	)

	return nil
}

// driftEvent carries the mismatch details alongside the base event.
type driftEvent struct {
	shared.BaseEvent
	currentScore  float64
	expectedScore float64
}

// Payload implements shared.Event.
func (e driftEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.AggregateID(),
		"current_score":  e.currentScore,
		"expected_score": e.expectedScore,
	}
}
