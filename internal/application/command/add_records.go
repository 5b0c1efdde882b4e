// Package command contains write operations (CQRS - Commands).
// Every command runs inside a single database transaction; the read-view
// cache is flushed after commit on a best-effort basis.
package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD RECORDS COMMAND
// Creates one conduct record per student in the batch and applies the
// signed score delta to each student's aggregate score, atomically.
// ══════════════════════════════════════════════════════════════════════════════

// AddRecordsCommand contains the data to create a batch of conduct records.
type AddRecordsCommand struct {
	// StudentIDs are the internal IDs of the affected students.
	StudentIDs []string

	// ScoreChange is the signed delta applied to each student. Nonzero.
	ScoreChange student.Score

	// Reason is the free-text reason carried by every created record.
	Reason string

	// OperatorName attributes the records to an operator.
	OperatorName string
}

// Validate validates the command before any transaction is opened.
func (c AddRecordsCommand) Validate() error {
	if len(c.StudentIDs) == 0 {
		return shared.ErrEmptyStudentBatch
	}
	for _, id := range c.StudentIDs {
		if id == "" {
			return shared.NewDomainError("conduct", "AddRecords", shared.ErrInvalidID, "student id must not be empty")
		}
	}
	if c.ScoreChange == 0 {
		return shared.ErrZeroScoreChange
	}
	if len([]rune(c.Reason)) == 0 {
		return shared.ErrEmptyReason
	}
	return nil
}

// AddRecordsResult contains the result of the batch creation.
type AddRecordsResult struct {
	// Records are the created conduct records, in input order.
	Records []*conduct.ConductRecord

	// Message is a human-readable summary.
	Message string
}

// AddRecordsHandler handles the AddRecordsCommand.
type AddRecordsHandler struct {
	tx          conduct.TxManager
	invalidator conduct.CacheInvalidator
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewAddRecordsHandler creates a new AddRecordsHandler.
func NewAddRecordsHandler(
	tx conduct.TxManager,
	invalidator conduct.CacheInvalidator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *AddRecordsHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &AddRecordsHandler{
		tx:          tx,
		invalidator: invalidator,
		publisher:   publisher,
		log:         log,
	}
}

// Handle executes the add records command.
// All students in the batch are processed inside one transaction: either
// every record is created and every score updated, or nothing is persisted.
func (h *AddRecordsHandler) Handle(ctx context.Context, cmd AddRecordsCommand) (*AddRecordsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	records := make([]*conduct.ConductRecord, 0, len(cmd.StudentIDs))

	err := h.tx.WithinTx(ctx, func(ctx context.Context, uow conduct.UnitOfWork) error {
		for _, studentID := range cmd.StudentIDs {
			// A missing student aborts the whole batch.
			newScore, err := uow.Students().ApplyScoreDelta(ctx, studentID, cmd.ScoreChange)
			if err != nil {
				return err
			}

			rec, err := conduct.NewConductRecord(conduct.NewRecordParams{
				ID:           uuid.New().String(),
				StudentID:    studentID,
				Reason:       cmd.Reason,
				ScoreChange:  cmd.ScoreChange,
				ScoreAfter:   newScore,
				OperatorName: cmd.OperatorName,
			})
			if err != nil {
				return err
			}

			if err := uow.Records().Create(ctx, rec); err != nil {
				return err
			}

			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.flushCache(ctx)

	recordIDs := make([]string, len(records))
	for i, r := range records {
		recordIDs[i] = r.ID
	}
	_ = h.publisher.Publish(shared.NewRecordsAddedEvent(
		cmd.StudentIDs, recordIDs, float64(cmd.ScoreChange), cmd.Reason, cmd.OperatorName,
	))

	return &AddRecordsResult{
		Records: records,
		Message: fmt.Sprintf("recorded %+.2f for %d student(s)", float64(cmd.ScoreChange), len(records)),
	}, nil
}

// flushCache invalidates the read-view cache after a committed mutation.
// Failure is logged and never surfaced: the transaction is already
// committed and must not be reported as failed.
func (h *AddRecordsHandler) flushCache(ctx context.Context) {
	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.InvalidateAll(ctx); err != nil {
		h.log.Warn("cache invalidation failed after add_records", logger.Err(err))
	}
}
