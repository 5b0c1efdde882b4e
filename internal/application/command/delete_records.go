package command

import (
	"context"
	"errors"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE RECORDS COMMAND
// Hard-deletes conduct records and reverses their score contribution.
// Only records that currently count toward the score (status=valid) have
// their delta reversed: an invalidated record is already excluded, so
// reversing it again would double-subtract.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteRecordsCommand contains the record ids to delete.
type DeleteRecordsCommand struct {
	RecordIDs []string
}

// Validate validates the command.
func (c DeleteRecordsCommand) Validate() error {
	if len(c.RecordIDs) == 0 {
		return shared.ErrEmptyRecordBatch
	}
	return nil
}

// DeleteRecordsResult contains the result of the batch deletion.
type DeleteRecordsResult struct {
	// Deleted is the number of records actually removed.
	// Missing ids are skipped, not counted, and not an error.
	Deleted int
}

// DeleteRecordsHandler handles the DeleteRecordsCommand.
type DeleteRecordsHandler struct {
	tx          conduct.TxManager
	invalidator conduct.CacheInvalidator
	publisher   shared.EventPublisher
	log         *logger.Logger
}

// NewDeleteRecordsHandler creates a new DeleteRecordsHandler.
func NewDeleteRecordsHandler(
	tx conduct.TxManager,
	invalidator conduct.CacheInvalidator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *DeleteRecordsHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &DeleteRecordsHandler{
		tx:          tx,
		invalidator: invalidator,
		publisher:   publisher,
		log:         log,
	}
}

// Handle executes the delete records command. The whole batch runs in one
// transaction; any storage failure rolls everything back.
func (h *DeleteRecordsHandler) Handle(ctx context.Context, cmd DeleteRecordsCommand) (*DeleteRecordsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	deleted := 0

	err := h.tx.WithinTx(ctx, func(ctx context.Context, uow conduct.UnitOfWork) error {
		for _, recordID := range cmd.RecordIDs {
			rec, err := uow.Records().GetByID(ctx, recordID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					// Missing record: soft skip.
					continue
				}
				return err
			}

			if delta := rec.ReversalDelta(); delta != 0 {
				if _, err := uow.Students().ApplyScoreDelta(ctx, rec.StudentID, delta); err != nil {
					return err
				}
			}

			removed, err := uow.Records().Delete(ctx, rec.ID)
			if err != nil {
				return err
			}
			if removed {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.flushCache(ctx)
	_ = h.publisher.Publish(shared.NewRecordsDeletedEvent(cmd.RecordIDs, deleted))

	return &DeleteRecordsResult{Deleted: deleted}, nil
}

func (h *DeleteRecordsHandler) flushCache(ctx context.Context) {
	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.InvalidateAll(ctx); err != nil {
		h.log.Warn("cache invalidation failed after delete_records", logger.Err(err))
	}
}
