package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILE APPEAL COMMAND
// Student-facing submission of an appeal against a conduct record.
// At most one appeal may exist per record; the storage layer enforces
// this with a unique index on record_id.
// ══════════════════════════════════════════════════════════════════════════════

// FileAppealCommand contains the data to file an appeal.
type FileAppealCommand struct {
	StudentID string
	RecordID  string
	Reason    string
}

// Validate validates the command.
func (c FileAppealCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("appeal", "File", shared.ErrInvalidID, "student id must not be empty")
	}
	if c.RecordID == "" {
		return shared.NewDomainError("appeal", "File", shared.ErrInvalidID, "record id must not be empty")
	}
	if c.Reason == "" {
		return shared.ErrEmptyReason
	}
	return nil
}

// FileAppealResult contains the created appeal.
type FileAppealResult struct {
	Appeal *conduct.Appeal
}

// FileAppealHandler handles the FileAppealCommand.
type FileAppealHandler struct {
	tx        conduct.TxManager
	publisher shared.EventPublisher
	log       *logger.Logger
}

// NewFileAppealHandler creates a new FileAppealHandler.
func NewFileAppealHandler(tx conduct.TxManager, publisher shared.EventPublisher, log *logger.Logger) *FileAppealHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &FileAppealHandler{tx: tx, publisher: publisher, log: log}
}

// Handle files an appeal in pending state. Filing mutates no score and no
// record status, so the cache is left alone.
func (h *FileAppealHandler) Handle(ctx context.Context, cmd FileAppealCommand) (*FileAppealResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var appeal *conduct.Appeal

	err := h.tx.WithinTx(ctx, func(ctx context.Context, uow conduct.UnitOfWork) error {
		stud, err := uow.Students().GetByID(ctx, cmd.StudentID)
		if err != nil {
			return err
		}
		if !stud.CanAppeal() {
			return shared.ErrAppealNotPermitted
		}

		rec, err := uow.Records().GetByID(ctx, cmd.RecordID)
		if err != nil {
			return err
		}
		if rec.StudentID != stud.ID {
			return shared.NewDomainError("appeal", "File", shared.ErrInvalidInput, "record belongs to another student")
		}

		appeal, err = conduct.NewAppeal(conduct.NewAppealParams{
			ID:        uuid.New().String(),
			StudentID: cmd.StudentID,
			RecordID:  cmd.RecordID,
			Reason:    cmd.Reason,
		})
		if err != nil {
			return err
		}

		return uow.Appeals().Create(ctx, appeal)
	})
	if err != nil {
		return nil, err
	}

	_ = h.publisher.Publish(shared.NewAppealFiledEvent(appeal.ID, appeal.RecordID, appeal.StudentID))

	return &FileAppealResult{Appeal: appeal}, nil
}
