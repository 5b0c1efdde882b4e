package command

import (
	"context"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DECIDE APPEAL COMMAND
// Drives the appeal state machine. The effect of a decision depends on
// both the previous and the requested status, resolved through the
// transition table in the conduct domain; reversing a decision exactly
// undoes the previously applied delta.
// ══════════════════════════════════════════════════════════════════════════════

// DecideAppealCommand contains the appeal decision.
type DecideAppealCommand struct {
	// AppealID is the appeal to decide or re-decide.
	AppealID string

	// Decision is the requested status: approved or rejected.
	Decision conduct.AppealStatus

	// ProcessedBy attributes the decision to an operator.
	ProcessedBy string
}

// Validate validates the command before any transaction is opened.
func (c DecideAppealCommand) Validate() error {
	if c.AppealID == "" {
		return shared.NewDomainError("appeal", "Decide", shared.ErrInvalidID, "appeal id must not be empty")
	}
	if !c.Decision.IsDecision() {
		return shared.ErrInvalidDecision
	}
	return nil
}

// DecideAppealResult contains the result of an appeal decision.
type DecideAppealResult struct {
	// Outcome classifies the decision effect.
	Outcome conduct.Outcome

	// Message is the human-readable outcome description.
	Message string

	// NewScore is the student's score after the decision.
	NewScore float64

	// RecordStatus is the record's status after the decision.
	RecordStatus conduct.RecordStatus
}

// DecideAppealHandler handles the DecideAppealCommand.
type DecideAppealHandler struct {
	tx          conduct.TxManager
	invalidator conduct.CacheInvalidator
	publisher   shared.EventPublisher
	log         *logger.Logger
	now         func() time.Time
}

// NewDecideAppealHandler creates a new DecideAppealHandler.
func NewDecideAppealHandler(
	tx conduct.TxManager,
	invalidator conduct.CacheInvalidator,
	publisher shared.EventPublisher,
	log *logger.Logger,
) *DecideAppealHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &DecideAppealHandler{
		tx:          tx,
		invalidator: invalidator,
		publisher:   publisher,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes the appeal decision. Appeal row update, record status
// write, and score delta all commit in the same transaction; on any
// failure nothing is persisted.
func (h *DecideAppealHandler) Handle(ctx context.Context, cmd DecideAppealCommand) (*DecideAppealResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var (
		result    DecideAppealResult
		appealRec *conduct.Appeal
		oldStatus conduct.AppealStatus
		delta     float64
	)

	err := h.tx.WithinTx(ctx, func(ctx context.Context, uow conduct.UnitOfWork) error {
		appeal, err := uow.Appeals().GetByID(ctx, cmd.AppealID)
		if err != nil {
			return err
		}

		rec, err := uow.Records().GetByID(ctx, appeal.RecordID)
		if err != nil {
			return err
		}

		stud, err := uow.Students().GetByID(ctx, appeal.StudentID)
		if err != nil {
			return err
		}

		oldStatus = appeal.Status
		tr, err := conduct.Decide(oldStatus, cmd.Decision)
		if err != nil {
			return err
		}

		newScore := stud.CurrentScore
		if d := tr.ScoreDelta(rec.ScoreChange); d != 0 {
			newScore, err = uow.Students().ApplyScoreDelta(ctx, stud.ID, d)
			if err != nil {
				return err
			}
			delta = float64(d)
		}

		if rec.Status != tr.RecordStatus {
			if err := uow.Records().SetStatus(ctx, rec.ID, tr.RecordStatus); err != nil {
				return err
			}
		}

		appeal.ApplyDecision(cmd.Decision, cmd.ProcessedBy, h.now())
		if err := uow.Appeals().Update(ctx, appeal); err != nil {
			return err
		}

		appealRec = appeal
		result = DecideAppealResult{
			Outcome:      tr.Outcome,
			Message:      tr.Outcome.Message(),
			NewScore:     float64(newScore),
			RecordStatus: tr.RecordStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.flushCache(ctx)
	_ = h.publisher.Publish(shared.NewAppealDecidedEvent(
		appealRec.ID, appealRec.RecordID, appealRec.StudentID,
		string(oldStatus), string(cmd.Decision), delta, cmd.ProcessedBy,
	))

	return &result, nil
}

func (h *DecideAppealHandler) flushCache(ctx context.Context) {
	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.InvalidateAll(ctx); err != nil {
		h.log.Warn("cache invalidation failed after decide_appeal", logger.Err(err))
	}
}
