package query

import (
	"context"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
)

// DefaultRecordListTTL is how long a cached first page of a student's
// records stays fresh. Mutations flush the whole conduct namespace, so
// the TTL only bounds staleness after a missed invalidation.
const DefaultRecordListTTL = 5 * time.Minute

// ListRecordsQuery selects conduct records.
type ListRecordsQuery struct {
	// StudentID limits the listing to one student when non-empty.
	StudentID string
	Offset    int
	Limit     int
}

// ListRecordsHandler lists conduct records.
type ListRecordsHandler struct {
	records conduct.RecordRepository
	cache   conduct.ViewCache
}

// NewListRecordsHandler creates a new ListRecordsHandler.
// cache may be nil, listings then always hit the database.
func NewListRecordsHandler(records conduct.RecordRepository, cache conduct.ViewCache) *ListRecordsHandler {
	return &ListRecordsHandler{records: records, cache: cache}
}

// Handle returns records, newest first.
func (h *ListRecordsHandler) Handle(ctx context.Context, q ListRecordsQuery) ([]*conduct.ConductRecord, error) {
	opts := conduct.DefaultListOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	opts.Offset = q.Offset

	if q.StudentID == "" {
		return h.records.List(ctx, opts)
	}

	// Only the canonical first page is cached; deeper pages and custom
	// limits go straight to the database.
	cacheable := h.cache != nil && q.Offset == 0 && q.Limit == 0
	if cacheable {
		if cached, err := h.cache.GetRecordList(ctx, q.StudentID); err == nil {
			return cached, nil
		}
	}

	records, err := h.records.GetByStudent(ctx, q.StudentID, opts)
	if err != nil {
		return nil, err
	}
	if cacheable {
		// Best-effort: a failed cache write must not fail the read.
		_ = h.cache.SetRecordList(ctx, q.StudentID, records, DefaultRecordListTTL)
	}
	return records, nil
}

// ListAppealsQuery selects appeals by status.
type ListAppealsQuery struct {
	Status conduct.AppealStatus
	Offset int
	Limit  int
}

// ListAppealsHandler lists appeals awaiting or carrying a decision.
type ListAppealsHandler struct {
	appeals conduct.AppealRepository
}

// NewListAppealsHandler creates a new ListAppealsHandler.
func NewListAppealsHandler(appeals conduct.AppealRepository) *ListAppealsHandler {
	return &ListAppealsHandler{appeals: appeals}
}

// Handle returns appeals in the requested state.
func (h *ListAppealsHandler) Handle(ctx context.Context, q ListAppealsQuery) ([]*conduct.Appeal, error) {
	if !q.Status.IsValid() {
		return nil, shared.ErrUnknownAppealStatus
	}

	opts := conduct.DefaultListOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	opts.Offset = q.Offset

	return h.appeals.ListByStatus(ctx, q.Status, opts)
}
