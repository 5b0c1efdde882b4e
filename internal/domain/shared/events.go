// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the domain; read-side caches and audit trails subscribe to them.
const (
	// Conduct ledger events
	EventRecordsAdded   EventType = "conduct.records_added"
	EventRecordsDeleted EventType = "conduct.records_deleted"

	// Appeal events
	EventAppealFiled   EventType = "appeal.filed"
	EventAppealDecided EventType = "appeal.decided"

	// System events
	EventCacheFlushed    EventType = "system.cache_flushed"
	EventAuditDriftFound EventType = "system.audit_drift_found"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Conduct Ledger Events
// ═══════════════════════════════════════════════════════════════════════════

// RecordsAddedEvent is emitted when a batch of conduct records is created.
type RecordsAddedEvent struct {
	BaseEvent
	StudentIDs   []string `json:"student_ids"`
	RecordIDs    []string `json:"record_ids"`
	ScoreChange  float64  `json:"score_change"`
	Reason       string   `json:"reason"`
	OperatorName string   `json:"operator_name"`
}

// Payload implements Event interface.
func (e RecordsAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_ids":   e.StudentIDs,
		"record_ids":    e.RecordIDs,
		"score_change":  e.ScoreChange,
		"reason":        e.Reason,
		"operator_name": e.OperatorName,
	}
}

// NewRecordsAddedEvent creates a RecordsAddedEvent.
func NewRecordsAddedEvent(studentIDs, recordIDs []string, scoreChange float64, reason, operator string) RecordsAddedEvent {
	agg := ""
	if len(studentIDs) > 0 {
		agg = studentIDs[0]
	}
	return RecordsAddedEvent{
		BaseEvent:    NewBaseEvent(EventRecordsAdded, agg),
		StudentIDs:   studentIDs,
		RecordIDs:    recordIDs,
		ScoreChange:  scoreChange,
		Reason:       reason,
		OperatorName: operator,
	}
}

// RecordsDeletedEvent is emitted when conduct records are hard-deleted.
type RecordsDeletedEvent struct {
	BaseEvent
	RecordIDs []string `json:"record_ids"`
	Deleted   int      `json:"deleted"`
}

// Payload implements Event interface.
func (e RecordsDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"record_ids": e.RecordIDs,
		"deleted":    e.Deleted,
	}
}

// NewRecordsDeletedEvent creates a RecordsDeletedEvent.
func NewRecordsDeletedEvent(recordIDs []string, deleted int) RecordsDeletedEvent {
	agg := ""
	if len(recordIDs) > 0 {
		agg = recordIDs[0]
	}
	return RecordsDeletedEvent{
		BaseEvent: NewBaseEvent(EventRecordsDeleted, agg),
		RecordIDs: recordIDs,
		Deleted:   deleted,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Appeal Events
// ═══════════════════════════════════════════════════════════════════════════

// AppealFiledEvent is emitted when a student files an appeal.
type AppealFiledEvent struct {
	BaseEvent
	AppealID  string `json:"appeal_id"`
	RecordID  string `json:"record_id"`
	StudentID string `json:"student_id"`
}

// Payload implements Event interface.
func (e AppealFiledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"appeal_id":  e.AppealID,
		"record_id":  e.RecordID,
		"student_id": e.StudentID,
	}
}

// NewAppealFiledEvent creates an AppealFiledEvent.
func NewAppealFiledEvent(appealID, recordID, studentID string) AppealFiledEvent {
	return AppealFiledEvent{
		BaseEvent: NewBaseEvent(EventAppealFiled, appealID),
		AppealID:  appealID,
		RecordID:  recordID,
		StudentID: studentID,
	}
}

// AppealDecidedEvent is emitted after an appeal decision commits.
type AppealDecidedEvent struct {
	BaseEvent
	AppealID    string  `json:"appeal_id"`
	RecordID    string  `json:"record_id"`
	StudentID   string  `json:"student_id"`
	OldStatus   string  `json:"old_status"`
	NewStatus   string  `json:"new_status"`
	ScoreDelta  float64 `json:"score_delta"`
	ProcessedBy string  `json:"processed_by"`
}

// Payload implements Event interface.
func (e AppealDecidedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"appeal_id":    e.AppealID,
		"record_id":    e.RecordID,
		"student_id":   e.StudentID,
		"old_status":   e.OldStatus,
		"new_status":   e.NewStatus,
		"score_delta":  e.ScoreDelta,
		"processed_by": e.ProcessedBy,
	}
}

// NewAppealDecidedEvent creates an AppealDecidedEvent.
func NewAppealDecidedEvent(appealID, recordID, studentID, oldStatus, newStatus string, delta float64, processedBy string) AppealDecidedEvent {
	return AppealDecidedEvent{
		BaseEvent:   NewBaseEvent(EventAppealDecided, appealID),
		AppealID:    appealID,
		RecordID:    recordID,
		StudentID:   studentID,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		ScoreDelta:  delta,
		ProcessedBy: processedBy,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Publisher / Handler contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventPublisher publishes domain events to interested subscribers.
// Publishing is best-effort: a failed publish must never fail the
// operation that produced the event.
type EventPublisher interface {
	Publish(event Event) error
}

// EventHandler handles a single domain event.
type EventHandler interface {
	Handle(event Event) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(event Event) error

// Handle implements EventHandler.
func (f EventHandlerFunc) Handle(event Event) error {
	return f(event)
}

// NopPublisher discards all events. Useful in tests and tools.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
