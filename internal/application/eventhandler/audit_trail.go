// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUDIT TRAIL HANDLER
// Подписывается на все события журнала и пишет структурированный аудит-лог.
//
// Ключевые функции:
// 1. Каждая мутация баллов (записи, апелляции, удаления) оставляет след
// 2. Системные события (сброс кэша, расхождения аудита) фиксируются отдельно
// 3. Лог — единственный потребитель, обработчик никогда не меняет состояние
//
// Философия: баллы студента можно оспорить, поэтому каждое изменение
// должно быть восстановимо из журнала без доступа к базе.
// ═══════════════════════════════════════════════════════════════════════════

// AuditTrailHandler writes one structured log line per domain event.
type AuditTrailHandler struct {
	log    *logger.Logger
	config AuditTrailConfig
}

// AuditTrailConfig содержит конфигурацию обработчика.
type AuditTrailConfig struct {
	// IncludePayload — включать ли полный payload события в лог.
	// Выключайте в окружениях, где reason-тексты считаются чувствительными.
	IncludePayload bool

	// SystemEvents — логировать ли системные события (сброс кэша и т.п.),
	// а не только мутации журнала.
	SystemEvents bool
}

// DefaultAuditTrailConfig возвращает конфигурацию по умолчанию.
func DefaultAuditTrailConfig() AuditTrailConfig {
	return AuditTrailConfig{
		IncludePayload: true,
		SystemEvents:   true,
	}
}

// NewAuditTrailHandler создаёт новый обработчик аудит-лога.
func NewAuditTrailHandler(log *logger.Logger, config AuditTrailConfig) *AuditTrailHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AuditTrailHandler{
		log:    log.With(logger.Component("audit_trail")),
		config: config,
	}
}

// Handle implements shared.EventHandler.
func (h *AuditTrailHandler) Handle(event shared.Event) error {
	if !h.config.SystemEvents && isSystemEvent(event.EventType()) {
		return nil
	}

	fields := []logger.Field{
		logger.String("event_type", string(event.EventType())),
		logger.String("aggregate_id", event.AggregateID()),
		logger.Time("occurred_at", event.OccurredAt()),
	}
	if h.config.IncludePayload {
		fields = append(fields, logger.Any("payload", event.Payload()))
	}

	switch event.EventType() {
	case shared.EventAuditDriftFound:
		h.log.Warn("audit event", fields...)
	default:
		h.log.Info("audit event", fields...)
	}
	return nil
}

func isSystemEvent(t shared.EventType) bool {
	return t == shared.EventCacheFlushed || t == shared.EventAuditDriftFound
}
