package conduct

import (
	"context"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракты хранилища записей поведения и апелляций.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// RecordRepository определяет операции над записями поведения.
type RecordRepository interface {
	// Create сохраняет новую запись поведения.
	Create(ctx context.Context, record *ConductRecord) error

	// GetByID возвращает запись по ID.
	// Возвращает ErrRecordNotFound, если запись не найдена.
	GetByID(ctx context.Context, id string) (*ConductRecord, error)

	// GetByStudent возвращает записи студента, новые первыми.
	GetByStudent(ctx context.Context, studentID string, opts ListOptions) ([]*ConductRecord, error)

	// SetStatus меняет статус записи (valid/invalid).
	// Возвращает ErrRecordNotFound, если запись не найдена.
	SetStatus(ctx context.Context, id string, status RecordStatus) error

	// Delete жёстко удаляет запись. Возвращает true, если запись
	// существовала и была удалена.
	Delete(ctx context.Context, id string) (bool, error)

	// SumValidChanges возвращает сумму дельт действительных записей студента.
	SumValidChanges(ctx context.Context, studentID string) (student.Score, error)

	// List возвращает записи с пагинацией.
	List(ctx context.Context, opts ListOptions) ([]*ConductRecord, error)
}

// AppealRepository определяет операции над апелляциями.
type AppealRepository interface {
	// Create сохраняет новую апелляцию.
	// Возвращает ErrAppealAlreadyFiled из shared, если на запись уже
	// подана апелляция (уникальный индекс по record_id).
	Create(ctx context.Context, appeal *Appeal) error

	// GetByID возвращает апелляцию по ID.
	// Возвращает ErrAppealNotFound, если апелляция не найдена.
	GetByID(ctx context.Context, id string) (*Appeal, error)

	// GetByRecord возвращает апелляцию на запись.
	// Возвращает ErrAppealNotFound, если апелляции нет.
	GetByRecord(ctx context.Context, recordID string) (*Appeal, error)

	// Update сохраняет решение (status, processed_by, processed_at).
	// Возвращает ErrAppealNotFound, если апелляция не найдена.
	Update(ctx context.Context, appeal *Appeal) error

	// ListByStatus возвращает апелляции в заданном состоянии.
	ListByStatus(ctx context.Context, status AppealStatus, opts ListOptions) ([]*Appeal, error)
}

// ListOptions содержит параметры пагинации для списков записей и апелляций.
type ListOptions struct {
	Offset int
	Limit  int
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{Offset: 0, Limit: 50}
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION BOUNDARY
// Каждая логическая операция (создание пакета записей, удаление пакета,
// решение апелляции) выполняется в одной транзакции: либо всё, либо ничего.
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork даёт доступ к репозиториям, привязанным к одной транзакции.
type UnitOfWork interface {
	// Students возвращает репозиторий студентов в рамках транзакции.
	Students() student.Repository

	// Records возвращает репозиторий записей поведения в рамках транзакции.
	Records() RecordRepository

	// Appeals возвращает репозиторий апелляций в рамках транзакции.
	Appeals() AppealRepository
}

// TxManager открывает транзакцию, выполняет fn и коммитит при nil-ошибке.
// Любая ошибка fn откатывает транзакцию целиком.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INVALIDATOR
// Контракт инвалидации кеша читающих представлений. Вызывается после
// коммита каждой мутации; ошибка логируется и никогда не откатывает
// транзакцию и не считается ошибкой операции.
// ══════════════════════════════════════════════════════════════════════════════

// CacheInvalidator сбрасывает все закешированные читающие представления.
// Операция идемпотентна.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// READ VIEW CACHE
// Кеш читающих представлений (реализуется через Redis).
// ══════════════════════════════════════════════════════════════════════════════

// ScoreView - читающее представление балла студента.
type ScoreView struct {
	StudentID    string        `json:"student_id"`
	Number       string        `json:"number"`
	Name         string        `json:"name"`
	BaseScore    student.Score `json:"base_score"`
	CurrentScore student.Score `json:"current_score"`
	ValidSum     student.Score `json:"valid_sum"`
	RecordCount  int           `json:"record_count"`
	CachedAt     time.Time     `json:"cached_at"`
}

// ViewCache кеширует читающие представления и реализует CacheInvalidator.
type ViewCache interface {
	CacheInvalidator

	// GetScoreView возвращает закешированное представление балла.
	// Реализация возвращает ошибку кеш-промаха, если представления нет.
	GetScoreView(ctx context.Context, studentID string) (*ScoreView, error)

	// SetScoreView кеширует представление балла.
	SetScoreView(ctx context.Context, view *ScoreView, ttl time.Duration) error

	// GetRecordList возвращает закешированную первую страницу записей студента.
	GetRecordList(ctx context.Context, studentID string) ([]*ConductRecord, error)

	// SetRecordList кеширует первую страницу записей студента.
	SetRecordList(ctx context.Context, studentID string, records []*ConductRecord, ttl time.Duration) error
}
