package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Контракт для работы с хранилищем студентов.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над записями студентов.
type Repository interface {
	// Create создаёт нового студента.
	// Возвращает ErrStudentAlreadyExists, если студент уже существует.
	Create(ctx context.Context, student *Student) error

	// GetByID возвращает студента по внутреннему ID.
	// Возвращает ErrStudentNotFound, если студент не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByNumber возвращает студента по учётному номеру.
	// Возвращает ErrStudentNotFound, если студент не найден.
	GetByNumber(ctx context.Context, number StudentNumber) (*Student, error)

	// GetByIDs возвращает студентов по списку ID.
	GetByIDs(ctx context.Context, ids []string) ([]*Student, error)

	// Update обновляет данные студента (кроме CurrentScore).
	// Возвращает ErrStudentNotFound, если студент не найден.
	Update(ctx context.Context, student *Student) error

	// ApplyScoreDelta атомарно прибавляет delta к CurrentScore и
	// возвращает новое значение балла. Изменение выражается одним
	// UPDATE (score = score + delta), чтение и запись не разделяются.
	// Возвращает ErrStudentNotFound, если студент не найден.
	ApplyScoreDelta(ctx context.Context, id string, delta Score) (Score, error)

	// List возвращает студентов с пагинацией.
	List(ctx context.Context, opts ListOptions) ([]*Student, error)

	// Count возвращает общее количество студентов.
	Count(ctx context.Context) (int, error)

	// Exists проверяет существование студента по ID.
	Exists(ctx context.Context, id string) (bool, error)
}

// ListOptions содержит параметры для пагинации и сортировки.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// SortBy - поле для сортировки.
	SortBy string

	// SortDesc - сортировка по убыванию.
	SortDesc bool

	// IncludeInactive - включать неактивных студентов.
	IncludeInactive bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:   0,
		Limit:    50,
		SortBy:   "current_score",
		SortDesc: true,
	}
}

// WithOffset устанавливает смещение.
func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

// WithLimit устанавливает лимит.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithInactive включает неактивных студентов.
func (o ListOptions) WithInactive() ListOptions {
	o.IncludeInactive = true
	return o
}
