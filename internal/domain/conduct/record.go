// Package conduct содержит доменную модель леджера баллов поведения:
// записи поведения (conduct records), апелляции и таблицу переходов
// состояний апелляции. Балл студента обязан в любой момент равняться
// базовому баллу плюс сумме изменений всех действительных записей.
package conduct

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD STATUS
// ══════════════════════════════════════════════════════════════════════════════

// RecordStatus определяет, учитывается ли запись в балле студента.
type RecordStatus string

const (
	// RecordValid - запись действительна, её дельта входит в балл.
	RecordValid RecordStatus = "valid"
	// RecordInvalid - запись аннулирована одобренной апелляцией,
	// её дельта исключена из балла.
	RecordInvalid RecordStatus = "invalid"
)

// IsValid проверяет, что статус корректен.
func (s RecordStatus) IsValid() bool {
	return s == RecordValid || s == RecordInvalid
}

// Counts возвращает true, если дельта записи учитывается в балле.
func (s RecordStatus) Counts() bool {
	return s == RecordValid
}

// ══════════════════════════════════════════════════════════════════════════════
// CONDUCT RECORD
// ══════════════════════════════════════════════════════════════════════════════

// ConductRecord - событие изменения балла с причиной и оператором.
// Запись неизменяема после создания; меняется только Status (апелляцией),
// удаление - жёсткое, через Record Ledger.
type ConductRecord struct {
	// ID - внутренний уникальный идентификатор (UUID).
	ID string

	// StudentID - ID студента, которому принадлежит запись.
	StudentID string

	// Reason - причина изменения балла (свободный текст).
	Reason string

	// ScoreChange - знаковая дельта балла. Не может быть нулевой.
	ScoreChange student.Score

	// ScoreAfter - снимок балла студента сразу после создания записи.
	// Информационное поле, при последующих мутациях не пересчитывается.
	ScoreAfter student.Score

	// OperatorName - имя оператора, создавшего запись.
	OperatorName string

	// Status - действительна ли запись. Единственный источник истины
	// о том, входит ли ScoreChange в текущий балл.
	Status RecordStatus

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Доменные ошибки записей поведения.
var (
	// ErrZeroScoreChange - нулевая дельта не допускается.
	ErrZeroScoreChange = errors.New("score change must not be zero")

	// ErrEmptyReason - причина обязательна.
	ErrEmptyReason = errors.New("reason must not be empty")
)

// NewRecordParams содержит параметры для создания записи поведения.
type NewRecordParams struct {
	ID           string
	StudentID    string
	Reason       string
	ScoreChange  student.Score
	ScoreAfter   student.Score
	OperatorName string
}

// NewConductRecord создаёт новую действительную запись поведения.
func NewConductRecord(params NewRecordParams) (*ConductRecord, error) {
	if params.ID == "" {
		return nil, errors.New("record id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}
	if params.ScoreChange == 0 {
		return nil, ErrZeroScoreChange
	}

	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	return &ConductRecord{
		ID:           params.ID,
		StudentID:    params.StudentID,
		Reason:       reason,
		ScoreChange:  params.ScoreChange,
		ScoreAfter:   params.ScoreAfter,
		OperatorName: params.OperatorName,
		Status:       RecordValid,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Invalidate помечает запись как аннулированную.
func (r *ConductRecord) Invalidate() {
	r.Status = RecordInvalid
}

// Restore возвращает запись в действительное состояние.
func (r *ConductRecord) Restore() {
	r.Status = RecordValid
}

// ReversalDelta возвращает дельту, которую нужно применить к баллу
// студента при удалении записи. Дельта возвращается только для
// действительной записи: аннулированная запись уже исключена из балла,
// повторное вычитание дало бы двойной учёт.
func (r *ConductRecord) ReversalDelta() student.Score {
	if r.Status.Counts() {
		return -r.ScoreChange
	}
	return 0
}

// String возвращает строковое представление записи для логирования.
func (r *ConductRecord) String() string {
	return fmt.Sprintf(
		"ConductRecord{ID: %s, Student: %s, Change: %+.2f, Status: %s}",
		r.ID, r.StudentID, float64(r.ScoreChange), r.Status,
	)
}
