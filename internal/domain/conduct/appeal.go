package conduct

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPEAL STATUS
// ══════════════════════════════════════════════════════════════════════════════

// AppealStatus определяет состояние апелляции.
// Терминального состояния нет: любое решение можно пересмотреть.
type AppealStatus string

const (
	// AppealPending - апелляция подана и ждёт решения.
	AppealPending AppealStatus = "pending"
	// AppealApproved - апелляция одобрена, запись аннулирована.
	AppealApproved AppealStatus = "approved"
	// AppealRejected - апелляция отклонена, запись остаётся в силе.
	AppealRejected AppealStatus = "rejected"
)

// IsValid проверяет, что статус корректен.
func (s AppealStatus) IsValid() bool {
	switch s {
	case AppealPending, AppealApproved, AppealRejected:
		return true
	default:
		return false
	}
}

// IsDecision проверяет, что статус является допустимым решением.
// Вернуть апелляцию в pending нельзя.
func (s AppealStatus) IsDecision() bool {
	return s == AppealApproved || s == AppealRejected
}

// ══════════════════════════════════════════════════════════════════════════════
// APPEAL ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Appeal - оспаривание конкретной записи поведения.
// Создаётся в состоянии pending внешним потоком подачи; ядро меняет
// только Status, ProcessedBy и ProcessedAt через операцию решения.
type Appeal struct {
	// ID - внутренний уникальный идентификатор (UUID).
	ID string

	// StudentID - ID студента, подавшего апелляцию.
	StudentID string

	// RecordID - оспариваемая запись поведения.
	RecordID string

	// Reason - обоснование апелляции.
	Reason string

	// Status - текущее состояние апелляции.
	Status AppealStatus

	// ProcessedBy - имя оператора, принявшего последнее решение.
	ProcessedBy string

	// CreatedAt - время подачи.
	CreatedAt time.Time

	// ProcessedAt - время последнего решения (нулевое для pending).
	ProcessedAt time.Time
}

// Доменные ошибки апелляций.
var (
	// ErrAppealNotFound - апелляция не найдена.
	ErrAppealNotFound = errors.New("appeal not found")

	// ErrInvalidDecision - решение должно быть approved или rejected.
	ErrInvalidDecision = errors.New("decision must be approved or rejected")

	// ErrUnknownTransition - пара (старый, новый) статус вне таблицы переходов.
	ErrUnknownTransition = errors.New("unknown appeal status transition")
)

// NewAppealParams содержит параметры для подачи апелляции.
type NewAppealParams struct {
	ID        string
	StudentID string
	RecordID  string
	Reason    string
}

// NewAppeal создаёт новую апелляцию в состоянии pending.
func NewAppeal(params NewAppealParams) (*Appeal, error) {
	if params.ID == "" {
		return nil, errors.New("appeal id is required")
	}
	if params.StudentID == "" {
		return nil, errors.New("student id is required")
	}
	if params.RecordID == "" {
		return nil, errors.New("record id is required")
	}

	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	return &Appeal{
		ID:        params.ID,
		StudentID: params.StudentID,
		RecordID:  params.RecordID,
		Reason:    reason,
		Status:    AppealPending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ApplyDecision фиксирует решение на апелляции.
// Вычисление эффекта решения (статус записи, дельта балла) выполняется
// отдельно таблицей переходов - см. Decide.
func (a *Appeal) ApplyDecision(newStatus AppealStatus, processedBy string, at time.Time) {
	a.Status = newStatus
	a.ProcessedBy = processedBy
	a.ProcessedAt = at
}

// String возвращает строковое представление апелляции для логирования.
func (a *Appeal) String() string {
	return fmt.Sprintf(
		"Appeal{ID: %s, Record: %s, Status: %s}",
		a.ID, a.RecordID, a.Status,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION TABLE
// Эффект решения зависит от пары (старый статус, новый статус).
// Таблица — единственное место, где эта логика определена: обратный
// переход обязан в точности отменять ранее применённую дельту,
// а не применять новую.
// ══════════════════════════════════════════════════════════════════════════════

// Outcome классифицирует исход решения для сообщения вызывающей стороне.
type Outcome string

const (
	// OutcomeApproved - первое одобрение (pending -> approved).
	OutcomeApproved Outcome = "approved"
	// OutcomeRejected - первое отклонение (pending -> rejected).
	OutcomeRejected Outcome = "rejected"
	// OutcomeReversedToRejected - пересмотр approved -> rejected.
	OutcomeReversedToRejected Outcome = "reversed_to_rejected"
	// OutcomeReversedToApproved - пересмотр rejected -> approved.
	OutcomeReversedToApproved Outcome = "reversed_to_approved"
	// OutcomeUnchanged - повторная подача того же решения, ничего не меняется.
	OutcomeUnchanged Outcome = "unchanged"
)

// Message возвращает человекочитаемое описание исхода.
func (o Outcome) Message() string {
	switch o {
	case OutcomeApproved:
		return "appeal approved: record invalidated, score restored"
	case OutcomeRejected:
		return "appeal rejected: record stands"
	case OutcomeReversedToRejected:
		return "decision reversed from approved to rejected: record restored, score re-deducted"
	case OutcomeReversedToApproved:
		return "decision reversed from rejected to approved: record invalidated, score restored"
	case OutcomeUnchanged:
		return "decision unchanged: no effect on record or score"
	default:
		return "unknown outcome"
	}
}

// Transition описывает эффект одного перехода состояния апелляции.
type Transition struct {
	// RecordStatus - статус, который должна получить оспариваемая запись.
	RecordStatus RecordStatus

	// DeltaSign - множитель для ScoreChange записи, применяемый к баллу:
	// -1 исключает дельту из балла, +1 возвращает её, 0 - без изменений.
	DeltaSign int

	// Outcome - классификация исхода для сообщения.
	Outcome Outcome
}

// ScoreDelta возвращает дельту балла для записи с данным изменением.
func (t Transition) ScoreDelta(change student.Score) student.Score {
	return student.Score(float64(t.DeltaSign)) * change
}

// transitionKey - пара (старый статус, новый статус).
type transitionKey struct {
	from AppealStatus
	to   AppealStatus
}

// transitions - полная таблица переходов. Все шесть допустимых ячеек
// перечислены явно; отсутствие пары в таблице означает недопустимый переход.
var transitions = map[transitionKey]Transition{
	{AppealPending, AppealApproved}:  {RecordInvalid, -1, OutcomeApproved},
	{AppealPending, AppealRejected}:  {RecordValid, 0, OutcomeRejected},
	{AppealApproved, AppealRejected}: {RecordValid, +1, OutcomeReversedToRejected},
	{AppealRejected, AppealApproved}: {RecordInvalid, -1, OutcomeReversedToApproved},
	{AppealApproved, AppealApproved}: {RecordInvalid, 0, OutcomeUnchanged},
	{AppealRejected, AppealRejected}: {RecordValid, 0, OutcomeUnchanged},
}

// Decide возвращает эффект перехода апелляции из from в to.
// Возвращает ErrInvalidDecision, если to не является решением,
// и ErrUnknownTransition для пары вне таблицы.
func Decide(from, to AppealStatus) (Transition, error) {
	if !to.IsDecision() {
		return Transition{}, ErrInvalidDecision
	}

	tr, ok := transitions[transitionKey{from, to}]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s -> %s", ErrUnknownTransition, from, to)
	}

	return tr, nil
}
