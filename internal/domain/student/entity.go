// Package student содержит доменную модель студента Campus Conduct Hub.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Score представляет балл поведения студента.
// Значение может быть дробным (например, -0.5 за мелкое нарушение).
type Score float64

// Add складывает баллы.
func (s Score) Add(delta Score) Score {
	return s + delta
}

// StudentNumber представляет внешний учётный номер студента (табельный номер).
type StudentNumber string

// IsValid проверяет корректность учётного номера.
func (n StudentNumber) IsValid() bool {
	s := string(n)
	return len(s) >= 2 && len(s) <= 30 && !strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление номера.
func (n StudentNumber) String() string {
	return string(n)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус студента.
type Status string

const (
	// StatusActive - студент учится, записи поведения учитываются.
	StatusActive Status = "active"
	// StatusInactive - студент неактивен (академический отпуск, отчислен).
	StatusInactive Status = "inactive"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы.
// CurrentScore - единственное поле, которое меняет ядро (Score Ledger);
// все остальные поля управляются модулем учёта студентов.
type Student struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Number - внешний учётный номер для отображения.
	Number StudentNumber

	// Name - имя студента.
	Name string

	// BaseScore - стартовый балл при зачислении (обычно 100).
	BaseScore Score

	// CurrentScore - текущий агрегированный балл поведения.
	// Инвариант: CurrentScore == BaseScore + Σ(score_change действительных записей).
	CurrentScore Score

	// Status - текущий статус студента.
	Status Status

	// AppealPermission - разрешено ли студенту подавать апелляции.
	AppealPermission bool

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidNumber - невалидный учётный номер.
	ErrInvalidNumber = errors.New("invalid student number: must be 2-30 chars without whitespace")

	// ErrInvalidName - невалидное имя.
	ErrInvalidName = errors.New("invalid name: must be 1-100 chars")

	// ErrInvalidStatus - невалидный статус.
	ErrInvalidStatus = errors.New("invalid student status")

	// ErrStudentNotFound - студент не найден.
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentAlreadyExists - студент уже существует.
	ErrStudentAlreadyExists = errors.New("student already exists")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams содержит параметры для создания нового студента.
type NewStudentParams struct {
	ID        string
	Number    StudentNumber
	Name      string
	BaseScore Score
}

// DefaultBaseScore - стартовый балл поведения по умолчанию.
const DefaultBaseScore Score = 100

// NewStudent создаёт нового студента с валидацией всех полей.
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, errors.New("student id is required")
	}

	if !params.Number.IsValid() {
		return nil, ErrInvalidNumber
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	now := time.Now().UTC()

	return &Student{
		ID:               params.ID,
		Number:           params.Number,
		Name:             name,
		BaseScore:        params.BaseScore,
		CurrentScore:     params.BaseScore,
		Status:           StatusActive,
		AppealPermission: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// ApplyDelta применяет дельту к текущему баллу и возвращает новый балл.
// Сам по себе метод не создаёт запись в леджере - это делает Record Ledger.
func (s *Student) ApplyDelta(delta Score) Score {
	s.CurrentScore = s.CurrentScore.Add(delta)
	s.UpdatedAt = time.Now().UTC()
	return s.CurrentScore
}

// Deactivate помечает студента как неактивного.
func (s *Student) Deactivate() {
	s.Status = StatusInactive
	s.UpdatedAt = time.Now().UTC()
}

// Reactivate возвращает студента в активное состояние.
func (s *Student) Reactivate() {
	s.Status = StatusActive
	s.UpdatedAt = time.Now().UTC()
}

// SetAppealPermission включает или выключает право на апелляции.
func (s *Student) SetAppealPermission(allowed bool) {
	s.AppealPermission = allowed
	s.UpdatedAt = time.Now().UTC()
}

// CanAppeal проверяет, может ли студент подать апелляцию.
func (s *Student) CanAppeal() bool {
	return s.Status == StatusActive && s.AppealPermission
}

// String возвращает строковое представление студента для логирования.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Number: %s, Score: %.2f, Status: %s}",
		s.ID, s.Number, float64(s.CurrentScore), s.Status,
	)
}

// Clone создаёт копию студента.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	return &clone
}
