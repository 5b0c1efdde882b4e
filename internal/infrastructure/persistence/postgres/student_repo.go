// Package postgres implements the PostgreSQL persistence layer for
// Campus Conduct Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	db Querier
}

// NewStudentRepository creates a StudentRepository backed by the pool.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{db: conn}
}

// newStudentRepositoryTx creates a StudentRepository bound to a transaction.
func newStudentRepositoryTx(q Querier) *StudentRepository {
	return &StudentRepository{db: q}
}

const studentColumns = `id, student_number, full_name, base_score, current_score,
	   status, appeal_permission, created_at, updated_at`

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, student_number, full_name, base_score, current_score,
			status, appeal_permission, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID,
		string(s.Number),
		s.Name,
		float64(s.BaseScore),
		float64(s.CurrentScore),
		string(s.Status),
		s.AppealPermission,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// GetByNumber returns a student by the external student number.
func (r *StudentRepository) GetByNumber(ctx context.Context, number student.StudentNumber) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_number = $1`

	row := r.db.QueryRow(ctx, query, string(number))
	return r.scanStudent(row)
}

// GetByIDs returns students matching the given IDs. Missing IDs are
// simply absent from the result, the caller decides whether that is
// an error.
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []string) ([]*student.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + studentColumns + ` FROM students WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query students by ids: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Update updates student fields other than the score.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			student_number = $1,
			full_name = $2,
			status = $3,
			appeal_permission = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(ctx, query,
		string(s.Number),
		s.Name,
		string(s.Status),
		s.AppealPermission,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// ApplyScoreDelta adds delta to the student's current score in a single
// UPDATE and returns the new value. There is no separate read, so
// concurrent deltas against the same student never lose updates.
func (r *StudentRepository) ApplyScoreDelta(ctx context.Context, id string, delta student.Score) (student.Score, error) {
	query := `
		UPDATE students SET
			current_score = current_score + $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING current_score
	`

	var newScore float64
	err := r.db.QueryRow(ctx, query, float64(delta), id).Scan(&newScore)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.ErrStudentNotFound
		}
		return 0, fmt.Errorf("failed to apply score delta: %w", err)
	}

	return student.Score(newScore), nil
}

// List returns students with pagination.
func (r *StudentRepository) List(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	sortColumn := "current_score"
	switch opts.SortBy {
	case "student_number", "full_name", "current_score", "created_at":
		sortColumn = opts.SortBy
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	statusFilter := "WHERE status = 'active'"
	if opts.IncludeInactive {
		statusFilter = ""
	}

	query := fmt.Sprintf(
		`SELECT %s FROM students %s ORDER BY %s %s LIMIT $1 OFFSET $2`,
		studentColumns, statusFilter, sortColumn, direction,
	)

	rows, err := r.db.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// Exists reports whether a student with the given ID exists.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var (
		s            student.Student
		number       string
		status       string
		baseScore    float64
		currentScore float64
	)

	err := row.Scan(
		&s.ID,
		&number,
		&s.Name,
		&baseScore,
		&currentScore,
		&status,
		&s.AppealPermission,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Number = student.StudentNumber(number)
	s.Status = student.Status(status)
	s.BaseScore = student.Score(baseScore)
	s.CurrentScore = student.Score(currentScore)

	return &s, nil
}

func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}
