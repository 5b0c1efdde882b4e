// Package postgres implements the PostgreSQL persistence layer for
// Campus Conduct Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONDUCT RECORD REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RecordRepository implements conduct.RecordRepository for PostgreSQL.
type RecordRepository struct {
	db Querier
}

// NewRecordRepository creates a RecordRepository backed by the pool.
func NewRecordRepository(conn *Connection) *RecordRepository {
	return &RecordRepository{db: conn}
}

// newRecordRepositoryTx creates a RecordRepository bound to a transaction.
func newRecordRepositoryTx(q Querier) *RecordRepository {
	return &RecordRepository{db: q}
}

const recordColumns = `id, student_id, reason, score_change, score_after,
	   operator_name, status, created_at`

// Create stores a new conduct record.
func (r *RecordRepository) Create(ctx context.Context, rec *conduct.ConductRecord) error {
	query := `
		INSERT INTO conduct_records (
			id, student_id, reason, score_change, score_after,
			operator_name, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.StudentID,
		rec.Reason,
		float64(rec.ScoreChange),
		float64(rec.ScoreAfter),
		rec.OperatorName,
		string(rec.Status),
		rec.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return shared.ErrStudentNotFound
		}
		return fmt.Errorf("failed to create conduct record: %w", err)
	}

	return nil
}

// GetByID returns a conduct record by ID.
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*conduct.ConductRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM conduct_records WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanRecord(row)
}

// GetByStudent returns the student's records, newest first.
func (r *RecordRepository) GetByStudent(ctx context.Context, studentID string, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM conduct_records
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, studentID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query student records: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// SetStatus changes the validity status of a record.
func (r *RecordRepository) SetStatus(ctx context.Context, id string, status conduct.RecordStatus) error {
	query := `UPDATE conduct_records SET status = $1 WHERE id = $2`

	result, err := r.db.Exec(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to set record status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrRecordNotFound
	}

	return nil
}

// Delete removes a record. Returns true if the record existed.
func (r *RecordRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM conduct_records WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete conduct record: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SumValidChanges returns the sum of score deltas over the student's
// valid records. Invalid records do not count.
func (r *RecordRepository) SumValidChanges(ctx context.Context, studentID string) (student.Score, error) {
	query := `
		SELECT COALESCE(SUM(score_change), 0)
		FROM conduct_records
		WHERE student_id = $1 AND status = 'valid'
	`

	var sum float64
	err := r.db.QueryRow(ctx, query, studentID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum valid changes: %w", err)
	}

	return student.Score(sum), nil
}

// List returns conduct records with pagination, newest first.
func (r *RecordRepository) List(ctx context.Context, opts conduct.ListOptions) ([]*conduct.ConductRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM conduct_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conduct records: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *RecordRepository) scanRecord(row pgx.Row) (*conduct.ConductRecord, error) {
	var (
		rec         conduct.ConductRecord
		scoreChange float64
		scoreAfter  float64
		status      string
	)

	err := row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.Reason,
		&scoreChange,
		&scoreAfter,
		&rec.OperatorName,
		&status,
		&rec.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to scan conduct record: %w", err)
	}

	rec.ScoreChange = student.Score(scoreChange)
	rec.ScoreAfter = student.Score(scoreAfter)
	rec.Status = conduct.RecordStatus(status)

	return &rec, nil
}

func (r *RecordRepository) scanRecords(rows pgx.Rows) ([]*conduct.ConductRecord, error) {
	var records []*conduct.ConductRecord

	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
