// Package postgres implements the PostgreSQL persistence layer for
// Campus Conduct Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPEAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AppealRepository implements conduct.AppealRepository for PostgreSQL.
type AppealRepository struct {
	db Querier
}

// NewAppealRepository creates an AppealRepository backed by the pool.
func NewAppealRepository(conn *Connection) *AppealRepository {
	return &AppealRepository{db: conn}
}

// newAppealRepositoryTx creates an AppealRepository bound to a transaction.
func newAppealRepositoryTx(q Querier) *AppealRepository {
	return &AppealRepository{db: q}
}

const appealColumns = `id, student_id, record_id, reason, status,
	   processed_by, created_at, processed_at`

// Create stores a new appeal. The unique index on record_id enforces
// the one-appeal-per-record rule.
func (r *AppealRepository) Create(ctx context.Context, a *conduct.Appeal) error {
	query := `
		INSERT INTO appeals (
			id, student_id, record_id, reason, status,
			processed_by, created_at, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.StudentID,
		a.RecordID,
		a.Reason,
		string(a.Status),
		a.ProcessedBy,
		a.CreatedAt,
		nullableTime(a.ProcessedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAppealAlreadyFiled
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrRecordNotFound
		}
		return fmt.Errorf("failed to create appeal: %w", err)
	}

	return nil
}

// GetByID returns an appeal by ID.
func (r *AppealRepository) GetByID(ctx context.Context, id string) (*conduct.Appeal, error) {
	query := `SELECT ` + appealColumns + ` FROM appeals WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanAppeal(row)
}

// GetByRecord returns the appeal filed against a record.
func (r *AppealRepository) GetByRecord(ctx context.Context, recordID string) (*conduct.Appeal, error) {
	query := `SELECT ` + appealColumns + ` FROM appeals WHERE record_id = $1`

	row := r.db.QueryRow(ctx, query, recordID)
	return r.scanAppeal(row)
}

// Update stores the decision fields of an appeal.
func (r *AppealRepository) Update(ctx context.Context, a *conduct.Appeal) error {
	query := `
		UPDATE appeals SET
			status = $1,
			processed_by = $2,
			processed_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query,
		string(a.Status),
		a.ProcessedBy,
		nullableTime(a.ProcessedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appeal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrAppealNotFound
	}

	return nil
}

// ListByStatus returns appeals in a given state, oldest first so the
// queue is worked in filing order.
func (r *AppealRepository) ListByStatus(ctx context.Context, status conduct.AppealStatus, opts conduct.ListOptions) ([]*conduct.Appeal, error) {
	query := `
		SELECT ` + appealColumns + `
		FROM appeals
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, string(status), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list appeals: %w", err)
	}
	defer rows.Close()

	var appeals []*conduct.Appeal
	for rows.Next() {
		a, err := r.scanAppeal(rows)
		if err != nil {
			return nil, err
		}
		appeals = append(appeals, a)
	}

	return appeals, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *AppealRepository) scanAppeal(row pgx.Row) (*conduct.Appeal, error) {
	var (
		a           conduct.Appeal
		status      string
		processedAt *time.Time
	)

	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.RecordID,
		&a.Reason,
		&status,
		&a.ProcessedBy,
		&a.CreatedAt,
		&processedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrAppealNotFound
		}
		return nil, fmt.Errorf("failed to scan appeal: %w", err)
	}

	a.Status = conduct.AppealStatus(status)
	if processedAt != nil {
		a.ProcessedAt = *processedAt
	}

	return &a, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
