// Package postgres implements the PostgreSQL persistence layer for
// Campus Conduct Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/operator"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// OPERATOR REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// OperatorRepository implements operator.Repository for PostgreSQL.
type OperatorRepository struct {
	db Querier
}

// NewOperatorRepository creates an OperatorRepository backed by the pool.
func NewOperatorRepository(conn *Connection) *OperatorRepository {
	return &OperatorRepository{db: conn}
}

const operatorColumns = `id, username, display_name, password_hash, role, created_at, updated_at`

// Create stores a new operator account.
func (r *OperatorRepository) Create(ctx context.Context, op *operator.Operator) error {
	query := `
		INSERT INTO operators (
			id, username, display_name, password_hash, role, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		op.ID,
		op.Username,
		op.DisplayName,
		op.PasswordHash,
		string(op.Role),
		op.CreatedAt,
		op.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return operator.ErrOperatorAlreadyExists
		}
		return fmt.Errorf("failed to create operator: %w", err)
	}

	return nil
}

// GetByUsername returns an operator by username.
func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (*operator.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE username = $1`

	row := r.db.QueryRow(ctx, query, username)
	return r.scanOperator(row)
}

// Update stores changed operator fields.
func (r *OperatorRepository) Update(ctx context.Context, op *operator.Operator) error {
	query := `
		UPDATE operators SET
			display_name = $1,
			password_hash = $2,
			role = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query,
		op.DisplayName,
		op.PasswordHash,
		string(op.Role),
		time.Now().UTC(),
		op.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update operator: %w", err)
	}

	if result.RowsAffected() == 0 {
		return operator.ErrOperatorNotFound
	}

	return nil
}

func (r *OperatorRepository) scanOperator(row pgx.Row) (*operator.Operator, error) {
	var (
		op   operator.Operator
		role string
	)

	err := row.Scan(
		&op.ID,
		&op.Username,
		&op.DisplayName,
		&op.PasswordHash,
		&role,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, operator.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to scan operator: %w", err)
	}

	op.Role = operator.Role(role)
	return &op, nil
}
