// Package postgres implements the PostgreSQL persistence layer for
// Campus Conduct Hub.
package postgres

import (
	"context"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION MANAGER
// Implements conduct.TxManager. Every ledger mutation runs through
// WithinTx: the callback gets repositories bound to one pgx transaction,
// a nil return commits, any error rolls everything back.
// ══════════════════════════════════════════════════════════════════════════════

// TxManager runs unit-of-work callbacks inside PostgreSQL transactions.
type TxManager struct {
	conn *Connection
}

// NewTxManager creates a TxManager over the given connection.
func NewTxManager(conn *Connection) *TxManager {
	return &TxManager{conn: conn}
}

// WithinTx executes fn within a single transaction. All repositories
// exposed through the unit of work share that transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, uow conduct.UnitOfWork) error) error {
	return m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(ctx, newTxUnitOfWork(tx))
	})
}

// txUnitOfWork binds the domain repositories to one pgx.Tx.
type txUnitOfWork struct {
	students *StudentRepository
	records  *RecordRepository
	appeals  *AppealRepository
}

func newTxUnitOfWork(tx pgx.Tx) *txUnitOfWork {
	return &txUnitOfWork{
		students: newStudentRepositoryTx(tx),
		records:  newRecordRepositoryTx(tx),
		appeals:  newAppealRepositoryTx(tx),
	}
}

// Students returns the transaction-bound student repository.
func (u *txUnitOfWork) Students() student.Repository {
	return u.students
}

// Records returns the transaction-bound conduct record repository.
func (u *txUnitOfWork) Records() conduct.RecordRepository {
	return u.records
}

// Appeals returns the transaction-bound appeal repository.
func (u *txUnitOfWork) Appeals() conduct.AppealRepository {
	return u.appeals
}
