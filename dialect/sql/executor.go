package sql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syssam/bsql/dialect"
)

// ErrTxAborted is returned by the statements and the Commit of an executor
// whose transaction lost its connection after it had run statements. It
// persists until Rollback.
var ErrTxAborted = errors.New("dialect/sql: transaction aborted")

// TxExecutor is a dialect.Executor bound to one transaction at a time.
// The transaction is opened lazily by the first statement. When the first
// statement of a transaction fails with a dropped connection, the executor
// reconnects once and re-issues it; a second failure is returned to the
// caller. A dropped connection later in the transaction aborts it, since
// the earlier statements are lost with the connection.
//
// TxExecutor is not safe for concurrent use.
type TxExecutor struct {
	name    string
	drv     dialect.Driver
	tx      dialect.Tx
	log     *slog.Logger
	stmts   int
	aborted error
}

// NewTxExecutor returns an executor that opens its transactions on drv.
// The name is used in log records only.
func NewTxExecutor(name string, drv dialect.Driver, log *slog.Logger) *TxExecutor {
	if log == nil {
		log = slog.Default()
	}
	return &TxExecutor{name: name, drv: drv, log: log}
}

// Begin starts a transaction unless one is already open.
func (e *TxExecutor) Begin(ctx context.Context) error {
	if e.aborted != nil {
		return e.abortedErr()
	}
	if e.tx != nil {
		return nil
	}
	tx, err := e.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: %s: begin: %w", e.name, err)
	}
	e.tx, e.stmts = tx, 0
	return nil
}

// InTx reports whether a transaction is currently open.
func (e *TxExecutor) InTx() bool { return e.tx != nil }

// Aborted reports whether the executor lost a transaction with statements
// and waits for Rollback.
func (e *TxExecutor) Aborted() bool { return e.aborted != nil }

// Commit commits the open transaction. It is a no-op without one.
func (e *TxExecutor) Commit() error {
	if e.aborted != nil {
		return e.abortedErr()
	}
	if e.tx == nil {
		return nil
	}
	tx := e.tx
	e.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: %s: commit: %w", e.name, err)
	}
	return nil
}

// Rollback aborts the open transaction and clears an aborted state. It is
// a no-op without a transaction.
func (e *TxExecutor) Rollback() error {
	e.aborted = nil
	if e.tx == nil {
		return nil
	}
	tx := e.tx
	e.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("dialect/sql: %s: rollback: %w", e.name, err)
	}
	return nil
}

// Reconnect abandons the current transaction, whose connection is assumed
// to be gone, and opens a new one. Statements issued in the abandoned
// transaction are lost.
func (e *TxExecutor) Reconnect(ctx context.Context) error {
	if e.tx != nil {
		// The connection is already broken, the rollback error carries no information.
		_ = e.tx.Rollback()
		e.tx = nil
	}
	e.log.WarnContext(ctx, "reconnecting executor", "executor", e.name)
	return e.Begin(ctx)
}

// Exec executes a statement inside the executor transaction.
func (e *TxExecutor) Exec(ctx context.Context, query string, args, v any) error {
	return e.do(ctx, func(tx dialect.Tx) error {
		return tx.Exec(ctx, query, args, v)
	})
}

// Query executes a query inside the executor transaction.
func (e *TxExecutor) Query(ctx context.Context, query string, args, v any) error {
	return e.do(ctx, func(tx dialect.Tx) error {
		return tx.Query(ctx, query, args, v)
	})
}

func (e *TxExecutor) do(ctx context.Context, fn func(dialect.Tx) error) error {
	if err := e.Begin(ctx); err != nil {
		return err
	}
	err := fn(e.tx)
	if err != nil && IsBadConn(err) {
		if e.stmts > 0 {
			return e.abort(ctx, err)
		}
		if rerr := e.Reconnect(ctx); rerr != nil {
			return errors.Join(err, rerr)
		}
		err = fn(e.tx)
	}
	if err == nil {
		e.stmts++
	}
	return err
}

// abort drops a transaction whose connection failed after it ran
// statements.
func (e *TxExecutor) abort(ctx context.Context, err error) error {
	// The connection is already broken, the rollback error carries no information.
	_ = e.tx.Rollback()
	e.tx = nil
	e.aborted = err
	e.log.WarnContext(ctx, "transaction aborted", "executor", e.name, "statements", e.stmts, "error", err)
	return e.abortedErr()
}

func (e *TxExecutor) abortedErr() error {
	return fmt.Errorf("dialect/sql: %s: %w: %w", e.name, ErrTxAborted, e.aborted)
}

var _ dialect.Executor = (*TxExecutor)(nil)
