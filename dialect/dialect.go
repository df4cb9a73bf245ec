package dialect

import "context"

// MySQL is the only dialect the query builder renders.
const MySQL = "mysql"

// ExecQuerier wraps the two database operations that the builder and the
// catalog need. args is expected to be []any and v is either nil, a
// *sql.Result (Exec) or a *sql.Rows (Query).
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations of a bsql client.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Executor is a transaction-bound ExecQuerier that owns its transaction
// lifecycle. A Session holds two of them: one for record writes and one for
// raw statements that commit on their own.
type Executor interface {
	ExecQuerier
	// Begin starts a transaction unless one is already open.
	Begin(ctx context.Context) error
	// Commit commits the open transaction, if any.
	Commit() error
	// Rollback aborts the open transaction, if any.
	Rollback() error
	// Reconnect drops the current transaction and opens a new one.
	Reconnect(ctx context.Context) error
}
