// Package dialect defines the executor boundary of bsql.
//
// The query builder never speaks a wire protocol. It hands SQL text and
// positional arguments to the interfaces declared here, and the dialect/sql
// package implements them on top of database/sql.
//
// # Dialect
//
// Statements are rendered for MySQL only:
//
//	dialect.MySQL = "mysql"
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Executor Interface
//
// An Executor is bound to one transaction at a time. It begins lazily on the
// first statement. When the driver reports a dropped connection on the first
// statement of a transaction, it reconnects once and re-issues the statement
// before giving up. A connection dropped later aborts the transaction until
// Rollback:
//
//	type Executor interface {
//	    ExecQuerier
//	    Begin(ctx context.Context) error
//	    Commit() error
//	    Rollback() error
//	    Reconnect(ctx context.Context) error
//	}
//
// # Usage
//
//	drv, err := sql.Open(dialect.MySQL, "root:password@tcp(127.0.0.1:3306)/TS?parseTime=true")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := bsql.NewClient(drv)
//	defer client.Close()
//
// # Sub-packages
//
//   - dialect/sql: driver, transactional executor, predicates and row scanning
//   - dialect/sql/schema: schema catalog and CREATE TABLE generation
//   - dialect/sql/sqlgraph: foreign-key resolution, joins and constraint errors
package dialect
