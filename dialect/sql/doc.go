// Package sql implements the dialect executor boundary on top of database/sql.
//
// # Drivers
//
//	drv, err := sql.Open(dialect.MySQL, dsn)
//	drv := sql.OpenDB(dialect.MySQL, db)
//
// A Driver executes statements in autocommit mode. TxExecutor binds statements
// to a transaction that it opens lazily, and retries a statement exactly once
// after reconnecting when the driver reports a dropped connection:
//
//	exec := sql.NewTxExecutor("orm", drv, logger)
//	err := exec.Exec(ctx, "UPDATE `person` SET `age` = ? WHERE `person`.`id` = ?;", []any{30, 5}, nil)
//	err = exec.Commit()
//
// # Wrappers
//
// StatsDriver counts statements and reports slow ones, DebugDriver logs every
// statement and transaction boundary with log/slog:
//
//	drv := sql.NewDebugDriver(sql.NewStatsDriver(base, sql.WithSlowQueryLog(logger)), logger)
//
// # Predicates
//
// Conditions are equality predicates on bare or qualified column names:
//
//	sql.EQ("username", "admin")        // resolved against the statement tables
//	sql.EQ("person.username", "admin") // taken as written
//	sql.Assign("age", 30)              // SET / VALUES pair
//
// Generated record wrappers use the typed column helpers:
//
//	var Age = sql.IntField("age")
//	Age.EQ(30)
//	Age.Assign(31)
//
// # Scanning
//
// ScanValues drains a result set into positional tuples:
//
//	columns, rows, err := sql.ScanValues(rows)
package sql
