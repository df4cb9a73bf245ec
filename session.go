package bsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/bsql/dialect/sql"
	"github.com/syssam/bsql/dialect/sql/schema"
)

// Session is a unit of work. It owns two executors, each bound to its own
// transaction: one runs the statements of builders and record flushes, the
// other runs raw statements and commits after each of them. Tracked
// records are flushed by Commit and restored by Rollback.
//
// A Session is not safe for concurrent use.
type Session struct {
	id      uuid.UUID
	client  *Client
	log     *slog.Logger
	orm     *sql.TxExecutor
	raw     *sql.TxExecutor
	tracker *tracker
	// written holds the tables written in the open transaction.
	written map[string]struct{}
}

// NewSession starts a unit of work. Transactions are opened by the first
// statement.
func (c *Client) NewSession() *Session {
	id := uuid.New()
	log := c.log.With("session", id.String())
	return &Session{
		id:      id,
		client:  c,
		log:     log,
		orm:     sql.NewTxExecutor("orm", c.drv, log),
		raw:     sql.NewTxExecutor("raw", c.drv, log),
		tracker: newTracker(),
		written: make(map[string]struct{}),
	}
}

// ID returns the session identifier used in log records.
func (s *Session) ID() uuid.UUID { return s.id }

// Client returns the client of the session.
func (s *Session) Client() *Client { return s.client }

// Tracked returns the number of tracked records.
func (s *Session) Tracked() int { return s.tracker.len() }

// IsTracked reports whether r is tracked by the session.
func (s *Session) IsTracked(r *Record) bool { return s.tracker.contains(r) }

// New returns a record of table that is not persisted yet. It is written
// by the Commit following Add.
func (s *Session) New(ctx context.Context, table string, values ...sql.Assignment) (*Record, error) {
	t, err := s.client.table(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(t.PrimaryKey) == 0 {
		return nil, NewResolutionError(table, "", errNoPrimaryKey)
	}
	state := make(map[string]any, len(values))
	for _, v := range values {
		if _, ok := t.Column(v.Column); !ok {
			return nil, NewResolutionError(table, v.Column, nil)
		}
		state[v.Column] = v.Value
	}
	return newRecord(t, s.client.definition(table), state, false), nil
}

// Add tracks a new or loaded record. Tracking a second record with the
// identity of a tracked one is an *IdentityError.
func (s *Session) Add(r *Record) error {
	key, ok := r.Key()
	if s.tracker.contains(r) {
		return NewIdentityError(r.Table(), key, "record already tracked")
	}
	if !ok {
		if r.initialized {
			return NewIdentityError(r.Table(), "", "record without complete primary key")
		}
		s.tracker.add(r, "")
		return nil
	}
	if _, dup := s.tracker.lookup(r.Table(), key); dup {
		return NewIdentityError(r.Table(), key, "identity already tracked")
	}
	s.tracker.add(r, key)
	return nil
}

// Delete untracks the record and deletes its row immediately, inside the
// session transaction. A record that was never written is only untracked.
func (s *Session) Delete(ctx context.Context, r *Record) error {
	if !r.initialized {
		s.tracker.remove(r)
		return nil
	}
	preds, err := keyPredicates(r)
	if err != nil {
		return err
	}
	if _, err := s.DeleteFrom(r.Table()).Where(preds...).Exec(ctx); err != nil {
		return err
	}
	s.tracker.remove(r)
	r.initialized = false
	return nil
}

// Commit writes every tracked record, INSERT for new ones and UPDATE of the
// changed columns for initialized ones, then commits the transaction and
// clears the tracker. When a write fails nothing is committed and the error
// is returned; the caller is expected to Rollback.
func (s *Session) Commit(ctx context.Context) error {
	recs := s.tracker.records()
	for _, r := range recs {
		if err := s.flush(ctx, r); err != nil {
			return err
		}
	}
	if err := s.orm.Commit(); err != nil {
		return &ExecutorError{Op: "commit", Err: err}
	}
	for _, r := range recs {
		r.snapshot()
	}
	s.tracker.clear()
	s.endTx()
	s.log.DebugContext(ctx, "session committed", "records", len(recs))
	return nil
}

// Rollback restores every tracked record to its original snapshot, rolls
// back the transaction and clears the tracker.
func (s *Session) Rollback(ctx context.Context) error {
	recs := s.tracker.records()
	for _, r := range recs {
		r.restore()
	}
	s.tracker.clear()
	s.endTx()
	if err := s.orm.Rollback(); err != nil {
		return &RollbackError{Err: err}
	}
	s.log.DebugContext(ctx, "session rolled back", "records", len(recs))
	return nil
}

// Close rolls back both transactions.
func (s *Session) Close(ctx context.Context) error {
	return NewAggregateError(s.Rollback(ctx), s.raw.Rollback())
}

func (s *Session) flush(ctx context.Context, r *Record) error {
	if !r.initialized {
		values := make([]sql.Assignment, 0, len(r.current))
		for _, c := range r.table.Columns {
			if v, ok := r.current[c.Name]; ok {
				values = append(values, sql.Assign(c.Name, v))
			}
		}
		e := s.Insert(values...).Into(r.Table())
		rs, err := e.insert(ctx)
		if err != nil {
			return err
		}
		if len(rs.Rows) == 0 {
			return NewNotFoundError(r.Table())
		}
		row, err := zip(r.table, rs.Rows[0])
		if err != nil {
			return err
		}
		r.load(row)
		r.initialized, r.inserted = true, true
		if key, ok := r.Key(); ok {
			s.tracker.rekey(r, key)
		}
		return nil
	}
	changes := r.Changes()
	if len(changes) == 0 {
		return nil
	}
	values := make([]sql.Assignment, 0, len(changes))
	for _, c := range r.table.Columns {
		if v, ok := changes[c.Name]; ok {
			values = append(values, sql.Assign(c.Name, v))
		}
	}
	preds, err := keyPredicates(r)
	if err != nil {
		return err
	}
	_, err = s.Update(r.Table()).Set(values...).Where(preds...).Exec(ctx)
	return err
}

// zip maps a full row of t onto its column names.
func zip(t *schema.Table, row []any) (map[string]any, error) {
	if len(row) != len(t.Columns) {
		return nil, fmt.Errorf("bsql: %s row has %d values, expected %d", t.Name, len(row), len(t.Columns))
	}
	values := make(map[string]any, len(row))
	for i, c := range t.Columns {
		v, err := c.Convert(row[i])
		if err != nil {
			return nil, err
		}
		values[c.Name] = v
	}
	return values, nil
}

func keyPredicates(r *Record) ([]sql.Predicate, error) {
	if _, ok := r.Key(); !ok {
		return nil, NewIdentityError(r.Table(), "", "record without complete primary key")
	}
	preds := make([]sql.Predicate, len(r.table.PrimaryKey))
	for i, c := range r.table.PrimaryKey {
		preds[i] = sql.EQ(c.Name, r.current[c.Name])
	}
	return preds, nil
}

// query runs a SELECT on the session transaction. Reads of tables written
// in the open transaction bypass the cache, so uncommitted rows are never
// shared with other sessions.
func (s *Session) query(ctx context.Context, stmt *Statement, cacheable bool) (*ResultSet, error) {
	cache := s.client.cache
	var (
		fp  Fingerprint
		err error
	)
	cacheable = cacheable && cache != nil && !s.wroteAny(stmt.Tables)
	if cacheable {
		if fp, err = stmt.Fingerprint(); err != nil {
			s.log.WarnContext(ctx, "statement not cacheable", "error", err)
			cacheable = false
		} else if rs, ok := cache.Get(fp); ok {
			s.log.DebugContext(ctx, "cache hit", "sql", stmt.SQL, "fingerprint", fp.String())
			return rs, nil
		}
	}
	var rows sql.Rows
	if err := s.orm.Query(ctx, stmt.SQL, stmt.Args, &rows); err != nil {
		return nil, &ExecutorError{Op: "query", SQL: stmt.SQL, Err: err}
	}
	columns, values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, &ExecutorError{Op: "query", SQL: stmt.SQL, Err: err}
	}
	rs := &ResultSet{Columns: columns, Rows: values}
	if cacheable {
		cache.Put(fp, rs, stmt.Tables)
	}
	return rs, nil
}

// exec runs a write statement on the session transaction and returns the
// number of affected rows.
func (s *Session) exec(ctx context.Context, stmt *Statement) (int64, error) {
	var res sql.Result
	if err := s.orm.Exec(ctx, stmt.SQL, stmt.Args, &res); err != nil {
		return 0, &ExecutorError{Op: "exec", SQL: stmt.SQL, Err: err}
	}
	s.written[stmt.Table] = struct{}{}
	if s.client.cache != nil {
		s.client.cache.Invalidate(stmt.Table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &ExecutorError{Op: "exec", SQL: stmt.SQL, Err: err}
	}
	return n, nil
}

func (s *Session) wroteAny(tables []string) bool {
	return slices.ContainsFunc(tables, func(t string) bool {
		_, ok := s.written[t]
		return ok
	})
}

// endTx evicts cache entries of the tables written by the finished
// transaction.
func (s *Session) endTx() {
	if len(s.written) == 0 {
		return
	}
	if s.client.cache != nil {
		tables := make([]string, 0, len(s.written))
		for t := range s.written {
			tables = append(tables, t)
		}
		s.client.cache.Invalidate(tables...)
	}
	clear(s.written)
}

// ExecRaw executes a raw statement on the raw executor and commits it. Rows
// of SELECT statements are cached; any other statement clears the cache,
// since the tables it writes are unknown.
func (s *Session) ExecRaw(ctx context.Context, query string, args ...any) ([][]any, error) {
	rs, err := s.execRaw(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return rs.copyRows(), nil
}

// RawResult is the outcome of a raw statement. Rows are set for SELECT
// statements, the counters for all others.
type RawResult struct {
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	LastInsertID int64
}

// ExecRawResult is like ExecRaw, but runs statements other than SELECT as
// writes and reports their affected rows and last generated identifier.
func (s *Session) ExecRawResult(ctx context.Context, query string, args ...any) (*RawResult, error) {
	if isSelect(query) {
		rs, err := s.execRaw(ctx, query, args)
		if err != nil {
			return nil, err
		}
		return &RawResult{Columns: rs.Columns, Rows: rs.copyRows()}, nil
	}
	if args == nil {
		args = []any{}
	}
	var res sql.Result
	if err := s.raw.Exec(ctx, query, args, &res); err != nil {
		return nil, errors.Join(&ExecutorError{Op: "raw", SQL: query, Err: err}, s.raw.Rollback())
	}
	if err := s.raw.Commit(); err != nil {
		return nil, &ExecutorError{Op: "commit", Err: err}
	}
	if s.client.cache != nil {
		s.client.cache.Clear()
	}
	var (
		out RawResult
		err error
	)
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return nil, &ExecutorError{Op: "raw", SQL: query, Err: err}
	}
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return nil, &ExecutorError{Op: "raw", SQL: query, Err: err}
	}
	return &out, nil
}

func (s *Session) execRaw(ctx context.Context, query string, args []any) (*ResultSet, error) {
	if args == nil {
		args = []any{}
	}
	var (
		cache = s.client.cache
		sel   = isSelect(query)
		fp    Fingerprint
		err   error
	)
	cacheable := sel && cache != nil
	if cacheable {
		if fp, err = NewFingerprint(query, args); err != nil {
			s.log.WarnContext(ctx, "statement not cacheable", "error", err)
			cacheable = false
		} else if rs, ok := cache.Get(fp); ok {
			s.log.DebugContext(ctx, "cache hit", "sql", query, "fingerprint", fp.String())
			return rs, nil
		}
	}
	var rows sql.Rows
	if err := s.raw.Query(ctx, query, args, &rows); err != nil {
		return nil, errors.Join(&ExecutorError{Op: "raw", SQL: query, Err: err}, s.raw.Rollback())
	}
	columns, values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, errors.Join(&ExecutorError{Op: "raw", SQL: query, Err: err}, s.raw.Rollback())
	}
	if err := s.raw.Commit(); err != nil {
		return nil, &ExecutorError{Op: "commit", Err: err}
	}
	rs := &ResultSet{Columns: columns, Rows: values}
	switch {
	case cacheable:
		cache.Put(fp, rs, nil)
	case !sel && cache != nil:
		cache.Clear()
	}
	return rs, nil
}

// Union executes the SELECT statements of exprs combined with UNION on the
// raw executor.
func (s *Session) Union(ctx context.Context, exprs ...*Expr) ([][]any, error) {
	if len(exprs) == 0 {
		return nil, NewBuildStateError("UNION", "no statements")
	}
	var (
		parts []string
		args  []any
	)
	for _, e := range exprs {
		if e.kind != KindSelect {
			return nil, NewBuildStateError("UNION", "not allowed on %s", e.kind)
		}
		stmt, err := e.Build(ctx)
		if err != nil {
			return nil, err
		}
		parts = append(parts, strings.TrimSuffix(stmt.SQL, ";"))
		args = append(args, stmt.Args...)
	}
	return s.ExecRaw(ctx, strings.Join(parts, " UNION ")+";", args...)
}

func (s *Session) logGenerated(ctx context.Context, stmt *Statement) {
	if s.client.verbose {
		s.log.DebugContext(ctx, "generated", "kind", stmt.Kind.String(), "sql", stmt.SQL, "args", stmt.Args)
	}
}

func isSelect(query string) bool {
	q := strings.TrimLeft(query, " \t\r\n(")
	return len(q) >= 6 && strings.EqualFold(q[:6], "SELECT")
}
