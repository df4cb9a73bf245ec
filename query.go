package bsql

import (
	"context"

	"github.com/syssam/bsql/dialect/sql"
)

// Query is a shorthand for the common statements on one table.
type Query struct {
	sess  *Session
	table string
}

// Table returns a query helper for the named table.
func (s *Session) Table(name string) *Query {
	return &Query{sess: s, table: name}
}

// Name returns the table name.
func (q *Query) Name() string { return q.table }

// Expr returns a SELECT of all columns, to be refined by the caller.
func (q *Query) Expr() *Expr {
	return q.sess.SelectFrom(q.table)
}

// All returns every record of the table.
func (q *Query) All(ctx context.Context) ([]*Record, error) {
	return q.Expr().All(ctx)
}

// Find returns a SELECT of the records matching all predicates.
func (q *Query) Find(preds ...sql.Predicate) *Expr {
	e := q.Expr()
	if len(preds) == 0 {
		return e
	}
	return e.Where(preds...)
}

// First returns the first record matching all predicates.
func (q *Query) First(ctx context.Context, preds ...sql.Predicate) (*Record, error) {
	return q.Find(preds...).First(ctx)
}

// New inserts a row and returns its record.
func (q *Query) New(ctx context.Context, values ...sql.Assignment) (*Record, error) {
	return q.sess.Insert(values...).Into(q.table).Do(ctx)
}

// Delete deletes the rows matching all predicates and returns their number.
func (q *Query) Delete(ctx context.Context, preds ...sql.Predicate) (int64, error) {
	return q.sess.DeleteFrom(q.table).Where(preds...).Exec(ctx)
}
