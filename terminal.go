package bsql

import (
	"context"

	"github.com/syssam/bsql/dialect/sql"
)

// lastInsertID is the MySQL expression of the last generated identifier of
// the connection.
const lastInsertID = "LAST_INSERT_ID()"

// All executes the statement and returns the materialized records. A SELECT
// returns its rows, an INSERT returns the inserted row.
func (e *Expr) All(ctx context.Context) ([]*Record, error) {
	switch e.kind {
	case KindSelect:
		stmt, err := e.Build(ctx)
		if err != nil {
			return nil, err
		}
		rs, err := e.sess.query(ctx, stmt, !e.noCache)
		if err != nil {
			return nil, err
		}
		return e.sess.materialize(e.base, e.selected, rs)
	case KindInsert:
		rec, err := e.Do(ctx)
		if err != nil {
			return nil, err
		}
		return []*Record{rec}, nil
	default:
		if e.err == nil {
			e.fail("ALL", "%s returns no rows, use Exec", e.kind)
		}
		return nil, e.err
	}
}

// First executes a SELECT and returns its first record, or a
// *NotFoundError when there is none.
func (e *Expr) First(ctx context.Context) (*Record, error) {
	if e.kind != KindSelect {
		if e.err == nil {
			e.fail("FIRST", "not allowed on %s", e.kind)
		}
		return nil, e.err
	}
	recs, err := e.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, NewNotFoundError(e.table)
	}
	return recs[0], nil
}

// Do executes an INSERT and returns the inserted row, read back by its
// primary key.
func (e *Expr) Do(ctx context.Context) (*Record, error) {
	if e.kind != KindInsert {
		if e.err == nil {
			e.fail("DO", "not allowed on %s", e.kind)
		}
		return nil, e.err
	}
	rs, err := e.insert(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := e.sess.materialize(e.base, e.base.Columns, rs)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, NewNotFoundError(e.table)
	}
	return recs[0], nil
}

// Exec executes an INSERT, UPDATE or DELETE and returns the number of
// affected rows.
func (e *Expr) Exec(ctx context.Context) (int64, error) {
	if e.kind == KindSelect {
		if e.err == nil {
			e.fail("EXEC", "SELECT returns rows, use All")
		}
		return 0, e.err
	}
	stmt, err := e.Build(ctx)
	if err != nil {
		return 0, err
	}
	return e.sess.exec(ctx, stmt)
}

// insert executes the INSERT and reads the new row back.
func (e *Expr) insert(ctx context.Context) (*ResultSet, error) {
	stmt, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.sess.exec(ctx, stmt); err != nil {
		return nil, err
	}
	fetch, err := e.followUp()
	if err != nil {
		return nil, err
	}
	stmt, err = fetch.Build(ctx)
	if err != nil {
		return nil, err
	}
	return e.sess.query(ctx, stmt, false)
}

// followUp returns the SELECT that reads back the inserted row: by the
// supplied primary-key values, and by the last generated identifier for
// the auto-increment key left out.
func (e *Expr) followUp() (*Expr, error) {
	supplied := make(map[string]any, len(e.values))
	for _, v := range e.values {
		c, err := e.resolveOwn(v.Column)
		if err != nil {
			return nil, err
		}
		supplied[c.Name] = v.Value
	}
	if len(e.base.PrimaryKey) == 0 {
		return nil, NewResolutionError(e.table, "", errNoPrimaryKey)
	}
	fetch := e.sess.SelectFrom(e.table).NoCache()
	var generated bool
	for _, pk := range e.base.PrimaryKey {
		cond := condition{conn: connAnd, pred: sql.EQ(pk.Name, nil)}
		if len(fetch.conds) == 0 {
			cond.conn = connWhere
		}
		if v, ok := supplied[pk.Name]; ok {
			cond.pred.Value = v
		} else {
			if !pk.AutoIncrement || generated {
				return nil, NewIdentityError(e.table, "", "primary key "+pk.Name+" not supplied")
			}
			cond.expr = lastInsertID
			generated = true
		}
		fetch.conds = append(fetch.conds, cond)
	}
	return fetch, nil
}
