package bsql

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/syssam/bsql/dialect/sql"
	"github.com/syssam/bsql/dialect/sql/schema"
	"github.com/syssam/bsql/dialect/sql/sqlgraph"
)

type connective string

const (
	connWhere connective = "WHERE"
	connAnd   connective = "AND"
	connOr    connective = "OR"
)

type condition struct {
	conn connective
	pred sql.Predicate
	// expr replaces the placeholder with a literal SQL expression.
	expr string
}

type rawFragment struct {
	sql  string
	args []any
}

type ordering struct {
	column string
	desc   bool
}

type joinedTable struct {
	*schema.Table
	join *sqlgraph.Join
}

// Expr is a fluent statement builder bound to a session. Verbs check the
// builder state and record the first misuse as a *BuildStateError, which
// every terminal then returns. Tables and attributes are resolved against
// the schema catalog when the statement is generated, and the generated
// statement is reused for the life of the builder.
//
//	recs, err := sess.SelectFrom("photo").
//		Join("person").
//		Where(sql.EQ("username", "admin")).
//		OrderBy("taken DESC").
//		All(ctx)
type Expr struct {
	sess    *Session
	kind    Kind
	table   string
	columns []string
	joins   []string
	conds   []condition
	groupBy []string
	orderBy []ordering
	values  []sql.Assignment
	upsert  bool
	raw     []rawFragment
	noCache bool
	err     error

	stmt     *Statement
	base     *schema.Table
	joined   []joinedTable
	selected []*schema.Column
}

// Select starts a SELECT of the given columns. No columns selects all
// columns of the base table.
func (s *Session) Select(columns ...string) *Expr {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	return &Expr{sess: s, kind: KindSelect, columns: columns}
}

// SelectFrom starts a SELECT of all columns of table.
func (s *Session) SelectFrom(table string) *Expr {
	return s.Select().From(table)
}

// Insert starts an INSERT of the given values. The table is set with Into.
func (s *Session) Insert(values ...sql.Assignment) *Expr {
	return &Expr{sess: s, kind: KindInsert, values: values}
}

// Update starts an UPDATE of table.
func (s *Session) Update(table string) *Expr {
	e := &Expr{sess: s, kind: KindUpdate}
	return e.setTable("UPDATE", table)
}

// DeleteFrom starts a DELETE from table.
func (s *Session) DeleteFrom(table string) *Expr {
	e := &Expr{sess: s, kind: KindDelete}
	return e.setTable("DELETE", table)
}

// Kind returns the statement kind of the builder.
func (e *Expr) Kind() Kind { return e.kind }

// Err returns the first error recorded by the builder.
func (e *Expr) Err() error { return e.err }

// From sets the base table of a SELECT.
func (e *Expr) From(table string) *Expr {
	if !e.check("FROM", KindSelect) {
		return e
	}
	return e.setTable("FROM", table)
}

// Into sets the table of an INSERT.
func (e *Expr) Into(table string) *Expr {
	if !e.check("INTO", KindInsert) {
		return e
	}
	return e.setTable("INTO", table)
}

// Join joins tables onto the base table of a SELECT. Each joined table
// must hold a foreign key to the base table or be referenced by one.
func (e *Expr) Join(tables ...string) *Expr {
	if !e.checkTable("JOIN", KindSelect) {
		return e
	}
	for _, t := range tables {
		switch {
		case t == "":
			return e.fail("JOIN", "empty table name")
		case t == e.table || slices.Contains(e.joins, t):
			return e.fail("JOIN", "table %q already part of the statement", t)
		}
		e.joins = append(e.joins, t)
	}
	return e
}

// Where sets the first conditions of a SELECT, UPDATE or DELETE. Further
// conditions are added with And and Or.
func (e *Expr) Where(preds ...sql.Predicate) *Expr {
	if !e.checkTable("WHERE", KindSelect, KindUpdate, KindDelete) {
		return e
	}
	if len(e.conds) > 0 {
		return e.fail("WHERE", "conditions already set, use AND or OR")
	}
	return e.addConds("WHERE", connWhere, preds)
}

// And adds conditions joined with AND.
func (e *Expr) And(preds ...sql.Predicate) *Expr {
	return e.connect("AND", connAnd, preds)
}

// Or adds conditions joined with OR.
func (e *Expr) Or(preds ...sql.Predicate) *Expr {
	return e.connect("OR", connOr, preds)
}

// Set adds the assignments of an UPDATE.
func (e *Expr) Set(values ...sql.Assignment) *Expr {
	if !e.checkTable("SET", KindUpdate) {
		return e
	}
	if len(e.conds) > 0 {
		return e.fail("SET", "SET after WHERE")
	}
	if len(values) == 0 {
		return e.fail("SET", "no values")
	}
	e.values = append(e.values, values...)
	return e
}

// GroupBy adds GROUP BY columns to a SELECT.
func (e *Expr) GroupBy(columns ...string) *Expr {
	if !e.checkTable("GROUPBY", KindSelect) {
		return e
	}
	e.groupBy = append(e.groupBy, columns...)
	return e
}

// OrderBy adds ORDER BY columns to a SELECT. A column may carry an ASC or
// DESC suffix, e.g. "taken DESC".
func (e *Expr) OrderBy(columns ...string) *Expr {
	if !e.checkTable("ORDERBY", KindSelect) {
		return e
	}
	for _, c := range columns {
		f := strings.Fields(c)
		switch {
		case len(f) == 1:
			e.orderBy = append(e.orderBy, ordering{column: f[0]})
		case len(f) == 2 && strings.EqualFold(f[1], "ASC"):
			e.orderBy = append(e.orderBy, ordering{column: f[0]})
		case len(f) == 2 && strings.EqualFold(f[1], "DESC"):
			e.orderBy = append(e.orderBy, ordering{column: f[0], desc: true})
		default:
			return e.fail("ORDERBY", "invalid ordering %q", c)
		}
	}
	return e
}

// OnDuplicateUpdate turns an INSERT into an upsert that overwrites every
// inserted column of an existing row.
func (e *Expr) OnDuplicateUpdate() *Expr {
	if !e.checkTable("ONDUPUPDATE", KindInsert) {
		return e
	}
	e.upsert = true
	return e
}

// AppendRaw appends a raw SQL fragment and its arguments to the generated
// statement.
func (e *Expr) AppendRaw(fragment string, args ...any) *Expr {
	if !e.mutable("RAW") {
		return e
	}
	e.raw = append(e.raw, rawFragment{sql: fragment, args: args})
	return e
}

// NoCache makes a SELECT bypass the query-result cache.
func (e *Expr) NoCache() *Expr {
	if !e.check("NOCACHE", KindSelect) {
		return e
	}
	e.noCache = true
	return e
}

func (e *Expr) fail(verb, format string, args ...any) *Expr {
	if e.err == nil {
		e.err = NewBuildStateError(verb, format, args...)
	}
	return e
}

func (e *Expr) mutable(verb string) bool {
	if e.err != nil {
		return false
	}
	if e.stmt != nil {
		e.fail(verb, "statement already generated")
		return false
	}
	return true
}

func (e *Expr) check(verb string, kinds ...Kind) bool {
	if !e.mutable(verb) {
		return false
	}
	if !slices.Contains(kinds, e.kind) {
		e.fail(verb, "not allowed on %s", e.kind)
		return false
	}
	return true
}

func (e *Expr) checkTable(verb string, kinds ...Kind) bool {
	if !e.check(verb, kinds...) {
		return false
	}
	if e.table == "" {
		e.fail(verb, "no table set")
		return false
	}
	return true
}

func (e *Expr) setTable(verb, table string) *Expr {
	switch {
	case table == "":
		return e.fail(verb, "empty table name")
	case e.table != "":
		return e.fail(verb, "table already set to %q", e.table)
	}
	e.table = table
	return e
}

func (e *Expr) connect(verb string, conn connective, preds []sql.Predicate) *Expr {
	if !e.checkTable(verb, KindSelect, KindUpdate, KindDelete) {
		return e
	}
	if len(e.conds) == 0 {
		return e.fail(verb, "no preceding WHERE")
	}
	return e.addConds(verb, conn, preds)
}

func (e *Expr) addConds(verb string, conn connective, preds []sql.Predicate) *Expr {
	if len(preds) == 0 {
		return e.fail(verb, "no conditions")
	}
	for i, p := range preds {
		if p.Column == "" {
			return e.fail(verb, "condition without column")
		}
		c := condition{conn: conn, pred: p}
		if i > 0 {
			c.conn = connAnd
		}
		e.conds = append(e.conds, c)
	}
	return e
}

// Build resolves the statement against the schema catalog and generates its
// SQL text and arguments. The result is memoized.
func (e *Expr) Build(ctx context.Context) (*Statement, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.stmt != nil {
		return e.stmt, nil
	}
	if e.table == "" {
		e.fail(e.kind.String(), "no table set")
		return nil, e.err
	}
	if err := e.resolve(ctx); err != nil {
		return nil, err
	}
	var (
		b    strings.Builder
		args []any
		err  error
	)
	switch e.kind {
	case KindSelect:
		args, err = e.genSelect(&b)
	case KindInsert:
		args, err = e.genInsert(&b)
	case KindUpdate:
		args, err = e.genUpdate(&b)
	case KindDelete:
		args, err = e.genDelete(&b)
	}
	if err != nil {
		return nil, err
	}
	for _, r := range e.raw {
		b.WriteByte(' ')
		b.WriteString(r.sql)
		args = append(args, r.args...)
	}
	b.WriteByte(';')
	if args == nil {
		args = []any{}
	}
	tables := make([]string, 0, 1+len(e.joined))
	tables = append(tables, e.table)
	tables = append(tables, e.joins...)
	e.stmt = &Statement{
		Kind:   e.kind,
		Table:  e.table,
		SQL:    b.String(),
		Args:   args,
		Tables: tables,
	}
	e.sess.logGenerated(ctx, e.stmt)
	return e.stmt, nil
}

func (e *Expr) resolve(ctx context.Context) error {
	if e.base != nil {
		return nil
	}
	c := e.sess.client
	base, err := c.table(ctx, e.table)
	if err != nil {
		return err
	}
	joined := make([]joinedTable, 0, len(e.joins))
	for _, name := range e.joins {
		t, err := c.table(ctx, name)
		if err != nil {
			return err
		}
		j := sqlgraph.NewJoin(e.table, name)
		if err := j.Resolve(ctx, c.resolver); err != nil {
			if errors.Is(err, sqlgraph.ErrNoRelationship) {
				return NewResolutionError(e.table, name, err)
			}
			return &ExecutorError{Op: "resolve", Err: err}
		}
		joined = append(joined, joinedTable{Table: t, join: j})
	}
	e.base, e.joined = base, joined
	return nil
}

// lookupTable returns the named table if it is part of the statement.
func (e *Expr) lookupTable(name string) (*schema.Table, bool) {
	if name == e.base.Name {
		return e.base, true
	}
	for _, j := range e.joined {
		if j.Name == name {
			return j.Table, true
		}
	}
	return nil, false
}

// resolveColumn maps an attribute onto its owning table. Qualified names
// are taken as written. Bare names are searched in the base table first,
// then in the joined tables in join order.
func (e *Expr) resolveColumn(name string) (*schema.Column, error) {
	if table, column, ok := sql.SplitQualified(name); ok {
		t, ok := e.lookupTable(table)
		if !ok {
			return nil, NewResolutionError(table, column, errors.New("table is not part of the statement"))
		}
		c, ok := t.Column(column)
		if !ok {
			return nil, NewResolutionError(table, column, nil)
		}
		return c, nil
	}
	if c, ok := e.base.Column(name); ok {
		return c, nil
	}
	for _, j := range e.joined {
		if c, ok := j.Column(name); ok {
			return c, nil
		}
	}
	return nil, NewResolutionError(e.table, name, nil)
}

// resolveOwn maps an INSERT or UPDATE column onto the base table.
func (e *Expr) resolveOwn(name string) (*schema.Column, error) {
	if table, column, ok := sql.SplitQualified(name); ok {
		if table != e.base.Name {
			return nil, NewResolutionError(table, column, errors.New("only columns of the base table can be written"))
		}
		name = column
	}
	c, ok := e.base.Column(name)
	if !ok {
		return nil, NewResolutionError(e.table, name, nil)
	}
	return c, nil
}

func (e *Expr) genSelect(b *strings.Builder) ([]any, error) {
	b.WriteString("SELECT ")
	if len(e.columns) == 1 && e.columns[0] == "*" {
		e.selected = e.base.Columns
		if len(e.joined) > 0 {
			b.WriteString(sql.QuoteColumn(e.table, "*"))
		} else {
			b.WriteByte('*')
		}
	} else {
		e.selected = make([]*schema.Column, 0, len(e.columns))
		for i, name := range e.columns {
			c, err := e.resolveColumn(name)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
			e.selected = append(e.selected, c)
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(sql.Quote(e.table))
	for _, j := range e.joined {
		b.WriteByte(' ')
		b.WriteString(j.join.String())
	}
	args, err := e.genWhere(b, nil)
	if err != nil {
		return nil, err
	}
	if len(e.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, name := range e.groupBy {
			c, err := e.resolveColumn(name)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
		}
	}
	if len(e.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range e.orderBy {
			c, err := e.resolveColumn(o.column)
			if err != nil {
				return nil, err
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
			if o.desc {
				b.WriteString(" DESC")
			}
		}
	}
	return args, nil
}

func (e *Expr) genInsert(b *strings.Builder) ([]any, error) {
	names := make([]string, 0, len(e.values))
	args := make([]any, 0, len(e.values))
	supplied := make(map[string]bool, len(e.values))
	for _, v := range e.values {
		c, err := e.resolveOwn(v.Column)
		if err != nil {
			return nil, err
		}
		names = append(names, sql.Quote(c.Name))
		args = append(args, v.Value)
		supplied[c.Name] = true
	}
	b.WriteString("INSERT INTO ")
	b.WriteString(sql.Quote(e.table))
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "))
	b.WriteByte(')')
	if e.upsert && len(names) > 0 {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
		for i, n := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n)
			b.WriteString(" = VALUES(")
			b.WriteString(n)
			b.WriteByte(')')
		}
		// An updated row leaves LAST_INSERT_ID() unset unless it is fed the
		// key of that row, which the read-back depends on.
		for _, pk := range e.base.PrimaryKey {
			if pk.AutoIncrement && !supplied[pk.Name] {
				q := sql.Quote(pk.Name)
				b.WriteString(", ")
				b.WriteString(q)
				b.WriteString(" = LAST_INSERT_ID(")
				b.WriteString(q)
				b.WriteByte(')')
			}
		}
	}
	return args, nil
}

func (e *Expr) genUpdate(b *strings.Builder) ([]any, error) {
	if len(e.values) == 0 {
		e.fail("UPDATE", "no values, use SET")
		return nil, e.err
	}
	if len(e.conds) == 0 {
		e.fail("UPDATE", "no conditions, use WHERE")
		return nil, e.err
	}
	b.WriteString("UPDATE ")
	b.WriteString(sql.Quote(e.table))
	b.WriteString(" SET ")
	args := make([]any, 0, len(e.values)+len(e.conds))
	for i, v := range e.values {
		c, err := e.resolveOwn(v.Column)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sql.Quote(c.Name))
		b.WriteString(" = ?")
		args = append(args, v.Value)
	}
	return e.genWhere(b, args)
}

func (e *Expr) genDelete(b *strings.Builder) ([]any, error) {
	if len(e.conds) == 0 {
		e.fail("DELETE", "no conditions, use WHERE")
		return nil, e.err
	}
	b.WriteString("DELETE FROM ")
	b.WriteString(sql.Quote(e.table))
	return e.genWhere(b, nil)
}

func (e *Expr) genWhere(b *strings.Builder, args []any) ([]any, error) {
	for _, cond := range e.conds {
		c, err := e.resolveColumn(cond.pred.Column)
		if err != nil {
			return nil, err
		}
		b.WriteByte(' ')
		b.WriteString(string(cond.conn))
		b.WriteByte(' ')
		b.WriteString(c.String())
		switch {
		case cond.expr != "":
			b.WriteString(" = ")
			b.WriteString(cond.expr)
		case cond.pred.Value == nil:
			b.WriteString(" IS NULL")
		default:
			b.WriteString(" = ?")
			args = append(args, cond.pred.Value)
		}
	}
	return args, nil
}
