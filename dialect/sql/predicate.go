package sql

import (
	"strings"
	"time"
)

// Predicate is an equality condition on a column. Column is either a bare
// column name, resolved against the tables of a statement, or a qualified
// "table.column" name that is taken as-is.
type Predicate struct {
	Column string
	Value  any
}

// EQ returns a predicate that checks if the column equals the given value.
func EQ(column string, v any) Predicate {
	return Predicate{Column: column, Value: v}
}

// Qualified splits a "table.column" name. ok is false for bare names.
func (p Predicate) Qualified() (table, column string, ok bool) {
	return SplitQualified(p.Column)
}

// Assignment is a column/value pair of an INSERT or UPDATE statement.
type Assignment struct {
	Column string
	Value  any
}

// Assign returns an assignment of v to the column.
func Assign(column string, v any) Assignment {
	return Assignment{Column: column, Value: v}
}

// SplitQualified splits a "table.column" name. ok is false for bare names.
func SplitQualified(name string) (table, column string, ok bool) {
	table, column, ok = strings.Cut(name, ".")
	if !ok || table == "" || column == "" {
		return "", name, false
	}
	return table, column, true
}

// Quote quotes a MySQL identifier with backticks.
func Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// QuoteColumn renders a qualified `table`.`column` reference.
func QuoteColumn(table, column string) string {
	if column == "*" {
		return Quote(table) + ".*"
	}
	return Quote(table) + "." + Quote(column)
}

// StringField is a typed string column used by generated record wrappers.
//
//	var Username = sql.StringField("username")
//	sess.SelectFrom("person").Where(Username.EQ("admin"))
type StringField string

// Name returns the column name.
func (f StringField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f StringField) EQ(v string) Predicate { return EQ(string(f), v) }

// Assign returns an assignment of v to the column.
func (f StringField) Assign(v string) Assignment { return Assign(string(f), v) }

// IntField is a typed integer column.
type IntField string

// Name returns the column name.
func (f IntField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f IntField) EQ(v int64) Predicate { return EQ(string(f), v) }

// Assign returns an assignment of v to the column.
func (f IntField) Assign(v int64) Assignment { return Assign(string(f), v) }

// FloatField is a typed floating point column.
type FloatField string

// Name returns the column name.
func (f FloatField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f FloatField) EQ(v float64) Predicate { return EQ(string(f), v) }

// Assign returns an assignment of v to the column.
func (f FloatField) Assign(v float64) Assignment { return Assign(string(f), v) }

// TimeField is a typed DATETIME or TIMESTAMP column.
type TimeField string

// Name returns the column name.
func (f TimeField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f TimeField) EQ(v time.Time) Predicate { return EQ(string(f), v) }

// Assign returns an assignment of v to the column.
func (f TimeField) Assign(v time.Time) Assignment { return Assign(string(f), v) }

// BytesField is a typed binary column.
type BytesField string

// Name returns the column name.
func (f BytesField) Name() string { return string(f) }

// EQ returns a predicate that checks if the column equals v.
func (f BytesField) EQ(v []byte) Predicate { return EQ(string(f), v) }

// Assign returns an assignment of v to the column.
func (f BytesField) Assign(v []byte) Assignment { return Assign(string(f), v) }
