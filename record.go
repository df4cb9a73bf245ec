package bsql

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/syssam/bsql/dialect/sql/schema"
)

var errNoPrimaryKey = errors.New("table has no primary key")

// Record is a row of a table. It keeps the state it was loaded or last
// committed with (the original snapshot) next to its current state. Reads
// return the current state; writes update it and mark the record dirty.
// Primary-key fields are set when the record is constructed and cannot be
// written afterwards.
type Record struct {
	table       *schema.Table
	def         *Definition
	original    map[string]any
	current     map[string]any
	dirty       bool
	initialized bool
	// inserted is set while the INSERT of the record is pending in an open
	// transaction.
	inserted bool
}

func newRecord(t *schema.Table, def *Definition, values map[string]any, initialized bool) *Record {
	return &Record{
		table:       t,
		def:         def,
		original:    maps.Clone(values),
		current:     values,
		initialized: initialized,
	}
}

// Table returns the table name of the record.
func (r *Record) Table() string { return r.table.Name }

// Schema returns the catalog entry of the record table.
func (r *Record) Schema() *schema.Table { return r.table }

// Definition returns the registered definition of the record table, or nil
// for generic records.
func (r *Record) Definition() *Definition { return r.def }

// Generic reports whether no definition is registered for the record table.
func (r *Record) Generic() bool { return r.def == nil }

// Initialized reports whether the record exists in the database, so that
// a commit issues an UPDATE rather than an INSERT.
func (r *Record) Initialized() bool { return r.initialized }

// Dirty reports whether the record was written since it was loaded or
// last committed.
func (r *Record) Dirty() bool { return r.dirty }

// Get returns the current value of a column, or nil.
func (r *Record) Get(column string) any {
	return r.current[column]
}

// Lookup returns the current value of a column and whether it is set.
func (r *Record) Lookup(column string) (any, bool) {
	v, ok := r.current[column]
	return v, ok
}

// Set writes the current value of a column and marks the record dirty.
func (r *Record) Set(column string, v any) error {
	c, ok := r.table.Column(column)
	if !ok {
		return NewResolutionError(r.table.Name, column, nil)
	}
	if c.PrimaryKey {
		key, _ := r.Key()
		return NewIdentityError(r.table.Name, key, fmt.Sprintf("primary key %q is immutable", column))
	}
	r.current[column] = v
	r.dirty = true
	return nil
}

// Values returns a copy of the current state.
func (r *Record) Values() map[string]any {
	return maps.Clone(r.current)
}

// Original returns a copy of the original snapshot.
func (r *Record) Original() map[string]any {
	return maps.Clone(r.original)
}

// Changes returns the columns whose current value differs from the
// original snapshot.
func (r *Record) Changes() map[string]any {
	changes := make(map[string]any)
	for k, v := range r.current {
		if o, ok := r.original[k]; !ok || !reflect.DeepEqual(o, v) {
			changes[k] = v
		}
	}
	return changes
}

// Key returns the identity of the record within its table: the tuple of
// its primary-key values. ok is false while a key value is missing.
func (r *Record) Key() (key string, ok bool) {
	return identityKey(r.table, r.current)
}

// String returns the record in column order.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(r.table.Name)
	b.WriteString(" {")
	var n int
	for _, c := range r.table.Columns {
		v, ok := r.current[c.Name]
		if !ok {
			continue
		}
		if n > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", c.Name, v)
		n++
	}
	b.WriteString("}>")
	return b.String()
}

// restore resets the current state to the original snapshot.
func (r *Record) restore() {
	r.current = maps.Clone(r.original)
	r.dirty = false
	if r.inserted {
		r.initialized = false
		r.inserted = false
	}
}

// snapshot makes the current state the original one, after a commit.
func (r *Record) snapshot() {
	r.original = maps.Clone(r.current)
	r.dirty = false
	r.inserted = false
}

// load merges values read back from the database into the current state.
func (r *Record) load(values map[string]any) {
	maps.Copy(r.current, values)
}

// Value returns the current value of a column as T. ok is false when the
// column is unset, NULL or of another type.
func Value[T any](r *Record, column string) (v T, ok bool) {
	v, ok = r.current[column].(T)
	return v, ok
}

// identityKey renders the primary-key tuple of values. Values are
// normalized by column type so that int(1) and int64(1) share a key.
func identityKey(t *schema.Table, values map[string]any) (string, bool) {
	if len(t.PrimaryKey) == 0 {
		return "", false
	}
	parts := make([]string, len(t.PrimaryKey))
	for i, c := range t.PrimaryKey {
		v, ok := values[c.Name]
		if !ok || v == nil {
			return "", false
		}
		if cv, err := c.Convert(v); err == nil {
			v = cv
		}
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "(" + strings.Join(parts, ", ") + ")", true
}
