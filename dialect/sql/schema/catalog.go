// Package schema holds the schema catalog: per-table column, primary-key and
// inbound relationship metadata introspected from INFORMATION_SCHEMA and
// cached for the lifetime of the catalog.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/bsql/dialect"
	"github.com/syssam/bsql/dialect/sql"
	"github.com/syssam/bsql/schema/field"
)

// Introspection queries. Both take the table name as their only argument.
const (
	ColumnsQuery = "SELECT c.COLUMN_NAME, c.DATA_TYPE, c.COLUMN_KEY, c.IS_NULLABLE, c.EXTRA, " +
		"k.REFERENCED_TABLE_NAME, k.REFERENCED_COLUMN_NAME, r.DELETE_RULE " +
		"FROM INFORMATION_SCHEMA.COLUMNS c " +
		"LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k " +
		"ON k.TABLE_SCHEMA = c.TABLE_SCHEMA AND k.TABLE_NAME = c.TABLE_NAME " +
		"AND k.COLUMN_NAME = c.COLUMN_NAME AND k.REFERENCED_TABLE_NAME IS NOT NULL " +
		"LEFT JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS r " +
		"ON r.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME " +
		"WHERE c.TABLE_NAME = ? AND c.TABLE_SCHEMA = DATABASE() " +
		"ORDER BY c.ORDINAL_POSITION;"

	RelationshipsQuery = "SELECT DISTINCT TABLE_NAME " +
		"FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE " +
		"WHERE REFERENCED_TABLE_NAME = ? AND TABLE_SCHEMA = DATABASE() " +
		"ORDER BY TABLE_NAME;"
)

// ErrTableNotFound is returned when introspection finds no columns for a table.
var ErrTableNotFound = errors.New("schema: table not found")

// TableNotFoundError reports the table that introspection could not find.
type TableNotFoundError struct {
	Table string
}

// Error returns the error string.
func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("schema: table %q not found", e.Table)
}

// Is reports whether the target error matches ErrTableNotFound.
func (e *TableNotFoundError) Is(err error) bool {
	return err == ErrTableNotFound
}

// Column describes one column of a table. It is never modified after the
// catalog entry holding it is created.
type Column struct {
	Name          string
	Table         string
	Type          string // DATA_TYPE as reported by INFORMATION_SCHEMA, lower case.
	PrimaryKey    bool
	Nullable      bool
	Unique        bool
	AutoIncrement bool
	Reference     *field.Reference
}

// String returns the qualified `table`.`column` reference.
func (c *Column) String() string {
	return sql.QuoteColumn(c.Table, c.Name)
}

// Table is a catalog entry. Entries are shared read-only between all users
// of a catalog.
type Table struct {
	Name    string
	Columns []*Column
	// PrimaryKey holds the primary-key columns in column order.
	PrimaryKey []*Column
	// Relationships holds the names of the tables with a foreign key
	// referencing this table.
	Relationships []string

	index map[string]*Column
}

// NewTable builds a table entry from its columns.
func NewTable(name string, columns []*Column, relationships []string) *Table {
	t := &Table{
		Name:          name,
		Columns:       columns,
		Relationships: relationships,
		index:         make(map[string]*Column, len(columns)),
	}
	for _, c := range columns {
		t.index[c.Name] = c
		if c.PrimaryKey {
			t.PrimaryKey = append(t.PrimaryKey, c)
		}
	}
	return t
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.index[name]
	return c, ok
}

// ColumnNames returns the column names in column order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IsPrimaryKey reports whether the named column is part of the primary key.
func (t *Table) IsPrimaryKey(name string) bool {
	c, ok := t.index[name]
	return ok && c.PrimaryKey
}

// HasRelationship reports whether table holds a foreign key to t.
func (t *Table) HasRelationship(table string) bool {
	return slices.Contains(t.Relationships, table)
}

// Catalog loads and caches table entries. Every table is introspected at
// most once per catalog; entries are never invalidated, so schema changes
// made after the first load are not observed.
//
// Catalog is safe for concurrent use. Concurrent first loads of the same
// table share a single introspection.
type Catalog struct {
	drv   dialect.ExecQuerier
	log   *slog.Logger
	mu    sync.RWMutex
	group singleflight.Group
	tabs  map[string]*Table
	loads atomic.Int64
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger of the catalog.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCatalog returns a catalog that introspects tables through drv.
func NewCatalog(drv dialect.ExecQuerier, opts ...Option) *Catalog {
	c := &Catalog{
		drv:  drv,
		log:  slog.Default(),
		tabs: make(map[string]*Table),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the entry of the named table, introspecting it on first use.
// A table without columns is reported with a *TableNotFoundError and is not
// cached.
func (c *Catalog) Load(ctx context.Context, name string) (*Table, error) {
	if t, ok := c.cached(name); ok {
		return t, nil
	}
	v, err, _ := c.group.Do(name, func() (any, error) {
		if t, ok := c.cached(name); ok {
			return t, nil
		}
		t, err := c.introspect(ctx, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tabs[name] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Tables returns the names of all loaded tables, sorted.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tabs))
	for name := range c.tabs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Introspections returns how many tables were introspected so far.
func (c *Catalog) Introspections() int64 {
	return c.loads.Load()
}

func (c *Catalog) cached(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tabs[name]
	return t, ok
}

func (c *Catalog) introspect(ctx context.Context, name string) (*Table, error) {
	c.loads.Add(1)
	c.log.DebugContext(ctx, "introspecting table", "table", name)
	rows, err := c.query(ctx, ColumnsQuery, name)
	if err != nil {
		return nil, fmt.Errorf("schema: columns of %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, &TableNotFoundError{Table: name}
	}
	var (
		columns []*Column
		seen    = make(map[string]bool, len(rows))
	)
	for _, r := range rows {
		col := &Column{
			Name:          asString(r[0]),
			Table:         name,
			Type:          strings.ToLower(asString(r[1])),
			PrimaryKey:    asString(r[2]) == "PRI",
			Unique:        asString(r[2]) == "UNI",
			Nullable:      asString(r[3]) == "YES",
			AutoIncrement: strings.Contains(strings.ToLower(asString(r[4])), "auto_increment"),
		}
		// A column with more than one foreign key is listed once per key.
		if seen[col.Name] {
			continue
		}
		seen[col.Name] = true
		if ref := asString(r[5]); ref != "" {
			col.Reference = &field.Reference{
				Table:    ref,
				Column:   asString(r[6]),
				OnDelete: field.Action(asString(r[7])),
			}
		}
		columns = append(columns, col)
	}
	rows, err = c.query(ctx, RelationshipsQuery, name)
	if err != nil {
		return nil, fmt.Errorf("schema: relationships of %q: %w", name, err)
	}
	relationships := make([]string, 0, len(rows))
	for _, r := range rows {
		relationships = append(relationships, asString(r[0]))
	}
	return NewTable(name, columns, relationships), nil
}

func (c *Catalog) query(ctx context.Context, query string, args ...any) ([][]any, error) {
	var rows sql.Rows
	if err := c.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	_, values, err := sql.ScanValues(rows)
	return values, err
}

func asString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
