// Package sqlgraph resolves foreign-key relationships between tables and
// renders the JOIN clauses built on them.
package sqlgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syssam/bsql/dialect"
	"github.com/syssam/bsql/dialect/sql"
)

// ForeignKeyQuery returns the foreign-key column pairs from a table (first
// argument) to a referenced table (second argument).
const ForeignKeyQuery = "SELECT COLUMN_NAME, REFERENCED_COLUMN_NAME " +
	"FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE " +
	"WHERE TABLE_NAME = ? AND REFERENCED_TABLE_NAME = ? AND TABLE_SCHEMA = DATABASE() " +
	"ORDER BY ORDINAL_POSITION;"

// ErrNoRelationship is returned when no foreign key links two tables.
var ErrNoRelationship = errors.New("sqlgraph: no relationship")

// RelationshipError reports the tables that could not be linked.
type RelationshipError struct {
	From, To string
}

// Error returns the error string.
func (e *RelationshipError) Error() string {
	return fmt.Sprintf("sqlgraph: no foreign key between %q and %q", e.From, e.To)
}

// Is reports whether the target error matches ErrNoRelationship.
func (e *RelationshipError) Is(err error) bool {
	return err == ErrNoRelationship
}

// Pair is a foreign-key column pair: Column on the local table references
// RefColumn on the foreign table.
type Pair struct {
	Column    string
	RefColumn string
}

// Same reports whether both columns have the same name.
func (p Pair) Same() bool {
	return p.Column == p.RefColumn
}

type lookup struct {
	pair  Pair
	found bool
}

// Resolver looks up foreign-key pairs and remembers the answers, negative
// ones included. It is safe for concurrent use.
type Resolver struct {
	drv   dialect.ExecQuerier
	mu    sync.Mutex
	cache map[[2]string]lookup
}

// NewResolver returns a resolver that queries through drv.
func NewResolver(drv dialect.ExecQuerier) *Resolver {
	return &Resolver{drv: drv, cache: make(map[[2]string]lookup)}
}

// Resolve returns the first foreign-key pair from local to foreign. found is
// false when local holds no foreign key to foreign; a partial pair is
// never returned.
func (r *Resolver) Resolve(ctx context.Context, local, foreign string) (pair Pair, found bool, err error) {
	key := [2]string{local, foreign}
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.cache[key]; ok {
		return l.pair, l.found, nil
	}
	var rows sql.Rows
	if err := r.drv.Query(ctx, ForeignKeyQuery, []any{local, foreign}, &rows); err != nil {
		return Pair{}, false, fmt.Errorf("sqlgraph: resolve %s -> %s: %w", local, foreign, err)
	}
	_, values, err := sql.ScanValues(rows)
	if err != nil {
		return Pair{}, false, fmt.Errorf("sqlgraph: resolve %s -> %s: %w", local, foreign, err)
	}
	var l lookup
	for _, v := range values {
		col, ref := text(v[0]), text(v[1])
		if col == "" || ref == "" {
			continue
		}
		l = lookup{pair: Pair{Column: col, RefColumn: ref}, found: true}
		break
	}
	r.cache[key] = l
	return l.pair, l.found, nil
}

func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}
