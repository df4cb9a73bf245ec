package sqlgraph

import (
	"context"
	"fmt"

	"github.com/syssam/bsql/dialect/sql"
)

// Join links the base table of a statement with a joined table. It is
// resolved lazily, in either foreign-key direction.
type Join struct {
	From string // base table
	To   string // joined table

	// FromColumn and ToColumn hold the equated columns once resolved.
	FromColumn string
	ToColumn   string
	resolved   bool
}

// NewJoin returns an unresolved join of to onto from.
func NewJoin(from, to string) *Join {
	return &Join{From: from, To: to}
}

// Resolve finds the foreign key between the two tables, trying a key on
// From first and then a key on To. Resolve is a no-op once it succeeded.
func (j *Join) Resolve(ctx context.Context, r *Resolver) error {
	if j.resolved {
		return nil
	}
	pair, found, err := r.Resolve(ctx, j.From, j.To)
	if err != nil {
		return err
	}
	if found {
		j.FromColumn, j.ToColumn = pair.Column, pair.RefColumn
		j.resolved = true
		return nil
	}
	pair, found, err = r.Resolve(ctx, j.To, j.From)
	if err != nil {
		return err
	}
	if !found {
		return &RelationshipError{From: j.From, To: j.To}
	}
	j.FromColumn, j.ToColumn = pair.RefColumn, pair.Column
	j.resolved = true
	return nil
}

// Resolved reports whether the join columns are known.
func (j *Join) Resolved() bool {
	return j.resolved
}

// String renders the JOIN clause. Columns of the same name are joined with
// USING, others with an ON equality.
func (j *Join) String() string {
	if !j.resolved {
		return fmt.Sprintf("JOIN %s", sql.Quote(j.To))
	}
	if j.FromColumn == j.ToColumn {
		return fmt.Sprintf("JOIN %s USING (%s)", sql.Quote(j.To), sql.Quote(j.FromColumn))
	}
	return fmt.Sprintf("JOIN %s ON %s = %s",
		sql.Quote(j.To),
		sql.QuoteColumn(j.From, j.FromColumn),
		sql.QuoteColumn(j.To, j.ToColumn),
	)
}
