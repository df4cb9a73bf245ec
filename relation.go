package bsql

import (
	"context"
	"iter"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"

	"github.com/syssam/bsql/dialect/sql"
	"github.com/syssam/bsql/dialect/sql/sqlgraph"
)

// Relation is the lazy sequence of records of a table referencing a record
// through a foreign key. The rows are loaded on first use and reused until
// Reset.
type Relation struct {
	sess    *Session
	rec     *Record
	table   string
	records []*Record
	loaded  bool
}

// Related returns the records of table that reference rec.
//
//	photos := sess.Related(person, "photo")
//	for p, err := range photos.Iter(ctx) {
//		...
//	}
func (s *Session) Related(rec *Record, table string) *Relation {
	return &Relation{sess: s, rec: rec, table: table}
}

// RelatedByName is like Related, with the table looked up among the inbound
// relationships of the record table by a case-insensitive, optionally
// plural name: "photos", "Photo" and "photo" all name table photo.
func (s *Session) RelatedByName(rec *Record, name string) (*Relation, error) {
	fold := cases.Fold()
	want, singular := fold.String(name), fold.String(inflect.Singularize(name))
	for _, rel := range rec.Schema().Relationships {
		if f := fold.String(rel); f == want || f == singular {
			return s.Related(rec, rel), nil
		}
	}
	return nil, NewResolutionError(rec.Table(), name, sqlgraph.ErrNoRelationship)
}

// Table returns the name of the related table.
func (r *Relation) Table() string { return r.table }

// All returns the related records.
func (r *Relation) All(ctx context.Context) ([]*Record, error) {
	if r.loaded {
		return r.records, nil
	}
	pair, found, err := r.sess.client.resolver.Resolve(ctx, r.table, r.rec.Table())
	if err != nil {
		return nil, &ExecutorError{Op: "resolve", Err: err}
	}
	if !found {
		return nil, NewResolutionError(r.rec.Table(), r.table, &sqlgraph.RelationshipError{From: r.table, To: r.rec.Table()})
	}
	recs, err := r.sess.SelectFrom(r.table).
		Join(r.rec.Table()).
		Where(sql.EQ(r.table+"."+pair.Column, r.rec.Get(pair.RefColumn))).
		All(ctx)
	if err != nil {
		return nil, err
	}
	r.records, r.loaded = recs, true
	return recs, nil
}

// Iter returns an iterator over the related records. It can be ranged over
// any number of times.
func (r *Relation) Iter(ctx context.Context) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		recs, err := r.All(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Reset drops the loaded records; the next use queries again.
func (r *Relation) Reset() {
	r.records, r.loaded = nil, false
}
