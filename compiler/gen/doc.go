// Package gen generates typed record wrappers from catalog tables.
//
// Each table yields one file holding a wrapper type embedding *bsql.Record,
// typed getters and setters for its columns, typed column names usable as
// predicates and assignments, and a query helper:
//
//	tables := []*schema.Table{photo, person}
//	g := gen.NewGenerator(tables, "internal/models")
//	if err := g.Generate(ctx); err != nil {
//		return err
//	}
//
// Generated code depends on the bsql and dialect/sql packages only.
package gen
