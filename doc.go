// Package bsql is a schema-driven query builder for MySQL with a
// unit-of-work session.
//
// A Client owns what sessions share: the schema catalog, filled by
// introspecting INFORMATION_SCHEMA on first use of a table, the
// foreign-key resolver and the query-result cache. A Session owns the
// transactions and the records it loaded or created.
//
//	client, err := bsql.Open(cfg)
//	if err != nil {
//		return err
//	}
//	sess := client.NewSession()
//	defer sess.Close(ctx)
//
//	admin, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
//	if err != nil {
//		return err
//	}
//	if err := admin.Set("name", "Ada"); err != nil {
//		return err
//	}
//	for photo, err := range sess.Related(admin, "photo").Iter(ctx) {
//		...
//	}
//	return sess.Commit(ctx)
//
// # Statements
//
// Select, Insert, Update and DeleteFrom start fluent builders. Attribute
// names are resolved against the catalog when the statement is generated:
// bare names against the base table first, then the joined tables, and
// qualified "table.column" names as written. Joins are rendered from the
// foreign key linking the joined table and the base table, in either
// direction.
//
// # Records
//
// Rows carrying their complete primary key are tracked by the session, one
// instance per identity. Changes to tracked records are written by Commit
// and undone by Rollback. Deleting a record is immediate.
//
// # Caching
//
// SELECT results are cached by a fingerprint of their SQL text and
// arguments for a short time. Writes evict the entries of the tables they
// touch, and reads of tables the session wrote in its open transaction
// skip the cache.
package bsql
