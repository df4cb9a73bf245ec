// Package field provides fluent builders for the columns of a record definition.
//
// Declared fields drive CREATE TABLE generation. The runtime shape of a record
// always comes from the schema catalog, so a definition only needs the columns
// it wants created:
//
//	bsql.Define("photo",
//	    field.Int("id").PrimaryKey().AutoIncrement(),
//	    field.Varchar("photoOwner", 64).References("person.username").OnDelete(field.Cascade),
//	    field.Text("caption").Nullable(),
//	    field.Varchar("slug", 128).Unique(),
//	)
//
// # Field Types
//
//	field.Int("n")             // INT
//	field.BigInt("n")          // BIGINT
//	field.TinyInt("n")         // TINYINT
//	field.Bool("b")            // TINYINT(1)
//	field.Float("f")           // FLOAT
//	field.Double("f")          // DOUBLE
//	field.Varchar("s", 128)    // VARCHAR(128)
//	field.Text("s")            // TEXT
//	field.DateTime("t")        // DATETIME
//	field.Timestamp("t")       // TIMESTAMP
//	field.Blob("b")            // BLOB
//
// # Field Options
//
//	PrimaryKey()               // member of the PRIMARY KEY clause
//	AutoIncrement()            // AUTO_INCREMENT, integer types only
//	Nullable()                 // NULL instead of the NOT NULL default
//	Unique()                   // UNIQUE (`column`)
//	References("t.c")          // FOREIGN KEY (`column`) REFERENCES `t`(`c`)
//	OnDelete(field.Cascade)    // ON DELETE CASCADE
//
// Misuse is recorded on Descriptor().Err and reported by definition
// validation, so declarations stay single expressions.
package field
