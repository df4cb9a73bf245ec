package bsql

import (
	"github.com/syssam/bsql/dialect/sql/schema"
	"github.com/syssam/bsql/schema/field"
)

// Definition declares a table: the record type of its rows and the columns
// CreateAll creates it with.
type Definition struct {
	name   string
	fields []*field.Descriptor
}

// Define declares table with the given fields.
//
//	var Photo = bsql.Define("photo",
//		field.Int("id").PrimaryKey().AutoIncrement(),
//		field.Varchar("owner", 64).References("person.username").OnDelete(field.Cascade),
//	)
func Define(table string, fields ...*field.Builder) *Definition {
	d := &Definition{name: table, fields: make([]*field.Descriptor, len(fields))}
	for i, f := range fields {
		d.fields[i] = f.Descriptor()
	}
	return d
}

// Name returns the table name.
func (d *Definition) Name() string { return d.name }

// Fields returns the field descriptors in declaration order.
func (d *Definition) Fields() []*field.Descriptor { return d.fields }

// TableDef returns the definition in the form used by the schema package.
func (d *Definition) TableDef() schema.TableDef {
	return schema.TableDef{Name: d.name, Fields: d.fields}
}
