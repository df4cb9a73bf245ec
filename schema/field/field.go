package field

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the column type of a declared field.
type Type uint8

// Field types.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeBigInt
	TypeTinyInt
	TypeBool
	TypeFloat
	TypeDouble
	TypeVarchar
	TypeText
	TypeDateTime
	TypeTimestamp
	TypeBlob
)

var typeNames = [...]string{
	TypeInvalid:   "invalid",
	TypeInt:       "INT",
	TypeBigInt:    "BIGINT",
	TypeTinyInt:   "TINYINT",
	TypeBool:      "TINYINT(1)",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeVarchar:   "VARCHAR",
	TypeText:      "TEXT",
	TypeDateTime:  "DATETIME",
	TypeTimestamp: "TIMESTAMP",
	TypeBlob:      "BLOB",
}

// String returns the MySQL name of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Numeric reports if the type is an integer or floating point type.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt, TypeBigInt, TypeTinyInt, TypeBool, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// Action is a referential action of a foreign key.
type Action string

// Referential actions.
const (
	NoAction Action = "NO ACTION"
	Restrict Action = "RESTRICT"
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
)

// Reference describes the column a foreign key points to.
type Reference struct {
	Table    string
	Column   string
	OnDelete Action
}

// Descriptor is the immutable description of a declared field.
type Descriptor struct {
	Name          string
	Type          Type
	Size          int
	PrimaryKey    bool
	AutoIncrement bool
	Nullable      bool
	Unique        bool
	Reference     *Reference
	// Err is the first error recorded while building the field.
	Err error
}

// SQLType returns the column type as written in a CREATE TABLE statement.
func (d *Descriptor) SQLType() string {
	if d.Size > 0 && d.Type != TypeBool {
		return fmt.Sprintf("%s(%d)", d.Type, d.Size)
	}
	return d.Type.String()
}

// Builder is the fluent builder of a field declaration.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	b := &Builder{desc: &Descriptor{Name: name, Type: t}}
	if name == "" {
		b.desc.Err = errors.New("field: missing field name")
	}
	return b
}

// Int returns a new INT field.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// BigInt returns a new BIGINT field.
func BigInt(name string) *Builder { return newBuilder(name, TypeBigInt) }

// TinyInt returns a new TINYINT field.
func TinyInt(name string) *Builder { return newBuilder(name, TypeTinyInt) }

// Bool returns a new boolean field, stored as TINYINT(1).
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Float returns a new FLOAT field.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Double returns a new DOUBLE field.
func Double(name string) *Builder { return newBuilder(name, TypeDouble) }

// Varchar returns a new VARCHAR field of the given length.
func Varchar(name string, size int) *Builder {
	b := newBuilder(name, TypeVarchar)
	if size <= 0 {
		b.err(fmt.Errorf("field: varchar %q requires a positive size, got %d", name, size))
	}
	b.desc.Size = size
	return b
}

// Text returns a new TEXT field.
func Text(name string) *Builder { return newBuilder(name, TypeText) }

// DateTime returns a new DATETIME field.
func DateTime(name string) *Builder { return newBuilder(name, TypeDateTime) }

// Timestamp returns a new TIMESTAMP field.
func Timestamp(name string) *Builder { return newBuilder(name, TypeTimestamp) }

// Blob returns a new BLOB field.
func Blob(name string) *Builder { return newBuilder(name, TypeBlob) }

// Size sets the display width or length of the column type.
func (b *Builder) Size(n int) *Builder {
	b.desc.Size = n
	return b
}

// PrimaryKey marks the field as part of the primary key.
func (b *Builder) PrimaryKey() *Builder {
	b.desc.PrimaryKey = true
	return b
}

// AutoIncrement marks the field as AUTO_INCREMENT. Only integer fields qualify.
func (b *Builder) AutoIncrement() *Builder {
	switch b.desc.Type {
	case TypeInt, TypeBigInt, TypeTinyInt:
		b.desc.AutoIncrement = true
	default:
		b.err(fmt.Errorf("field: auto increment on non-integer field %q", b.desc.Name))
	}
	return b
}

// Nullable allows NULL values. Fields are NOT NULL by default.
func (b *Builder) Nullable() *Builder {
	b.desc.Nullable = true
	return b
}

// Unique adds a UNIQUE constraint on the field.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// References declares a foreign key to "table.column".
func (b *Builder) References(target string) *Builder {
	table, column, ok := strings.Cut(target, ".")
	if !ok || table == "" || column == "" {
		b.err(fmt.Errorf("field: reference of %q must be written as table.column, got %q", b.desc.Name, target))
		return b
	}
	b.desc.Reference = &Reference{Table: table, Column: column}
	return b
}

// OnDelete sets the ON DELETE action of the foreign key declared with References.
func (b *Builder) OnDelete(a Action) *Builder {
	if b.desc.Reference == nil {
		b.err(fmt.Errorf("field: OnDelete on %q without References", b.desc.Name))
		return b
	}
	b.desc.Reference.OnDelete = a
	return b
}

// Descriptor returns the descriptor of the field.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

func (b *Builder) err(err error) {
	if b.desc.Err == nil {
		b.desc.Err = err
	}
}
