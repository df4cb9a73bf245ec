package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/bsql/schema/field"
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of definition validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the first validation error, or nil.
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// TableDef is a declared table: its name and field descriptors in
// declaration order.
type TableDef struct {
	Name   string
	Fields []*field.Descriptor
}

// ValidateDefinition validates a single table definition. A definition
// without a primary key is an error, since records need an identity.
func ValidateDefinition(def TableDef) *ValidationResult {
	result := &ValidationResult{}
	if def.Name == "" {
		result.Errors = append(result.Errors, &ValidationError{Message: "missing table name"})
		return result
	}
	if len(def.Fields) == 0 {
		result.Errors = append(result.Errors, &ValidationError{Table: def.Name, Message: "table has no fields"})
		return result
	}
	var (
		pk    int
		names = make(map[string]bool, len(def.Fields))
	)
	for _, f := range def.Fields {
		if f.Err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: f.Err.Error(),
			})
			continue
		}
		if names[f.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: "duplicate column name",
			})
		}
		names[f.Name] = true
		if f.PrimaryKey {
			pk++
			if f.Nullable {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   def.Name,
					Column:  f.Name,
					Message: "primary key column cannot be nullable",
				})
			}
		}
		if f.Reference != nil && f.Reference.OnDelete == field.SetNull && !f.Nullable {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: "ON DELETE SET NULL on a NOT NULL column",
			})
		}
		if f.Type == field.TypeVarchar && f.Size <= 0 {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: "VARCHAR column without size",
			})
		}
	}
	if pk == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   def.Name,
			Message: "table has no primary key",
		})
	}
	return result
}

// ValidateDefinitions validates all definitions together. Foreign keys to
// tables outside the set are reported as warnings since the table may
// already exist in the database.
func ValidateDefinitions(defs []TableDef) *ValidationResult {
	result := &ValidationResult{}
	tables := make(map[string]TableDef, len(defs))
	for _, def := range defs {
		if _, ok := tables[def.Name]; ok {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   def.Name,
				Message: "duplicate table name",
			})
		}
		tables[def.Name] = def
		result.merge(ValidateDefinition(def))
	}
	for _, def := range defs {
		for _, f := range def.Fields {
			if f.Reference == nil {
				continue
			}
			target, ok := tables[f.Reference.Table]
			if !ok {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   def.Name,
					Column:  f.Name,
					Message: fmt.Sprintf("foreign key references undeclared table %q", f.Reference.Table),
				})
				continue
			}
			if !hasField(target, f.Reference.Column) {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   def.Name,
					Column:  f.Name,
					Message: fmt.Sprintf("foreign key references non-existent column %s.%s", f.Reference.Table, f.Reference.Column),
				})
			}
		}
	}
	return result
}

// ValidateExisting compares a definition with the introspected table of the
// same name. CREATE TABLE IF NOT EXISTS leaves existing tables untouched, so
// differences are reported as warnings.
func ValidateExisting(def TableDef, current *Table) *ValidationResult {
	result := &ValidationResult{}
	for _, f := range def.Fields {
		c, ok := current.Column(f.Name)
		if !ok {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: "declared column missing from existing table",
			})
			continue
		}
		if c.PrimaryKey != f.PrimaryKey {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: "primary key differs from existing table",
			})
		}
		if c.Nullable != f.Nullable {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   def.Name,
				Column:  f.Name,
				Message: "nullability differs from existing table",
			})
		}
	}
	return result
}

func hasField(def TableDef, name string) bool {
	for _, f := range def.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
