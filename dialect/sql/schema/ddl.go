package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/bsql/dialect/sql"
)

// CreateTable renders the CREATE TABLE IF NOT EXISTS statement of a
// definition: one line per column, then the primary key, one FOREIGN KEY
// clause per referencing column and one UNIQUE clause per unique column.
func CreateTable(def TableDef) (string, error) {
	if err := ValidateDefinition(def).Err(); err != nil {
		return "", err
	}
	var (
		lines []string
		pks   []string
	)
	for _, f := range def.Fields {
		var b strings.Builder
		b.WriteString(sql.Quote(f.Name))
		b.WriteByte(' ')
		b.WriteString(f.SQLType())
		if f.AutoIncrement {
			b.WriteString(" AUTO_INCREMENT")
		}
		if !f.Nullable {
			b.WriteString(" NOT NULL")
		}
		lines = append(lines, b.String())
		if f.PrimaryKey {
			pks = append(pks, sql.Quote(f.Name))
		}
	}
	lines = append(lines, "PRIMARY KEY ("+strings.Join(pks, ", ")+")")
	for _, f := range def.Fields {
		if ref := f.Reference; ref != nil {
			fk := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", sql.Quote(f.Name), sql.Quote(ref.Table), sql.Quote(ref.Column))
			if ref.OnDelete != "" {
				fk += " ON DELETE " + string(ref.OnDelete)
			}
			lines = append(lines, fk)
		}
	}
	for _, f := range def.Fields {
		if f.Unique {
			lines = append(lines, "UNIQUE ("+sql.Quote(f.Name)+")")
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n);", sql.Quote(def.Name), strings.Join(lines, ",\n    ")), nil
}
