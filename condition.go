package bsql

import (
	"strconv"
	"strings"

	"github.com/syssam/bsql/dialect/sql"
)

// ParseCondition parses a qualified condition of the form
// "table.column=value". Values made of digits only become int64, True and
// False become 1 and 0; any other value is kept as a string.
//
//	pred, err := bsql.ParseCondition("person.username=admin")
func ParseCondition(s string) (sql.Predicate, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return sql.Predicate{}, NewBuildStateError("CONDITION", "missing '=' in %q", s)
	}
	name = strings.TrimSpace(name)
	if _, _, ok := sql.SplitQualified(name); !ok {
		return sql.Predicate{}, NewBuildStateError("CONDITION", "%q is not qualified as table.column", name)
	}
	return sql.EQ(name, parseValue(value)), nil
}

// MustParseCondition is like ParseCondition but panics on error.
func MustParseCondition(s string) sql.Predicate {
	p, err := ParseCondition(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseValue(v string) any {
	switch v {
	case "True":
		return int64(1)
	case "False":
		return int64(0)
	}
	if v != "" && strings.Trim(v, "0123456789") == "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return v
}
