package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlBadNull                = 1048 // Column cannot be null
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err) ||
		IsNotNullConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	return hasNumber(err, mysqlDuplicateEntry) ||
		containsAny(err, "Error 1062", "Duplicate entry")
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	return hasNumber(err, mysqlForeignKeyParent, mysqlForeignKeyChild) ||
		containsAny(err,
			"Error 1451", // Cannot delete or update a parent row
			"Error 1452", // Cannot add or update a child row
		)
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	return hasNumber(err, mysqlCheckConstraintViolate) ||
		containsAny(err, "Error 3819")
}

// IsNotNullConstraintError reports if the error resulted from writing NULL to a NOT NULL column.
func IsNotNullConstraintError(err error) bool {
	return hasNumber(err, mysqlBadNull) ||
		containsAny(err, "Error 1048")
}

func hasNumber(err error, numbers ...uint16) bool {
	var e *mysql.MySQLError
	if !errors.As(err, &e) {
		return false
	}
	for _, n := range numbers {
		if e.Number == n {
			return true
		}
	}
	return false
}

// containsAny is the fallback for errors that lost their driver type, for
// example after crossing a process boundary as text.
func containsAny(err error, substrings ...string) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
