package bsql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/bsql/dialect/sql/sqlgraph"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a query expected a row and found none.
	ErrNotFound = errors.New("bsql: record not found")

	// ErrBuildState is returned when a builder verb is used in a state that
	// does not allow it, e.g. WHERE before FROM.
	ErrBuildState = errors.New("bsql: invalid builder state")

	// ErrResolution is returned when a table, attribute or relationship
	// cannot be mapped onto the schema.
	ErrResolution = errors.New("bsql: resolution failed")

	// ErrIdentity is returned on identity violations: duplicate tracking of
	// the same record or writes to a primary-key field.
	ErrIdentity = errors.New("bsql: identity violation")
)

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("bsql: %s record not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table that was queried.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// BuildStateError reports a builder verb used out of order. It is always a
// programming error.
type BuildStateError struct {
	Verb   string
	Reason string
}

// Error returns the error string.
func (e *BuildStateError) Error() string {
	return fmt.Sprintf("bsql: %s: %s", e.Verb, e.Reason)
}

// Is reports whether the target error matches ErrBuildState.
func (e *BuildStateError) Is(err error) bool {
	return err == ErrBuildState
}

// NewBuildStateError returns a new BuildStateError.
func NewBuildStateError(verb, format string, args ...any) *BuildStateError {
	return &BuildStateError{Verb: verb, Reason: fmt.Sprintf(format, args...)}
}

// IsBuildStateError returns true if the error is a BuildStateError.
func IsBuildStateError(err error) bool {
	return errors.Is(err, ErrBuildState)
}

// ResolutionError reports a name that could not be resolved against the
// schema. Name is empty when the table itself failed to resolve.
type ResolutionError struct {
	Table string
	Name  string
	Err   error
}

// Error returns the error string.
func (e *ResolutionError) Error() string {
	var sb strings.Builder
	sb.WriteString("bsql: cannot resolve ")
	if e.Name != "" {
		fmt.Fprintf(&sb, "%q in ", e.Name)
	}
	fmt.Fprintf(&sb, "table %q", e.Table)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is reports whether the target error matches ErrResolution.
func (e *ResolutionError) Is(err error) bool {
	return err == ErrResolution
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError returns a new ResolutionError.
func NewResolutionError(table, name string, err error) *ResolutionError {
	return &ResolutionError{Table: table, Name: name, Err: err}
}

// IsResolutionError returns true if the error is a ResolutionError.
func IsResolutionError(err error) bool {
	return errors.Is(err, ErrResolution)
}

// IdentityError reports an identity violation on a record.
type IdentityError struct {
	Table  string
	Key    string
	Reason string
}

// Error returns the error string.
func (e *IdentityError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("bsql: %s %s: %s", e.Table, e.Key, e.Reason)
	}
	return fmt.Sprintf("bsql: %s: %s", e.Table, e.Reason)
}

// Is reports whether the target error matches ErrIdentity.
func (e *IdentityError) Is(err error) bool {
	return err == ErrIdentity
}

// NewIdentityError returns a new IdentityError.
func NewIdentityError(table, key, reason string) *IdentityError {
	return &IdentityError{Table: table, Key: key, Reason: reason}
}

// IsIdentityError returns true if the error is an IdentityError.
func IsIdentityError(err error) bool {
	return errors.Is(err, ErrIdentity)
}

// ExecutorError wraps an error returned by the database executor together
// with the statement that caused it.
type ExecutorError struct {
	Op  string // Operation (e.g., "query", "exec", "commit")
	SQL string // Statement, empty for transaction control
	Err error  // Underlying error
}

// Error returns the error string.
func (e *ExecutorError) Error() string {
	if e.SQL != "" {
		return fmt.Sprintf("bsql: %s %q: %v", e.Op, e.SQL, e.Err)
	}
	return fmt.Sprintf("bsql: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutorError) Unwrap() error {
	return e.Err
}

// IsExecutorError returns true if the error is an ExecutorError.
func IsExecutorError(err error) bool {
	var e *ExecutorError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error resulted from a database
// constraint violation: unique, foreign key, check or NOT NULL.
func IsConstraintError(err error) bool {
	return err != nil && sqlgraph.IsConstraintError(err)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("bsql: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "bsql: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("bsql: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
