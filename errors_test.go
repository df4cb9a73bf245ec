package bsql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/bsql"
	"github.com/syssam/bsql/dialect/sql/schema"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := bsql.NewNotFoundError("person")
		assert.Equal(t, "bsql: person record not found", err.Error())
		assert.Equal(t, "person", err.Table())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := bsql.NewNotFoundError("photo")
		assert.True(t, errors.Is(err, bsql.ErrNotFound))
		assert.True(t, bsql.IsNotFound(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, bsql.IsNotFound(bsql.ErrNotFound))
		assert.False(t, bsql.IsNotFound(errors.New("other error")))
		assert.False(t, bsql.IsNotFound(nil))
	})
}

func TestBuildStateError(t *testing.T) {
	err := bsql.NewBuildStateError("WHERE", "no table set on %s", "SELECT")
	assert.Equal(t, "bsql: WHERE: no table set on SELECT", err.Error())
	assert.True(t, bsql.IsBuildStateError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, bsql.IsResolutionError(err))
}

func TestResolutionError(t *testing.T) {
	t.Run("Attribute", func(t *testing.T) {
		err := bsql.NewResolutionError("photo", "colour", nil)
		assert.Equal(t, `bsql: cannot resolve "colour" in table "photo"`, err.Error())
		assert.True(t, bsql.IsResolutionError(err))
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := &schema.TableNotFoundError{Table: "ghost"}
		err := bsql.NewResolutionError("ghost", "", cause)
		assert.Equal(t, `bsql: cannot resolve table "ghost": schema: table "ghost" not found`, err.Error())
		assert.True(t, errors.Is(err, schema.ErrTableNotFound))
		assert.True(t, errors.Is(err, bsql.ErrResolution))
	})
}

func TestIdentityError(t *testing.T) {
	err := bsql.NewIdentityError("person", "(admin)", "already tracked")
	assert.Equal(t, "bsql: person (admin): already tracked", err.Error())
	assert.True(t, bsql.IsIdentityError(err))

	err = bsql.NewIdentityError("person", "", "primary key is immutable")
	assert.Equal(t, "bsql: person: primary key is immutable", err.Error())
}

func TestExecutorError(t *testing.T) {
	cause := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	err := &bsql.ExecutorError{Op: "exec", SQL: "INSERT INTO `t` () VALUES ();", Err: cause}
	assert.Contains(t, err.Error(), "bsql: exec")
	assert.True(t, bsql.IsExecutorError(err))
	assert.True(t, bsql.IsConstraintError(err))
	assert.True(t, errors.Is(err, cause))

	err = &bsql.ExecutorError{Op: "commit", Err: errors.New("lost")}
	assert.Equal(t, "bsql: commit: lost", err.Error())
	assert.False(t, bsql.IsConstraintError(err))
	assert.False(t, bsql.IsConstraintError(nil))
}

func TestRollbackError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := &bsql.RollbackError{Err: errors.New("connection lost")}
		assert.Equal(t, "bsql: rollback failed: connection lost", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("timeout")
		err := &bsql.RollbackError{Err: underlying}
		assert.True(t, errors.Is(err, underlying))
	})
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		assert.Nil(t, bsql.NewAggregateError())
		assert.Nil(t, bsql.NewAggregateError(nil, nil, nil))
	})

	t.Run("SingleError", func(t *testing.T) {
		single := errors.New("single error")
		assert.Equal(t, single, bsql.NewAggregateError(nil, single, nil))
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err2 := errors.New("error 2")
		err := bsql.NewAggregateError(err1, err2)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "error 1")
		assert.Contains(t, err.Error(), "error 2")
		assert.True(t, errors.Is(err, err2))
	})
}
