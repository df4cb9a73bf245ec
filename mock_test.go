package bsql_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/syssam/bsql"
	"github.com/syssam/bsql/dialect"
	"github.com/syssam/bsql/dialect/sql"
	"github.com/syssam/bsql/dialect/sql/schema"
	"github.com/syssam/bsql/dialect/sql/sqlgraph"
)

var columnHeader = []string{
	"COLUMN_NAME", "DATA_TYPE", "COLUMN_KEY", "IS_NULLABLE", "EXTRA",
	"REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME", "DELETE_RULE",
}

var (
	personHeader = []string{"username", "name"}
	photoHeader  = []string{"id", "owner", "name", "taken"}
)

// clock is a settable time source for the query cache.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClient(t *testing.T, opts ...bsql.Option) (*bsql.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	opts = append([]bsql.Option{bsql.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return bsql.NewClient(sql.OpenDB(dialect.MySQL, db), opts...), mock
}

// expectPerson expects the catalog introspection of
//
//	person(username VARCHAR PRIMARY KEY, name VARCHAR NULL)
func expectPerson(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(schema.ColumnsQuery).
		WithArgs("person").
		WillReturnRows(sqlmock.NewRows(columnHeader).
			AddRow("username", "varchar", "PRI", "NO", "", nil, nil, nil).
			AddRow("name", "varchar", "", "YES", "", nil, nil, nil))
	mock.ExpectQuery(schema.RelationshipsQuery).
		WithArgs("person").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("photo"))
}

// expectPhoto expects the catalog introspection of
//
//	photo(id INT AUTO_INCREMENT PRIMARY KEY, owner VARCHAR REFERENCES person(username),
//	      name VARCHAR NULL, taken DATETIME NULL)
func expectPhoto(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(schema.ColumnsQuery).
		WithArgs("photo").
		WillReturnRows(sqlmock.NewRows(columnHeader).
			AddRow("id", "int", "PRI", "NO", "auto_increment", nil, nil, nil).
			AddRow("owner", "varchar", "MUL", "NO", "", "person", "username", "CASCADE").
			AddRow("name", "varchar", "", "YES", "", nil, nil, nil).
			AddRow("taken", "datetime", "", "YES", "", nil, nil, nil))
	mock.ExpectQuery(schema.RelationshipsQuery).
		WithArgs("photo").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}))
}

// expectForeignKey expects the relationship lookup from local to foreign.
// No pairs means no foreign key.
func expectForeignKey(mock sqlmock.Sqlmock, local, foreign string, pairs ...string) {
	rows := sqlmock.NewRows([]string{"COLUMN_NAME", "REFERENCED_COLUMN_NAME"})
	for i := 0; i+1 < len(pairs); i += 2 {
		rows.AddRow(pairs[i], pairs[i+1])
	}
	mock.ExpectQuery(sqlgraph.ForeignKeyQuery).
		WithArgs(local, foreign).
		WillReturnRows(rows)
}

// expectAdmin expects the person table, a new transaction and the lookup
// of the admin person.
func expectAdmin(mock sqlmock.Sqlmock) {
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM `person` WHERE `person`.`username` = ?;").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Ada"))
}
