package bsql_test

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/bsql"
	"github.com/syssam/bsql/dialect/sql"
)

const (
	insertPhoto = "INSERT INTO `photo` (`owner`, `name`) VALUES (?, ?);"
	fetchPhoto  = "SELECT * FROM `photo` WHERE `photo`.`id` = LAST_INSERT_ID();"
	adminPhotos = "SELECT `photo`.* FROM `photo` JOIN `person` ON `photo`.`owner` = `person`.`username` WHERE `photo`.`owner` = ?;"
)

func TestInsertReadsBack(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPhoto(mock)
	mock.ExpectBegin()
	mock.ExpectExec(insertPhoto).
		WithArgs("admin", "sunset").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(fetchPhoto).
		WillReturnRows(sqlmock.NewRows(photoHeader).AddRow(int64(7), "admin", "sunset", nil))
	sess := client.NewSession()

	rec, err := sess.Insert(sql.Assign("owner", "admin"), sql.Assign("name", "sunset")).Into("photo").Do(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.Get("id"))
	assert.Equal(t, "sunset", rec.Get("name"))
	assert.Nil(t, rec.Get("taken"))
	assert.True(t, rec.Initialized())
	assert.True(t, sess.IsTracked(rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReadsBackUpdatedRow(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPhoto(mock)
	mock.ExpectBegin()
	// Two affected rows: the existing row was updated.
	mock.ExpectExec("INSERT INTO `photo` (`owner`, `name`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `owner` = VALUES(`owner`), `name` = VALUES(`name`), `id` = LAST_INSERT_ID(`id`);").
		WithArgs("admin", "sunset").
		WillReturnResult(sqlmock.NewResult(3, 2))
	mock.ExpectQuery(fetchPhoto).
		WillReturnRows(sqlmock.NewRows(photoHeader).AddRow(int64(3), "admin", "sunset", nil))
	sess := client.NewSession()

	rec, err := sess.Insert(sql.Assign("owner", "admin"), sql.Assign("name", "sunset")).
		Into("photo").
		OnDuplicateUpdate().
		Do(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Get("id"))
	assert.Equal(t, "sunset", rec.Get("name"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSuppliedKey(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `person` (`username`, `name`) VALUES (?, ?);").
		WithArgs("grace", "Grace").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT * FROM `person` WHERE `person`.`username` = ?;").
		WithArgs("grace").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("grace", "Grace"))

	rec, err := client.NewSession().Table("person").New(ctx, sql.Assign("username", "grace"), sql.Assign("name", "Grace"))
	require.NoError(t, err)
	assert.Equal(t, "<person {username: grace, name: Grace}>", rec.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMissingKey(t *testing.T) {
	client, mock := newTestClient(t)
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `person` (`name`) VALUES (?);").
		WithArgs("nobody").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := client.NewSession().Insert(sql.Assign("name", "nobody")).Into("person").Do(context.Background())
	assert.True(t, bsql.IsIdentityError(err))
}

func TestFirstNotFound(t *testing.T) {
	client, mock := newTestClient(t)
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM `person` WHERE `person`.`username` = ?;").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(personHeader))

	_, err := client.NewSession().Table("person").First(context.Background(), sql.EQ("username", "ghost"))
	assert.True(t, bsql.IsNotFound(err))
}

func TestIdentityMap(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t, bsql.WithoutCache())
	expectAdmin(mock)
	mock.ExpectQuery("SELECT * FROM `person`;").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Stale").AddRow("grace", "Grace"))
	sess := client.NewSession()

	admin, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	require.NoError(t, admin.Set("name", "Ada Lovelace"))

	all, err := sess.Table("person").All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Same(t, admin, all[0])
	assert.Equal(t, "Ada Lovelace", all[0].Get("name"))
	assert.Equal(t, 2, sess.Tracked())
}

func TestAddDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPerson(mock)
	sess := client.NewSession()

	first, err := sess.New(ctx, "person", sql.Assign("username", "grace"))
	require.NoError(t, err)
	require.NoError(t, sess.Add(first))

	second, err := sess.New(ctx, "person", sql.Assign("username", "grace"))
	require.NoError(t, err)
	err = sess.Add(second)
	var ierr *bsql.IdentityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "person", ierr.Table)

	assert.True(t, bsql.IsIdentityError(sess.Add(first)))
	assert.Equal(t, 1, sess.Tracked())

	_, err = sess.New(ctx, "person", sql.Assign("age", 3))
	assert.True(t, bsql.IsResolutionError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitUpdatesChangedColumns(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	mock.ExpectExec("UPDATE `person` SET `name` = ? WHERE `person`.`username` = ?;").
		WithArgs("Grace", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	sess := client.NewSession()

	rec, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "Grace"))
	assert.True(t, rec.Dirty())
	assert.Equal(t, map[string]any{"name": "Grace"}, rec.Changes())

	require.NoError(t, sess.Commit(ctx))
	assert.False(t, rec.Dirty())
	assert.Empty(t, rec.Changes())
	assert.Equal(t, "Grace", rec.Original()["name"])
	assert.Zero(t, sess.Tracked())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitSkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	mock.ExpectCommit()
	sess := client.NewSession()

	rec, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "Ada"))
	require.NoError(t, sess.Commit(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitInsertsNewRecords(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPhoto(mock)
	mock.ExpectBegin()
	mock.ExpectExec(insertPhoto).
		WithArgs("admin", "sunset").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(fetchPhoto).
		WillReturnRows(sqlmock.NewRows(photoHeader).AddRow(int64(1), "admin", "sunset", nil))
	mock.ExpectCommit()
	sess := client.NewSession()

	rec, err := sess.New(ctx, "photo", sql.Assign("owner", "admin"), sql.Assign("name", "sunset"))
	require.NoError(t, err)
	assert.False(t, rec.Initialized())
	_, ok := rec.Key()
	assert.False(t, ok)
	require.NoError(t, sess.Add(rec))

	require.NoError(t, sess.Commit(ctx))
	assert.True(t, rec.Initialized())
	assert.Equal(t, int64(1), rec.Get("id"))
	key, ok := rec.Key()
	assert.True(t, ok)
	assert.Equal(t, "(1)", key)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitWriteFailure(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	mock.ExpectExec("UPDATE `person` SET `name` = ? WHERE `person`.`username` = ?;").
		WithArgs("Grace", "admin").
		WillReturnError(fmt.Errorf("lock wait timeout"))
	mock.ExpectRollback()
	sess := client.NewSession()

	rec, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "Grace"))

	err = sess.Commit(ctx)
	var eerr *bsql.ExecutorError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "exec", eerr.Op)

	require.NoError(t, sess.Rollback(ctx))
	assert.Equal(t, "Ada", rec.Get("name"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitLostConnection(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	const update = "UPDATE `person` SET `name` = ? WHERE `person`.`username` = ?;"
	mock.ExpectExec(update).
		WithArgs("Bob", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).
		WithArgs("Grace", "admin").
		WillReturnError(driver.ErrBadConn)
	mock.ExpectRollback()
	sess := client.NewSession()

	rec, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	_, err = sess.Update("person").Set(sql.Assign("name", "Bob")).Where(sql.EQ("username", "bob")).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "Grace"))

	err = sess.Commit(ctx)
	require.ErrorIs(t, err, sql.ErrTxAborted)
	assert.True(t, bsql.IsExecutorError(err))
	require.ErrorIs(t, sess.Commit(ctx), sql.ErrTxAborted)

	require.NoError(t, sess.Rollback(ctx))
	assert.Equal(t, "Ada", rec.Get("name"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackRestores(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	mock.ExpectRollback()
	sess := client.NewSession()

	rec, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "Grace"))

	require.NoError(t, sess.Rollback(ctx))
	assert.Equal(t, "Ada", rec.Get("name"))
	assert.False(t, rec.Dirty())
	assert.True(t, rec.Initialized())
	assert.Zero(t, sess.Tracked())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteIsImmediate(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	mock.ExpectExec("DELETE FROM `person` WHERE `person`.`username` = ?;").
		WithArgs("admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	sess := client.NewSession()

	rec, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	require.NoError(t, rec.Set("name", "Grace"))

	require.NoError(t, sess.Delete(ctx, rec))
	assert.False(t, sess.IsTracked(rec))
	assert.False(t, rec.Initialized())

	// The deleted record is neither updated nor inserted again.
	require.NoError(t, sess.Commit(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnwritten(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPerson(mock)
	sess := client.NewSession()

	rec, err := sess.New(ctx, "person", sql.Assign("username", "grace"))
	require.NoError(t, err)
	require.NoError(t, sess.Add(rec))
	require.NoError(t, sess.Delete(ctx, rec))
	assert.Zero(t, sess.Tracked())
	require.NoError(t, sess.Commit(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSetGuards(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)

	rec, err := client.NewSession().Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	assert.True(t, rec.Generic())
	assert.True(t, bsql.IsIdentityError(rec.Set("username", "root")))
	assert.True(t, bsql.IsResolutionError(rec.Set("age", 3)))
	assert.False(t, rec.Dirty())

	name, ok := bsql.Value[string](rec, "name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)
	_, ok = bsql.Value[int64](rec, "name")
	assert.False(t, ok)
}

// TestRollbackThenCommit adds a thousand related rows and rolls them back,
// then adds a thousand more and commits them.
func TestRollbackThenCommit(t *testing.T) {
	const n = 1000
	ctx := context.Background()
	client, mock := newTestClient(t)
	sess := client.NewSession()

	expectAdmin(mock)
	expectPhoto(mock)
	mock.ExpectRollback()
	admin, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)

	added := make([]*bsql.Record, 0, n)
	for i := range n {
		rec, err := sess.New(ctx, "photo", sql.Assign("owner", "admin"), sql.Assign("name", fmt.Sprintf("draft-%d", i)))
		require.NoError(t, err)
		require.NoError(t, sess.Add(rec))
		added = append(added, rec)
	}
	require.NoError(t, sess.Rollback(ctx))
	for _, rec := range added {
		assert.False(t, rec.Initialized())
	}

	existing := sqlmock.NewRows(photoHeader).
		AddRow(int64(1), "admin", "a", nil).
		AddRow(int64(2), "admin", "b", nil).
		AddRow(int64(3), "admin", "c", nil)
	expectForeignKey(mock, "photo", "person", "owner", "username")
	mock.ExpectBegin()
	mock.ExpectQuery(adminPhotos).WithArgs("admin").WillReturnRows(existing)
	photos := sess.Related(admin, "photo")
	before, err := photos.All(ctx)
	require.NoError(t, err)
	require.Len(t, before, 3)

	after := sqlmock.NewRows(photoHeader).
		AddRow(int64(1), "admin", "a", nil).
		AddRow(int64(2), "admin", "b", nil).
		AddRow(int64(3), "admin", "c", nil)
	for i := range n {
		id, name := int64(100+i), fmt.Sprintf("final-%d", i)
		rec, err := sess.New(ctx, "photo", sql.Assign("owner", "admin"), sql.Assign("name", name))
		require.NoError(t, err)
		require.NoError(t, sess.Add(rec))
		mock.ExpectExec(insertPhoto).WithArgs("admin", name).WillReturnResult(sqlmock.NewResult(id, 1))
		mock.ExpectQuery(fetchPhoto).WillReturnRows(sqlmock.NewRows(photoHeader).AddRow(id, "admin", name, nil))
		after.AddRow(id, "admin", name, nil)
	}
	mock.ExpectCommit()
	require.NoError(t, sess.Commit(ctx))

	mock.ExpectBegin()
	mock.ExpectQuery(adminPhotos).WithArgs("admin").WillReturnRows(after)
	photos.Reset()
	count := 0
	for rec, err := range photos.Iter(ctx) {
		require.NoError(t, err)
		assert.Equal(t, "admin", rec.Get("owner"))
		count++
	}
	assert.Equal(t, len(before)+n, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRelatedByName(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectAdmin(mock)
	sess := client.NewSession()

	admin, err := sess.Table("person").First(ctx, sql.EQ("username", "admin"))
	require.NoError(t, err)
	for _, name := range []string{"photo", "photos", "Photos", "PHOTO"} {
		rel, err := sess.RelatedByName(admin, name)
		require.NoError(t, err, name)
		assert.Equal(t, "photo", rel.Table())
	}
	_, err = sess.RelatedByName(admin, "albums")
	assert.True(t, bsql.IsResolutionError(err))
}

func TestQueryCache(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	client, mock := newTestClient(t, bsql.WithCache(5*time.Second, 10), bsql.WithClock(clk.Now))
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM `person`;").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Ada"))
	sess := client.NewSession()

	recs, err := sess.Table("person").All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, client.Cache().Len())

	clk.Advance(4 * time.Second)
	other := client.NewSession()
	recs, err = other.Table("person").All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NoError(t, mock.ExpectationsWereMet())

	clk.Advance(2 * time.Second)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM `person`;").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Ada").AddRow("grace", "Grace"))
	recs, err = other.Table("person").All(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryCacheBypass(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT * FROM `person`;").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Ada"))
	mock.ExpectExec("UPDATE `person` SET `name` = ? WHERE `person`.`username` = ?;").
		WithArgs("Grace", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT * FROM `person`;").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Grace"))
	mock.ExpectQuery("SELECT * FROM `person`;").
		WillReturnRows(sqlmock.NewRows(personHeader).AddRow("admin", "Grace"))
	sess := client.NewSession()

	_, err := sess.Table("person").All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, client.Cache().Len())

	n, err := sess.Update("person").Set(sql.Assign("name", "Grace")).Where(sql.EQ("username", "admin")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Zero(t, client.Cache().Len())

	// Reads of a table written in the open transaction skip the cache.
	_, err = sess.Table("person").All(ctx)
	require.NoError(t, err)
	assert.Zero(t, client.Cache().Len())

	_, err = sess.SelectFrom("person").NoCache().All(ctx)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecRaw(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT(*) FROM person;").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(2)))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM person WHERE username = ?;").
		WithArgs("grace").
		WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectCommit()
	sess := client.NewSession()

	rows, err := sess.ExecRaw(ctx, "SELECT COUNT(*) FROM person;")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2)}}, rows)

	rows, err = sess.ExecRaw(ctx, "SELECT COUNT(*) FROM person;")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2)}}, rows)
	assert.Equal(t, 1, client.Cache().Len())

	_, err = sess.ExecRaw(ctx, "DELETE FROM person WHERE username = ?;", "grace")
	require.NoError(t, err)
	assert.Zero(t, client.Cache().Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecRawResult(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT(*) FROM person;").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(int64(2)))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO photo (owner) VALUES (?);").
		WithArgs("admin").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()
	sess := client.NewSession()

	res, err := sess.ExecRawResult(ctx, "SELECT COUNT(*) FROM person;")
	require.NoError(t, err)
	assert.Equal(t, []string{"COUNT(*)"}, res.Columns)
	assert.Equal(t, [][]any{{int64(2)}}, res.Rows)
	assert.Equal(t, 1, client.Cache().Len())

	res, err = sess.ExecRawResult(ctx, "INSERT INTO photo (owner) VALUES (?);", "admin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Equal(t, int64(9), res.LastInsertID)
	assert.Nil(t, res.Rows)
	assert.Zero(t, client.Cache().Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecRawFailure(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT nope;").WillReturnError(fmt.Errorf("unknown column"))
	mock.ExpectRollback()

	_, err := client.NewSession().ExecRaw(context.Background(), "SELECT nope;")
	assert.True(t, bsql.IsExecutorError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnion(t *testing.T) {
	ctx := context.Background()
	client, mock := newTestClient(t)
	expectPerson(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `person`.`name` FROM `person` WHERE `person`.`username` = ? UNION SELECT `person`.`name` FROM `person` WHERE `person`.`username` = ?;").
		WithArgs("admin", "grace").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Ada").AddRow("Grace"))
	mock.ExpectCommit()
	sess := client.NewSession()

	rows, err := sess.Union(ctx,
		sess.Select("name").From("person").Where(sql.EQ("username", "admin")),
		sess.Select("name").From("person").Where(sql.EQ("username", "grace")),
	)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Ada"}, {"Grace"}}, rows)

	_, err = sess.Union(ctx, sess.DeleteFrom("person"))
	assert.True(t, bsql.IsBuildStateError(err))
	_, err = sess.Union(ctx)
	assert.True(t, bsql.IsBuildStateError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
