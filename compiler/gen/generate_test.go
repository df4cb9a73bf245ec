package gen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/bsql/dialect/sql/schema"
	"github.com/syssam/bsql/schema/field"
)

func photoTable() *schema.Table {
	return schema.NewTable("photos", []*schema.Column{
		{Name: "id", Table: "photos", Type: "int", PrimaryKey: true, AutoIncrement: true},
		{Name: "owner", Table: "photos", Type: "varchar", Reference: &field.Reference{Table: "person", Column: "username"}},
		{Name: "taken", Table: "photos", Type: "datetime", Nullable: true},
		{Name: "ratio", Table: "photos", Type: "double"},
		{Name: "thumbnail", Table: "photos", Type: "blob", Nullable: true},
		{Name: "key", Table: "photos", Type: "varchar"},
		{Name: "location", Table: "photos", Type: "point"},
	}, nil)
}

func TestFile(t *testing.T) {
	code := File("models", photoTable()).GoString()

	for _, want := range []string{
		"// Code generated by bsqlgen, DO NOT EDIT.",
		"package models",
		`const PhotoTable = "photos"`,
		"type Photo struct {\n\t*bsql.Record\n}",
		"func AsPhoto(r *bsql.Record) (*Photo, error) {",
		"func AllPhotos(recs []*bsql.Record) ([]*Photo, error) {",
		`var PhotoKey = []string{"id"}`,
		"func (_r *Photo) ID() (v int64, ok bool) {",
		`return bsql.Value[int64](_r.Record, "id")`,
		"func (_r *Photo) Owner() (v string, ok bool) {",
		"func (_r *Photo) SetOwner(v string) error {",
		`return _r.Set("owner", v)`,
		"func (_r *Photo) Taken() (v time.Time, ok bool) {",
		"func (_r *Photo) SetTaken(v time.Time) error {",
		"func (_r *Photo) Ratio() (v float64, ok bool) {",
		"func (_r *Photo) Thumbnail() (v []byte, ok bool) {",
		"func (_r *Photo) KeyValue() (v string, ok bool) {",
		"func (_r *Photo) SetKeyValue(v string) error {",
		"func (_r *Photo) Location() (any, bool) {",
		"func (_r *Photo) SetLocation(v any) error {",
		"ID        sql.IntField",
		`ID:        "photos.id"`,
		"Taken     sql.TimeField",
		"func QueryPhoto(s *bsql.Session) *bsql.Query {",
		"return s.Table(PhotoTable)",
	} {
		assert.Contains(t, code, want)
	}
	assert.NotContains(t, code, "SetID(")
	assert.NotContains(t, code, "Location sql.")
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	person := schema.NewTable("person", []*schema.Column{
		{Name: "username", Table: "person", Type: "varchar", PrimaryKey: true},
	}, []string{"photos"})

	paths, err := NewGenerator([]*schema.Table{photoTable(), person}, dir).WithWorkers(2).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "photos.go"), filepath.Join(dir, "person.go")}, paths)

	b, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(b), "package models")
	assert.Contains(t, string(b), "func (_r *Person) Username() (v string, ok bool)")
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator([]*schema.Table{photoTable()}, t.TempDir()).WithPackage("models").Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerationError(t *testing.T) {
	err := &GenerationError{Table: "photo", Cause: os.ErrPermission}
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Equal(t, "gen: generate photo: permission denied", err.Error())
}

func TestNaming(t *testing.T) {
	tests := []struct{ in, want string }{
		{"id", "ID"},
		{"owner_id", "OwnerID"},
		{"photo-url", "PhotoURL"},
		{"created_at", "CreatedAt"},
		{"2fa", "X2fa"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pascal(tt.in), tt.in)
	}
	assert.Equal(t, "PhotoTag", typeName("photo_tags"))
	assert.Equal(t, "Person", typeName("person"))
	assert.Equal(t, "KeyValue", accessorName("key"))
	assert.Equal(t, "Name", accessorName("name"))

	AddAcronym("gps")
	assert.Equal(t, "GPSPoint", pascal("gps_point"))
}
