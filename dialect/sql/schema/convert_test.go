package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnConvert(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		typ  string
		in   any
		want any
	}{
		{"int", int32(7), int64(7)},
		{"bigint", []byte("42"), int64(42)},
		{"tinyint", true, int64(1)},
		{"int", uint64(9), int64(9)},
		{"double", []byte("1.5"), 1.5},
		{"float", float32(2), float64(2)},
		{"varchar", []byte("admin"), "admin"},
		{"text", "body", "body"},
		{"decimal", []byte("10.25"), "10.25"},
		{"datetime", []byte("2024-03-01 12:30:00"), ts},
		{"timestamp", ts, ts},
		{"date", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"blob", []byte{1, 2}, []byte{1, 2}},
		{"bit", []byte("x"), "x"},
		{"int", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c := &Column{Name: "c", Table: "t", Type: tt.typ}
			got, err := c.Convert(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnConvertBytesCopy(t *testing.T) {
	c := &Column{Name: "data", Table: "file", Type: "blob"}
	in := []byte("abc")
	out, err := c.Convert(in)
	require.NoError(t, err)
	in[0] = 'x'
	assert.Equal(t, []byte("abc"), out)
}

func TestColumnConvertError(t *testing.T) {
	c := &Column{Name: "id", Table: "person", Type: "int"}
	_, err := c.Convert([]byte("abc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "`person`.`id`")

	_, err = c.Convert(uint64(1 << 63))
	require.Error(t, err)
}

func TestColumnKind(t *testing.T) {
	assert.Equal(t, KindInt, (&Column{Type: "bigint"}).Kind())
	assert.Equal(t, KindString, (&Column{Type: "varchar"}).Kind())
	assert.Equal(t, KindTime, (&Column{Type: "datetime"}).Kind())
	assert.Equal(t, KindOther, (&Column{Type: "geometry"}).Kind())
}
