package schema

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind groups MySQL data types by the Go type their values convert to.
type Kind uint8

// Value kinds.
const (
	KindOther  Kind = iota // kept as returned by the driver
	KindInt                // int64
	KindFloat              // float64
	KindString             // string
	KindTime               // time.Time
	KindBytes              // []byte
)

var kinds = map[string]Kind{
	"tinyint":    KindInt,
	"smallint":   KindInt,
	"mediumint":  KindInt,
	"int":        KindInt,
	"integer":    KindInt,
	"bigint":     KindInt,
	"year":       KindInt,
	"float":      KindFloat,
	"double":     KindFloat,
	"real":       KindFloat,
	"decimal":    KindString,
	"char":       KindString,
	"varchar":    KindString,
	"tinytext":   KindString,
	"text":       KindString,
	"mediumtext": KindString,
	"longtext":   KindString,
	"enum":       KindString,
	"set":        KindString,
	"json":       KindString,
	"date":       KindTime,
	"datetime":   KindTime,
	"timestamp":  KindTime,
	"binary":     KindBytes,
	"varbinary":  KindBytes,
	"tinyblob":   KindBytes,
	"blob":       KindBytes,
	"mediumblob": KindBytes,
	"longblob":   KindBytes,
}

// TimeLayout is the layout of DATETIME and TIMESTAMP values returned as text.
const TimeLayout = "2006-01-02 15:04:05"

const dateLayout = "2006-01-02"

// Kind returns the value kind of the column.
func (c *Column) Kind() Kind {
	return kinds[c.Type]
}

// Convert normalizes a value read from the driver to the Go type of the
// column kind. NULL stays nil.
func (c *Column) Convert(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		err error
		cv  any
	)
	switch c.Kind() {
	case KindInt:
		cv, err = toInt64(v)
	case KindFloat:
		cv, err = toFloat64(v)
	case KindString:
		cv, err = toString(v)
	case KindTime:
		cv, err = toTime(v)
	case KindBytes:
		cv, err = toBytes(v)
	default:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schema: convert %s (%s): %w", c, c.Type, err)
	}
	return cv, nil
}

func toInt64(v any) (any, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func toFloat64(v any) (any, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func toString(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toTime(v any) (any, error) {
	var s string
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
	if len(s) == len(dateLayout) {
		return time.Parse(dateLayout, s)
	}
	// Fractional seconds are accepted by the layout parser when present.
	return time.Parse(TimeLayout, s)
}

func toBytes(v any) (any, error) {
	switch v := v.(type) {
	case []byte:
		// Driver buffers may back cached rows.
		return bytes.Clone(v), nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
