package scan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/source"
)

// TimeParser converts RFC-3339 text into milliseconds since the Unix epoch.
type TimeParser interface {
	ParseRFC3339(s string) (int64, error)
}

// TimeParserFunc adapts a function to TimeParser.
type TimeParserFunc func(s string) (int64, error)

func (f TimeParserFunc) ParseRFC3339(s string) (int64, error) { return f(s) }

// RFC3339 is the default parser. It accepts fractional seconds.
var RFC3339 TimeParser = TimeParserFunc(func(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
})

// canonical serialises JSON cells with sorted object keys and no HTML escaping.
var canonical = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// convert turns one raw field value into a cell of the column's declared type.
// A nil raw value is an explicit null in the source and yields a Null cell;
// absence of the field is handled by the caller.
func convert(col fdw.Column, raw any, tp TimeParser) (fdw.Cell, error) {
	if raw == nil {
		if _, ok := col.Type().Kind(); !ok {
			return fdw.Cell{}, errs.UnsupportedColumnType(col.Name())
		}
		return fdw.Null(), nil
	}

	switch col.Type() {
	case fdw.TypeBool:
		return toBool(col, raw)
	case fdw.TypeInt:
		return toInt(col, raw)
	case fdw.TypeFloat:
		return toFloat(col, raw)
	case fdw.TypeString:
		return toString(col, raw)
	case fdw.TypeTimestamp:
		return toTimestamp(col, raw, tp)
	case fdw.TypeJSON:
		return toJSON(col, raw)
	default:
		return fdw.Cell{}, errs.UnsupportedColumnType(col.Name())
	}
}

func toBool(col fdw.Column, raw any) (fdw.Cell, error) {
	switch v := raw.(type) {
	case bool:
		return fdw.Bool(v), nil
	case source.Text:
		b, err := strconv.ParseBool(string(v))
		if err != nil {
			return fdw.Cell{}, mismatch(col, raw, err)
		}
		return fdw.Bool(b), nil
	}
	return fdw.Cell{}, mismatch(col, raw, nil)
}

func toInt(col fdw.Column, raw any) (fdw.Cell, error) {
	switch v := raw.(type) {
	case int:
		return fdw.Int(int64(v)), nil
	case int8:
		return fdw.Int(int64(v)), nil
	case int16:
		return fdw.Int(int64(v)), nil
	case int32:
		return fdw.Int(int64(v)), nil
	case int64:
		return fdw.Int(v), nil
	case uint8:
		return fdw.Int(int64(v)), nil
	case uint16:
		return fdw.Int(int64(v)), nil
	case uint32:
		return fdw.Int(int64(v)), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return fdw.Cell{}, unsupported(col, raw, nil)
		}
		return fdw.Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return fdw.Cell{}, unsupported(col, raw, nil)
		}
		return fdw.Int(int64(v)), nil
	case float32:
		return intFromFloat(col, raw, float64(v))
	case float64:
		return intFromFloat(col, raw, v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return fdw.Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		return intFromFloat(col, raw, f)
	case source.Text:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		return fdw.Int(i), nil
	}
	return fdw.Cell{}, unsupported(col, raw, nil)
}

// intFromFloat accepts only floats that hold an exact integer in int64 range.
func intFromFloat(col fdw.Column, raw any, f float64) (fdw.Cell, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fdw.Cell{}, unsupported(col, raw, nil)
	}
	return fdw.Int(int64(f)), nil
}

func toFloat(col fdw.Column, raw any) (fdw.Cell, error) {
	switch v := raw.(type) {
	case float64:
		return fdw.Float(v), nil
	case float32:
		return fdw.Float(float64(v)), nil
	case int:
		return fdw.Float(float64(v)), nil
	case int8:
		return fdw.Float(float64(v)), nil
	case int16:
		return fdw.Float(float64(v)), nil
	case int32:
		return fdw.Float(float64(v)), nil
	case int64:
		return fdw.Float(float64(v)), nil
	case uint:
		return fdw.Float(float64(v)), nil
	case uint8:
		return fdw.Float(float64(v)), nil
	case uint16:
		return fdw.Float(float64(v)), nil
	case uint32:
		return fdw.Float(float64(v)), nil
	case uint64:
		return fdw.Float(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		return fdw.Float(f), nil
	case source.Text:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		return fdw.Float(f), nil
	}
	return fdw.Cell{}, unsupported(col, raw, nil)
}

func toString(col fdw.Column, raw any) (fdw.Cell, error) {
	switch v := raw.(type) {
	case string:
		return fdw.String(v), nil
	case source.Text:
		return fdw.String(string(v)), nil
	}
	return fdw.Cell{}, unsupported(col, raw, nil)
}

func toTimestamp(col fdw.Column, raw any, tp TimeParser) (fdw.Cell, error) {
	var text string
	switch v := raw.(type) {
	case time.Time:
		return fdw.Timestamp(v.UnixMilli()), nil
	case string:
		text = v
	case source.Text:
		text = string(v)
	default:
		return fdw.Cell{}, unsupported(col, raw, nil)
	}

	ms, err := tp.ParseRFC3339(text)
	if err != nil {
		return fdw.Cell{}, mismatch(col, raw, err)
	}
	return fdw.Timestamp(ms), nil
}

func toJSON(col fdw.Column, raw any) (fdw.Cell, error) {
	var text []byte
	switch v := raw.(type) {
	case map[string]any, []any:
		b, err := canonical.Marshal(v)
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		text = b
	case json.RawMessage:
		b, err := compactContainer(v)
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		text = b
	case source.Text:
		b, err := compactContainer([]byte(v))
		if err != nil {
			return fdw.Cell{}, unsupported(col, raw, err)
		}
		text = b
	default:
		return fdw.Cell{}, unsupported(col, raw, nil)
	}
	return fdw.JSON(string(text)), nil
}

// compactContainer validates that b is a JSON object or array and strips
// insignificant whitespace. Key order is preserved.
func compactContainer(b []byte) ([]byte, error) {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || (t[0] != '{' && t[0] != '[') {
		return nil, errors.New("not a JSON object or array")
	}

	iter := canonical.BorrowIterator(t)
	defer canonical.ReturnIterator(iter)
	stream := canonical.BorrowStream(nil)
	defer canonical.ReturnStream(stream)

	copyValue(iter, stream)
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, iter.Error
	}
	if iter.WhatIsNext() != jsoniter.InvalidValue || !errors.Is(iter.Error, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// copyValue re-emits the next value from iter token by token.
func copyValue(iter *jsoniter.Iterator, s *jsoniter.Stream) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		s.WriteObjectStart()
		first := true
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			if !first {
				s.WriteMore()
			}
			first = false
			s.WriteObjectField(key)
			copyValue(it, s)
			return it.Error == nil
		})
		s.WriteObjectEnd()
	case jsoniter.ArrayValue:
		s.WriteArrayStart()
		first := true
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			if !first {
				s.WriteMore()
			}
			first = false
			copyValue(it, s)
			return it.Error == nil
		})
		s.WriteArrayEnd()
	case jsoniter.StringValue:
		s.WriteString(iter.ReadString())
	case jsoniter.NumberValue:
		s.WriteRaw(iter.ReadNumber().String())
	case jsoniter.BoolValue:
		s.WriteBool(iter.ReadBool())
	case jsoniter.NilValue:
		iter.ReadNil()
		s.WriteNil()
	default:
		iter.ReportError("copyValue", "expected a JSON value")
	}
}

// mismatch is a TypeMismatch: a non-boolean for a Bool column, or text the
// time parser rejects.
func mismatch(col fdw.Column, raw any, cause error) *errs.Error {
	return errs.TypeMismatch(col.Name(), col.Type().String(), rawKind(raw), cause)
}

// unsupported covers every other raw value the declared type cannot hold.
func unsupported(col fdw.Column, raw any, cause error) *errs.Error {
	return errs.UnsupportedConversion(col.Name(), col.Type().String(), rawKind(raw), cause)
}

// rawKind names a raw value's type in source terms for error messages.
func rawKind(raw any) string {
	switch v := raw.(type) {
	case bool:
		return "boolean"
	case string:
		return "string"
	case source.Text:
		return fmt.Sprintf("text %q", string(v))
	case json.Number:
		return "number " + v.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case json.RawMessage:
		return "raw json"
	case time.Time:
		return "time"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
