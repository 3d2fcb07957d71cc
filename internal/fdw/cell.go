// Package fdw holds the typed value model shared between the host and the
// adapter: cells, rows, columns, options and the per-scan context.
package fdw

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant of a Cell is active.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTimestamp
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindJSON:
		return "json"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is one typed value at one row/column position. Exactly one variant is
// active; the payload can only be read back through the accessor for that
// variant. The zero Cell is Null.
type Cell struct {
	kind Kind
	b    bool
	i    int64 // Int and Timestamp (ms since Unix epoch)
	f    float64
	s    string // String and JSON text
}

func Null() Cell { return Cell{} }

func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }

func Int(v int64) Cell { return Cell{kind: KindInt, i: v} }

func Float(v float64) Cell { return Cell{kind: KindFloat, f: v} }

func String(v string) Cell { return Cell{kind: KindString, s: v} }

// Timestamp builds a timestamp cell from milliseconds since the Unix epoch.
func Timestamp(unixMs int64) Cell { return Cell{kind: KindTimestamp, i: unixMs} }

// JSON wraps already-validated JSON text. Callers are responsible for
// validity; the scan engine only builds JSON cells from re-serialised values.
func JSON(text string) Cell { return Cell{kind: KindJSON, s: text} }

func (c Cell) Kind() Kind   { return c.kind }
func (c Cell) IsNull() bool { return c.kind == KindNull }

func (c Cell) AsBool() (bool, bool) {
	return c.b, c.kind == KindBool
}

func (c Cell) AsInt() (int64, bool) {
	return c.i, c.kind == KindInt
}

func (c Cell) AsFloat() (float64, bool) {
	return c.f, c.kind == KindFloat
}

func (c Cell) AsString() (string, bool) {
	return c.s, c.kind == KindString
}

// AsTimestamp returns milliseconds since the Unix epoch.
func (c Cell) AsTimestamp() (int64, bool) {
	return c.i, c.kind == KindTimestamp
}

func (c Cell) AsJSON() (string, bool) {
	return c.s, c.kind == KindJSON
}

// Value returns the payload as a plain Go value: nil, bool, int64, float64 or
// string. Timestamps come back as int64 milliseconds.
func (c Cell) Value() any {
	switch c.kind {
	case KindBool:
		return c.b
	case KindInt, KindTimestamp:
		return c.i
	case KindFloat:
		return c.f
	case KindString, KindJSON:
		return c.s
	default:
		return nil
	}
}

// GoString renders the cell for debugging and test failure output.
func (c Cell) GoString() string {
	switch c.kind {
	case KindNull:
		return "Null"
	case KindString, KindJSON:
		return fmt.Sprintf("%s(%q)", c.kind, c.s)
	default:
		return fmt.Sprintf("%s(%v)", c.kind, c.Value())
	}
}
