package fdw

import (
	"fmt"
	"strings"
)

// ColumnType is the type the host declares for a column. Values outside the
// declared constants can reach the adapter from a misbehaving host and are
// rejected at conversion time.
type ColumnType int

const (
	TypeBool ColumnType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeTimestamp
	TypeJSON
)

func (t ColumnType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeTimestamp:
		return "timestamp"
	case TypeJSON:
		return "json"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Kind returns the cell variant a column of this type produces.
func (t ColumnType) Kind() (Kind, bool) {
	switch t {
	case TypeBool:
		return KindBool, true
	case TypeInt:
		return KindInt, true
	case TypeFloat:
		return KindFloat, true
	case TypeString:
		return KindString, true
	case TypeTimestamp:
		return KindTimestamp, true
	case TypeJSON:
		return KindJSON, true
	default:
		return KindNull, false
	}
}

// ParseColumnType accepts the type names used in table definitions,
// including the common Postgres spellings.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return TypeBool, nil
	case "int", "integer", "bigint", "int8":
		return TypeInt, nil
	case "float", "double", "double precision", "float8", "numeric":
		return TypeFloat, nil
	case "string", "text", "varchar":
		return TypeString, nil
	case "timestamp", "timestamptz":
		return TypeTimestamp, nil
	case "json", "jsonb":
		return TypeJSON, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}

// Column is an immutable (name, declared type) pair.
type Column struct {
	name string
	typ  ColumnType
}

func NewColumn(name string, typ ColumnType) Column {
	return Column{name: name, typ: typ}
}

func (c Column) Name() string     { return c.name }
func (c Column) Type() ColumnType { return c.typ }
