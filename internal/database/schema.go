package database

import "strings"

// ColumnInfo describes one table column as reported by information_schema.
type ColumnInfo struct {
	Name     string
	DataType string // engine spelling, e.g. "timestamp with time zone", "varchar"
	Nullable bool
}

// SplitTableName separates an optional schema qualifier from a table name:
// "public.events" gives ("public", "events"), "events" gives ("", "events").
// An empty schema means the connection's current schema.
func SplitTableName(name string) (schema, table string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
