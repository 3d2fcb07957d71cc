// Package database is the read-only SQL layer behind the sqltable source.
// Drivers live in the postgres and mysql subpackages; callers above this
// package talk only to DB.
package database

import "context"

// DB is the contract every SQL driver implements.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// TableExists reports whether a base table with the given name is
	// visible in the connection's current schema.
	TableExists(ctx context.Context, table string) (bool, error)

	// TableColumns lists a table's columns in ordinal order.
	TableColumns(ctx context.Context, table string) ([]ColumnInfo, error)

	// Dialect is the placeholder and quoting style the driver expects.
	Dialect() Dialect
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
