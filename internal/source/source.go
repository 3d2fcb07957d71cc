// Package source defines the contract every backing data store implements to
// feed the scan engine: load the full record set for one scan session, and
// extract a named field from a record.
//
// Variants live in subpackages (static, httpjson, file, object, sqltable).
// Callers depend only on this package.
package source

import (
	"context"

	"github.com/koustreak/fdw/internal/fdw"
)

// Record is one raw unit from the backing store: named fields holding plain
// Go values (bool, integer and float kinds, json.Number, string,
// json.RawMessage, map[string]any, []any, time.Time or nil).
type Record map[string]any

// Params carries everything a source may need to load. BaseURL is the
// server-level address resolved by the engine during init.
type Params struct {
	BaseURL string
	Server  fdw.Options
	Table   fdw.Options
}

// Source is the single interface all backing stores implement.
type Source interface {
	// Name identifies the variant in logs, e.g. "httpjson".
	Name() string

	// Load materialises the ordered record set for one scan session.
	// Failures are *errs.Error of kind FetchFailed, ParseFailed,
	// MissingOption or InvalidInput.
	Load(ctx context.Context, p Params) ([]Record, error)

	// Field returns the raw value of the named field, or false if the
	// record has no such field.
	Field(rec Record, name string) (any, bool)
}

// MapFields implements Source.Field for flat records. Embed it in sources
// whose field names map one to one onto column names.
type MapFields struct{}

func (MapFields) Field(rec Record, name string) (any, bool) {
	v, ok := rec[name]
	return v, ok
}

// Text is an untyped literal from a schemaless store: a CSV cell, or a byte
// column from a SQL driver's text protocol. Unlike a plain string it carries
// no type of its own, so it converts to any declared column type whose
// lexical form it matches ("true" → bool, "42" → int, RFC-3339 → timestamp,
// object/array literal → json).
type Text string
