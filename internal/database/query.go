package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/fdw/internal/errs"
)

// Dialect controls placeholder and identifier quoting style.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double quoted" identifiers.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backtick` identifiers.
	DialectMySQL
)

// SelectBuilder constructs a parameterized SELECT for a whole-table scan.
// Values are never interpolated into the SQL string; they are always passed as args.
// It always selects every column; there is no WHERE support either.
// Projection and predicates stay with the host.
//
// Usage (Postgres):
//
//	sql, args, err := Select("events", DialectPostgres).
//	    OrderBy("created_at", Asc).
//	    Limit(100).
//	    Build()
type SelectBuilder struct {
	table   string
	dialect Dialect
	orderBy []orderClause
	limit   *int
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

type orderClause struct {
	column string
	dir    SortDirection
}

// Select starts a new SelectBuilder for the given table and dialect.
func Select(table string, d Dialect) *SelectBuilder {
	return &SelectBuilder{table: table, dialect: d}
}

// OrderBy appends an ORDER BY clause for the given column and direction.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.orderBy = append(b.orderBy, orderClause{column, dir})
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// Build produces the final SQL string and argument slice.
func (b *SelectBuilder) Build() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "table name is empty")
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(b.quoteIdent(b.table))

	var args []any

	if len(b.orderBy) > 0 {
		parts := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s %s", b.quoteIdent(o.column), dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if b.limit != nil {
		if *b.limit < 0 {
			return "", nil, errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("limit must not be negative, got %d", *b.limit))
		}
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.placeholder(len(args) + 1))
		args = append(args, *b.limit)
	}

	return sb.String(), args, nil
}

// placeholder returns the correct parameter placeholder for the dialect.
// Postgres: $1, $2, …   MySQL: ? (index is ignored)
func (b *SelectBuilder) placeholder(idx int) string {
	if b.dialect == DialectMySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", idx)
}

// quoteIdent quotes a possibly schema-qualified identifier. Each dot-separated
// part is quoted on its own, with embedded quote characters doubled.
func (b *SelectBuilder) quoteIdent(name string) string {
	q := `"`
	if b.dialect == DialectMySQL {
		q = "`"
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}
