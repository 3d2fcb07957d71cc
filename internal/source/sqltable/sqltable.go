// Package sqltable loads records from a table in PostgreSQL or MySQL.
// The whole table (optionally ordered and limited) is read once per scan.
package sqltable

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/koustreak/fdw/internal/database"
	"github.com/koustreak/fdw/internal/database/mysql"
	"github.com/koustreak/fdw/internal/database/postgres"
	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
)

const (
	// OptionObject names the table to read, optionally schema qualified.
	OptionObject = "object"

	// OptionLimit caps the rows read.
	OptionLimit = "limit"

	// OptionOrderBy is "column" or "column desc".
	OptionOrderBy = "order_by"
)

// Connect opens the driver cfg names.
func Connect(ctx context.Context, cfg *database.Config) (database.DB, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		return postgres.New(ctx, cfg)
	case database.DriverMySQL:
		return mysql.New(ctx, cfg)
	}
	return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database driver %q", cfg.Driver))
}

type Source struct {
	source.MapFields
	db      database.DB
	timeout time.Duration
	log     *logger.Logger
}

// New reads through db. A positive timeout bounds each load.
func New(db database.DB, timeout time.Duration, log *logger.Logger) *Source {
	if log == nil {
		log = logger.Nop()
	}
	return &Source{db: db, timeout: timeout, log: log}
}

func (*Source) Name() string { return "sqltable" }

func (s *Source) Load(ctx context.Context, p source.Params) ([]source.Record, error) {
	table, err := p.Table.Require(OptionObject)
	if err != nil {
		return nil, err
	}

	query, args, err := s.buildQuery(table, p)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	exists, err := s.db.TableExists(ctx, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("failed to check table %s", table), err)
	}
	if !exists {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("table %s", table),
			errs.New(errs.ErrKindNotFound, "table does not exist"))
	}

	s.log.Debugf("running %s", query)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("failed to read table %s", table), err)
	}
	maps, err := database.ScanRows(rows)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, fmt.Sprintf("failed to read table %s", table), err)
	}

	records := make([]source.Record, len(maps))
	for i, m := range maps {
		for k, v := range m {
			m[k] = normalize(v)
		}
		records[i] = source.Record(m)
	}

	s.log.ReportInfo(fmt.Sprintf("read %d records from table %s", len(records), table))
	return records, nil
}

func (s *Source) buildQuery(table string, p source.Params) (string, []any, error) {
	b := database.Select(table, s.db.Dialect())

	if v, ok := p.Table.Get(OptionOrderBy); ok && v != "" {
		fields := strings.Fields(v)
		dir := database.Asc
		switch {
		case len(fields) == 2 && strings.EqualFold(fields[1], "desc"):
			dir = database.Desc
		case len(fields) == 2 && strings.EqualFold(fields[1], "asc"):
		case len(fields) != 1:
			return "", nil, errs.InvalidOption(OptionOrderBy, v, nil)
		}
		b.OrderBy(fields[0], dir)
	}

	if v, ok := p.Table.Get(OptionLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return "", nil, errs.InvalidOption(OptionLimit, v, err)
		}
		b.Limit(n)
	}

	return b.Build()
}

// normalize maps driver values the column converter does not know onto
// ones it does.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return source.Text(t)
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return v
		}
		return f.Float64
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", t[0:4], t[4:6], t[6:8], t[8:10], t[10:16])
	}
	return v
}
