package main

import (
	"context"
	"strings"

	"github.com/koustreak/fdw/internal/config"
	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/filestore/minio"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
	"github.com/koustreak/fdw/internal/source/file"
	"github.com/koustreak/fdw/internal/source/httpjson"
	"github.com/koustreak/fdw/internal/source/object"
	"github.com/koustreak/fdw/internal/source/sqltable"
	"github.com/koustreak/fdw/internal/source/static"
)

// backend is an opened source plus the columns to request from it.
type backend struct {
	src     source.Source
	columns []fdw.Column
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	b := &backend{columns: cfg.FDWColumns(), close: func() {}}

	switch cfg.Source {
	case config.SourceStatic:
		b.src = static.New()

	case config.SourceHTTPJSON:
		b.src = httpjson.New(
			httpjson.WithClient(httpjson.NewHTTPClient(cfg.HTTP.Timeout)),
			httpjson.WithLogger(log),
		)

	case config.SourceFile:
		b.src = file.New(log)

	case config.SourceObject:
		store, err := minio.New(ctx, cfg.Filestore)
		if err != nil {
			return nil, err
		}
		b.src = object.New(store, cfg.Filestore.DefaultBucket, log)
		b.close = func() { _ = store.Close() }

	case config.SourceSQLTable:
		db, err := sqltable.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.close = db.Close
		b.src = sqltable.New(db, cfg.Database.WithDefaults().QueryTimeout, log)

		if len(b.columns) == 0 {
			table, err := fdw.NewOptions(cfg.Table).Require(sqltable.OptionObject)
			if err != nil {
				db.Close()
				return nil, err
			}
			cols, skipped, err := sqltable.ImportColumns(ctx, db, table)
			if err != nil {
				db.Close()
				return nil, err
			}
			if len(skipped) > 0 {
				log.Warnf("skipping columns with no cell type: %s", strings.Join(skipped, ", "))
			}
			b.columns = cols
		}

	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unknown source "+cfg.Source)
	}

	return b, nil
}
