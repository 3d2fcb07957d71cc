package sqltable

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/fdw/internal/database"
	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
)

// ImportColumns derives a column schema from the table definition. Columns
// whose SQL type has no cell equivalent are returned in skipped.
func ImportColumns(ctx context.Context, db database.DB, table string) (cols []fdw.Column, skipped []string, err error) {
	infos, err := db.TableColumns(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	if len(infos) == 0 {
		return nil, nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %s has no visible columns", table))
	}

	for _, info := range infos {
		typ, ok := MapDataType(info.DataType)
		if !ok {
			skipped = append(skipped, info.Name)
			continue
		}
		cols = append(cols, fdw.NewColumn(info.Name, typ))
	}
	return cols, skipped, nil
}

// MapDataType maps an information_schema data_type from either engine onto
// a column type.
func MapDataType(dataType string) (fdw.ColumnType, bool) {
	t := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case t == "boolean" || t == "bool":
		return fdw.TypeBool, true
	case t == "smallint", t == "integer", t == "bigint", t == "int", t == "tinyint",
		t == "mediumint", t == "year":
		return fdw.TypeInt, true
	case t == "real", t == "float", t == "double", t == "double precision",
		t == "numeric", t == "decimal":
		return fdw.TypeFloat, true
	case strings.HasPrefix(t, "timestamp"), t == "datetime", t == "date":
		return fdw.TypeTimestamp, true
	case t == "json", t == "jsonb":
		return fdw.TypeJSON, true
	case strings.Contains(t, "char"), strings.HasSuffix(t, "text"),
		t == "uuid", t == "enum", t == "set", t == "name", t == "citext":
		return fdw.TypeString, true
	}
	return 0, false
}
