package sqltable

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/fdw/internal/database"
	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/scan"
	"github.com/koustreak/fdw/internal/source"
)

type fakeRows struct {
	cols []string
	data [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, v := range r.data[r.idx-1] {
		*(dest[i].(*any)) = v
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return nil }

type fakeDB struct {
	dialect  database.Dialect
	tables   map[string]*fakeRows
	columns  map[string][]database.ColumnInfo
	queryErr error
	queries  []string
	args     [][]any
	deadline bool
}

func (d *fakeDB) Ping(context.Context) error { return nil }
func (d *fakeDB) Close()                     {}
func (d *fakeDB) Dialect() database.Dialect  { return d.dialect }

func (d *fakeDB) TableExists(_ context.Context, table string) (bool, error) {
	_, ok := d.tables[table]
	return ok, nil
}

func (d *fakeDB) TableColumns(_ context.Context, table string) ([]database.ColumnInfo, error) {
	return d.columns[table], nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	_, d.deadline = ctx.Deadline()
	d.queries = append(d.queries, sql)
	d.args = append(d.args, args)
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	for name, rows := range d.tables {
		if strings.Contains(sql, name) {
			rows.idx = 0
			return rows, nil
		}
	}
	return nil, errors.New("unexpected query " + sql)
}

func eventsDB() *fakeDB {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeDB{
		tables: map[string]*fakeRows{
			"events": {
				cols: []string{"id", "type", "public", "created_at", "payload", "score"},
				data: [][]any{
					{[]byte("12345"), "PushEvent", true, created, map[string]any{"size": float64(1)}, pgtype.Numeric{Int: big.NewInt(25), Exp: -1, Valid: true}},
					{[]byte("12346"), "WatchEvent", nil, created.Add(24 * time.Hour), nil, pgtype.Numeric{}},
				},
			},
		},
	}
}

func params(table map[string]string) source.Params {
	return source.Params{Server: fdw.NewOptions(nil), Table: fdw.NewOptions(table)}
}

func TestLoad(t *testing.T) {
	db := eventsDB()
	records, err := New(db, time.Second, nil).Load(context.Background(), params(map[string]string{"object": "events"}))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, source.Text("12345"), records[0]["id"])
	assert.Equal(t, 2.5, records[0]["score"])
	assert.Nil(t, records[1]["score"])
	assert.Nil(t, records[1]["public"])
	assert.Equal(t, []string{`SELECT * FROM "events"`}, db.queries)
	assert.True(t, db.deadline)
}

func TestLoad_OrderAndLimit(t *testing.T) {
	db := eventsDB()
	db.dialect = database.DialectMySQL

	_, err := New(db, 0, nil).Load(context.Background(), params(map[string]string{
		"object":   "events",
		"order_by": "created_at DESC",
		"limit":    "10",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM `events` ORDER BY `created_at` DESC LIMIT ?"}, db.queries)
	assert.Equal(t, []any{10}, db.args[0])
	assert.False(t, db.deadline)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		db    *fakeDB
		table map[string]string
		check func(error) bool
	}{
		{"missing object", eventsDB(), nil, errs.IsMissingOption},
		{"bad limit", eventsDB(), map[string]string{"object": "events", "limit": "ten"}, errs.IsInvalidInput},
		{"negative limit", eventsDB(), map[string]string{"object": "events", "limit": "-1"}, errs.IsInvalidInput},
		{"bad order", eventsDB(), map[string]string{"object": "events", "order_by": "a b c"}, errs.IsInvalidInput},
		{"no such table", eventsDB(), map[string]string{"object": "nope"}, errs.IsFetchFailed},
		{"query failure", &fakeDB{tables: map[string]*fakeRows{"events": {}}, queryErr: errs.New(errs.ErrKindQueryFailed, "boom")},
			map[string]string{"object": "events"}, errs.IsFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.db, 0, nil).Load(context.Background(), params(tt.table))
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestEngine_SQLTable(t *testing.T) {
	ctx := context.Background()
	cols := []fdw.Column{
		fdw.NewColumn("id", fdw.TypeInt),
		fdw.NewColumn("public", fdw.TypeBool),
		fdw.NewColumn("created_at", fdw.TypeTimestamp),
		fdw.NewColumn("payload", fdw.TypeJSON),
		fdw.NewColumn("score", fdw.TypeFloat),
	}
	c := fdw.NewContext(cols, fdw.NewOptions(nil), fdw.NewOptions(map[string]string{"object": "events"}))

	e := scan.New(New(eventsDB(), 0, nil))
	require.NoError(t, e.Init(ctx, c))
	require.NoError(t, e.BeginScan(ctx, c))

	row, ok, err := e.IterScan(ctx, c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int64(12345), true, int64(1672531200000), `{"size":1}`, 2.5}, row.Values())

	row, ok, err = e.IterScan(ctx, c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{int64(12346), nil, int64(1672617600000), nil, nil}, row.Values())
}

func TestMapDataType(t *testing.T) {
	tests := map[string]fdw.ColumnType{
		"boolean":                  fdw.TypeBool,
		"integer":                  fdw.TypeInt,
		"bigint":                   fdw.TypeInt,
		"tinyint":                  fdw.TypeInt,
		"numeric":                  fdw.TypeFloat,
		"double precision":         fdw.TypeFloat,
		"timestamp with time zone": fdw.TypeTimestamp,
		"datetime":                 fdw.TypeTimestamp,
		"jsonb":                    fdw.TypeJSON,
		"character varying":        fdw.TypeString,
		"varchar":                  fdw.TypeString,
		"longtext":                 fdw.TypeString,
		"uuid":                     fdw.TypeString,
	}
	for in, want := range tests {
		got, ok := MapDataType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"interval", "point", "bytea", "blob"} {
		_, ok := MapDataType(in)
		assert.False(t, ok, in)
	}
}

func TestImportColumns(t *testing.T) {
	db := &fakeDB{columns: map[string][]database.ColumnInfo{
		"events": {
			{Name: "id", DataType: "bigint"},
			{Name: "raw", DataType: "bytea"},
			{Name: "created_at", DataType: "timestamp with time zone"},
		},
	}}

	cols, skipped, err := ImportColumns(context.Background(), db, "events")
	require.NoError(t, err)
	assert.Equal(t, []fdw.Column{
		fdw.NewColumn("id", fdw.TypeInt),
		fdw.NewColumn("created_at", fdw.TypeTimestamp),
	}, cols)
	assert.Equal(t, []string{"raw"}, skipped)

	_, _, err = ImportColumns(context.Background(), db, "missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestNormalize_UUID(t *testing.T) {
	id := [16]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", normalize(id))
}
