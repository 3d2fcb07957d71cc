package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/scan"
	"github.com/koustreak/fdw/internal/source"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func load(t *testing.T, table map[string]string) ([]source.Record, error) {
	t.Helper()
	return New(nil).Load(context.Background(), source.Params{
		Server: fdw.NewOptions(nil),
		Table:  fdw.NewOptions(table),
	})
}

func TestLoad_CSVByExtension(t *testing.T) {
	path := writeFile(t, "events.csv", "id,public\n12345,true\n12346,\n")

	records, err := load(t, map[string]string{"path": path})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, source.Text("12345"), records[0]["id"])
	assert.Nil(t, records[1]["public"])
}

func TestLoad_FormatOverridesExtension(t *testing.T) {
	path := writeFile(t, "events.txt", `[{"id":"12345"}]`)

	records, err := load(t, map[string]string{"path": path, "format": "json"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "12345", records[0]["id"])
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, "bad.json", `{"id":1}`)

	tests := []struct {
		name  string
		table map[string]string
		check func(error) bool
	}{
		{"missing path", nil, errs.IsMissingOption},
		{"bad format", map[string]string{"path": bad, "format": "xml"}, errs.IsInvalidInput},
		{"missing file", map[string]string{"path": filepath.Join(dir, "none.json")}, errs.IsFetchFailed},
		{"not an array", map[string]string{"path": bad}, errs.IsParseFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.table)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestEngine_CSVFileTyped(t *testing.T) {
	path := writeFile(t, "events.csv",
		"id,count,score,public,created_at,payload\n"+
			"12345,3,0.5,true,2023-01-01T00:00:00Z,\"{\"\"size\"\":1}\"\n")

	ctx := context.Background()
	cols := []fdw.Column{
		fdw.NewColumn("id", fdw.TypeString),
		fdw.NewColumn("count", fdw.TypeInt),
		fdw.NewColumn("score", fdw.TypeFloat),
		fdw.NewColumn("public", fdw.TypeBool),
		fdw.NewColumn("created_at", fdw.TypeTimestamp),
		fdw.NewColumn("payload", fdw.TypeJSON),
	}
	c := fdw.NewContext(cols, fdw.NewOptions(nil), fdw.NewOptions(map[string]string{"path": path}))

	e := scan.New(New(nil))
	require.NoError(t, e.Init(ctx, c))
	require.NoError(t, e.BeginScan(ctx, c))

	row, ok, err := e.IterScan(ctx, c)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{"12345", int64(3), 0.5, true, int64(1672531200000), `{"size":1}`}, row.Values())

	_, ok, err = e.IterScan(ctx, c)
	require.NoError(t, err)
	assert.False(t, ok)
}
