package host

import (
	"context"
	"testing"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/scan"
	"github.com/koustreak/fdw/internal/source/static"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventColumns() []fdw.Column {
	return []fdw.Column{
		fdw.NewColumn("id", fdw.TypeString),
		fdw.NewColumn("type", fdw.TypeString),
		fdw.NewColumn("actor", fdw.TypeJSON),
		fdw.NewColumn("repo", fdw.TypeJSON),
		fdw.NewColumn("payload", fdw.TypeJSON),
		fdw.NewColumn("public", fdw.TypeBool),
		fdw.NewColumn("created_at", fdw.TypeTimestamp),
	}
}

func newAdapter() (*Adapter, *fdw.Context) {
	c := fdw.NewContext(eventColumns(), fdw.NewOptions(nil), fdw.NewOptions(nil))
	return New(context.Background(), scan.New(static.New())), c
}

func TestAdapter_VersionRequirement(t *testing.T) {
	a, _ := newAdapter()
	assert.Equal(t, "^0.1.0", a.HostVersionRequirement())
}

func TestAdapter_FullScan(t *testing.T) {
	a, c := newAdapter()

	require.False(t, a.Init(c).Failed())
	require.False(t, a.BeginScan(c).Failed())

	var ids []string
	for i := 0; i < 5; i++ {
		row := fdw.NewRow(len(c.Columns()))
		res := a.IterScan(c, row)
		require.Equal(t, RowProduced, res.Status, res.Message())
		require.Equal(t, 7, row.Len())

		id, err := row.Get(0)
		require.NoError(t, err)
		s, ok := id.AsString()
		require.True(t, ok)
		ids = append(ids, s)
	}
	assert.Equal(t, []string{"12345", "12346", "12347", "12348", "12349"}, ids)

	for i := 0; i < 3; i++ {
		row := fdw.NewRow(0)
		res := a.IterScan(c, row)
		assert.Equal(t, NoMoreRows, res.Status)
		assert.Empty(t, res.Message())
		assert.Equal(t, 0, row.Len())
	}

	assert.False(t, a.EndScan(c).Failed())
	assert.Equal(t, scan.StateEnded, a.Engine().State())
}

func TestAdapter_ReScanReplaysFirstRow(t *testing.T) {
	a, c := newAdapter()
	require.False(t, a.Init(c).Failed())
	require.False(t, a.BeginScan(c).Failed())

	first := fdw.NewRow(7)
	require.Equal(t, RowProduced, a.IterScan(c, first).Status)
	require.Equal(t, RowProduced, a.IterScan(c, fdw.NewRow(7)).Status)

	require.False(t, a.ReScan(c).Failed())

	again := fdw.NewRow(7)
	require.Equal(t, RowProduced, a.IterScan(c, again).Status)
	assert.Equal(t, first.Cells(), again.Cells())
}

func TestAdapter_IterErrorLeavesRowEmpty(t *testing.T) {
	a, _ := newAdapter()
	c := fdw.NewContext(
		[]fdw.Column{fdw.NewColumn("id", fdw.TypeString), fdw.NewColumn("idd", fdw.TypeString)},
		fdw.NewOptions(nil), fdw.NewOptions(nil),
	)
	require.False(t, a.Init(c).Failed())
	require.False(t, a.BeginScan(c).Failed())

	row := fdw.NewRow(2)
	res := a.IterScan(c, row)
	assert.Equal(t, IterError, res.Status)
	assert.True(t, errs.IsUnknownField(res.Err))
	assert.Contains(t, res.Message(), "idd")
	assert.Equal(t, 0, row.Len())
}

func TestAdapter_NilArguments(t *testing.T) {
	a, c := newAdapter()
	require.False(t, a.Init(c).Failed())
	require.False(t, a.BeginScan(c).Failed())

	res := a.IterScan(c, nil)
	assert.Equal(t, IterError, res.Status)
	assert.True(t, errs.IsInvalidInput(res.Err))

	res = a.IterScan(nil, fdw.NewRow(0))
	assert.Equal(t, IterError, res.Status)
	assert.True(t, errs.IsInvalidInput(res.Err))

	// Neither call consumed a record.
	row := fdw.NewRow(7)
	require.Equal(t, RowProduced, a.IterScan(c, row).Status)
	id, err := row.Get(0)
	require.NoError(t, err)
	assert.Equal(t, fdw.String("12345"), id)
}

func TestAdapter_WriteCallbacks(t *testing.T) {
	a, c := newAdapter()
	row := fdw.NewRow(0)

	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"begin_modify", a.BeginModify(c), "modify on foreign table is not supported"},
		{"insert", a.Insert(c, row), "insert on foreign table is not supported"},
		{"update", a.Update(c, fdw.String("12345"), row), "update on foreign table is not supported"},
		{"delete", a.Delete(c, fdw.String("12345")), "delete on foreign table is not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.res.Failed())
			assert.Equal(t, errs.ErrKindUnsupportedOperation, tt.res.Kind())
			assert.Equal(t, tt.want, tt.res.Message())
		})
	}

	end := a.EndModify(c)
	assert.False(t, end.Failed())
	assert.Empty(t, end.Message())
	assert.Equal(t, scan.StateIdle, a.Engine().State())
}

func TestAdapter_InitFailureMessage(t *testing.T) {
	a, _ := newAdapter()
	c := fdw.NewContext(eventColumns(), fdw.NewOptions(map[string]string{"api_url": "ftp://example.com"}), fdw.NewOptions(nil))

	res := a.Init(c)
	require.True(t, res.Failed())
	assert.Equal(t, errs.ErrKindInvalidInput, res.Kind())
	assert.NotEmpty(t, res.Message())
}

func TestIterStatus_String(t *testing.T) {
	assert.Equal(t, "row_produced", RowProduced.String())
	assert.Equal(t, "no_more_rows", NoMoreRows.String())
	assert.Equal(t, "error", IterError.String())
}
