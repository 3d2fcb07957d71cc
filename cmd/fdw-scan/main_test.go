package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/mockapi"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const staticConfig = `
log: {level: error}
source: static
columns:
  - {name: id, type: string}
  - {name: actor, type: json}
  - {name: public, type: bool}
  - {name: created_at, type: timestamp}
`

func TestRun_StaticJSON(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), writeConfig(t, staticConfig), "", false, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t,
		`{"id":"12345","actor":{"login":"user1","id":1001},"public":true,"created_at":"2023-01-01T00:00:00Z"}`,
		lines[0])
	assert.Contains(t, lines[4], `"id":"12349"`)
}

func TestRun_CSVWithRescan(t *testing.T) {
	cfg := `
log: {level: error}
columns:
  - {name: id, type: string}
  - {name: public, type: bool}
`
	var out bytes.Buffer
	err := run(context.Background(), writeConfig(t, cfg), "csv", true, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 11, "header plus two passes")
	assert.Equal(t, "id,public", lines[0])
	assert.Equal(t, "12345,true", lines[1])
	assert.Equal(t, lines[1], lines[6], "rescan replays from the first row")
}

func TestRun_HTTPJSON(t *testing.T) {
	srv := httptest.NewServer(mockapi.New(mockapi.WithAPIKey("secret")).Router())
	defer srv.Close()

	cfg := `
log: {level: error}
source: httpjson
server:
  api_url: ` + srv.URL + `
  api_key: secret
table:
  object: events
columns:
  - {name: id, type: string}
  - {name: type, type: text}
`
	var out bytes.Buffer
	err := run(context.Background(), writeConfig(t, cfg), "", false, &out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), `{"id":"12345","type":"PushEvent"}`+"\n"))
}

func TestRun_Errors(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		err := run(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), "", false, &bytes.Buffer{})
		assert.True(t, errs.IsInvalidInput(err))
	})

	t.Run("bad output override", func(t *testing.T) {
		err := run(context.Background(), writeConfig(t, staticConfig), "xml", false, &bytes.Buffer{})
		assert.True(t, errs.IsInvalidInput(err))
	})

	t.Run("unknown field", func(t *testing.T) {
		cfg := "log: {level: error}\ncolumns: [{name: stars, type: int}]"
		var out bytes.Buffer
		err := run(context.Background(), writeConfig(t, cfg), "", false, &out)
		require.Error(t, err)
		assert.True(t, errs.IsUnknownField(err))
		assert.Contains(t, err.Error(), "row 1")
	})

	t.Run("missing object", func(t *testing.T) {
		cfg := "log: {level: error}\nsource: httpjson\nserver: {api_url: \"http://127.0.0.1:1\"}\ncolumns: [{name: id, type: string}]"
		err := run(context.Background(), writeConfig(t, cfg), "", false, &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, errs.IsMissingOption(err))
	})
}
