package mockapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
	"github.com/koustreak/fdw/internal/source/decode"
)

func get(t *testing.T, h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Events(t *testing.T) {
	rec := get(t, New().Router(), "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	records, err := decode.JSONArrayBytes(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "12345", records[0]["id"])
	assert.Equal(t, "ForkEvent", records[4]["type"])
}

func TestRouter_CustomObject(t *testing.T) {
	h := New(WithObject("users", []source.Record{{"login": "octocat"}})).Router()

	rec := get(t, h, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"login":"octocat"}]`, rec.Body.String())
}

func TestRouter_UnknownObject(t *testing.T) {
	rec := get(t, New().Router(), "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RequestScopedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Output: buf})

	rec := get(t, New(WithLogger(log)).Router(), "/nope?page=2", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "unknown object nope")
	assert.Contains(t, out, `"request_id"`, "handler logs carry the request id")
	assert.Contains(t, out, `"query":{"page":["2"]}`)
	assert.Contains(t, out, "request served")
}

func TestRouter_RejectedKeyIsLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "warn", Format: "json", Output: buf})

	rec := get(t, New(WithAPIKey("k"), WithLogger(log)).Router(), "/events", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), "valid bearer token")
}

func TestRouter_Broken(t *testing.T) {
	rec := get(t, New().Router(), "/"+BrokenObject, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := decode.JSONArrayBytes(rec.Body.Bytes())
	assert.True(t, errs.IsParseFailed(err))
}

func TestRouter_APIKey(t *testing.T) {
	h := New(WithAPIKey("k")).Router()

	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/events", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/events", map[string]string{"Authorization": "Bearer x"}).Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/events", map[string]string{"Authorization": "Bearer k"}).Code)
}
