// Package decode turns raw source bodies (JSON arrays, CSV tables) into
// source records.
package decode

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/source"
)

// Format selects a decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat resolves a format option, falling back to the extension of name
// when value is empty.
func ParseFormat(value, name string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		switch {
		case strings.HasSuffix(strings.ToLower(name), ".csv"):
			return FormatCSV, nil
		default:
			return FormatJSON, nil
		}
	}
	switch Format(v) {
	case FormatJSON, FormatCSV:
		return Format(v), nil
	}
	return "", errs.InvalidOption("format", value, nil)
}

// Decode dispatches on f.
func Decode(f Format, r io.Reader) ([]source.Record, error) {
	if f == FormatCSV {
		return CSV(r)
	}
	return JSONArray(r)
}

// jsonAPI keeps numbers as json.Number so integral and fractional values
// stay distinguishable for column conversion.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// JSONArray parses a body that must be a JSON array of objects.
func JSONArray(r io.Reader) ([]source.Record, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindFetchFailed, "failed to read body", err)
	}
	return JSONArrayBytes(body)
}

func JSONArrayBytes(body []byte) ([]source.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errs.New(errs.ErrKindParseFailed, "body is not a JSON array")
	}

	var items []any
	if err := jsonAPI.Unmarshal(trimmed, &items); err != nil {
		return nil, errs.Wrap(errs.ErrKindParseFailed, "body is not a JSON array", err)
	}

	records := make([]source.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errs.New(errs.ErrKindParseFailed,
				fmt.Sprintf("array element %d is %s, not an object", i, describe(item)))
		}
		records = append(records, source.Record(obj))
	}
	return records, nil
}

// CSV parses a table with a header row. Cells become source.Text so the
// declared column types decide how they are read; empty cells become nil.
func CSV(r io.Reader) ([]source.Record, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []source.Record{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindParseFailed, "failed to read CSV header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]source.Record, 0)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindParseFailed, "malformed CSV record", err)
		}

		rec := make(source.Record, len(header))
		for i, name := range header {
			if fields[i] == "" {
				rec[name] = nil
				continue
			}
			rec[name] = source.Text(fields[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case []any:
		return "an array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
