package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/koustreak/fdw/internal/config"
	"github.com/koustreak/fdw/internal/fdw"
)

// rowWriter renders produced rows. Timestamps are printed as RFC 3339 in UTC.
type rowWriter interface {
	WriteHeader(cols []fdw.Column) error
	WriteRow(cols []fdw.Column, row *fdw.Row) error
	Flush() error
}

func newRowWriter(format string, w io.Writer) rowWriter {
	if format == config.OutputCSV {
		return &csvWriter{w: csv.NewWriter(w)}
	}
	return &jsonWriter{stream: jsoniter.NewStream(jsoniter.ConfigDefault, w, 4096)}
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

// jsonWriter prints one object per line with keys in column order. Json
// cells are embedded as JSON, not as strings.
type jsonWriter struct {
	stream *jsoniter.Stream
}

func (j *jsonWriter) WriteHeader([]fdw.Column) error { return nil }

func (j *jsonWriter) WriteRow(cols []fdw.Column, row *fdw.Row) error {
	s := j.stream
	s.WriteObjectStart()
	for i, cell := range row.Cells() {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(cols[i].Name())
		switch cell.Kind() {
		case fdw.KindBool:
			v, _ := cell.AsBool()
			s.WriteBool(v)
		case fdw.KindInt:
			v, _ := cell.AsInt()
			s.WriteInt64(v)
		case fdw.KindFloat:
			v, _ := cell.AsFloat()
			s.WriteFloat64(v)
		case fdw.KindString:
			v, _ := cell.AsString()
			s.WriteString(v)
		case fdw.KindTimestamp:
			v, _ := cell.AsTimestamp()
			s.WriteString(formatTimestamp(v))
		case fdw.KindJSON:
			v, _ := cell.AsJSON()
			s.WriteRaw(v)
		default:
			s.WriteNil()
		}
	}
	s.WriteObjectEnd()
	s.WriteRaw("\n")
	if s.Buffered() >= 4096 {
		return s.Flush()
	}
	return s.Error
}

func (j *jsonWriter) Flush() error { return j.stream.Flush() }

// csvWriter prints a header row, then one record per row. Null is an empty
// field.
type csvWriter struct {
	w *csv.Writer
}

func (c *csvWriter) WriteHeader(cols []fdw.Column) error {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name()
	}
	return c.w.Write(names)
}

func (c *csvWriter) WriteRow(_ []fdw.Column, row *fdw.Row) error {
	cells := row.Cells()
	fields := make([]string, len(cells))
	for i, cell := range cells {
		switch cell.Kind() {
		case fdw.KindBool:
			v, _ := cell.AsBool()
			fields[i] = strconv.FormatBool(v)
		case fdw.KindInt:
			v, _ := cell.AsInt()
			fields[i] = strconv.FormatInt(v, 10)
		case fdw.KindFloat:
			v, _ := cell.AsFloat()
			fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
		case fdw.KindString:
			fields[i], _ = cell.AsString()
		case fdw.KindTimestamp:
			v, _ := cell.AsTimestamp()
			fields[i] = formatTimestamp(v)
		case fdw.KindJSON:
			fields[i], _ = cell.AsJSON()
		}
	}
	return c.w.Write(fields)
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}
