// Package scan drives a source through the host's scan lifecycle and turns
// each source record into a typed row.
//
// Lifecycle:
//
//	Idle --Init--> Initialized --BeginScan--> Scanning --(cursor at end)--> Exhausted
//	Scanning/Exhausted --ReScan--> Scanning (cursor 0, same records)
//	any --EndScan--> Ended (records released); Ended --BeginScan--> Scanning
//
// The engine is not safe for concurrent use. Hosts issue one callback at a
// time and wait for it to return.
package scan

import (
	"context"
	"fmt"
	"net/url"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/logger"
	"github.com/koustreak/fdw/internal/source"
)

const (
	// OptionAPIURL is the server option naming the source's base address.
	OptionAPIURL = "api_url"

	// DefaultAPIURL is used when the server declares no api_url.
	DefaultAPIURL = "https://api.github.com"

	// OptionRowIDColumn names the table column a write path would key on.
	// It is resolved and logged; modification itself is unsupported.
	OptionRowIDColumn = "rowid_column"
)

// State is the engine's position in the scan lifecycle.
type State int

const (
	StateIdle State = iota
	StateInitialized
	StateScanning
	StateExhausted
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitialized:
		return "initialized"
	case StateScanning:
		return "scanning"
	case StateExhausted:
		return "exhausted"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine is one adapter instance. It is owned by the caller; there is no
// package-level instance.
type Engine struct {
	src        source.Source
	log        *logger.Logger
	timeParser TimeParser

	state   State
	baseURL string
	server  fdw.Options
	sess    *session
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the informational sink. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTimeParser replaces the RFC-3339 parser used for timestamp columns.
func WithTimeParser(tp TimeParser) Option {
	return func(e *Engine) {
		e.timeParser = tp
	}
}

// New creates an Engine in the Idle state reading from src.
func New(src source.Source, opts ...Option) *Engine {
	e := &Engine{
		src:        src,
		log:        logger.Nop(),
		timeParser: RFC3339,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("source", src.Name()).Logger()
	return e
}

// State reports the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Loaded reports how many records the current scan session holds.
// It is zero when no session is open.
func (e *Engine) Loaded() int {
	if e.sess == nil {
		return 0
	}
	return len(e.sess.records)
}

// Init resolves server options and stores them for the scan. It never
// touches the source and may be called any number of times.
func (e *Engine) Init(_ context.Context, c *fdw.Context) error {
	server := c.Options(fdw.ScopeServer)

	raw := server.RequireOr(OptionAPIURL, DefaultAPIURL)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errs.InvalidOption(OptionAPIURL, raw, err)
	}

	e.baseURL = raw
	e.server = server
	if e.state == StateIdle {
		e.state = StateInitialized
	}
	e.log.Debugf("initialized with %s=%s", OptionAPIURL, raw)
	return nil
}

// BeginScan loads the record set for a new scan session. Any previous
// session is discarded first, so a failed BeginScan leaves the engine ready
// for another attempt.
func (e *Engine) BeginScan(ctx context.Context, c *fdw.Context) error {
	if e.state == StateIdle {
		return errs.New(errs.ErrKindInvalidState, "begin_scan called before init")
	}

	e.sess = nil
	e.state = StateInitialized

	table := c.Options(fdw.ScopeTable)
	if rowid, ok := table.Get(OptionRowIDColumn); ok {
		e.log.Debugf("rowid column is %s", rowid)
	}

	records, err := e.src.Load(ctx, source.Params{
		BaseURL: e.baseURL,
		Server:  e.server,
		Table:   table,
	})
	if err != nil {
		e.log.ErrorWith("begin_scan failed", err, nil)
		return err
	}

	e.sess = newSession(records)
	e.state = StateScanning
	e.log.InfoWith("scan started", map[string]interface{}{
		"records": len(records),
		"columns": len(c.Columns()),
	})
	return nil
}

// IterScan produces the next row. ok is false once the record set is
// exhausted; that is not an error and repeats until ReScan or BeginScan.
//
// On error the cursor stays on the failing record and no row is returned.
func (e *Engine) IterScan(_ context.Context, c *fdw.Context) (row *fdw.Row, ok bool, err error) {
	if e.sess == nil {
		return nil, false, errs.New(errs.ErrKindInvalidState,
			fmt.Sprintf("iter_scan called with no active scan (state %s)", e.state))
	}
	if c == nil {
		return nil, false, errs.New(errs.ErrKindInvalidInput, "iter_scan called without a context")
	}

	rec, more := e.sess.current()
	if !more {
		e.state = StateExhausted
		return nil, false, nil
	}

	row, err = e.buildRow(c.Columns(), rec)
	if err != nil {
		e.log.ErrorWith("iter_scan failed", err, map[string]interface{}{
			"cursor": e.sess.cursor,
		})
		return nil, false, err
	}

	e.sess.advance()
	return row, true, nil
}

func (e *Engine) buildRow(cols []fdw.Column, rec source.Record) (*fdw.Row, error) {
	row := fdw.NewRow(len(cols))
	for _, col := range cols {
		raw, found := e.src.Field(rec, col.Name())
		if !found {
			return nil, errs.UnknownField(col.Name())
		}
		cell, err := convert(col, raw, e.timeParser)
		if err != nil {
			return nil, err
		}
		row.Push(cell)
	}
	if err := row.Conforms(cols); err != nil {
		return nil, errs.Wrap(errs.ErrKindTypeMismatch, "row does not match schema", err)
	}
	return row, nil
}

// ReScan rewinds the current session to its first record without reloading.
func (e *Engine) ReScan(_ context.Context, _ *fdw.Context) error {
	if e.sess == nil || (e.state != StateScanning && e.state != StateExhausted) {
		return errs.New(errs.ErrKindInvalidState,
			fmt.Sprintf("re_scan called with no active scan (state %s)", e.state))
	}
	e.sess.rewind()
	e.state = StateScanning
	e.log.Debug("scan rewound")
	return nil
}

// EndScan releases the loaded records. Calling it again is a no-op.
func (e *Engine) EndScan(_ context.Context, _ *fdw.Context) error {
	if e.sess != nil {
		e.log.Debugf("scan ended after %d of %d records", e.sess.cursor, len(e.sess.records))
	}
	e.sess = nil
	if e.state != StateIdle {
		e.state = StateEnded
	}
	return nil
}

// BeginModify, Insert, Update and Delete are unsupported and never change
// engine state.
func (e *Engine) BeginModify(_ context.Context, _ *fdw.Context) error {
	return errs.UnsupportedOperation("modify")
}

func (e *Engine) Insert(_ context.Context, _ *fdw.Context, _ *fdw.Row) error {
	return errs.UnsupportedOperation("insert")
}

func (e *Engine) Update(_ context.Context, _ *fdw.Context, _ fdw.Cell, _ *fdw.Row) error {
	return errs.UnsupportedOperation("update")
}

func (e *Engine) Delete(_ context.Context, _ *fdw.Context, _ fdw.Cell) error {
	return errs.UnsupportedOperation("delete")
}

// EndModify succeeds; there is nothing to flush.
func (e *Engine) EndModify(_ context.Context, _ *fdw.Context) error {
	return nil
}
