// Package host exposes the fixed callback surface a query executor drives.
// Every callback returns an explicit result value instead of a bare error so
// that a host can render the outcome without knowing the error taxonomy.
package host

import (
	"context"
	"errors"

	"github.com/koustreak/fdw/internal/errs"
	"github.com/koustreak/fdw/internal/fdw"
	"github.com/koustreak/fdw/internal/scan"
)

// VersionRequirement is the host API range this adapter is built against.
const VersionRequirement = "^0.1.0"

// Result is the outcome of a lifecycle callback.
type Result struct {
	Err error
}

// Failed reports whether the callback returned an error.
func (r Result) Failed() bool { return r.Err != nil }

// Message is the user-visible error text, empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	var e *errs.Error
	if errors.As(r.Err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return r.Err.Error()
}

// Kind returns the error category, or ErrKindUnknown on success.
func (r Result) Kind() errs.ErrKind {
	if r.Err == nil {
		return errs.ErrKindUnknown
	}
	return errs.KindOf(r.Err)
}

// IterStatus is the outcome class of IterScan.
type IterStatus int

const (
	RowProduced IterStatus = iota
	NoMoreRows
	IterError
)

func (s IterStatus) String() string {
	switch s {
	case RowProduced:
		return "row_produced"
	case NoMoreRows:
		return "no_more_rows"
	default:
		return "error"
	}
}

// IterResult is the outcome of IterScan. Err is set only when Status is
// IterError.
type IterResult struct {
	Status IterStatus
	Err    error
}

// Message is the user-visible error text, empty unless Status is IterError.
func (r IterResult) Message() string {
	return Result{Err: r.Err}.Message()
}

// Adapter binds one scan engine to the host callback names. Callbacks carry
// no context of their own, so the adapter supplies the one it was built with.
type Adapter struct {
	ctx    context.Context
	engine *scan.Engine
}

// New wraps engine. ctx bounds every blocking call the engine makes; pass
// context.Background() for the host's uncancellable contract.
func New(ctx context.Context, engine *scan.Engine) *Adapter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Adapter{ctx: ctx, engine: engine}
}

// Engine returns the wrapped engine.
func (a *Adapter) Engine() *scan.Engine { return a.engine }

func (a *Adapter) HostVersionRequirement() string { return VersionRequirement }

func (a *Adapter) Init(c *fdw.Context) Result {
	return Result{Err: a.engine.Init(a.ctx, c)}
}

func (a *Adapter) BeginScan(c *fdw.Context) Result {
	return Result{Err: a.engine.BeginScan(a.ctx, c)}
}

// IterScan appends the next record's cells to row. row is expected to be
// empty; it is left untouched unless a row is produced. A nil row fails
// without consuming a record.
func (a *Adapter) IterScan(c *fdw.Context, row *fdw.Row) IterResult {
	if row == nil {
		return IterResult{Status: IterError, Err: errs.New(errs.ErrKindInvalidInput, "iter_scan called without a row")}
	}
	produced, ok, err := a.engine.IterScan(a.ctx, c)
	switch {
	case err != nil:
		return IterResult{Status: IterError, Err: err}
	case !ok:
		return IterResult{Status: NoMoreRows}
	}
	for _, cell := range produced.Cells() {
		row.Push(cell)
	}
	return IterResult{Status: RowProduced}
}

func (a *Adapter) ReScan(c *fdw.Context) Result {
	return Result{Err: a.engine.ReScan(a.ctx, c)}
}

func (a *Adapter) EndScan(c *fdw.Context) Result {
	return Result{Err: a.engine.EndScan(a.ctx, c)}
}

func (a *Adapter) BeginModify(c *fdw.Context) Result {
	return Result{Err: a.engine.BeginModify(a.ctx, c)}
}

func (a *Adapter) Insert(c *fdw.Context, row *fdw.Row) Result {
	return Result{Err: a.engine.Insert(a.ctx, c, row)}
}

func (a *Adapter) Update(c *fdw.Context, rowid fdw.Cell, row *fdw.Row) Result {
	return Result{Err: a.engine.Update(a.ctx, c, rowid, row)}
}

func (a *Adapter) Delete(c *fdw.Context, rowid fdw.Cell) Result {
	return Result{Err: a.engine.Delete(a.ctx, c, rowid)}
}

func (a *Adapter) EndModify(c *fdw.Context) Result {
	return Result{Err: a.engine.EndModify(a.ctx, c)}
}
