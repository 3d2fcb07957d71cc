package fdw

// Context is the per-scan bundle the host hands to every lifecycle callback:
// the requested columns in host order and the options for each scope.
type Context struct {
	columns []Column
	options map[Scope]Options
}

func NewContext(columns []Column, server, table Options) *Context {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Context{
		columns: cols,
		options: map[Scope]Options{
			ScopeServer: server,
			ScopeTable:  table,
		},
	}
}

// Columns returns the requested columns. Row cells are positional, so the
// order here is the order every produced row follows. A nil Context has
// no columns.
func (c *Context) Columns() []Column {
	if c == nil {
		return nil
	}
	return c.columns
}

// Options returns the options for scope, or empty options if the host
// supplied none.
func (c *Context) Options(scope Scope) Options {
	if c == nil {
		return Options{}
	}
	return c.options[scope]
}
