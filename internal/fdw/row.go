package fdw

import (
	"fmt"

	"github.com/koustreak/fdw/internal/errs"
)

// Row is an append-only sequence of cells for one source record.
type Row struct {
	cells []Cell
}

func NewRow(capacity int) *Row {
	return &Row{cells: make([]Cell, 0, capacity)}
}

// Push appends c. An absent value is the zero Cell, which is Null.
func (r *Row) Push(c Cell) {
	r.cells = append(r.cells, c)
}

func (r *Row) Get(i int) (Cell, error) {
	if i < 0 || i >= len(r.cells) {
		return Cell{}, errs.IndexOutOfRange(i, len(r.cells))
	}
	return r.cells[i], nil
}

func (r *Row) Len() int { return len(r.cells) }

// Cells returns a copy of the row's cells.
func (r *Row) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// Values returns the plain Go payload of every cell, in order.
func (r *Row) Values() []any {
	out := make([]any, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Value()
	}
	return out
}

// Conforms checks a completed row against the schema: one cell per column,
// each either Null or of the column's declared variant.
func (r *Row) Conforms(columns []Column) error {
	if len(r.cells) != len(columns) {
		return fmt.Errorf("row has %d cells, schema has %d columns", len(r.cells), len(columns))
	}
	for i, col := range columns {
		c := r.cells[i]
		if c.IsNull() {
			continue
		}
		want, ok := col.Type().Kind()
		if !ok || c.Kind() != want {
			return fmt.Errorf("column '%s': cell is %s, declared %s", col.Name(), c.Kind(), col.Type())
		}
	}
	return nil
}
