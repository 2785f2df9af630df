package table

import "github.com/kkraus14/pygdf/column"

// View is a non-owning, read-only descriptor over a table's columns.
// It references the owning table's buffers directly and must not
// outlive the table it was taken from. That contract is documented,
// not runtime-checked.
type View struct {
	cols []column.View
}

// View returns a non-owning view over all of the table's columns.
func (t *Table) View() View {
	cols := make([]column.View, len(t.cols))
	for i, col := range t.cols {
		cols[i] = col.View()
	}
	return View{cols: cols}
}

// NumColumns returns the view width.
func (v View) NumColumns() int {
	return len(v.cols)
}

// NumRows returns the common row count, or 0 for a zero-width view.
func (v View) NumRows() int {
	if len(v.cols) == 0 {
		return 0
	}
	return v.cols[0].Len()
}

// Column returns the view of column i.
func (v View) Column(i int) column.View {
	return v.cols[i]
}

// Select returns a narrower view holding only the given column
// indices, in the given order. No data is copied; the result aliases
// the same owning table.
func (v View) Select(indices ...int) View {
	cols := make([]column.View, len(indices))
	for i, idx := range indices {
		cols[i] = v.cols[idx]
	}
	return View{cols: cols}
}
