package table

import (
	"errors"
	"fmt"

	"github.com/kkraus14/pygdf/column"
	"github.com/kkraus14/pygdf/mem"
)

var (
	ErrRowCountMismatch = errors.New("row count mismatch across columns")
	ErrNilColumn        = errors.New("table cannot hold a nil column")
)

// Table exclusively owns an ordered sequence of columns. Column order
// is semantically meaningful; it defines the column index used by all
// consumers. The column set is fixed at construction: a Table is only
// ever created by NewTable (ownership transfer) or CopyTable (deep
// clone), and is never mutated into holding different columns.
type Table struct {
	cols []*column.Column
}

// NewTable constructs a table that takes exclusive ownership of the
// given columns. No column data is copied; construction cost is
// O(number of columns). The caller's slice is emptied so the columns
// cannot be reached through it afterwards.
//
// All columns must agree on row count; otherwise construction fails
// with ErrRowCountMismatch and no table is produced. An empty slice
// is a valid zero-width table.
func NewTable(cols []*column.Column) (*Table, error) {
	if err := validateRowCounts(cols); err != nil {
		return nil, err
	}

	owned := make([]*column.Column, len(cols))
	copy(owned, cols)
	for i := range cols {
		cols[i] = nil
	}

	return &Table{cols: owned}, nil
}

// CopyTable constructs a new, fully independent table with the same
// width, row count and element-wise contents as src, sharing no
// storage with it. Every column and nested child is cloned through
// pool; cost is O(total data size).
//
// If any clone fails, every column cloned so far is released and the
// error is returned with no partial table observable.
func CopyTable(src *Table, pool mem.Pool) (*Table, error) {
	cols := make([]*column.Column, 0, len(src.cols))
	for i, col := range src.cols {
		clone, err := col.DeepCopy(pool)
		if err != nil {
			for _, done := range cols {
				done.Release()
			}
			return nil, fmt.Errorf("copying column %d: %w", i, err)
		}
		cols = append(cols, clone)
	}
	return &Table{cols: cols}, nil
}

// Move transfers ownership of all columns from src to a new table in
// O(1). No column payload is touched. src is left inert with zero
// columns; beyond destruction, further use of it is unsupported.
func Move(src *Table) *Table {
	dst := &Table{cols: src.cols}
	src.cols = nil
	return dst
}

// Detach relinquishes ownership of the table's columns and returns
// them in order. The table is left inert with zero columns. The
// caller becomes responsible for releasing every returned column.
func (t *Table) Detach() []*column.Column {
	cols := t.cols
	t.cols = nil
	return cols
}

// Release destroys the table, recursively releasing every owned
// column and its children. Safe to call more than once.
func (t *Table) Release() {
	for _, col := range t.cols {
		col.Release()
	}
	t.cols = nil
}

// NumColumns returns the table width.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// NumRows returns the common row count of the table's columns, or 0
// for a zero-width table.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// Column returns a borrowed reference to column i. Ownership stays
// with the table; callers must not release it.
func (t *Table) Column(i int) *column.Column {
	return t.cols[i]
}

// validateRowCounts enforces the row-count invariant: every column
// must report the same row count as the first. Trivially satisfied
// for zero or one columns.
func validateRowCounts(cols []*column.Column) error {
	for i, col := range cols {
		if col == nil {
			return fmt.Errorf("column %d: %w", i, ErrNilColumn)
		}
		if col.Len() != cols[0].Len() {
			return fmt.Errorf("column %d has %d rows, expected %d: %w",
				i, col.Len(), cols[0].Len(), ErrRowCountMismatch)
		}
	}
	return nil
}
