package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kkraus14/pygdf/column"
	"github.com/kkraus14/pygdf/core"
	"github.com/kkraus14/pygdf/table"
)

// renderTable formats a table view as an ASCII grid, one header per
// schema field, up to limit rows.
func renderTable(w io.Writer, schema core.Schema, view table.View, limit int) {
	rows := view.NumRows()
	if limit > 0 && rows > limit {
		rows = limit
	}

	cells := make([][]string, rows)
	for r := 0; r < rows; r++ {
		row := make([]string, view.NumColumns())
		for c := 0; c < view.NumColumns(); c++ {
			row[c] = formatCell(view.Column(c), r)
		}
		cells[r] = row
	}

	headers := schema.FieldNames()
	widths := calculateWidths(headers, cells)
	separator := buildSeparator(widths)

	fmt.Fprintln(w, separator)
	if len(headers) > 0 {
		fmt.Fprintln(w, formatRow(headers, widths))
		fmt.Fprintln(w, separator)
	}
	for _, row := range cells {
		fmt.Fprintln(w, formatRow(row, widths))
	}
	fmt.Fprintln(w, separator)

	if rows < view.NumRows() {
		fmt.Fprintf(w, "... %d more rows\n", view.NumRows()-rows)
	}
}

// formatCell stringifies the element at the given row by column type.
func formatCell(v column.View, row int) string {
	if v.IsNull(row) {
		return "NULL"
	}
	switch v.DataType() {
	case core.Int64:
		return strconv.FormatInt(v.Int64s()[row], 10)
	case core.Int32:
		return strconv.FormatInt(int64(v.Int32s()[row]), 10)
	case core.Float64:
		return strconv.FormatFloat(v.Float64s()[row], 'g', -1, 64)
	case core.Bool:
		return strconv.FormatBool(v.Data()[row] != 0)
	case core.String:
		return v.Str(row)
	default:
		return "?"
	}
}

// calculateWidths determines the width needed for each column
func calculateWidths(headers []string, rows [][]string) []int {
	numCols := len(headers)
	for _, row := range rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	widths := make([]int, numCols)
	for i, h := range headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Minimum width of 1
	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}

	return widths
}

// buildSeparator creates the horizontal line
func buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

// formatRow formats a single row with proper padding
func formatRow(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		// Left-align with padding
		parts[i] = " " + cell + strings.Repeat(" ", w-len(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
