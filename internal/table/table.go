// Package table provides the in-memory row/column table consumed by the
// conversion pipeline, and a delimited-text reader for it.
package table

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// MissingToken is written for absent or empty values.
const MissingToken = "n/a"

// Table is a header plus rows of cell values. Cells are nil, string,
// bool, or numeric values as produced by the upstream reader.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// AddRow appends a row. The row must match the header width.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, header has %d columns", len(values), len(t.Columns))
	}

	t.Rows = append(t.Rows, values)

	return nil
}

// Clone returns a copy whose header and rows can be edited independently.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]any, len(t.Rows))

	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}

	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column, or -1.
func (t *Table) Index(name string) int {
	return slices.Index(t.Columns, name)
}

// Value returns the cell at row for the named column, or nil.
func (t *Table) Value(row int, column string) any {
	i := t.Index(column)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return nil
	}

	return t.Rows[row][i]
}

// Rename renames a column.
func (t *Table) Rename(from, to string) error {
	i := t.Index(from)
	if i < 0 {
		return fmt.Errorf("column %q not found", from)
	}

	if t.Index(to) >= 0 {
		return fmt.Errorf("column %q already exists", to)
	}

	t.Columns[i] = to

	return nil
}

// SetColumn replaces the values of an existing column.
func (t *Table) SetColumn(name string, values []any) error {
	i := t.Index(name)
	if i < 0 {
		return fmt.Errorf("column %q not found", name)
	}

	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}

	for r := range t.Rows {
		t.Rows[r][i] = values[r]
	}

	return nil
}

// Drop removes the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) {
	var keep []int

	for i, c := range t.Columns {
		if !slices.Contains(names, c) {
			keep = append(keep, i)
		}
	}

	if len(keep) == len(t.Columns) {
		return
	}

	cols := make([]string, 0, len(keep))
	for _, i := range keep {
		cols = append(cols, t.Columns[i])
	}

	for r, row := range t.Rows {
		out := make([]any, 0, len(keep))
		for _, i := range keep {
			out = append(out, row[i])
		}

		t.Rows[r] = out
	}

	t.Columns = cols
}

// IsMissing reports whether a cell carries no observation.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		return s == "" || s == MissingToken
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	default:
		return false
	}
}
