package loadflow

import (
	"fmt"
	"strings"
)

// Table is a tabular data source read fully into memory, one string cell per
// column. An empty cell is the null value.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates a Table. Rows shorter than the header are padded with
// empty cells and longer rows are truncated. When a header repeats, the first
// occurrence wins.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for _, r := range rows {
		switch {
		case len(r) < len(columns):
			padded := make([]string, len(columns))
			copy(padded, r)
			r = padded
		case len(r) > len(columns):
			r = r[:len(columns)]
		}
		t.rows = append(t.rows, r)
	}
	return t
}

// Columns returns the header names in source order.
func (t *Table) Columns() []string {
	return t.columns
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require returns an error wrapping ErrMissingColumn naming every absent column.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Column returns every cell of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Row returns the i-th data row.
func (t *Table) Row(i int) Row {
	return Row{table: t, cells: t.rows[i]}
}

// Row is a view of one table row.
type Row struct {
	table *Table
	cells []string
}

// Get returns the cell under column, or "" when the column does not exist.
func (r Row) Get(column string) string {
	i, ok := r.table.index[column]
	if !ok {
		return ""
	}
	return r.cells[i]
}
