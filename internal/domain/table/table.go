// Package table models the tabular shape shared by every regulatory source:
// a raw grid of cells with an arbitrary header offset, and its normalized
// form with a stable, unique header row. The normalizer and the column-role
// detector implemented here are the foundation the resolver and the
// cross-annex search engine build on.
package table

// RawTable is an ordered sequence of rows as loaded from a spreadsheet
// source. Cells are strings (numeric cells arrive already rendered by the
// reader); rows may be ragged. A RawTable has no schema until normalized and
// is never mutated after loading.
type RawTable struct {
	Rows [][]string
}

// NewRawTable wraps rows in a RawTable without copying.
func NewRawTable(rows [][]string) RawTable {
	return RawTable{Rows: rows}
}

// Empty reports whether the table has no rows at all.
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// Row returns row i, or nil when i is out of range.
func (t RawTable) Row(i int) []string {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i]
}

// NormalizedTable is a table with a stable header: an ordered sequence of
// unique, non-empty column labels, with every body row padded or truncated to
// exactly the header width. It is rebuilt whenever the underlying RawTable is
// refreshed and is immutable in between.
type NormalizedTable struct {
	header []string
	rows   [][]string
}

// Header returns the column labels in order. Callers must not modify the
// returned slice.
func (t *NormalizedTable) Header() []string {
	return t.header
}

// Width returns the number of columns.
func (t *NormalizedTable) Width() int {
	return len(t.header)
}

// Len returns the number of body rows.
func (t *NormalizedTable) Len() int {
	return len(t.rows)
}

// Empty reports whether the table has no body rows.
func (t *NormalizedTable) Empty() bool {
	return t == nil || len(t.rows) == 0
}

// Row returns body row i. Callers must not modify the returned slice.
func (t *NormalizedTable) Row(i int) []string {
	return t.rows[i]
}

// Cell returns the value at (row, col), or "" when out of range.
func (t *NormalizedTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.header) {
		return ""
	}
	return t.rows[row][col]
}

// ColumnIndex returns the index of the column with the given label, or -1.
func (t *NormalizedTable) ColumnIndex(label string) int {
	for i, h := range t.header {
		if h == label {
			return i
		}
	}
	return -1
}
