package input

import "github.com/roach88/xmsync/internal/value"

// Row maps column names to raw cell values.
type Row map[string]value.Value

// Get returns the raw value for column and whether the row has it.
func (r Row) Get(column string) (value.Value, bool) {
	v, ok := r[column]
	return v, ok
}

// Columns is the set of column names present in a source file.
type Columns map[string]struct{}

// NewColumns builds a column set.
func NewColumns(names ...string) Columns {
	c := make(Columns, len(names))
	for _, n := range names {
		c[n] = struct{}{}
	}
	return c
}

// Has reports whether name is a known column. Matching is exact.
func (c Columns) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Table is the content of one source file.
type Table struct {
	Path string

	// Header lists column names in first-seen order.
	Header []string

	Columns Columns
	Rows    []Row
}

// NewTable builds a table from a header and rows, deriving the column set
// from the header.
func NewTable(header []string, rows ...Row) *Table {
	return &Table{
		Header:  header,
		Columns: NewColumns(header...),
		Rows:    rows,
	}
}
