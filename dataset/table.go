package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/homeprice/pkg/errors"
)

// Table is an ordered set of named numeric columns over a dense matrix.
// It is the feature-matrix representation handed between pipeline stages.
//
// Stages never mutate a Table they received; every transformation
// allocates a new one. The column name to index mapping of a Table
// produced from fit data is identical to that of any Table later produced
// from transform data with the same models, including all-zero indicator
// columns for categories unseen at fit time.
type Table struct {
	columns []string
	data    *mat.Dense // nil when the table has no columns
	rows    int
}

// NewTable builds a Table from column names and a backing matrix. The
// matrix column count must match the number of names.
func NewTable(columns []string, data *mat.Dense) (*Table, error) {
	r, c := data.Dims()
	if c != len(columns) {
		return nil, errors.NewDimensionError("dataset.NewTable", len(columns), c, 1)
	}
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if seen[name] {
			return nil, errors.NewValueError("dataset.NewTable", "duplicate column name "+name)
		}
		seen[name] = true
	}
	names := make([]string, len(columns))
	copy(names, columns)
	return &Table{columns: names, data: data, rows: r}, nil
}

// NewEmptyTable builds a Table with the given row count and no columns.
// It is the identity element of Concat; stages whose output happens to
// contain no columns (an encoder fit where every categorical column has a
// single category) return it instead of a zero-width matrix, which gonum
// rejects.
func NewEmptyTable(rows int) *Table {
	return &Table{rows: rows}
}

// Columns returns a copy of the ordered column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Matrix exposes the backing matrix for numeric routines. Callers must
// treat it as read-only. A table with no columns has no backing matrix
// and returns nil.
func (t *Table) Matrix() *mat.Dense {
	return t.data
}

// At returns the value at (row, named column).
func (t *Table) At(row int, column string) (float64, error) {
	idx, ok := t.Index(column)
	if !ok {
		return 0, errors.NewValueError("dataset.Table.At", "unknown column "+column)
	}
	return t.data.At(row, idx), nil
}

// Index returns the position of a column name.
func (t *Table) Index(column string) (int, bool) {
	for i, name := range t.columns {
		if name == column {
			return i, true
		}
	}
	return 0, false
}

// Col copies out a single named column.
func (t *Table) Col(column string) ([]float64, error) {
	idx, ok := t.Index(column)
	if !ok {
		return nil, errors.NewValueError("dataset.Table.Col", "unknown column "+column)
	}
	r, _ := t.data.Dims()
	out := make([]float64, r)
	mat.Col(out, idx, t.data)
	return out, nil
}

// TakeRows builds a new Table containing the given rows in the given
// order. Row indices outside [0, NumRows) are an error.
func (t *Table) TakeRows(rows []int) (*Table, error) {
	for _, src := range rows {
		if src < 0 || src >= t.rows {
			return nil, errors.NewValueError("dataset.Table.TakeRows", "row index out of range")
		}
	}
	if t.data == nil {
		return NewEmptyTable(len(rows)), nil
	}
	c := len(t.columns)
	out := mat.NewDense(len(rows), c, nil)
	for i, src := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, t.data.At(src, j))
		}
	}
	return NewTable(t.columns, out)
}

// Concat appends the columns of other to the right of t. Both tables must
// have the same number of rows and no overlapping column names.
func (t *Table) Concat(other *Table) (*Table, error) {
	if other.rows != t.rows {
		return nil, errors.NewDimensionError("dataset.Table.Concat", t.rows, other.rows, 0)
	}
	if other.data == nil {
		return t.Clone(), nil
	}
	if t.data == nil {
		return other.Clone(), nil
	}

	r, c := t.data.Dims()
	_, co := other.data.Dims()

	names := make([]string, 0, c+co)
	names = append(names, t.columns...)
	names = append(names, other.columns...)

	out := mat.NewDense(r, c+co, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, t.data.At(i, j))
		}
		for j := 0; j < co; j++ {
			out.Set(i, c+j, other.data.At(i, j))
		}
	}
	return NewTable(names, out)
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	if t.data == nil {
		return NewEmptyTable(t.rows)
	}
	var data mat.Dense
	data.CloneFrom(t.data)
	names := make([]string, len(t.columns))
	copy(names, t.columns)
	return &Table{columns: names, data: &data, rows: t.rows}
}
