package dataset

import (
	"fmt"
)

// Column is a named, typed column of a Dataset.
type Column struct {
	Name string
	Type ColumnType
}

// Dataset is a row-major in-memory table. It is the unit every pipeline
// stage consumes and produces: raw extracts, historical stores and
// normalized tables are all Datasets.
//
// Datasets are not safe for concurrent mutation; the pipeline is
// single-threaded by design.
type Dataset struct {
	Columns []Column
	Rows    [][]Value
}

// New creates an empty dataset with the given columns.
func New(cols ...Column) *Dataset {
	return &Dataset{Columns: cols}
}

// Empty creates a dataset with no columns and no rows. Load returns this
// for absent store files so downstream code treats "no data yet" uniformly.
func Empty() *Dataset {
	return &Dataset{}
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// NumCols returns the column count.
func (d *Dataset) NumCols() int { return len(d.Columns) }

// ColumnIndex returns the index of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// ColumnNames returns the ordered column names.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// AppendRow adds one row. The value count must match the column count.
func (d *Dataset) AppendRow(vals ...Value) error {
	if len(vals) != len(d.Columns) {
		return fmt.Errorf("row has %d values, dataset has %d columns", len(vals), len(d.Columns))
	}
	d.Rows = append(d.Rows, vals)
	return nil
}

// MustAppendRow is AppendRow for construction sites where the arity is
// static. Panics on mismatch.
func (d *Dataset) MustAppendRow(vals ...Value) {
	if err := d.AppendRow(vals...); err != nil {
		panic(err)
	}
}

// Select returns a new dataset containing the rows for which keep returns
// true. Columns are shared; rows are not copied.
func (d *Dataset) Select(keep func(row []Value) bool) *Dataset {
	out := &Dataset{Columns: d.Columns}
	for _, row := range d.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// DistinctInts returns the distinct integer values of a column, in
// first-seen order. Null and non-integer cells are skipped.
func (d *Dataset) DistinctInts(col int) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, row := range d.Rows {
		if v, ok := row[col].AsInt(); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// UnionColumns computes the union of two column sets: a's columns in order,
// then b's extras in order. Where a column appears on both sides with
// different types, the union carries it as text (the widest type) so no
// values are silently dropped. The returned coerced list names the columns
// that were widened.
func UnionColumns(a, b []Column) (union []Column, coerced []string) {
	union = make([]Column, 0, len(a)+len(b))
	index := make(map[string]int)
	for _, c := range a {
		index[c.Name] = len(union)
		union = append(union, c)
	}
	for _, c := range b {
		if i, ok := index[c.Name]; ok {
			if union[i].Type != c.Type {
				union[i].Type = TypeText
				coerced = append(coerced, c.Name)
			}
			continue
		}
		index[c.Name] = len(union)
		union = append(union, c)
	}
	return union, coerced
}

// Align returns a copy of the dataset reshaped to the target columns:
// values are coerced to the target types and columns absent from the source
// are filled with typed nulls.
func (d *Dataset) Align(target []Column) *Dataset {
	srcIdx := make([]int, len(target))
	for i, c := range target {
		if j, ok := d.ColumnIndex(c.Name); ok {
			srcIdx[i] = j
		} else {
			srcIdx[i] = -1
		}
	}
	out := &Dataset{Columns: target, Rows: make([][]Value, 0, len(d.Rows))}
	for _, row := range d.Rows {
		aligned := make([]Value, len(target))
		for i, c := range target {
			if srcIdx[i] < 0 {
				aligned[i] = NullOf(c.Type)
			} else {
				aligned[i] = row[srcIdx[i]].Coerce(c.Type)
			}
		}
		out.Rows = append(out.Rows, aligned)
	}
	return out
}

// Concat appends all rows of other, which must already share the receiver's
// column layout (use Align first).
func (d *Dataset) Concat(other *Dataset) error {
	if len(other.Columns) != len(d.Columns) {
		return fmt.Errorf("column count mismatch: %d vs %d", len(other.Columns), len(d.Columns))
	}
	for i, c := range other.Columns {
		if d.Columns[i].Name != c.Name || d.Columns[i].Type != c.Type {
			return fmt.Errorf("column %d mismatch: %s/%s vs %s/%s",
				i, d.Columns[i].Name, d.Columns[i].Type, c.Name, c.Type)
		}
	}
	d.Rows = append(d.Rows, other.Rows...)
	return nil
}
