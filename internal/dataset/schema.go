package dataset

import (
	"siscli/internal/errors"
)

// Handle is a resolved reference to one column: name lookup happens once,
// at schema validation time, and access afterwards is by index.
type Handle struct {
	Name  string
	Index int
	Type  ColumnType
}

// Value returns the cell for this handle in a row.
func (h Handle) Value(row []Value) Value { return row[h.Index] }

// Schema is a validated view of a dataset's columns. Constructing a Schema
// proves the required columns exist; an absent column is a construction-time
// MissingColumnError rather than a per-row string-compare failure.
type Schema struct {
	table   string
	handles map[string]Handle
}

// Validate checks that every required column is present in the dataset and
// returns a schema exposing typed handles for all columns.
func Validate(table string, d *Dataset, required ...string) (*Schema, error) {
	handles := make(map[string]Handle, len(d.Columns))
	for i, c := range d.Columns {
		handles[c.Name] = Handle{Name: c.Name, Index: i, Type: c.Type}
	}
	var missing []string
	for _, name := range required {
		if _, ok := handles[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingColumnError(table, missing, d.ColumnNames())
	}
	return &Schema{table: table, handles: handles}, nil
}

// Col returns the handle for a required column. Safe after Validate listed
// the column as required.
func (s *Schema) Col(name string) Handle {
	return s.handles[name]
}

// Lookup returns the handle for an optional column.
func (s *Schema) Lookup(name string) (Handle, bool) {
	h, ok := s.handles[name]
	return h, ok
}
