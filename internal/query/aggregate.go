package query

import (
	"strings"

	"siscli/internal/dataset"
)

// Aggregation output columns, appended after the group columns.
const (
	colEnrolled     = "enrolled"
	colAvailability = "availability"
	colWaitlist     = "waitlist"
	colSections     = "sections"
	colAvgSize      = "avg_section_size"
	colCRN          = "crn"
)

// DefaultGroupColumns intersects the preferred grouping with the columns
// actually present, preserving preferred order.
func DefaultGroupColumns(d *dataset.Dataset, preferred []string) []string {
	var out []string
	for _, name := range preferred {
		if _, ok := d.ColumnIndex(name); ok {
			out = append(out, name)
		}
	}
	return out
}

// Aggregate groups the dataset by the given columns and computes enrollment
// sums, distinct section counts and the derived average section size.
// Missing required columns abort with an explicit column-name error; there
// is no fallback to an older naming convention.
func Aggregate(d *dataset.Dataset, groupCols []string, spec Spec) (*dataset.Dataset, error) {
	if len(groupCols) == 0 {
		groupCols = DefaultGroupColumns(d, spec.PreferredGroups)
	}

	required := append(append([]string{}, groupCols...), colEnrolled, colCRN)
	schema, err := dataset.Validate(spec.Table, d, required...)
	if err != nil {
		return nil, err
	}

	groupHandles := make([]dataset.Handle, len(groupCols))
	for i, name := range groupCols {
		groupHandles[i] = schema.Col(name)
	}
	enrolled := schema.Col(colEnrolled)
	crn := schema.Col(colCRN)
	avail, hasAvail := schema.Lookup(colAvailability)
	waitlist, hasWaitlist := schema.Lookup(colWaitlist)

	type bucket struct {
		key      []dataset.Value
		enrolled int64
		avail    int64
		waitlist int64
		sections map[string]bool
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, row := range d.Rows {
		parts := make([]string, len(groupHandles))
		keyVals := make([]dataset.Value, len(groupHandles))
		for i, h := range groupHandles {
			keyVals[i] = h.Value(row)
			parts[i] = keyVals[i].Render()
		}
		key := strings.Join(parts, "\x1f")

		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: keyVals, sections: make(map[string]bool)}
			buckets[key] = b
			order = append(order, key)
		}
		if v, ok := enrolled.Value(row).AsInt(); ok {
			b.enrolled += v
		}
		if hasAvail {
			if v, ok := avail.Value(row).AsInt(); ok {
				b.avail += v
			}
		}
		if hasWaitlist {
			if v, ok := waitlist.Value(row).AsInt(); ok {
				b.waitlist += v
			}
		}
		if id := crn.Value(row).Render(); id != "" {
			b.sections[id] = true
		}
	}

	cols := make([]dataset.Column, 0, len(groupHandles)+5)
	for _, h := range groupHandles {
		cols = append(cols, dataset.Column{Name: h.Name, Type: h.Type})
	}
	cols = append(cols,
		dataset.Column{Name: colEnrolled, Type: dataset.TypeInt},
		dataset.Column{Name: colAvailability, Type: dataset.TypeInt},
		dataset.Column{Name: colWaitlist, Type: dataset.TypeInt},
		dataset.Column{Name: colSections, Type: dataset.TypeInt},
		dataset.Column{Name: colAvgSize, Type: dataset.TypeFloat},
	)

	out := dataset.New(cols...)
	for _, key := range order {
		b := buckets[key]
		row := make([]dataset.Value, 0, len(cols))
		row = append(row, b.key...)
		sections := int64(len(b.sections))
		avg := 0.0
		if sections > 0 {
			avg = float64(b.enrolled) / float64(sections)
		}
		row = append(row,
			dataset.Int64(b.enrolled),
			dataset.Int64(b.avail),
			dataset.Int64(b.waitlist),
			dataset.Int64(sections),
			dataset.Float64(avg),
		)
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
