// Package transform projects historical tables into normalized,
// analysis-ready tables: column renaming to the lowercase convention,
// derived-field computation, and wide-to-long expansion of multi-valued
// program slots. Normalized tables are regenerated wholesale on every run;
// they have no incremental mutation path.
package transform

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"siscli/internal/dataset"
	"siscli/pkg/contracts/domain"
)

// TableStats is the column-count telemetry for one transformed table. It is
// operational visibility only, not load-bearing for correctness.
type TableStats struct {
	Table         string
	InputColumns  int
	OutputColumns int
	InputRows     int
	OutputRows    int
}

// Transformer runs the configured projections.
type Transformer struct {
	specs  []TableSpec
	logger *slog.Logger
}

// NewTransformer creates a transformer over the given table specs.
func NewTransformer(specs []TableSpec, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{specs: specs, logger: logger}
}

// Transform maps every historical table to its normalized tables. A missing
// structurally required column aborts that table's transform; other missing
// source columns evaluate to typed nulls.
func (t *Transformer) Transform(historical map[domain.ExtractType]*dataset.Dataset) (map[string]*dataset.Dataset, []TableStats, error) {
	out := make(map[string]*dataset.Dataset, len(t.specs))
	var stats []TableStats

	for _, spec := range t.specs {
		src, ok := historical[spec.From]
		if !ok || src == nil {
			src = dataset.Empty()
		}
		normalized, err := t.transformTable(spec, src)
		if err != nil {
			return nil, stats, err
		}
		st := TableStats{
			Table:         spec.Name,
			InputColumns:  src.NumCols(),
			OutputColumns: normalized.NumCols(),
			InputRows:     src.NumRows(),
			OutputRows:    normalized.NumRows(),
		}
		stats = append(stats, st)
		t.logger.Info("transformed table",
			slog.String("table", spec.Name),
			slog.Int("input_columns", st.InputColumns),
			slog.Int("output_columns", st.OutputColumns),
			slog.Int("input_rows", st.InputRows),
			slog.Int("output_rows", st.OutputRows))
		out[spec.Name] = normalized
	}
	return out, stats, nil
}

func (t *Transformer) transformTable(spec TableSpec, src *dataset.Dataset) (*dataset.Dataset, error) {
	// An empty store (no data yet) transforms to an empty table; the
	// structural check only applies once the store has columns.
	if src.NumCols() > 0 {
		if _, err := dataset.Validate(spec.Name, src, spec.Required...); err != nil {
			return nil, err
		}
	}

	fields := spec.Fields
	cols := make([]dataset.Column, 0, len(fields)+2)
	for _, f := range fields {
		cols = append(cols, dataset.Column{Name: f.Target, Type: fieldType(f, src)})
	}
	if spec.Expand != nil {
		cols = append(cols,
			dataset.Column{Name: spec.Expand.TypeTarget, Type: dataset.TypeText},
			dataset.Column{Name: spec.Expand.ValueTarget, Type: dataset.TypeText})
	}

	out := dataset.New(cols...)
	for _, row := range src.Rows {
		base := make([]dataset.Value, len(fields))
		for i, f := range fields {
			base[i] = evalField(f, src, row)
		}
		if spec.Expand == nil {
			out.Rows = append(out.Rows, base)
			continue
		}
		// Wide to long: one output row per non-empty slot, none for empty
		// slots. The identifying fields repeat on every emitted row.
		for _, slot := range spec.Expand.Slots {
			v, ok := columnValue(src, row, slot.Column)
			if !ok || v.IsNull() || strings.TrimSpace(v.Render()) == "" {
				continue
			}
			expanded := make([]dataset.Value, 0, len(base)+2)
			expanded = append(expanded, base...)
			expanded = append(expanded,
				dataset.Text(slot.Label),
				dataset.Text(strings.TrimSpace(v.Render())))
			out.Rows = append(out.Rows, expanded)
		}
	}
	return out, nil
}

// fieldType decides the output column type for a field before any row is
// evaluated, so empty inputs still produce correctly typed tables.
func fieldType(f Field, src *dataset.Dataset) dataset.ColumnType {
	switch f.Kind {
	case ExprColumn:
		if i, ok := src.ColumnIndex(f.Source); ok {
			return src.Columns[i].Type
		}
		return dataset.TypeText
	case ExprAvailability:
		return dataset.TypeInt
	case ExprLabFlag:
		return dataset.TypeBool
	default:
		return dataset.TypeText
	}
}

func evalField(f Field, src *dataset.Dataset, row []dataset.Value) dataset.Value {
	switch f.Kind {
	case ExprColumn:
		if v, ok := columnValue(src, row, f.Source); ok {
			return v
		}
		return dataset.NullOf(dataset.TypeText)
	case ExprCourseLevel:
		v, ok := columnValue(src, row, f.Source)
		if !ok || v.IsNull() {
			return dataset.NullOf(dataset.TypeText)
		}
		return courseLevel(v.Render())
	case ExprTermType:
		v, ok := columnValue(src, row, f.Source)
		if !ok {
			return dataset.NullOf(dataset.TypeText)
		}
		return dataset.Text(TermType(v))
	case ExprLabFlag:
		v, ok := columnValue(src, row, f.Source)
		if !ok || v.IsNull() {
			return dataset.Boolean(false)
		}
		return dataset.Boolean(labFlag(v.Render()))
	case ExprAvailability:
		return availability(src, row, f.Source, f.Source2)
	case ExprCourseID:
		a, _ := columnValue(src, row, f.Source)
		b, _ := columnValue(src, row, f.Source2)
		id := strings.TrimSpace(a.Render() + " " + b.Render())
		if id == "" {
			return dataset.NullOf(dataset.TypeText)
		}
		return dataset.Text(id)
	default:
		return dataset.NullOf(dataset.TypeText)
	}
}

func columnValue(src *dataset.Dataset, row []dataset.Value, name string) (dataset.Value, bool) {
	i, ok := src.ColumnIndex(name)
	if !ok {
		return dataset.Value{}, false
	}
	return row[i], true
}

// courseLevel tiers a course number by its leading digits.
func courseLevel(courseNumber string) dataset.Value {
	digits := leadingDigits(strings.TrimSpace(courseNumber))
	if digits == "" {
		return dataset.NullOf(dataset.TypeText)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return dataset.NullOf(dataset.TypeText)
	}
	switch {
	case n < 300:
		return dataset.Text("lower")
	case n < 500:
		return dataset.Text("upper")
	default:
		return dataset.Text("graduate")
	}
}

// TermType labels a six-digit period code by its last two digits. Shared
// with the query engine's named-term filters.
func TermType(period dataset.Value) string {
	p, ok := period.AsInt()
	if !ok {
		return "unknown"
	}
	switch p % 100 {
	case 10:
		return "spring"
	case 60:
		return "summer"
	case 80:
		return "fall"
	default:
		return "unknown"
	}
}

// labFlag reports a trailing-letter course number, the lab-section
// convention.
func labFlag(courseNumber string) bool {
	s := strings.TrimSpace(courseNumber)
	if s == "" {
		return false
	}
	last := rune(s[len(s)-1])
	return unicode.IsLetter(last) && leadingDigits(s) != ""
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// Normalized availability: reported value if the source carries one,
// otherwise capacity minus enrolled.
func availability(src *dataset.Dataset, row []dataset.Value, capCol, enrCol string) dataset.Value {
	if v, ok := columnValue(src, row, "Available"); ok && !v.IsNull() {
		if n, ok := v.AsInt(); ok {
			return dataset.Int64(n)
		}
	}
	capacity, okCap := columnValue(src, row, capCol)
	enrolled, okEnr := columnValue(src, row, enrCol)
	if !okCap || !okEnr {
		return dataset.NullOf(dataset.TypeInt)
	}
	c, ok1 := capacity.AsInt()
	e, ok2 := enrolled.AsInt()
	if !ok1 || !ok2 {
		return dataset.NullOf(dataset.TypeInt)
	}
	return dataset.Int64(c - e)
}
