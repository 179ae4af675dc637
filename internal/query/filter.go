// Package query is the generic option-driven filter and aggregation engine.
// Every downstream analytical report queries the normalized tables through
// it; the engine behaves identically across record types because reports
// differ only in the Spec they pass.
package query

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"siscli/internal/dataset"
	"siscli/internal/errors"
)

// Apply filters the dataset by every option present in both the options bag
// and the spec, in the spec's declared order. An option in the bag that the
// spec does not declare is a caller error.
func Apply(d *dataset.Dataset, opts map[string]string, spec Spec) (*dataset.Dataset, error) {
	known := make(map[string]bool, len(spec.Bindings))
	for _, b := range spec.Bindings {
		known[b.Option] = true
	}
	for name := range opts {
		if !known[name] {
			return nil, errors.NewUnknownOptionError(name, spec.Options())
		}
	}

	out := d
	for _, b := range spec.Bindings {
		raw, ok := opts[b.Option]
		if !ok {
			continue
		}
		vs := ParseValueSet(raw, b.CommaBearing)
		filtered, err := applyBinding(out, b, vs, spec)
		if err != nil {
			return nil, err
		}
		slog.Debug("applied filter",
			slog.String("option", b.Option),
			slog.String("value", raw),
			slog.Int("rows_before", out.NumRows()),
			slog.Int("rows_after", filtered.NumRows()))
		out = filtered
	}
	return out, nil
}

func applyBinding(d *dataset.Dataset, b Binding, vs ValueSet, spec Spec) (*dataset.Dataset, error) {
	col, ok := d.ColumnIndex(b.Column)
	if !ok {
		return nil, errors.NewMissingColumnError(spec.Table, []string{b.Column}, d.ColumnNames())
	}

	switch b.Kind {
	case KindMembership:
		return d.Select(func(row []dataset.Value) bool {
			return vs.Contains(strings.TrimSpace(row[col].Render()))
		}), nil

	case KindTerm:
		return applyTerm(d, col, vs), nil

	case KindMin:
		bound, err := singleInt(b.Option, vs)
		if err != nil {
			return nil, err
		}
		return d.Select(func(row []dataset.Value) bool {
			v, ok := row[col].AsInt()
			return ok && v >= bound
		}), nil

	case KindMax:
		bound, err := singleInt(b.Option, vs)
		if err != nil {
			return nil, err
		}
		return d.Select(func(row []dataset.Value) bool {
			v, ok := row[col].AsInt()
			return ok && v <= bound
		}), nil

	case KindCrossList:
		return applyCrossList(d, vs.Raw, spec)

	case KindExclusionList:
		return applyExclusionList(d, vs, spec)

	default:
		return nil, errors.NewAppError(errors.ErrTypeConfig,
			fmt.Sprintf("filter option %q has unknown kind", b.Option), nil)
	}
}

// applyTerm filters a period column. A dash value is an inclusive range; a
// season name matches by the last-two-digits convention; anything else is
// plain membership.
func applyTerm(d *dataset.Dataset, col int, vs ValueSet) *dataset.Dataset {
	switch {
	case vs.Span != nil:
		return d.Select(func(row []dataset.Value) bool {
			p, ok := row[col].AsInt()
			return ok && vs.Span.Contains(p)
		})
	case vs.Named != "":
		var suffix int64
		switch vs.Named {
		case "spring":
			suffix = 10
		case "summer":
			suffix = 60
		case "fall":
			suffix = 80
		}
		return d.Select(func(row []dataset.Value) bool {
			p, ok := row[col].AsInt()
			return ok && p%100 == suffix
		})
	default:
		return d.Select(func(row []dataset.Value) bool {
			return vs.Contains(strings.TrimSpace(row[col].Render()))
		})
	}
}

// applyCrossList resolves cross-list groups. Mode "home" keeps every row
// outside any group plus, per group, only the row flagged primary; mode
// "exclude" drops every row belonging to a group. Any other mode is an
// error, never a silent no-op.
func applyCrossList(d *dataset.Dataset, mode string, spec Spec) (*dataset.Dataset, error) {
	groupCol, ok := d.ColumnIndex(spec.CrossListColumn)
	if !ok {
		return nil, errors.NewMissingColumnError(spec.Table, []string{spec.CrossListColumn}, d.ColumnNames())
	}
	primaryCol, ok := d.ColumnIndex(spec.CrossListPrimary)
	if !ok {
		return nil, errors.NewMissingColumnError(spec.Table, []string{spec.CrossListPrimary}, d.ColumnNames())
	}

	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "home":
		return d.Select(func(row []dataset.Value) bool {
			if inGroup := strings.TrimSpace(row[groupCol].Render()) != ""; !inGroup {
				return true
			}
			return row[primaryCol].Truthy()
		}), nil
	case "exclude":
		return d.Select(func(row []dataset.Value) bool {
			return strings.TrimSpace(row[groupCol].Render()) == ""
		}), nil
	default:
		return nil, errors.NewAppError(errors.ErrTypeOption,
			fmt.Sprintf("cross-list mode must be home or exclude, got %q", mode), nil)
	}
}

// applyExclusionList drops rows on the maintained exclusion list when the
// option is truthy. Without a list this is a no-op.
func applyExclusionList(d *dataset.Dataset, vs ValueSet, spec Spec) (*dataset.Dataset, error) {
	if !dataset.Text(vs.Raw).Truthy() || len(spec.Exclusions) == 0 {
		return d, nil
	}
	col, ok := d.ColumnIndex(spec.CourseColumn)
	if !ok {
		return nil, errors.NewMissingColumnError(spec.Table, []string{spec.CourseColumn}, d.ColumnNames())
	}
	return d.Select(func(row []dataset.Value) bool {
		return !spec.Exclusions[NormalizeCourseID(row[col].Render())]
	}), nil
}

// NormalizeCourseID case-folds and squeezes whitespace so exclusion-list
// entries match regardless of source formatting.
func NormalizeCourseID(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func singleInt(option string, vs ValueSet) (int64, error) {
	if len(vs.Items) != 1 {
		return 0, errors.NewAppError(errors.ErrTypeOption,
			fmt.Sprintf("option %q wants a single integer, got %q", option, vs.Raw), nil)
	}
	n, err := strconv.ParseInt(vs.Items[0], 10, 64)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrTypeOption,
			fmt.Sprintf("option %q wants an integer, got %q", option, vs.Raw), err)
	}
	return n, nil
}
