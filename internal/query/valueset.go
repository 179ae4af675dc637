package query

import (
	"strconv"
	"strings"
)

// Range is an inclusive numeric period range. An open bound is absent; the
// shorthand "202280-" means at-or-above with no upper bound.
type Range struct {
	Lo, Hi       int64
	HasLo, HasHi bool
}

// Contains reports whether p falls inside the range.
func (r Range) Contains(p int64) bool {
	if r.HasLo && p < r.Lo {
		return false
	}
	if r.HasHi && p > r.Hi {
		return false
	}
	return true
}

// ValueSet is the single typed representation of a requested filter value.
// It is constructed once at the option-bag boundary, so filter code never
// re-inspects whether a value was a scalar, a delimited list, or a range
// shorthand.
type ValueSet struct {
	Raw   string
	Items []string
	// Span is set when the value parsed as a dash range.
	Span *Range
	// Named is set when the single value is a season name (fall, spring,
	// summer) to be matched by the last-two-digits convention.
	Named string
}

var namedTerms = map[string]bool{"fall": true, "spring": true, "summer": true}

// ParseValueSet builds the typed value set. Comma-bearing columns (free
// text that legitimately contains commas) suppress list splitting.
func ParseValueSet(raw string, commaBearing bool) ValueSet {
	raw = strings.TrimSpace(raw)
	vs := ValueSet{Raw: raw}

	if commaBearing {
		vs.Items = []string{raw}
	} else {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				vs.Items = append(vs.Items, part)
			}
		}
	}

	if len(vs.Items) == 1 {
		item := vs.Items[0]
		if namedTerms[strings.ToLower(item)] {
			vs.Named = strings.ToLower(item)
		} else if r, ok := parseRange(item); ok {
			vs.Span = &r
		}
	}
	return vs
}

// parseRange recognizes "A-B", "A-" and "-B" where each present bound is an
// integer. A plain integer is not a range.
func parseRange(s string) (Range, bool) {
	dash := strings.Index(s, "-")
	if dash < 0 {
		return Range{}, false
	}
	loStr := strings.TrimSpace(s[:dash])
	hiStr := strings.TrimSpace(s[dash+1:])
	if loStr == "" && hiStr == "" {
		return Range{}, false
	}
	var r Range
	if loStr != "" {
		lo, err := strconv.ParseInt(loStr, 10, 64)
		if err != nil {
			return Range{}, false
		}
		r.Lo, r.HasLo = lo, true
	}
	if hiStr != "" {
		hi, err := strconv.ParseInt(hiStr, 10, 64)
		if err != nil {
			return Range{}, false
		}
		r.Hi, r.HasHi = hi, true
	}
	return r, true
}

// Contains reports list membership of the rendered cell value.
func (vs ValueSet) Contains(s string) bool {
	for _, item := range vs.Items {
		if item == s {
			return true
		}
	}
	return false
}
