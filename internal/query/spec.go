package query

// Kind is the sealed set of filter behaviors. Every binding carries exactly
// one kind; dispatch is an exhaustive switch, not a runtime function lookup.
type Kind int

const (
	// KindMembership keeps rows whose column value is in the requested
	// list. The default filter.
	KindMembership Kind = iota
	// KindTerm understands dash ranges and season names in addition to
	// membership.
	KindTerm
	// KindMin coerces the value to an integer and keeps rows at or above.
	KindMin
	// KindMax coerces the value to an integer and keeps rows at or below.
	KindMax
	// KindCrossList resolves cross-listed sections: mode "home" keeps
	// non-cross-listed rows plus each group's primary; mode "exclude"
	// drops every cross-listed row.
	KindCrossList
	// KindExclusionList drops rows whose normalized course identifier is
	// on the maintained exclusion list.
	KindExclusionList
)

// Binding maps one public option name to a target column and a filter kind.
type Binding struct {
	Option string
	Column string
	Kind   Kind
	// CommaBearing marks free-text columns whose values contain commas;
	// their option values are never split into lists.
	CommaBearing bool
}

// Spec is the declarative filter configuration one report family shares.
// Binding order is the application order; independent filters commute, each
// step operates on the previous step's result.
type Spec struct {
	Table    string
	Bindings []Binding

	// Cross-list resolution columns, used by KindCrossList bindings.
	CrossListColumn  string
	CrossListPrimary string
	// CourseColumn is the normalized course identifier matched against the
	// exclusion list.
	CourseColumn string
	// Exclusions holds normalized (case-folded, whitespace-squeezed)
	// course identifiers. Nil or empty makes KindExclusionList a no-op.
	Exclusions map[string]bool

	// PreferredGroups is the default aggregation grouping, intersected
	// with the columns actually present at aggregation time.
	PreferredGroups []string
}

// Options returns the declared option names in order.
func (s Spec) Options() []string {
	names := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		names[i] = b.Option
	}
	return names
}

// SectionSpec is the filter spec for section-level data.
func SectionSpec() Spec {
	return Spec{
		Table: "sections",
		Bindings: []Binding{
			{Option: "term", Column: "term", Kind: KindTerm},
			{Option: "subject", Column: "subject", Kind: KindMembership},
			{Option: "course_level", Column: "course_level", Kind: KindMembership},
			{Option: "term_type", Column: "term_type", Kind: KindMembership},
			{Option: "department", Column: "department", Kind: KindMembership},
			{Option: "instructor", Column: "instructor_id", Kind: KindMembership},
			{Option: "title", Column: "title", Kind: KindMembership, CommaBearing: true},
			{Option: "min_enrolled", Column: "enrolled", Kind: KindMin},
			{Option: "max_enrolled", Column: "enrolled", Kind: KindMax},
			{Option: "crosslist", Column: "crosslist", Kind: KindCrossList},
			{Option: "exclude_courses", Column: "course", Kind: KindExclusionList},
		},
		CrossListColumn:  "crosslist",
		CrossListPrimary: "crosslist_primary",
		CourseColumn:     "course",
		PreferredGroups:  []string{"term", "subject", "department"},
	}
}

// EnrollmentSpec is the filter spec for enrollment-level data.
func EnrollmentSpec() Spec {
	return Spec{
		Table: "enrollments",
		Bindings: []Binding{
			{Option: "term", Column: "term", Kind: KindTerm},
			{Option: "crn", Column: "crn", Kind: KindMembership},
			{Option: "status", Column: "status", Kind: KindMembership},
			{Option: "level", Column: "level", Kind: KindMembership},
			{Option: "student", Column: "student_id", Kind: KindMembership},
			{Option: "term_type", Column: "term_type", Kind: KindMembership},
			{Option: "min_credits", Column: "credits", Kind: KindMin},
			{Option: "max_credits", Column: "credits", Kind: KindMax},
		},
		PreferredGroups: []string{"term", "level"},
	}
}
