package transform

import "siscli/pkg/contracts/domain"

// ExprKind selects how a projected field is computed from the source table.
type ExprKind int

const (
	// ExprColumn copies a source column under a new name.
	ExprColumn ExprKind = iota
	// ExprCourseLevel tiers the numeric part of a course number:
	// below 300 lower, 300-499 upper, 500 and up graduate.
	ExprCourseLevel
	// ExprTermType labels a six-digit period by its last two digits:
	// 10 spring, 60 summer, 80 fall, anything else unknown.
	ExprTermType
	// ExprLabFlag is true when the course number carries a trailing letter.
	ExprLabFlag
	// ExprAvailability is capacity minus enrolled, used when the source
	// does not report availability directly.
	ExprAvailability
	// ExprCourseID joins subject and course number into the normalized
	// course identifier used by cross-report exclusion lists.
	ExprCourseID
)

// Field is one (source expression, target column) pair of a projection.
// Source2 is the second input for two-column expressions.
type Field struct {
	Target  string
	Kind    ExprKind
	Source  string
	Source2 string
}

// Slot is one wide column of a multi-valued field, with the label its
// values carry after expansion.
type Slot struct {
	Column string
	Label  string
}

// SlotExpansion describes a wide-to-long restructuring: each non-empty slot
// cell becomes one output row tagged with the slot's label, sharing the
// identifying fields. Empty slots produce no rows.
type SlotExpansion struct {
	Slots       []Slot
	TypeTarget  string
	ValueTarget string
}

// TableSpec maps one historical table to one normalized table.
type TableSpec struct {
	Name string
	From domain.ExtractType
	// Required names source columns whose absence aborts this table's
	// transform instead of evaluating to nulls.
	Required []string
	Fields   []Field
	Expand   *SlotExpansion
}

// Defaults returns the projections for the five normalized tables.
func Defaults() []TableSpec {
	return []TableSpec{
		{
			Name:     "sections",
			From:     domain.ExtractSections,
			Required: []string{"Term", "CRN"},
			Fields: []Field{
				{Target: "term", Kind: ExprColumn, Source: "Term"},
				{Target: "crn", Kind: ExprColumn, Source: "CRN"},
				{Target: "subject", Kind: ExprColumn, Source: "Subject"},
				{Target: "course_number", Kind: ExprColumn, Source: "Course Number"},
				{Target: "course", Kind: ExprCourseID, Source: "Subject", Source2: "Course Number"},
				{Target: "section", Kind: ExprColumn, Source: "Section"},
				{Target: "title", Kind: ExprColumn, Source: "Title"},
				{Target: "capacity", Kind: ExprColumn, Source: "Max Enroll"},
				{Target: "enrolled", Kind: ExprColumn, Source: "Enrolled"},
				{Target: "waitlist", Kind: ExprColumn, Source: "Waitlist"},
				{Target: "availability", Kind: ExprAvailability, Source: "Max Enroll", Source2: "Enrolled"},
				{Target: "course_level", Kind: ExprCourseLevel, Source: "Course Number"},
				{Target: "term_type", Kind: ExprTermType, Source: "Term"},
				{Target: "is_lab", Kind: ExprLabFlag, Source: "Course Number"},
				{Target: "crosslist", Kind: ExprColumn, Source: "Cross List"},
				{Target: "crosslist_primary", Kind: ExprColumn, Source: "Cross List Primary"},
				{Target: "instructor_id", Kind: ExprColumn, Source: "Instructor ID"},
				{Target: "department", Kind: ExprColumn, Source: "Department"},
			},
		},
		{
			Name:     "enrollments",
			From:     domain.ExtractEnrollments,
			Required: []string{"Term", "CRN", "Student ID"},
			Fields: []Field{
				{Target: "term", Kind: ExprColumn, Source: "Term"},
				{Target: "crn", Kind: ExprColumn, Source: "CRN"},
				{Target: "student_id", Kind: ExprColumn, Source: "Student ID"},
				{Target: "status", Kind: ExprColumn, Source: "Status"},
				{Target: "credits", Kind: ExprColumn, Source: "Credits"},
				{Target: "level", Kind: ExprColumn, Source: "Level"},
				{Target: "term_type", Kind: ExprTermType, Source: "Term"},
			},
		},
		{
			Name:     "programs",
			From:     domain.ExtractPrograms,
			Required: []string{"Term", "Student ID"},
			Fields: []Field{
				{Target: "term", Kind: ExprColumn, Source: "Term"},
				{Target: "student_id", Kind: ExprColumn, Source: "Student ID"},
				{Target: "department", Kind: ExprColumn, Source: "Department"},
				{Target: "college", Kind: ExprColumn, Source: "College"},
				{Target: "program_code", Kind: ExprColumn, Source: "Program Code"},
				{Target: "term_type", Kind: ExprTermType, Source: "Term"},
			},
			Expand: &SlotExpansion{
				Slots: []Slot{
					{Column: "Major 1", Label: "major"},
					{Column: "Major 2", Label: "second major"},
					{Column: "Minor 1", Label: "minor"},
					{Column: "Minor 2", Label: "second minor"},
				},
				TypeTarget:  "program_type",
				ValueTarget: "program",
			},
		},
		{
			Name:     "awards",
			From:     domain.ExtractAwards,
			Required: []string{"Term", "Student ID"},
			Fields: []Field{
				{Target: "term", Kind: ExprColumn, Source: "Term"},
				{Target: "student_id", Kind: ExprColumn, Source: "Student ID"},
				{Target: "award", Kind: ExprColumn, Source: "Award"},
				{Target: "program", Kind: ExprColumn, Source: "Program"},
				{Target: "department", Kind: ExprColumn, Source: "Department"},
				{Target: "term_type", Kind: ExprTermType, Source: "Term"},
			},
		},
		{
			Name:     "staff",
			From:     domain.ExtractStaff,
			Required: []string{"Term", "Staff ID"},
			Fields: []Field{
				{Target: "term", Kind: ExprColumn, Source: "Term"},
				{Target: "staff_id", Kind: ExprColumn, Source: "Staff ID"},
				{Target: "name", Kind: ExprColumn, Source: "Name"},
				{Target: "department", Kind: ExprColumn, Source: "Department"},
				{Target: "rank", Kind: ExprColumn, Source: "Rank"},
				{Target: "fte", Kind: ExprColumn, Source: "FTE"},
				{Target: "term_type", Kind: ExprTermType, Source: "Term"},
			},
		},
	}
}
