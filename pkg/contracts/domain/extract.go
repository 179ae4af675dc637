package domain

import "time"

// ExtractType identifies one kind of periodic bulk extract delivered by the
// student information system.
type ExtractType string

const (
	ExtractSections    ExtractType = "sections"
	ExtractEnrollments ExtractType = "enrollments"
	ExtractPrograms    ExtractType = "programs"
	ExtractAwards      ExtractType = "awards"
	ExtractStaff       ExtractType = "staff"
)

// ExtractSpec describes how to recognize and merge one extract type.
// Signature is matched as a substring of the delivered filename; the 8-digit
// capture date is located separately, so exact names do not matter.
type ExtractSpec struct {
	Type         ExtractType
	Signature    string
	PeriodColumn string
	// IDColumns are sensitive identifier columns hashed at merge time.
	IDColumns []string
}

// StoreName returns the historical store file name for this type, without
// a format extension.
func (s ExtractSpec) StoreName() string {
	return "hist_" + string(s.Type)
}

// Specs lists every extract type the pipeline understands, in processing
// order. A run works through these one at a time, end to end.
func Specs() []ExtractSpec {
	return []ExtractSpec{
		{
			Type:         ExtractSections,
			Signature:    "SectionsExtract",
			PeriodColumn: "Term",
			IDColumns:    []string{"Instructor ID"},
		},
		{
			Type:         ExtractEnrollments,
			Signature:    "EnrollmentExtract",
			PeriodColumn: "Term",
			IDColumns:    []string{"Student ID"},
		},
		{
			Type:         ExtractPrograms,
			Signature:    "ProgramExtract",
			PeriodColumn: "Term",
			IDColumns:    []string{"Student ID"},
		},
		{
			Type:         ExtractAwards,
			Signature:    "AwardsExtract",
			PeriodColumn: "Term",
			IDColumns:    []string{"Student ID"},
		},
		{
			Type:         ExtractStaff,
			Signature:    "StaffExtract",
			PeriodColumn: "Term",
			IDColumns:    []string{"Staff ID"},
		},
	}
}

// SpecFor returns the spec for the given type.
func SpecFor(t ExtractType) (ExtractSpec, bool) {
	for _, s := range Specs() {
		if s.Type == t {
			return s, true
		}
	}
	return ExtractSpec{}, false
}

// ExtractFile is one discovered extract file awaiting ingestion.
type ExtractFile struct {
	Path        string
	Name        string
	Type        ExtractType
	CaptureDate time.Time
}
