package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siscli/internal/dataset"
	apperrors "siscli/internal/errors"
	"siscli/pkg/contracts/domain"
)

func sectionsStore(t *testing.T) *dataset.Dataset {
	t.Helper()
	d := dataset.New(
		dataset.Column{Name: "Term", Type: dataset.TypeInt},
		dataset.Column{Name: "CRN", Type: dataset.TypeInt},
		dataset.Column{Name: "Subject", Type: dataset.TypeText},
		dataset.Column{Name: "Course Number", Type: dataset.TypeText},
		dataset.Column{Name: "Max Enroll", Type: dataset.TypeInt},
		dataset.Column{Name: "Enrolled", Type: dataset.TypeInt},
	)
	d.MustAppendRow(dataset.Int64(202280), dataset.Int64(20001), dataset.Text("BIOL"),
		dataset.Text("101"), dataset.Int64(30), dataset.Int64(25))
	d.MustAppendRow(dataset.Int64(202210), dataset.Int64(20002), dataset.Text("CHEM"),
		dataset.Text("450L"), dataset.Int64(24), dataset.Int64(24))
	d.MustAppendRow(dataset.Int64(202260), dataset.Int64(20003), dataset.Text("BIOL"),
		dataset.Text("599"), dataset.Int64(15), dataset.Int64(8))
	return d
}

func column(t *testing.T, d *dataset.Dataset, name string) []string {
	t.Helper()
	i, ok := d.ColumnIndex(name)
	require.True(t, ok, "column %s", name)
	out := make([]string, d.NumRows())
	for j, row := range d.Rows {
		out[j] = row[i].Render()
	}
	return out
}

func TestTransformSectionsDerivedFields(t *testing.T) {
	tr := NewTransformer(Defaults(), nil)
	out, stats, err := tr.Transform(map[domain.ExtractType]*dataset.Dataset{
		domain.ExtractSections: sectionsStore(t),
	})
	require.NoError(t, err)

	sections := out["sections"]
	require.NotNil(t, sections)
	require.Equal(t, 3, sections.NumRows())

	assert.Equal(t, []string{"lower", "upper", "graduate"}, column(t, sections, "course_level"))
	assert.Equal(t, []string{"fall", "spring", "summer"}, column(t, sections, "term_type"))
	assert.Equal(t, []string{"false", "true", "false"}, column(t, sections, "is_lab"))
	assert.Equal(t, []string{"5", "0", "7"}, column(t, sections, "availability"))
	assert.Equal(t, []string{"BIOL 101", "CHEM 450L", "BIOL 599"}, column(t, sections, "course"))

	// Columns the store never delivered come through as nulls, not errors.
	assert.Equal(t, []string{"", "", ""}, column(t, sections, "department"))

	require.NotEmpty(t, stats)
	assert.Equal(t, "sections", stats[0].Table)
	assert.Equal(t, 3, stats[0].InputRows)
	assert.Equal(t, 3, stats[0].OutputRows)
}

func TestAvailabilityPrefersReportedColumn(t *testing.T) {
	d := dataset.New(
		dataset.Column{Name: "Term", Type: dataset.TypeInt},
		dataset.Column{Name: "CRN", Type: dataset.TypeInt},
		dataset.Column{Name: "Max Enroll", Type: dataset.TypeInt},
		dataset.Column{Name: "Enrolled", Type: dataset.TypeInt},
		dataset.Column{Name: "Available", Type: dataset.TypeInt},
	)
	// The source says 7 seats even though capacity minus enrolled is 5.
	d.MustAppendRow(dataset.Int64(202280), dataset.Int64(20001),
		dataset.Int64(30), dataset.Int64(25), dataset.Int64(7))

	tr := NewTransformer(Defaults(), nil)
	out, _, err := tr.Transform(map[domain.ExtractType]*dataset.Dataset{
		domain.ExtractSections: d,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, column(t, out["sections"], "availability"))
}

func TestTransformProgramsWideToLong(t *testing.T) {
	d := dataset.New(
		dataset.Column{Name: "Term", Type: dataset.TypeInt},
		dataset.Column{Name: "Student ID", Type: dataset.TypeText},
		dataset.Column{Name: "Major 1", Type: dataset.TypeText},
		dataset.Column{Name: "Major 2", Type: dataset.TypeText},
		dataset.Column{Name: "Minor 1", Type: dataset.TypeText},
		dataset.Column{Name: "Minor 2", Type: dataset.TypeText},
	)
	d.MustAppendRow(dataset.Int64(202280), dataset.Text("S100"),
		dataset.Text(" Biology "), dataset.Text(""), dataset.Text("Chemistry"), dataset.Text("   "))
	d.MustAppendRow(dataset.Int64(202280), dataset.Text("S101"),
		dataset.Text("History"), dataset.NullOf(dataset.TypeText), dataset.NullOf(dataset.TypeText), dataset.NullOf(dataset.TypeText))

	tr := NewTransformer(Defaults(), nil)
	out, _, err := tr.Transform(map[domain.ExtractType]*dataset.Dataset{
		domain.ExtractPrograms: d,
	})
	require.NoError(t, err)

	programs := out["programs"]
	// One output row per populated slot: two for S100, one for S101.
	require.Equal(t, 3, programs.NumRows())
	assert.Equal(t, []string{"major", "minor", "major"}, column(t, programs, "program_type"))
	assert.Equal(t, []string{"Biology", "Chemistry", "History"}, column(t, programs, "program"))
	assert.Equal(t, []string{"S100", "S100", "S101"}, column(t, programs, "student_id"))
}

func TestTransformEmptyStores(t *testing.T) {
	tr := NewTransformer(Defaults(), nil)
	out, _, err := tr.Transform(map[domain.ExtractType]*dataset.Dataset{})
	require.NoError(t, err)

	require.Len(t, out, 5)
	for _, name := range []string{"sections", "enrollments", "programs", "awards", "staff"} {
		table, ok := out[name]
		require.True(t, ok, "table %s", name)
		assert.Equal(t, 0, table.NumRows(), "table %s", name)
		assert.Greater(t, table.NumCols(), 0, "table %s", name)
	}
}

func TestTransformMissingRequiredColumn(t *testing.T) {
	d := dataset.New(dataset.Column{Name: "Term", Type: dataset.TypeInt})
	d.MustAppendRow(dataset.Int64(202280))

	tr := NewTransformer(Defaults(), nil)
	_, _, err := tr.Transform(map[domain.ExtractType]*dataset.Dataset{
		domain.ExtractSections: d,
	})
	require.Error(t, err)

	var missing *apperrors.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"CRN"}, missing.Missing)
}

func TestTermType(t *testing.T) {
	tests := []struct {
		name   string
		period dataset.Value
		want   string
	}{
		{name: "spring", period: dataset.Int64(202210), want: "spring"},
		{name: "summer", period: dataset.Int64(202260), want: "summer"},
		{name: "fall", period: dataset.Int64(202280), want: "fall"},
		{name: "unrecognized suffix", period: dataset.Int64(202299), want: "unknown"},
		{name: "null", period: dataset.NullOf(dataset.TypeInt), want: "unknown"},
		{name: "non-numeric", period: dataset.Text("fall 2022"), want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TermType(tt.period))
		})
	}
}
