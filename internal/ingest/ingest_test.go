package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siscli/internal/dataset"
	apperrors "siscli/internal/errors"
	"siscli/pkg/contracts/domain"
)

func enrollmentSpec(t *testing.T) domain.ExtractSpec {
	t.Helper()
	spec, ok := domain.SpecFor(domain.ExtractEnrollments)
	require.True(t, ok)
	return spec
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFindExtracts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "EnrollmentExtract_20240815.csv", "Term\n202280\n")
	writeFile(t, dir, "EnrollmentExtract_20240101.csv", "Term\n202210\n")
	// Ignored: office lock file, no capture date, wrong extension, and a
	// file belonging to a different extract type.
	writeFile(t, dir, "~$EnrollmentExtract_20240815.xlsx", "lock")
	writeFile(t, dir, "EnrollmentExtract.csv", "Term\n")
	writeFile(t, dir, "EnrollmentExtract_20240815.txt", "notes")
	writeFile(t, dir, "SectionsExtract_20240815.csv", "Term\n")

	files, err := FindExtracts(dir, enrollmentSpec(t))
	require.NoError(t, err)

	// Only the two dated enrollment files, oldest capture first.
	require.Len(t, files, 2)
	assert.Equal(t, "EnrollmentExtract_20240101.csv", files[0].Name)
	assert.Equal(t, "EnrollmentExtract_20240815.csv", files[1].Name)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), files[0].CaptureDate)
	assert.Equal(t, domain.ExtractEnrollments, files[0].Type)
}

func TestFindExtractsMissingDir(t *testing.T) {
	_, err := FindExtracts(filepath.Join(t.TempDir(), "nope"), enrollmentSpec(t))
	assert.Error(t, err)
}

func TestIngestCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "EnrollmentExtract_20240815.csv",
		"Term,CRN,Student ID,Credits,Status\n"+
			"202210,10001,S100,3,Registered\n"+
			"202210,10002,S101,4.5,Registered\n"+
			"202280,10003,S102,3,Waitlisted\n")
	file := domain.ExtractFile{
		Path:        path,
		Name:        "EnrollmentExtract_20240815.csv",
		Type:        domain.ExtractEnrollments,
		CaptureDate: time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	raw, err := NewIngestor(nil).Ingest(file, enrollmentSpec(t))
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractEnrollments, raw.Type)
	assert.Equal(t, []int64{202210, 202280}, raw.Periods)
	require.Equal(t, 3, raw.Data.NumRows())

	// Full-column inference: all-integer columns are int, a column mixing 3
	// and 4.5 is float, identifiers stay text.
	types := map[string]dataset.ColumnType{}
	for _, col := range raw.Data.Columns {
		types[col.Name] = col.Type
	}
	assert.Equal(t, dataset.TypeInt, types["Term"])
	assert.Equal(t, dataset.TypeInt, types["CRN"])
	assert.Equal(t, dataset.TypeFloat, types["Credits"])
	assert.Equal(t, dataset.TypeText, types["Student ID"])
	assert.Equal(t, dataset.TypeText, types["Status"])
}

func TestIngestMissingPeriodColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "EnrollmentExtract_20240815.csv",
		"CRN,Student ID\n10001,S100\n")
	file := domain.ExtractFile{Path: path, Name: "EnrollmentExtract_20240815.csv"}

	_, err := NewIngestor(nil).Ingest(file, enrollmentSpec(t))
	require.Error(t, err)

	var missing *apperrors.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Term"}, missing.Missing)
}

func TestIngestEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "EnrollmentExtract_20240815.csv", "")
	file := domain.ExtractFile{Path: path, Name: "EnrollmentExtract_20240815.csv"}

	_, err := NewIngestor(nil).Ingest(file, enrollmentSpec(t))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeSource, appErr.Type)
}

func TestIngestBlankCellsAreTypedNulls(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "EnrollmentExtract_20240815.csv",
		"Term,CRN,Credits,Student ID\n"+
			"202210,10001,3,S100\n"+
			"202210,,4,S101\n")
	file := domain.ExtractFile{Path: path, Name: "EnrollmentExtract_20240815.csv"}

	raw, err := NewIngestor(nil).Ingest(file, enrollmentSpec(t))
	require.NoError(t, err)

	crn, ok := raw.Data.ColumnIndex("CRN")
	require.True(t, ok)
	assert.Equal(t, dataset.TypeInt, raw.Data.Columns[crn].Type)
	assert.False(t, raw.Data.Rows[0][crn].IsNull())
	assert.True(t, raw.Data.Rows[1][crn].IsNull())
}
