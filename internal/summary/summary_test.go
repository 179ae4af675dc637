package summary

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(id, status string) RunRecord {
	started := time.Date(2024, 8, 15, 6, 0, 0, 0, time.UTC)
	return RunRecord{
		RunID:    id,
		Started:  started,
		Finished: started.Add(90 * time.Second),
		Status:   status,
		Types: []TypeRecord{
			{
				Type:           "sections",
				FilesFound:     2,
				FilesProcessed: 1,
				FilesRemoved:   1,
				Files: []FileRecord{
					{
						Name:         "SectionsExtract_20240815.csv",
						CaptureDate:  time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
						OldRows:      100,
						NewRows:      40,
						CombinedRows: 120,
					},
					{
						Name:        "SectionsExtract_20240816.csv",
						CaptureDate: time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC),
						Err:         "conversion produced no output",
					},
				},
			},
		},
	}
}

func TestAppendFormatsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_summary.log")
	w := NewWriter(path)

	require.NoError(t, w.Append(sampleRecord("run-1", StatusOK)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "=== run run-1 ===")
	assert.Contains(t, text, "status:   OK")
	assert.Contains(t, text, "[sections] found=2 processed=1 removed=1")
	assert.Contains(t, text, "SectionsExtract_20240815.csv capture=2024-08-15 old=100 new=40 combined=120")
	assert.Contains(t, text, "SectionsExtract_20240816.csv capture=2024-08-16 ERROR: conversion produced no output")
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_summary.log")
	w := NewWriter(path)

	require.NoError(t, w.Append(sampleRecord("run-1", StatusOK)))
	require.NoError(t, w.Append(sampleRecord("run-2", StatusFailed)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== run run-1 ===")
	assert.Contains(t, string(data), "=== run run-2 ===")
}

func TestLastStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_summary.log")
	w := NewWriter(path)

	status, err := LastStatus(path)
	require.NoError(t, err)
	assert.Equal(t, "", status)

	require.NoError(t, w.Append(sampleRecord("run-1", StatusOK)))
	require.NoError(t, w.Append(sampleRecord("run-2", StatusFailed)))

	status, err = LastStatus(path)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
}
