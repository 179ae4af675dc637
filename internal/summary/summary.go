// Package summary writes the append-only run summary log: the operational
// record of every batch run. Callers must check a run's status line before
// trusting tables generated by that run.
package summary

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Status values recorded for a run.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// FileRecord describes one processed extract file.
type FileRecord struct {
	Name         string
	CaptureDate  time.Time
	OldRows      int
	NewRows      int
	CombinedRows int
	Err          string
}

// TypeRecord describes the handling of one extract type within a run.
type TypeRecord struct {
	Type           string
	FilesFound     int
	FilesProcessed int
	FilesRemoved   int
	Files          []FileRecord
}

// RunRecord is one complete run.
type RunRecord struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Status   string
	Types    []TypeRecord
	Errors   []string
}

// Writer appends run records to the summary file.
type Writer struct {
	path string
}

// NewWriter creates a writer for the given summary file path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append formats the run record and appends it to the summary file.
func (w *Writer) Append(rec RunRecord) error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run summary: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(format(rec)); err != nil {
		return fmt.Errorf("failed to append run summary: %w", err)
	}
	return nil
}

func format(rec RunRecord) string {
	var b strings.Builder
	const ts = "2006-01-02 15:04:05"

	fmt.Fprintf(&b, "=== run %s ===\n", rec.RunID)
	fmt.Fprintf(&b, "started:  %s\n", rec.Started.Format(ts))
	fmt.Fprintf(&b, "finished: %s\n", rec.Finished.Format(ts))
	fmt.Fprintf(&b, "status:   %s\n", rec.Status)
	for _, t := range rec.Types {
		fmt.Fprintf(&b, "[%s] found=%d processed=%d removed=%d\n",
			t.Type, t.FilesFound, t.FilesProcessed, t.FilesRemoved)
		for _, f := range t.Files {
			if f.Err != "" {
				fmt.Fprintf(&b, "  %s capture=%s ERROR: %s\n",
					f.Name, f.CaptureDate.Format("2006-01-02"), f.Err)
				continue
			}
			fmt.Fprintf(&b, "  %s capture=%s old=%d new=%d combined=%d\n",
				f.Name, f.CaptureDate.Format("2006-01-02"),
				f.OldRows, f.NewRows, f.CombinedRows)
		}
	}
	for _, e := range rec.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	b.WriteString("\n")
	return b.String()
}

// LastStatus scans the summary file for the most recent run's status.
// Returns empty when no run has been recorded.
func LastStatus(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	last := ""
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "status:") {
			last = strings.TrimSpace(strings.TrimPrefix(line, "status:"))
		}
	}
	return last, nil
}
