package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"siscli/pkg/contracts/domain"
)

var captureDatePattern = regexp.MustCompile(`(\d{8})`)

// FindExtracts scans dir for files belonging to the given extract spec.
// Matching is by signature substring plus an 8-digit capture date somewhere
// in the name, never by exact filename. Results are sorted by capture date,
// oldest first, so later deliveries supersede earlier ones at merge time.
func FindExtracts(dir string, spec domain.ExtractSpec) ([]domain.ExtractFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []domain.ExtractFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".csv") {
			continue
		}
		if !strings.Contains(name, spec.Signature) {
			continue
		}
		date, ok := captureDate(name)
		if !ok {
			continue
		}
		files = append(files, domain.ExtractFile{
			Path:        filepath.Join(dir, name),
			Name:        name,
			Type:        spec.Type,
			CaptureDate: date,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CaptureDate.Before(files[j].CaptureDate)
	})
	return files, nil
}

// captureDate extracts the first 8-digit YYYYMMDD run that parses as a date.
func captureDate(name string) (time.Time, bool) {
	for _, m := range captureDatePattern.FindAllString(name, -1) {
		if t, err := time.Parse("20060102", m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
