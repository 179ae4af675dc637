package query

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadExclusions reads the maintained exclusion list: one course identifier
// per line, comments with #. A missing file yields an empty list, which
// makes the exclusion filter a no-op.
func LoadExclusions(path string) (map[string]bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open exclusion list: %w", err)
	}
	defer file.Close()

	out := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out[NormalizeCourseID(line)] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exclusion list: %w", err)
	}
	return out, nil
}
