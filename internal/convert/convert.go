// Package convert turns delivered spreadsheet workbooks into delimited text
// the ingestor can parse. It is the in-process stand-in for the external
// conversion utility: same contract, a CSV file or an error.
package convert

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WorkbookToCSV extracts the data sheet of an Excel workbook into a CSV
// file. The sheet is chosen by scanning for the first sheet with more than
// one populated row; trailing empty rows are trimmed.
func WorkbookToCSV(xlsxPath, csvPath string) error {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var rows [][]string
	var sheetName string
	for _, name := range f.GetSheetList() {
		candidate, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if countPopulated(candidate) > 1 {
			rows = candidate
			sheetName = name
			break
		}
	}
	if sheetName == "" {
		return fmt.Errorf("no data sheet found in %s", xlsxPath)
	}

	rows = trimTrailingEmpty(rows)
	slog.Debug("converting workbook sheet",
		slog.String("workbook", xlsxPath),
		slog.String("sheet", sheetName),
		slog.Int("rows", len(rows)))

	out, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	defer writer.Flush()

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for _, row := range rows {
		record := make([]string, width)
		copy(record, row)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return writer.Error()
}

func countPopulated(rows [][]string) int {
	n := 0
	for _, row := range rows {
		if !rowEmpty(row) {
			n++
		}
	}
	return n
}

func trimTrailingEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && rowEmpty(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
