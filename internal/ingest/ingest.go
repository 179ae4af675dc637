// Package ingest converts one raw extract file into a typed in-memory
// dataset plus extract-level metadata: the capture date from the filename
// and the source periods present in the data.
package ingest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"siscli/internal/convert"
	"siscli/internal/dataset"
	"siscli/internal/errors"
	"siscli/pkg/contracts/domain"
)

// RawExtract is a typed table plus extract metadata. Ephemeral: created per
// ingestion run and discarded after merge.
type RawExtract struct {
	Type        domain.ExtractType
	CaptureDate time.Time
	Periods     []int64
	Data        *dataset.Dataset
}

// Ingestor reads extract files. Workbooks are converted to delimited text
// first; the conversion output is scoped to the call and removed on every
// exit path.
type Ingestor struct {
	logger *slog.Logger
}

// NewIngestor creates an ingestor.
func NewIngestor(logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{logger: logger}
}

// Ingest reads one extract file into a RawExtract. A conversion that yields
// a missing or zero-byte file is a hard failure for this file.
func (in *Ingestor) Ingest(file domain.ExtractFile, spec domain.ExtractSpec) (*RawExtract, error) {
	csvPath := file.Path
	if strings.HasSuffix(strings.ToLower(file.Path), ".xlsx") {
		tmp, err := os.CreateTemp("", "extract-*.csv")
		if err != nil {
			return nil, errors.NewSourceError("failed to create conversion output", err)
		}
		tmp.Close()
		csvPath = tmp.Name()
		defer os.Remove(csvPath)

		if err := convert.WorkbookToCSV(file.Path, csvPath); err != nil {
			return nil, errors.NewSourceError(
				fmt.Sprintf("conversion failed for %s", file.Name), err)
		}
	}

	info, err := os.Stat(csvPath)
	if err != nil || info.Size() == 0 {
		return nil, errors.NewSourceError(
			fmt.Sprintf("conversion produced no output for %s", file.Name), err)
	}

	data, err := readTable(csvPath)
	if err != nil {
		return nil, errors.NewSourceError(
			fmt.Sprintf("failed to parse %s", file.Name), err)
	}

	periodCol, ok := data.ColumnIndex(spec.PeriodColumn)
	if !ok {
		return nil, errors.NewMissingColumnError(
			filepath.Base(file.Name), []string{spec.PeriodColumn}, data.ColumnNames())
	}
	periods := data.DistinctInts(periodCol)

	in.logger.Info("ingested extract",
		slog.String("file", file.Name),
		slog.String("type", string(file.Type)),
		slog.String("capture_date", file.CaptureDate.Format("2006-01-02")),
		slog.Int("rows", data.NumRows()),
		slog.Int("periods", len(periods)))

	return &RawExtract{
		Type:        file.Type,
		CaptureDate: file.CaptureDate,
		Periods:     periods,
		Data:        data,
	}, nil
}

// readTable parses a delimited text file into a typed dataset. Column types
// are inferred by a full-column scan: a column where every populated cell
// parses as an integer is typed int, then float, otherwise text.
func readTable(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited text: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	header := records[0]
	body := records[1:]
	types := make([]dataset.ColumnType, len(header))
	for j := range header {
		types[j] = inferColumnType(body, j)
	}

	cols := make([]dataset.Column, len(header))
	for j, name := range header {
		cols[j] = dataset.Column{Name: strings.TrimSpace(name), Type: types[j]}
	}

	d := dataset.New(cols...)
	for _, record := range body {
		row := make([]dataset.Value, len(cols))
		for j := range cols {
			cell := ""
			if j < len(record) {
				cell = strings.TrimSpace(record[j])
			}
			row[j] = parseTyped(cell, types[j])
		}
		d.Rows = append(d.Rows, row)
	}
	return d, nil
}

func inferColumnType(body [][]string, col int) dataset.ColumnType {
	sawValue := false
	allInt := true
	allFloat := true
	for _, record := range body {
		if col >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[col])
		if cell == "" {
			continue
		}
		sawValue = true
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
		if !allInt && !allFloat {
			return dataset.TypeText
		}
	}
	switch {
	case !sawValue:
		return dataset.TypeText
	case allInt:
		return dataset.TypeInt
	case allFloat:
		return dataset.TypeFloat
	default:
		return dataset.TypeText
	}
}

func parseTyped(cell string, typ dataset.ColumnType) dataset.Value {
	if cell == "" {
		return dataset.NullOf(typ)
	}
	switch typ {
	case dataset.TypeInt:
		i, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return dataset.NullOf(typ)
		}
		return dataset.Int64(i)
	case dataset.TypeFloat:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return dataset.NullOf(typ)
		}
		return dataset.Float64(f)
	default:
		return dataset.Text(cell)
	}
}
