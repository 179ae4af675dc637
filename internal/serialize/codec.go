package serialize

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"siscli/internal/dataset"
	"siscli/internal/errors"
)

const (
	// ExtBinary is the preferred, faster on-disk format.
	ExtBinary = ".gob"
	// ExtCSV is the universal fallback format.
	ExtCSV = ".csv"
)

// Codec reads and writes datasets under a base directory. Paths passed to
// Save and Load carry no extension; the codec chooses one.
//
// When PreferBinary is set, Save writes gob and Load tries the .gob file
// first; if the file with the preferred extension does not exist, Load
// transparently substitutes the other extension and retries. A path absent
// in both formats loads as an empty dataset, not an error, so downstream
// code treats "no data yet" uniformly.
type Codec struct {
	Dir          string
	PreferBinary bool
	Logger       *slog.Logger
}

// NewCodec creates a codec rooted at dir.
func NewCodec(dir string, preferBinary bool, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{Dir: dir, PreferBinary: preferBinary, Logger: logger}
}

// Ext returns the extension Save will use.
func (c *Codec) Ext() string {
	if c.PreferBinary {
		return ExtBinary
	}
	return ExtCSV
}

func (c *Codec) path(name, ext string) string {
	return filepath.Join(c.Dir, name+ext)
}

// Save writes the dataset under the given name in the preferred format.
func (c *Codec) Save(d *dataset.Dataset, name string) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return errors.NewStorageError("failed to create store directory", err)
	}
	path := c.path(name, c.Ext())
	c.Logger.Debug("saving dataset",
		slog.String("path", path),
		slog.Int("rows", d.NumRows()),
		slog.Int("columns", d.NumCols()))
	if c.PreferBinary {
		return writeBinary(d, path)
	}
	return writeCSV(d, path)
}

// Load reads the dataset saved under name. The preferred extension is tried
// first, then the other; if neither file exists the result is an empty
// dataset.
func (c *Codec) Load(name string) (*dataset.Dataset, error) {
	exts := []string{ExtBinary, ExtCSV}
	if !c.PreferBinary {
		exts = []string{ExtCSV, ExtBinary}
	}
	for _, ext := range exts {
		path := c.path(name, ext)
		d, err := loadFile(path, ext)
		if err == nil {
			c.Logger.Debug("loaded dataset",
				slog.String("path", path),
				slog.Int("rows", d.NumRows()))
			return d, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to load %s", path), err)
	}
	c.Logger.Debug("no stored dataset, starting empty", slog.String("name", name))
	return dataset.Empty(), nil
}

func loadFile(path, ext string) (*dataset.Dataset, error) {
	if ext == ExtBinary {
		return readBinary(path)
	}
	return readCSV(path)
}

func writeBinary(d *dataset.Dataset, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create binary store file", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(d); err != nil {
		return errors.NewStorageError("failed to encode dataset", err)
	}
	return nil
}

func readBinary(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var d dataset.Dataset
	if err := gob.NewDecoder(file).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &d, nil
}

// writeCSV stores the dataset in the universal format. Headers carry the
// column type as "name:type"; nulls are written as empty cells, so an empty
// text value and a text null are indistinguishable after a CSV round trip.
func writeCSV(d *dataset.Dataset, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV store file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		header[i] = col.Name + ":" + col.Type.String()
	}
	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("failed to write CSV header", err)
	}
	for i, row := range d.Rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = v.Render()
		}
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write CSV row %d", i), err)
		}
	}
	return writer.Error()
}

func readCSV(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return dataset.Empty(), nil
	}

	cols := make([]dataset.Column, len(records[0]))
	for i, h := range records[0] {
		name, typ := h, dataset.TypeText
		if k := strings.LastIndex(h, ":"); k >= 0 {
			name = h[:k]
			typ = dataset.ParseColumnType(h[k+1:])
		}
		cols[i] = dataset.Column{Name: name, Type: typ}
	}

	d := dataset.New(cols...)
	for i, record := range records[1:] {
		row := make([]dataset.Value, len(cols))
		for j := range cols {
			cell := ""
			if j < len(record) {
				cell = record[j]
			}
			row[j] = parseCell(cell, cols[j].Type)
		}
		if err := d.AppendRow(row...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return d, nil
}

func parseCell(cell string, typ dataset.ColumnType) dataset.Value {
	if cell == "" {
		return dataset.NullOf(typ)
	}
	v := dataset.Text(cell)
	return v.Coerce(typ)
}
