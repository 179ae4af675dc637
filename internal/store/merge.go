// Package store implements the incremental merge of a new extract into the
// append-only historical table for its extract type.
package store

import (
	"encoding/hex"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"siscli/internal/dataset"
	"siscli/internal/errors"
	"siscli/internal/ingest"
	"siscli/pkg/contracts/domain"
)

// hashHexLen is the length of a hex-encoded identifier digest. A value of
// exactly this length is assumed already hashed and is never re-hashed, so
// merging the same extract twice cannot double-hash identifiers.
const hashHexLen = blake2b.Size256 * 2

// DefaultSalt is the compiled-in fallback used when no hashing salt is
// configured. Runs on the default salt are flagged loudly but not blocked.
const DefaultSalt = "siscli-default-salt"

// MergeStats reports what one merge did, for the run summary.
type MergeStats struct {
	OldRows        int
	SupersededRows int
	NewRows        int
	CombinedRows   int
	CoercedColumns []string
}

// Merger merges extracts into historical tables.
type Merger struct {
	salt   string
	logger *slog.Logger
}

// NewMerger creates a merger. An empty salt degrades to DefaultSalt with a
// warning; the batch still runs.
func NewMerger(salt string, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if salt == "" {
		logger.Warn("hashing salt not configured, using built-in default",
			slog.String("error_type", string(errors.ErrTypeSecret)))
		salt = DefaultSalt
	}
	return &Merger{salt: salt, logger: logger}
}

// Merge combines a new extract with the existing historical table.
//
// The new extract is authoritative for every period it covers: all prior
// rows for those periods are removed before the new rows are added. This is
// period supersession, not an upsert by key; a row the new extract omits for
// a covered period disappears.
func (m *Merger) Merge(historical *dataset.Dataset, extract *ingest.RawExtract, spec domain.ExtractSpec) (*dataset.Dataset, MergeStats, error) {
	stats := MergeStats{OldRows: historical.NumRows(), NewRows: extract.Data.NumRows()}

	required := append([]string{spec.PeriodColumn}, spec.IDColumns...)
	schema, err := dataset.Validate(string(spec.Type), extract.Data, required...)
	if err != nil {
		return nil, stats, err
	}

	// Step 1: periods the extract reports on.
	periods := make(map[int64]bool, len(extract.Periods))
	for _, p := range extract.Periods {
		periods[p] = true
	}

	// Step 2: supersession. Rows of historical whose period the extract
	// covers are dropped.
	kept := historical
	if historical.NumCols() > 0 {
		histPeriod, ok := historical.ColumnIndex(spec.PeriodColumn)
		if !ok {
			return nil, stats, errors.NewMissingColumnError(
				spec.StoreName(), []string{spec.PeriodColumn}, historical.ColumnNames())
		}
		kept = historical.Select(func(row []dataset.Value) bool {
			p, ok := row[histPeriod].AsInt()
			return !ok || !periods[p]
		})
		stats.SupersededRows = historical.NumRows() - kept.NumRows()
	}

	// Step 3: hash sensitive identifiers in the extract only. Historical
	// rows are assumed already hashed.
	hashed := m.hashIDColumns(extract.Data, schema, spec.IDColumns)

	// Step 4: column reconciliation. The store's column set is the union of
	// everything ever seen; a type conflict widens both sides to text.
	union, coerced := dataset.UnionColumns(kept.Columns, hashed.Columns)
	stats.CoercedColumns = coerced
	for _, name := range coerced {
		m.logger.Warn("column type conflict between store and extract, widening to text",
			slog.String("column", name),
			slog.String("extract_type", string(spec.Type)))
	}

	// Step 5: concatenate.
	combined := kept.Align(union)
	if err := combined.Concat(hashed.Align(union)); err != nil {
		return nil, stats, errors.NewStorageError("failed to combine extract with store", err)
	}
	stats.CombinedRows = combined.NumRows()

	m.logger.Info("merged extract into historical store",
		slog.String("extract_type", string(spec.Type)),
		slog.Int("old_rows", stats.OldRows),
		slog.Int("superseded_rows", stats.SupersededRows),
		slog.Int("new_rows", stats.NewRows),
		slog.Int("combined_rows", stats.CombinedRows))

	return combined, stats, nil
}

// hashIDColumns replaces declared identifier values with salted digests.
// Values already the length of a digest are left alone, which makes an
// accidental re-merge of a hashed extract a no-op.
func (m *Merger) hashIDColumns(d *dataset.Dataset, schema *dataset.Schema, idCols []string) *dataset.Dataset {
	if len(idCols) == 0 {
		return d
	}
	cols := make([]dataset.Column, len(d.Columns))
	copy(cols, d.Columns)
	handles := make([]dataset.Handle, 0, len(idCols))
	for _, name := range idCols {
		h := schema.Col(name)
		// Hashed identifiers are text regardless of the raw column type.
		cols[h.Index] = dataset.Column{Name: name, Type: dataset.TypeText}
		handles = append(handles, h)
	}
	out := dataset.New(cols...)
	for _, row := range d.Rows {
		next := make([]dataset.Value, len(row))
		copy(next, row)
		for _, h := range handles {
			next[h.Index] = m.hashValue(row[h.Index])
		}
		out.Rows = append(out.Rows, next)
	}
	return out
}

func (m *Merger) hashValue(v dataset.Value) dataset.Value {
	if v.IsNull() {
		return dataset.NullOf(dataset.TypeText)
	}
	plain := v.Render()
	if len(plain) == hashHexLen {
		return dataset.Text(plain)
	}
	sum := blake2b.Sum256([]byte(m.salt + plain))
	return dataset.Text(hex.EncodeToString(sum[:]))
}
