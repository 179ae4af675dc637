package serialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siscli/internal/dataset"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	d := dataset.New(
		dataset.Column{Name: "term", Type: dataset.TypeInt},
		dataset.Column{Name: "subject", Type: dataset.TypeText},
		dataset.Column{Name: "fte", Type: dataset.TypeFloat},
		dataset.Column{Name: "is_lab", Type: dataset.TypeBool},
	)
	d.MustAppendRow(dataset.Int64(202280), dataset.Text("BIOL"), dataset.Float64(0.75), dataset.Boolean(true))
	d.MustAppendRow(dataset.Int64(202310), dataset.Text("CHEM"), dataset.NullOf(dataset.TypeFloat), dataset.Boolean(false))
	return d
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		preferBinary bool
		ext          string
	}{
		{name: "binary", preferBinary: true, ext: ExtBinary},
		{name: "csv", preferBinary: false, ext: ExtCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			codec := NewCodec(dir, tt.preferBinary, nil)
			d := sampleDataset(t)

			require.NoError(t, codec.Save(d, "hist_sections"))
			_, err := os.Stat(filepath.Join(dir, "hist_sections"+tt.ext))
			require.NoError(t, err)

			got, err := codec.Load("hist_sections")
			require.NoError(t, err)
			assert.Equal(t, d.Columns, got.Columns)
			assert.Equal(t, d.Rows, got.Rows)
		})
	}
}

func TestCodecExtensionFallback(t *testing.T) {
	dir := t.TempDir()

	// Saved as CSV by one run, loaded by a run configured for binary.
	csvCodec := NewCodec(dir, false, nil)
	require.NoError(t, csvCodec.Save(sampleDataset(t), "hist_sections"))

	binCodec := NewCodec(dir, true, nil)
	got, err := binCodec.Load("hist_sections")
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, dataset.TypeInt, got.Columns[0].Type)
}

func TestCodecLoadMissingIsEmpty(t *testing.T) {
	codec := NewCodec(t.TempDir(), true, nil)

	got, err := codec.Load("hist_awards")
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumRows())
	assert.Equal(t, 0, got.NumCols())
}

func TestCodecCSVPreservesColumnTypes(t *testing.T) {
	dir := t.TempDir()
	codec := NewCodec(dir, false, nil)
	require.NoError(t, codec.Save(sampleDataset(t), "hist_sections"))

	got, err := codec.Load("hist_sections")
	require.NoError(t, err)

	types := make([]dataset.ColumnType, len(got.Columns))
	for i, col := range got.Columns {
		types[i] = col.Type
	}
	assert.Equal(t, []dataset.ColumnType{
		dataset.TypeInt, dataset.TypeText, dataset.TypeFloat, dataset.TypeBool,
	}, types)

	// The null float cell survives as a null, not a zero.
	assert.True(t, got.Rows[1][2].IsNull())
}
