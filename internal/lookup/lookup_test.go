package lookup

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siscli/internal/dataset"
	apperrors "siscli/internal/errors"
)

func programData(t *testing.T, pairs [][2]string) *dataset.Dataset {
	t.Helper()
	d := dataset.New(
		dataset.Column{Name: "program", Type: dataset.TypeText},
		dataset.Column{Name: "program_code", Type: dataset.TypeText},
	)
	for _, p := range pairs {
		d.MustAppendRow(dataset.Text(p[0]), dataset.Text(p[1]))
	}
	return d
}

func TestBuildInfersMostFrequentCode(t *testing.T) {
	d := programData(t, [][2]string{
		{"Biology", "BIO"},
		{"Biology", "BIO"},
		{"Biology", "BI"}, // a typo in one delivery loses to the majority
		{"History", "HIS"},
	})

	table, err := NewBuilder(nil).Build(d, "program", "program_code", nil)
	require.NoError(t, err)
	assert.Equal(t, Table{"Biology": "BIO", "History": "HIS"}, table)
}

func TestBuildTieBreaksByFirstSeen(t *testing.T) {
	d := programData(t, [][2]string{
		{"Biology", "BIO"},
		{"Biology", "BI"},
	})

	table, err := NewBuilder(nil).Build(d, "program", "program_code", nil)
	require.NoError(t, err)
	assert.Equal(t, "BIO", table["Biology"])
}

func TestBuildAuthoritativeWins(t *testing.T) {
	d := programData(t, [][2]string{
		{"Biology", "BIO"},
		{"Biology", "BIO"},
	})

	table, err := NewBuilder(nil).Build(d, "program", "program_code", Table{
		"Biology":   "BIOL",
		"Sociology": "SOC", // present even though the data never mentions it
	})
	require.NoError(t, err)
	assert.Equal(t, Table{"Biology": "BIOL", "Sociology": "SOC"}, table)
}

func TestBuildSkipsBlankCells(t *testing.T) {
	d := programData(t, [][2]string{
		{"Biology", "BIO"},
		{"", "BIO"},
		{"Biology", ""},
		{"  ", "  "},
	})

	table, err := NewBuilder(nil).Build(d, "program", "program_code", nil)
	require.NoError(t, err)
	assert.Equal(t, Table{"Biology": "BIO"}, table)
}

func TestBuildMissingColumn(t *testing.T) {
	d := dataset.New(dataset.Column{Name: "program", Type: dataset.TypeText})

	_, err := NewBuilder(nil).Build(d, "program", "program_code", nil)
	require.Error(t, err)
	var missing *apperrors.MissingColumnError
	assert.ErrorAs(t, err, &missing)
}

func TestLoadAuthoritativeMissingFile(t *testing.T) {
	c, err := LoadAuthoritative(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Collection{}, c)
}

func TestCollectionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.yaml")
	in := Collection{
		"programs":    {"Biology": "BIO", "History": "HIS"},
		"departments": {"Biology Dept": "SCI"},
	}

	require.NoError(t, SaveCollection(path, in))
	out, err := LoadCollection(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
