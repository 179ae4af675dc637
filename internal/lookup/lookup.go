// Package lookup derives key-to-code normalization tables by combining a
// hand-authored authoritative mapping with a mapping inferred from the data.
// Tables are rebuilt wholesale whenever the authoritative file or the
// normalized data changes; there is no incremental mode.
package lookup

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"siscli/internal/dataset"
)

// Table maps a textual key (program name, department label, subject code)
// to its canonical code.
type Table map[string]string

// Collection is the named set of lookup tables persisted as one file.
type Collection map[string]Table

// Builder builds lookup tables.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build derives the lookup table for one key/code column pair. Authoritative
// entries always win; for every other key observed in the data, the most
// frequent co-occurring code is used, ties broken by first-seen order.
func (b *Builder) Build(d *dataset.Dataset, keyCol, codeCol string, authoritative Table) (Table, error) {
	schema, err := dataset.Validate("lookup source", d, keyCol, codeCol)
	if err != nil {
		return nil, err
	}
	key := schema.Col(keyCol)
	code := schema.Col(codeCol)

	type tally struct {
		count map[string]int
		order []string
	}
	observed := make(map[string]*tally)
	var keyOrder []string

	for _, row := range d.Rows {
		k := strings.TrimSpace(key.Value(row).Render())
		c := strings.TrimSpace(code.Value(row).Render())
		if k == "" || c == "" {
			continue
		}
		t, ok := observed[k]
		if !ok {
			t = &tally{count: make(map[string]int)}
			observed[k] = t
			keyOrder = append(keyOrder, k)
		}
		if _, seen := t.count[c]; !seen {
			t.order = append(t.order, c)
		}
		t.count[c]++
	}

	out := make(Table, len(keyOrder)+len(authoritative))
	inferred := 0
	for _, k := range keyOrder {
		if _, ok := authoritative[k]; ok {
			continue
		}
		out[k] = mode(observed[k].count, observed[k].order)
		inferred++
	}
	for k, v := range authoritative {
		out[k] = v
	}

	b.logger.Info("built lookup table",
		slog.String("key_column", keyCol),
		slog.String("code_column", codeCol),
		slog.Int("authoritative", len(authoritative)),
		slog.Int("inferred", inferred))
	return out, nil
}

// mode returns the most frequent code; first-seen order breaks ties.
func mode(count map[string]int, order []string) string {
	best := ""
	bestN := -1
	for _, c := range order {
		if count[c] > bestN {
			best = c
			bestN = count[c]
		}
	}
	return best
}

// LoadAuthoritative reads the hand-curated mappings file. A missing file is
// an empty collection, not an error: derivation then runs purely inferred.
func LoadAuthoritative(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Collection{}, nil
		}
		return nil, fmt.Errorf("failed to read authoritative map: %w", err)
	}
	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse authoritative map: %w", err)
	}
	if c == nil {
		c = Collection{}
	}
	return c, nil
}

// SaveCollection writes all derived lookup tables as one named collection.
func SaveCollection(path string, c Collection) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode lookup collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write lookup collection: %w", err)
	}
	return nil
}

// LoadCollection reads a previously saved collection. A missing file loads
// as an empty collection.
func LoadCollection(path string) (Collection, error) {
	return LoadAuthoritative(path)
}
