package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"siscli/internal/config"
	"siscli/internal/dataset"
	"siscli/internal/query"
	"siscli/internal/serialize"
)

// optionFlags collects repeatable -where name=value pairs into an
// options bag.
type optionFlags map[string]string

func (o optionFlags) String() string { return fmt.Sprintf("%v", map[string]string(o)) }

func (o optionFlags) Set(s string) error {
	name, value, found := strings.Cut(s, "=")
	if !found || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	o[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

func main() {
	configFile := flag.String("config", "config.yaml", "configuration file (optional)")
	table := flag.String("table", "sections", "normalized table to query: sections or enrollments")
	group := flag.String("group", "", "comma-separated aggregation columns (empty: filter only)")
	aggregate := flag.Bool("agg", false, "aggregate after filtering")
	opts := optionFlags{}
	flag.Var(opts, "where", "filter option as name=value (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var spec query.Spec
	switch *table {
	case "sections":
		spec = query.SectionSpec()
	case "enrollments":
		spec = query.EnrollmentSpec()
	default:
		slog.Error("Unknown table", slog.String("table", *table))
		os.Exit(1)
	}

	exclusions, err := query.LoadExclusions(cfg.Store.ExclusionList)
	if err != nil {
		slog.Error("Failed to load exclusion list", "error", err)
		os.Exit(1)
	}
	spec.Exclusions = exclusions

	codec := serialize.NewCodec(cfg.Paths.TablesDir, cfg.Store.PreferBinary(), slog.Default())
	data, err := codec.Load("norm_" + *table)
	if err != nil {
		slog.Error("Failed to load table", slog.String("table", *table), "error", err)
		os.Exit(1)
	}

	result, err := query.Apply(data, map[string]string(opts), spec)
	if err != nil {
		slog.Error("Filter failed", "error", err)
		os.Exit(1)
	}

	if *aggregate || *group != "" {
		var groupCols []string
		for _, g := range strings.Split(*group, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groupCols = append(groupCols, g)
			}
		}
		result, err = query.Aggregate(result, groupCols, spec)
		if err != nil {
			slog.Error("Aggregation failed", "error", err)
			os.Exit(1)
		}
	}

	if err := writeCSV(os.Stdout, result); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}

func writeCSV(w *os.File, d *dataset.Dataset) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(d.ColumnNames()); err != nil {
		return err
	}
	for _, row := range d.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = v.Render()
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
