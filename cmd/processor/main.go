package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"siscli/internal/config"
	"siscli/internal/infrastructure"
	"siscli/internal/pipeline"
)

func main() {
	configFile := flag.String("config", "config.yaml", "configuration file (optional)")
	inDir := flag.String("in", "", "input directory for extract files (overrides config)")
	format := flag.String("format", "", "store format: binary or csv (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *inDir != "" {
		cfg.Paths.ExtractsDir = *inDir
	}
	if *format != "" {
		cfg.Store.Format = *format
	}

	if err := cfg.Paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting extract processing",
		slog.String("extracts_dir", cfg.Paths.ExtractsDir),
		slog.String("stores_dir", cfg.Paths.StoresDir),
		slog.String("format", cfg.Store.Format))

	runner := pipeline.NewRunner(cfg, logger)
	st, err := runner.Run(context.Background())
	if err != nil {
		logger.Error("Batch run failed", slog.String("error", err.Error()))
		fmt.Printf("Run %s: FAILED\n", st.Record.RunID)
		os.Exit(1)
	}

	for _, t := range st.Record.Types {
		fmt.Printf("%s: found=%d processed=%d\n", t.Type, t.FilesFound, t.FilesProcessed)
	}
	fmt.Printf("Run %s: OK\n", st.Record.RunID)
}
