// Package pipeline orchestrates one batch run: discover extract files,
// ingest and merge them into the historical stores, regenerate the
// normalized tables and lookup tables, and record everything in the run
// summary. State flows through an explicit State struct passed between
// stages; nothing is shared through package-level variables.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"siscli/internal/config"
	"siscli/internal/dataset"
	"siscli/internal/infrastructure"
	"siscli/internal/ingest"
	"siscli/internal/lookup"
	"siscli/internal/serialize"
	"siscli/internal/store"
	"siscli/internal/summary"
	"siscli/internal/transform"
	"siscli/pkg/contracts/domain"
)

// State carries the datasets of one run between pipeline stages.
type State struct {
	Historical map[domain.ExtractType]*dataset.Dataset
	Normalized map[string]*dataset.Dataset
	Lookups    lookup.Collection
	Stats      []transform.TableStats
	Record     summary.RunRecord
}

// Runner executes batch runs. One extract type is processed end to end
// before the next; within a type each file is fully read, merged and
// released before the next is opened.
type Runner struct {
	cfg         *config.Config
	stores      *serialize.Codec
	tables      *serialize.Codec
	ingestor    *ingest.Ingestor
	merger      *store.Merger
	transformer *transform.Transformer
	lookups     *lookup.Builder
	summaries   *summary.Writer
	logger      *slog.Logger
	// ArchiveProcessed moves extract files to the archive directory after
	// a successful merge. Disabled in tests.
	ArchiveProcessed bool
}

// NewRunner wires a runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:              cfg,
		stores:           serialize.NewCodec(cfg.Paths.StoresDir, cfg.Store.PreferBinary(), logger),
		tables:           serialize.NewCodec(cfg.Paths.TablesDir, cfg.Store.PreferBinary(), logger),
		ingestor:         ingest.NewIngestor(logger),
		merger:           store.NewMerger(cfg.Store.HashSalt, logger),
		transformer:      transform.NewTransformer(transform.Defaults(), logger),
		lookups:          lookup.NewBuilder(logger),
		summaries:        summary.NewWriter(cfg.Paths.SummaryPath()),
		logger:           logger,
		ArchiveProcessed: true,
	}
}

// Run executes one batch run. A failing extract file is recorded and the
// batch continues; a failing merge or transform for a required table aborts
// the run. The run summary is appended in every case, and the returned
// error mirrors the recorded status.
func (r *Runner) Run(ctx context.Context) (*State, error) {
	runID := uuid.NewString()
	ctx = infrastructure.WithRunID(ctx, runID)

	st := &State{
		Historical: make(map[domain.ExtractType]*dataset.Dataset),
		Record: summary.RunRecord{
			RunID:   runID,
			Started: time.Now(),
			Status:  summary.StatusOK,
		},
	}
	r.logger.InfoContext(ctx, "starting batch run",
		slog.String("extracts_dir", r.cfg.Paths.ExtractsDir),
		slog.String("store_format", r.cfg.Store.Format))

	runErr := r.execute(ctx, st)
	if runErr != nil {
		st.Record.Status = summary.StatusFailed
		st.Record.Errors = append(st.Record.Errors, runErr.Error())
	}
	st.Record.Finished = time.Now()

	if err := r.summaries.Append(st.Record); err != nil {
		r.logger.ErrorContext(ctx, "failed to append run summary",
			slog.String("error", err.Error()))
		if runErr == nil {
			runErr = err
		}
	}
	r.logger.InfoContext(ctx, "batch run finished",
		slog.String("status", st.Record.Status))
	return st, runErr
}

func (r *Runner) execute(ctx context.Context, st *State) error {
	for _, spec := range domain.Specs() {
		if err := r.processType(ctx, st, spec); err != nil {
			return err
		}
	}
	return r.project(ctx, st)
}

// processType ingests and merges every pending file of one extract type.
func (r *Runner) processType(ctx context.Context, st *State, spec domain.ExtractSpec) error {
	files, err := ingest.FindExtracts(r.cfg.Paths.ExtractsDir, spec)
	if err != nil {
		return fmt.Errorf("discovery failed for %s: %w", spec.Type, err)
	}
	trec := summary.TypeRecord{Type: string(spec.Type), FilesFound: len(files)}
	r.logger.InfoContext(ctx, "processing extract type",
		slog.String("type", string(spec.Type)),
		slog.Int("files_found", len(files)))

	historical, err := r.stores.Load(spec.StoreName())
	if err != nil {
		return fmt.Errorf("failed to load store for %s: %w", spec.Type, err)
	}

	for _, file := range files {
		frec := summary.FileRecord{Name: file.Name, CaptureDate: file.CaptureDate}

		raw, err := r.ingestor.Ingest(file, spec)
		if err != nil {
			// A single unreadable source file never aborts the batch.
			frec.Err = err.Error()
			trec.Files = append(trec.Files, frec)
			r.logger.ErrorContext(ctx, "extract file failed",
				slog.String("file", file.Name),
				slog.String("error", err.Error()))
			continue
		}

		merged, stats, err := r.merger.Merge(historical, raw, spec)
		if err != nil {
			frec.Err = err.Error()
			trec.Files = append(trec.Files, frec)
			st.Record.Types = append(st.Record.Types, trec)
			return fmt.Errorf("merge failed for %s: %w", file.Name, err)
		}
		historical = merged
		frec.OldRows = stats.OldRows
		frec.NewRows = stats.NewRows
		frec.CombinedRows = stats.CombinedRows
		trec.Files = append(trec.Files, frec)
		trec.FilesProcessed++

		if r.ArchiveProcessed {
			if err := r.archive(file); err != nil {
				r.logger.WarnContext(ctx, "failed to archive processed file",
					slog.String("file", file.Name),
					slog.String("error", err.Error()))
			} else {
				trec.FilesRemoved++
			}
		}
	}

	if trec.FilesProcessed > 0 {
		if err := r.stores.Save(historical, spec.StoreName()); err != nil {
			st.Record.Types = append(st.Record.Types, trec)
			return fmt.Errorf("failed to persist store for %s: %w", spec.Type, err)
		}
	}
	st.Historical[spec.Type] = historical
	st.Record.Types = append(st.Record.Types, trec)
	return nil
}

// project regenerates the normalized tables and lookup tables wholesale.
func (r *Runner) project(ctx context.Context, st *State) error {
	normalized, stats, err := r.transformer.Transform(st.Historical)
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}
	st.Normalized = normalized
	st.Stats = stats

	for name, table := range normalized {
		if err := r.tables.Save(table, "norm_"+name); err != nil {
			return fmt.Errorf("failed to persist normalized table %s: %w", name, err)
		}
	}

	if err := r.buildLookups(ctx, st); err != nil {
		return err
	}
	return nil
}

func (r *Runner) buildLookups(ctx context.Context, st *State) error {
	authoritative, err := lookup.LoadAuthoritative(r.cfg.Store.AuthoritativeMap)
	if err != nil {
		return fmt.Errorf("failed to load authoritative map: %w", err)
	}

	programs, ok := st.Normalized["programs"]
	if !ok || programs.NumRows() == 0 {
		r.logger.InfoContext(ctx, "no program data, skipping lookup build")
		st.Lookups = lookup.Collection{}
		return nil
	}

	st.Lookups = lookup.Collection{}
	builds := []struct {
		name    string
		keyCol  string
		codeCol string
	}{
		{name: "programs", keyCol: "program", codeCol: "program_code"},
		{name: "departments", keyCol: "department", codeCol: "college"},
	}
	for _, b := range builds {
		table, err := r.lookups.Build(programs, b.keyCol, b.codeCol, authoritative[b.name])
		if err != nil {
			return fmt.Errorf("failed to build %s lookup: %w", b.name, err)
		}
		st.Lookups[b.name] = table
	}

	path := filepath.Join(r.cfg.Paths.TablesDir, "lookups.yaml")
	if err := lookup.SaveCollection(path, st.Lookups); err != nil {
		return fmt.Errorf("failed to persist lookup collection: %w", err)
	}
	return nil
}

func (r *Runner) archive(file domain.ExtractFile) error {
	if err := os.MkdirAll(r.cfg.Paths.ArchiveDir, 0755); err != nil {
		return err
	}
	return os.Rename(file.Path, filepath.Join(r.cfg.Paths.ArchiveDir, file.Name))
}
